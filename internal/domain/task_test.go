package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	ownerID := uuid.New()

	t.Run("valid task with explicit ratings", func(t *testing.T) {
		task, err := NewTask(ownerID, "Pay taxes", "Due tomorrow", 3, 4)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.Equal(t, QuadrantDoFirst, task.Quadrant)
		assert.Equal(t, 1050, task.PriorityScore)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.Equal(t, TaskKindMonthly, task.Kind)
		assert.False(t, task.CreatedAt.IsZero())
		assert.False(t, task.UpdatedAt.IsZero())
	})

	t.Run("zero ratings default to 2", func(t *testing.T) {
		task, err := NewTask(ownerID, "Water plants", "", 0, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, task.Urgency)
		assert.Equal(t, 2, task.Importance)
		assert.Equal(t, QuadrantEliminate, task.Quadrant)
		assert.Equal(t, 130, task.PriorityScore)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := NewTask(ownerID, "", "", 2, 2)
		assert.ErrorIs(t, err, ErrTaskTitleEmpty)
	})

	t.Run("overlong title rejected", func(t *testing.T) {
		_, err := NewTask(ownerID, strings.Repeat("x", MaxTitleLength+1), "", 2, 2)
		assert.ErrorIs(t, err, ErrTaskTitleTooLong)
	})

	t.Run("overlong description rejected", func(t *testing.T) {
		_, err := NewTask(ownerID, "ok", strings.Repeat("x", MaxDescriptionLength+1), 2, 2)
		assert.ErrorIs(t, err, ErrTaskDescriptionTooLong)
	})

	t.Run("multibyte title within the limit accepted", func(t *testing.T) {
		// 150 characters but well over 200 bytes; limits count characters.
		task, err := NewTask(ownerID, strings.Repeat("税", 150), "", 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 150, len([]rune(task.Title)))
	})

	t.Run("multibyte title over the limit rejected", func(t *testing.T) {
		_, err := NewTask(ownerID, strings.Repeat("税", MaxTitleLength+1), "", 2, 2)
		assert.ErrorIs(t, err, ErrTaskTitleTooLong)
	})

	t.Run("nil owner rejected", func(t *testing.T) {
		_, err := NewTask(uuid.Nil, "ok", "", 2, 2)
		assert.ErrorIs(t, err, ErrTaskOwnerIDEmpty)
	})
}

func TestTaskValidate(t *testing.T) {
	newValid := func() *Task {
		task, err := NewTask(uuid.New(), "title", "", 2, 3)
		require.NoError(t, err)
		return task
	}

	t.Run("rating out of range", func(t *testing.T) {
		task := newValid()
		task.Urgency = 7
		assert.ErrorIs(t, task.Validate(), ErrTaskRatingOutOfRange)
	})

	t.Run("unknown status", func(t *testing.T) {
		task := newValid()
		task.Status = "paused"
		assert.ErrorIs(t, task.Validate(), ErrInvalidStatus)
	})

	t.Run("unknown kind", func(t *testing.T) {
		task := newValid()
		task.Kind = "yearly"
		assert.ErrorIs(t, task.Validate(), ErrInvalidKind)
	})

	t.Run("bad recurrence pattern", func(t *testing.T) {
		task := newValid()
		task.RecurrencePattern = "fortnightly"
		assert.ErrorIs(t, task.Validate(), ErrInvalidRecurrence)
	})

	t.Run("due time format", func(t *testing.T) {
		task := newValid()
		task.DueTime = "25:99"
		assert.ErrorIs(t, task.Validate(), ErrTaskDueTimeInvalid)

		task.DueTime = "09:30"
		assert.NoError(t, task.Validate())
	})
}

func TestTaskSetRatings(t *testing.T) {
	task, err := NewTask(uuid.New(), "title", "", 2, 2)
	require.NoError(t, err)

	task.SetRatings(4, 4)
	assert.Equal(t, QuadrantDoFirst, task.Quadrant)
	assert.Equal(t, 1060, task.PriorityScore)

	// Out-of-range provider values clamp instead of violating the invariant.
	task.SetRatings(9, -1)
	assert.Equal(t, 4, task.Urgency)
	assert.Equal(t, 1, task.Importance)
	assert.Equal(t, QuadrantDelegate, task.Quadrant)
}

func TestTaskRecomputeConsistency(t *testing.T) {
	task, err := NewTask(uuid.New(), "title", "", 1, 1)
	require.NoError(t, err)

	for urgency := 1; urgency <= 4; urgency++ {
		for importance := 1; importance <= 4; importance++ {
			task.Urgency = urgency
			task.Importance = importance
			task.Recompute()

			assert.Equal(t, QuadrantFor(urgency, importance), task.Quadrant)
			assert.Equal(t, PriorityScore(urgency, importance, task.Quadrant), task.PriorityScore)
		}
	}
}
