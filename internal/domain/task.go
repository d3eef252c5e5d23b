package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task-specific validation errors.
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerIDEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task title exceeds 200 characters.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 200 characters")

	// ErrTaskDescriptionTooLong is returned when a description exceeds 1000 characters.
	ErrTaskDescriptionTooLong = errors.New("task description cannot exceed 1000 characters")

	// ErrTaskRatingOutOfRange is returned when urgency or importance falls
	// outside the [1,4] scale.
	ErrTaskRatingOutOfRange = errors.New("urgency and importance must be between 1 and 4")

	// ErrTaskDueTimeInvalid is returned when a due time is not HH:MM.
	ErrTaskDueTimeInvalid = errors.New("due time must be in HH:MM format")
)

// Field length limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// DefaultRating is the urgency/importance used when the client provides none
// and when classification degrades to its fallback.
const DefaultRating = 2

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskKind partitions tasks between the daily and monthly listing views.
type TaskKind string

// Possible task kinds.
const (
	TaskKindDaily   TaskKind = "daily"
	TaskKindMonthly TaskKind = "monthly"
)

// Valid reports whether the kind is daily or monthly.
func (k TaskKind) Valid() bool {
	return k == TaskKindDaily || k == TaskKindMonthly
}

// RecurrencePattern describes how a recurring task repeats.
type RecurrencePattern string

// Possible recurrence patterns.
const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Valid reports whether the pattern is one of the known values.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

var dueTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidDueTime reports whether s is an HH:MM clock time.
func ValidDueTime(s string) bool {
	return dueTimePattern.MatchString(s)
}

// Task is the sole entity of the system: a single to-do item owned by exactly
// one user, auto-classified into an Eisenhower quadrant. Quadrant and
// PriorityScore are derived from Urgency and Importance and are never set by
// clients directly.
type Task struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	Urgency       int      `json:"urgency"`
	Importance    int      `json:"importance"`
	Quadrant      Quadrant `json:"quadrant"`
	PriorityScore int      `json:"priority_score"`

	Status TaskStatus `json:"status"`
	Kind   TaskKind   `json:"task_kind"`

	IsRecurring       bool              `json:"is_recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern"`
	RecurrenceDays    []int             `json:"recurrence_days"`
	RecurrenceEndDate *time.Time        `json:"recurrence_end_date,omitempty"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	DueTime           string            `json:"due_time,omitempty"`
	ParentTaskID      *uuid.UUID        `json:"parent_task_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a Task owned by ownerID with derived quadrant and score
// computed from the given urgency and importance. Zero urgency/importance
// fall back to DefaultRating. Returns a validation error if any field is
// invalid.
func NewTask(ownerID uuid.UUID, title, description string, urgency, importance int) (*Task, error) {
	if urgency == 0 {
		urgency = DefaultRating
	}
	if importance == 0 {
		importance = DefaultRating
	}

	now := time.Now().UTC()
	task := &Task{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Title:             title,
		Description:       description,
		Urgency:           urgency,
		Importance:        importance,
		Status:            TaskStatusPending,
		Kind:              TaskKindMonthly,
		RecurrencePattern: RecurrenceNone,
		RecurrenceDays:    []int{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	task.Recompute()

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Recompute re-derives Quadrant and PriorityScore from the current Urgency
// and Importance. Call it whenever either rating changes so the derived
// fields are never stale.
func (t *Task) Recompute() {
	t.Quadrant = QuadrantFor(t.Urgency, t.Importance)
	t.PriorityScore = PriorityScore(t.Urgency, t.Importance, t.Quadrant)
}

// SetRatings applies new urgency/importance values (clamped to [1,4]) and
// recomputes the derived fields.
func (t *Task) SetRatings(urgency, importance int) {
	t.Urgency = ClampRating(urgency)
	t.Importance = ClampRating(importance)
	t.Recompute()
}

// Validate checks all task fields against the domain rules.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerIDEmpty
	}
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}
	// Limits count characters, not bytes, to match the request validators.
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	if t.Urgency < 1 || t.Urgency > 4 || t.Importance < 1 || t.Importance > 4 {
		return ErrTaskRatingOutOfRange
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if t.RecurrencePattern != "" && !t.RecurrencePattern.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.RecurrencePattern)
	}
	if t.DueTime != "" && !dueTimePattern.MatchString(t.DueTime) {
		return ErrTaskDueTimeInvalid
	}
	if !t.Quadrant.Valid() {
		return fmt.Errorf("%w: quadrant not derived", ErrValidation)
	}
	return nil
}
