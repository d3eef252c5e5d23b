package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/matrix-api/internal/domain"
)

// MonthlyViewLimit caps the monthly projection result set so a runaway
// recurring-task query can never produce an unbounded payload.
const MonthlyViewLimit = 500

// TaskUpdate describes a partial update to a task. Nil fields are left
// unchanged. Quadrant and PriorityScore are populated by the service layer
// when (and only when) Urgency or Importance is part of the change set;
// callers outside the service never set them.
type TaskUpdate struct {
	Title       *string
	Description *string

	Urgency       *int
	Importance    *int
	Quadrant      *domain.Quadrant
	PriorityScore *int

	Status *domain.TaskStatus
	Kind   *domain.TaskKind

	IsRecurring       *bool
	RecurrencePattern *domain.RecurrencePattern
	RecurrenceDays    *[]int
	RecurrenceEndDate *time.Time
	DueDate           *time.Time
	DueTime           *string
	ParentTaskID      *uuid.UUID
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil &&
		u.Urgency == nil && u.Importance == nil &&
		u.Quadrant == nil && u.PriorityScore == nil &&
		u.Status == nil && u.Kind == nil &&
		u.IsRecurring == nil && u.RecurrencePattern == nil &&
		u.RecurrenceDays == nil && u.RecurrenceEndDate == nil &&
		u.DueDate == nil && u.DueTime == nil && u.ParentTaskID == nil
}

// TouchesRatings reports whether the update changes urgency or importance,
// which is what decides whether quadrant and score must be recomputed.
func (u TaskUpdate) TouchesRatings() bool {
	return u.Urgency != nil || u.Importance != nil
}

// MonthWindow is a [start, end] calendar month range in UTC.
type MonthWindow struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// NewMonthWindow builds the window covering the given calendar month,
// from midnight on the 1st through the last second of the final day.
func NewMonthWindow(year int, month time.Month) MonthWindow {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return MonthWindow{
		Year:  year,
		Month: month,
		Start: start,
		End:   end,
	}
}

// Days returns the number of days in the window's month.
func (w MonthWindow) Days() int {
	return w.Start.AddDate(0, 1, -1).Day()
}

// TaskStore defines the interface for task data persistence.
// Every operation is owner-scoped: id lookups match on (id, owner_id) and a
// mismatch behaves exactly like a missing row (ErrTaskNotFound).
type TaskStore interface {
	// Create saves a new task. The store sets UpdatedAt itself.
	// Returns ErrInvalidEntity wrapped around domain validation errors,
	// or ErrUnavailable when the database cannot be reached.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by id under the given owner.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// List returns all tasks of an owner ordered by priority_score
	// descending, created_at descending as the tie-break.
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial update and returns the updated task.
	// The store refreshes UpdatedAt itself; callers cannot override it.
	// Returns ErrTaskNotFound if no such task exists for that owner.
	Update(ctx context.Context, id, ownerID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes a task. Returns ErrTaskNotFound if no such task
	// exists for that owner.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// ListDaily returns tasks of kind daily whose due date falls on the
	// given calendar day (UTC), ordered by due time.
	ListDaily(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]*domain.Task, error)

	// ListMonthly returns tasks of kind monthly that are either due inside
	// the window, or recurring with no end date, or recurring with an end
	// date at or after the window start. Ordered by due date, capped at
	// MonthlyViewLimit rows.
	ListMonthly(ctx context.Context, ownerID uuid.UUID, window MonthWindow) ([]*domain.Task, error)

	// Ping probes store connectivity for the health endpoint.
	Ping(ctx context.Context) error
}
