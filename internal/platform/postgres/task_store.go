package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/platform/logger"
	"github.com/taskwell/matrix-api/internal/store"
)

// taskColumns is the canonical select list, kept in one place so every
// query scans the same shape.
const taskColumns = `id, owner_id, title, description, urgency, importance,
	quadrant, priority_score, status, task_kind, is_recurring,
	recurrence_pattern, recurrence_days, recurrence_end_date, due_date,
	due_time, parent_task_id, created_at, updated_at`

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	pinger pinger
	logger *slog.Logger
}

// pinger is the connectivity probe a root *sql.DB provides; transactions
// do not.
type pinger interface {
	PingContext(ctx context.Context) error
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
	if p, ok := db.(pinger); ok {
		s.pinger = p
	}
	return s
}

// WithTx returns a copy of the store that runs its statements on the given
// transaction. The health probe keeps using the root connection.
func (s *TaskStore) WithTx(tx *sql.Tx) *TaskStore {
	return &TaskStore{
		db:     tx,
		pinger: s.pinger,
		logger: s.logger,
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
// It validates the task, refreshes UpdatedAt and inserts the row.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// The store owns the update timestamp; callers cannot set it.
	task.UpdatedAt = time.Now().UTC()

	days, err := json.Marshal(task.RecurrenceDays)
	if err != nil {
		return fmt.Errorf("failed to encode recurrence days: %w", err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.Urgency,
		task.Importance,
		string(task.Quadrant),
		task.PriorityScore,
		string(task.Status),
		string(task.Kind),
		task.IsRecurring,
		string(task.RecurrencePattern),
		days,
		task.RecurrenceEndDate,
		task.DueDate,
		task.DueTime,
		task.ParentTaskID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()),
		slog.String("quadrant", string(task.Quadrant)))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound when no row matches (id, owner_id); an
// owner mismatch is indistinguishable from a missing task.
func (s *TaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List with the default ordering:
// priority_score descending, created_at descending as tie-break.
func (s *TaskStore) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY priority_score DESC, created_at DESC
	`
	return s.queryTasks(ctx, query, ownerID)
}

// Update implements store.TaskStore.Update.
// It builds a SET clause from the non-nil fields of the update, always
// refreshes updated_at, and returns the task as stored afterwards.
func (s *TaskStore) Update(
	ctx context.Context,
	id, ownerID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	assignments := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		appendSet("title", *update.Title)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Urgency != nil {
		appendSet("urgency", *update.Urgency)
	}
	if update.Importance != nil {
		appendSet("importance", *update.Importance)
	}
	if update.Quadrant != nil {
		appendSet("quadrant", string(*update.Quadrant))
	}
	if update.PriorityScore != nil {
		appendSet("priority_score", *update.PriorityScore)
	}
	if update.Status != nil {
		appendSet("status", string(*update.Status))
	}
	if update.Kind != nil {
		appendSet("task_kind", string(*update.Kind))
	}
	if update.IsRecurring != nil {
		appendSet("is_recurring", *update.IsRecurring)
	}
	if update.RecurrencePattern != nil {
		appendSet("recurrence_pattern", string(*update.RecurrencePattern))
	}
	if update.RecurrenceDays != nil {
		days, err := json.Marshal(*update.RecurrenceDays)
		if err != nil {
			return nil, fmt.Errorf("failed to encode recurrence days: %w", err)
		}
		appendSet("recurrence_days", days)
	}
	if update.RecurrenceEndDate != nil {
		appendSet("recurrence_end_date", *update.RecurrenceEndDate)
	}
	if update.DueDate != nil {
		appendSet("due_date", *update.DueDate)
	}
	if update.DueTime != nil {
		appendSet("due_time", *update.DueTime)
	}
	if update.ParentTaskID != nil {
		appendSet("parent_task_id", *update.ParentTaskID)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING `+taskColumns,
		strings.Join(assignments, ", "), len(args)-1, len(args))

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
		}
		return nil, mapped
	}

	log.Debug("task updated",
		slog.String("task_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// ListDaily implements store.TaskStore.ListDaily: daily-kind tasks whose
// due date falls on the given calendar day.
func (s *TaskStore) ListDaily(
	ctx context.Context,
	ownerID uuid.UUID,
	day time.Time,
) ([]*domain.Task, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		  AND task_kind = $2
		  AND due_date >= $3
		  AND due_date < $4
		ORDER BY due_time, priority_score DESC
	`
	return s.queryTasks(ctx, query, ownerID, string(domain.TaskKindDaily), dayStart, dayEnd)
}

// ListMonthly implements store.TaskStore.ListMonthly: monthly-kind tasks
// due inside the window, plus recurring tasks with no end date or an end
// date at or after the window start. Capped at store.MonthlyViewLimit.
func (s *TaskStore) ListMonthly(
	ctx context.Context,
	ownerID uuid.UUID,
	window store.MonthWindow,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		  AND task_kind = $2
		  AND (
			(due_date >= $3 AND due_date <= $4)
			OR (is_recurring AND (recurrence_end_date IS NULL OR recurrence_end_date >= $3))
		  )
		ORDER BY due_date NULLS LAST, priority_score DESC
		LIMIT $5
	`
	return s.queryTasks(ctx, query,
		ownerID, string(domain.TaskKindMonthly),
		window.Start, window.End, store.MonthlyViewLimit)
}

// Ping implements store.TaskStore.Ping for the health probe.
func (s *TaskStore) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return fmt.Errorf("%w: no ping-capable connection", store.ErrUnavailable)
	}
	if err := s.pinger.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// queryTasks runs a multi-row query and scans the result set.
func (s *TaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row in taskColumns order into a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		quadrant    string
		status      string
		kind        string
		pattern     string
		daysJSON    []byte
		description sql.NullString
		dueTime     sql.NullString
		endDate     sql.NullTime
		dueDate     sql.NullTime
		parentID    uuid.NullUUID
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&task.Urgency,
		&task.Importance,
		&quadrant,
		&task.PriorityScore,
		&status,
		&kind,
		&task.IsRecurring,
		&pattern,
		&daysJSON,
		&endDate,
		&dueDate,
		&dueTime,
		&parentID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Quadrant = domain.Quadrant(quadrant)
	task.Status = domain.TaskStatus(status)
	task.Kind = domain.TaskKind(kind)
	task.RecurrencePattern = domain.RecurrencePattern(pattern)
	task.DueTime = dueTime.String

	if endDate.Valid {
		t := endDate.Time.UTC()
		task.RecurrenceEndDate = &t
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	if parentID.Valid {
		id := parentID.UUID
		task.ParentTaskID = &id
	}

	task.RecurrenceDays = []int{}
	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &task.RecurrenceDays); err != nil {
			return nil, fmt.Errorf("failed to decode recurrence days: %w", err)
		}
	}

	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}
