package service

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/classify"
	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/events"
	"github.com/taskwell/matrix-api/internal/realtime"
	"github.com/taskwell/matrix-api/internal/store"
)

// Classifier assesses a task description synchronously. Used only by the
// explicit reanalyze operation; the create/update pipeline goes through the
// background queue instead.
type Classifier interface {
	Classify(ctx context.Context, description string) classify.Assessment
}

// CreateTaskInput carries the client-provided fields for a new task.
// Urgency and importance of zero mean "not provided" and fall back to the
// domain default; quadrant and score are always derived server-side.
type CreateTaskInput struct {
	Title       string
	Description string
	Urgency     int
	Importance  int

	Status domain.TaskStatus
	Kind   domain.TaskKind

	IsRecurring       bool
	RecurrencePattern domain.RecurrencePattern
	RecurrenceDays    []int
	RecurrenceEndDate *time.Time
	DueDate           *time.Time
	DueTime           string
	ParentTaskID      *uuid.UUID
}

// UpdateTaskInput carries a partial edit. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Urgency     *int
	Importance  *int

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

// HealthStatus reports store connectivity for the health endpoint.
type HealthStatus struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
	Error             string `json:"error,omitempty"`
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask validates and persists a new task, notifies the owner's
	// live sessions, and schedules background reclassification when a
	// description is present. The returned task reflects the initial
	// persist, not the eventual reclassification.
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a single task scoped to the owner.
	GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// ListTasks returns the owner's tasks ordered by priority score.
	// A store failure degrades to an empty list.
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// UpdateTask applies a partial edit. Quadrant and score are recomputed
	// only when urgency or importance is part of the change set.
	UpdateTask(ctx context.Context, id, ownerID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)

	// DeleteTask removes a task and notifies live sessions with an
	// id-only payload.
	DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error

	// ReanalyzeTask runs classification synchronously and persists the
	// result. Fails with ErrNoDescription when there is nothing to analyze.
	ReanalyzeTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// DailyView returns daily-kind tasks due on the given calendar day.
	DailyView(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]*domain.Task, error)

	// MonthlyView returns monthly-kind tasks for the given month, including
	// recurring tasks whose recurrence reaches into it.
	MonthlyView(ctx context.Context, ownerID uuid.UUID, year, month int) ([]*domain.Task, error)

	// MonthlyAnalytics aggregates the monthly view into dashboard counts.
	MonthlyAnalytics(ctx context.Context, ownerID uuid.UUID, year, month int) (*TaskAnalytics, error)

	// Health probes store connectivity.
	Health(ctx context.Context) HealthStatus
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore   store.TaskStore
	broadcaster realtime.Broadcaster
	emitter     events.Emitter
	classifier  Classifier
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	broadcaster realtime.Broadcaster,
	emitter events.Emitter,
	classifier Classifier,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if broadcaster == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "broadcaster cannot be nil"}
	}
	if emitter == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if classifier == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "classifier cannot be nil"}
	}
	if logger == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "logger cannot be nil"}
	}

	return &taskServiceImpl{
		taskStore:   taskStore,
		broadcaster: broadcaster,
		emitter:     emitter,
		classifier:  classifier,
		logger:      logger.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, input.Title, input.Description, input.Urgency, input.Importance)
	if err != nil {
		return nil, err
	}

	if input.Status != "" {
		task.Status = input.Status
	}
	if input.Kind != "" {
		task.Kind = input.Kind
	}
	task.IsRecurring = input.IsRecurring
	if input.RecurrencePattern != "" {
		task.RecurrencePattern = input.RecurrencePattern
	}
	if input.RecurrenceDays != nil {
		task.RecurrenceDays = input.RecurrenceDays
	}
	task.RecurrenceEndDate = input.RecurrenceEndDate
	task.DueDate = input.DueDate
	task.DueTime = input.DueTime
	task.ParentTaskID = input.ParentTaskID

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if store.IsUnavailableError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	s.broadcaster.Publish(ownerID, realtime.NewTaskMessage(realtime.ActionCreated, task))
	s.scheduleClassification(ctx, task)

	s.logger.Debug("task created",
		"task_id", task.ID,
		"owner_id", ownerID,
		"quadrant", task.Quadrant,
		"priority_score", task.PriorityScore)
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, ownerID)
	if err != nil {
		// Read paths prefer an empty result over an error so the primary
		// view stays usable during transient backend trouble.
		s.logger.Warn("task list failed, returning empty result",
			"error", err, "owner_id", ownerID)
		return []*domain.Task{}, nil
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id, ownerID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	update := store.TaskUpdate{
		Title:             input.Title,
		Description:       input.Description,
		Urgency:           input.Urgency,
		Importance:        input.Importance,
		Status:            input.Status,
		Kind:              input.Kind,
		IsRecurring:       input.IsRecurring,
		RecurrencePattern: input.RecurrencePattern,
		RecurrenceDays:    input.RecurrenceDays,
		RecurrenceEndDate: input.RecurrenceEndDate,
		DueDate:           input.DueDate,
		DueTime:           input.DueTime,
		ParentTaskID:      input.ParentTaskID,
	}

	if update.Empty() {
		return s.GetTask(ctx, id, ownerID)
	}

	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	// Quadrant and score are recomputed only when a rating is part of the
	// edit; a status-only change is a single field write.
	if update.TouchesRatings() {
		current, err := s.GetTask(ctx, id, ownerID)
		if err != nil {
			return nil, err
		}

		urgency := current.Urgency
		importance := current.Importance
		if input.Urgency != nil {
			urgency = domain.ClampRating(*input.Urgency)
		}
		if input.Importance != nil {
			importance = domain.ClampRating(*input.Importance)
		}

		quadrant := domain.QuadrantFor(urgency, importance)
		score := domain.PriorityScore(urgency, importance, quadrant)
		update.Urgency = &urgency
		update.Importance = &importance
		update.Quadrant = &quadrant
		update.PriorityScore = &score
	}

	updated, err := s.taskStore.Update(ctx, id, ownerID, update)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	s.broadcaster.Publish(ownerID, realtime.NewTaskMessage(realtime.ActionUpdated, updated))

	if input.Description != nil && *input.Description != "" {
		s.scheduleClassification(ctx, updated)
	}

	return updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, id, ownerID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	s.broadcaster.Publish(ownerID, realtime.NewDeletedMessage(id))
	s.logger.Debug("task deleted", "task_id", id, "owner_id", ownerID)
	return nil
}

func (s *taskServiceImpl) ReanalyzeTask(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.GetTask(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if task.Description == "" {
		return nil, ErrNoDescription
	}

	assessment := s.classifier.Classify(ctx, task.Description)
	urgency := domain.ClampRating(assessment.Urgency)
	importance := domain.ClampRating(assessment.Importance)
	quadrant := domain.QuadrantFor(urgency, importance)
	score := domain.PriorityScore(urgency, importance, quadrant)

	updated, err := s.taskStore.Update(ctx, id, ownerID, store.TaskUpdate{
		Urgency:       &urgency,
		Importance:    &importance,
		Quadrant:      &quadrant,
		PriorityScore: &score,
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("reanalyze_task", "failed to save reclassification", err)
	}

	s.broadcaster.Publish(ownerID, realtime.NewTaskMessage(realtime.ActionUpdated, updated))

	s.logger.Info("task reanalyzed",
		"task_id", id,
		"quadrant", quadrant,
		"rationale", assessment.Rationale)
	return updated, nil
}

func (s *taskServiceImpl) DailyView(
	ctx context.Context,
	ownerID uuid.UUID,
	day time.Time,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListDaily(ctx, ownerID, day)
	if err != nil {
		s.logger.Warn("daily view failed, returning empty result",
			"error", err, "owner_id", ownerID)
		return []*domain.Task{}, nil
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *taskServiceImpl) MonthlyView(
	ctx context.Context,
	ownerID uuid.UUID,
	year, month int,
) ([]*domain.Task, error) {
	window, err := monthWindow(year, month)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskStore.ListMonthly(ctx, ownerID, window)
	if err != nil {
		s.logger.Warn("monthly view failed, returning empty result",
			"error", err, "owner_id", ownerID)
		return []*domain.Task{}, nil
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *taskServiceImpl) MonthlyAnalytics(
	ctx context.Context,
	ownerID uuid.UUID,
	year, month int,
) (*TaskAnalytics, error) {
	window, err := monthWindow(year, month)
	if err != nil {
		return nil, err
	}

	tasks, err := s.MonthlyView(ctx, ownerID, year, month)
	if err != nil {
		return nil, err
	}

	return ComputeAnalytics(window, tasks), nil
}

func (s *taskServiceImpl) Health(ctx context.Context) HealthStatus {
	if err := s.taskStore.Ping(ctx); err != nil {
		s.logger.Warn("health probe failed", "error", err)
		return HealthStatus{
			Status:            "error",
			DatabaseConnected: false,
			Error:             err.Error(),
		}
	}
	return HealthStatus{
		Status:            "ok",
		DatabaseConnected: true,
	}
}

// scheduleClassification emits the event that queues a background
// reclassification. Emission failures are logged and swallowed; the caller
// already has its answer and the task simply keeps its current ratings.
func (s *taskServiceImpl) scheduleClassification(ctx context.Context, task *domain.Task) {
	if task.Description == "" {
		return
	}

	event, err := events.NewEvent(events.EventTypeClassificationRequested,
		events.ClassificationRequestedPayload{
			TaskID:      task.ID,
			OwnerID:     task.OwnerID,
			Description: task.Description,
		})
	if err != nil {
		s.logger.Error("failed to build classification event",
			"error", err, "task_id", task.ID)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit classification event",
			"error", err, "task_id", task.ID)
	}
}

// validateUpdate checks the provided fields of a partial edit against the
// domain rules before anything touches the store.
func validateUpdate(input UpdateTaskInput) error {
	if input.Title != nil {
		if *input.Title == "" {
			return domain.ErrTaskTitleEmpty
		}
		if utf8.RuneCountInString(*input.Title) > domain.MaxTitleLength {
			return domain.ErrTaskTitleTooLong
		}
	}
	if input.Description != nil && utf8.RuneCountInString(*input.Description) > domain.MaxDescriptionLength {
		return domain.ErrTaskDescriptionTooLong
	}
	if input.Status != nil && !input.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if input.Kind != nil && !input.Kind.Valid() {
		return domain.ErrInvalidKind
	}
	if input.RecurrencePattern != nil && !input.RecurrencePattern.Valid() {
		return domain.ErrInvalidRecurrence
	}
	if input.DueTime != nil && *input.DueTime != "" && !domain.ValidDueTime(*input.DueTime) {
		return domain.ErrTaskDueTimeInvalid
	}
	return nil
}

// monthWindow validates the requested period and builds its window.
func monthWindow(year, month int) (store.MonthWindow, error) {
	if year < 1 || month < 1 || month > 12 {
		return store.MonthWindow{}, ErrInvalidPeriod
	}
	return store.NewMonthWindow(year, time.Month(month)), nil
}
