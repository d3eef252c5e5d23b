package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/classify"
	"github.com/taskwell/matrix-api/internal/domain"
	"github.com/taskwell/matrix-api/internal/realtime"
	"github.com/taskwell/matrix-api/internal/store"
)

// Common errors
var (
	ErrNilClassifier  = errors.New("classifier cannot be nil")
	ErrNilStore       = errors.New("task store cannot be nil")
	ErrNilBroadcaster = errors.New("broadcaster cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyOwnerID   = errors.New("owner ID cannot be empty")
)

// Classifier assesses a task description. Implementations never fail
// observably; they degrade to a default assessment instead.
type Classifier interface {
	Classify(ctx context.Context, description string) classify.Assessment
}

// reclassifyPayload represents the serialized data carried by the job.
type reclassifyPayload struct {
	TaskID  uuid.UUID `json:"task_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// ReclassifyJob implements the Job interface for reassessing a task's
// urgency and importance from its description and persisting the derived
// quadrant and priority score.
type ReclassifyJob struct {
	id          uuid.UUID
	taskID      uuid.UUID
	ownerID     uuid.UUID
	description string
	classifier  Classifier
	taskStore   store.TaskStore
	broadcaster realtime.Broadcaster
	logger      *slog.Logger
}

// NewReclassifyJob creates a reclassification job for the given task.
func NewReclassifyJob(
	taskID uuid.UUID,
	ownerID uuid.UUID,
	description string,
	classifier Classifier,
	taskStore store.TaskStore,
	broadcaster realtime.Broadcaster,
	logger *slog.Logger,
) (*ReclassifyJob, error) {
	if classifier == nil {
		return nil, ErrNilClassifier
	}
	if taskStore == nil {
		return nil, ErrNilStore
	}
	if broadcaster == nil {
		return nil, ErrNilBroadcaster
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if ownerID == uuid.Nil {
		return nil, ErrEmptyOwnerID
	}

	return &ReclassifyJob{
		id:          uuid.New(),
		taskID:      taskID,
		ownerID:     ownerID,
		description: description,
		classifier:  classifier,
		taskStore:   taskStore,
		broadcaster: broadcaster,
		logger:      logger.With("job_type", TypeReclassification, "task_id", taskID),
	}, nil
}

// ID returns the job's unique identifier.
func (j *ReclassifyJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier.
func (j *ReclassifyJob) Type() string {
	return TypeReclassification
}

// Payload returns the serialized job data.
func (j *ReclassifyJob) Payload() []byte {
	data, err := json.Marshal(reclassifyPayload{TaskID: j.taskID, OwnerID: j.ownerID})
	if err != nil {
		return nil
	}
	return data
}

// Execute assesses the description, persists the new ratings together with
// the quadrant and score derived from them, and notifies the owner's live
// sessions. A task deleted while the job was queued is not an error; the
// update simply has nothing left to apply to.
func (j *ReclassifyJob) Execute(ctx context.Context) error {
	assessment := j.classifier.Classify(ctx, j.description)

	urgency := domain.ClampRating(assessment.Urgency)
	importance := domain.ClampRating(assessment.Importance)
	quadrant := domain.QuadrantFor(urgency, importance)
	score := domain.PriorityScore(urgency, importance, quadrant)

	update := store.TaskUpdate{
		Urgency:       &urgency,
		Importance:    &importance,
		Quadrant:      &quadrant,
		PriorityScore: &score,
	}

	updated, err := j.taskStore.Update(ctx, j.taskID, j.ownerID, update)
	if err != nil {
		if store.IsNotFoundError(err) {
			j.logger.Info("task gone before reclassification applied")
			return nil
		}
		return fmt.Errorf("failed to apply reclassification: %w", err)
	}

	j.broadcaster.Publish(j.ownerID, realtime.NewTaskMessage(realtime.ActionUpdated, updated))

	j.logger.Info("task reclassified",
		"urgency", urgency,
		"importance", importance,
		"quadrant", quadrant,
		"priority_score", score,
		"rationale", assessment.Rationale)
	return nil
}
