package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/events"
)

// JobFactory creates jobs from classification request parameters.
type JobFactory interface {
	CreateJob(taskID, ownerID uuid.UUID, description string) (Job, error)
}

// EventHandler bridges the in-process event emitter to the job queue: it
// turns classification request events into reclassification jobs and
// enqueues them.
type EventHandler struct {
	factory JobFactory
	queue   QueueWriter
	logger  *slog.Logger
}

// NewEventHandler creates an event handler that uses the given factory to
// create jobs and submits them to the provided queue.
func NewEventHandler(factory JobFactory, queue QueueWriter, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		factory: factory,
		queue:   queue,
		logger:  logger.With("component", "task_event_handler"),
	}
}

// HandleEvent processes classification request events by creating and
// enqueueing a reclassification job. Events of any other type are ignored.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeClassificationRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.ClassificationRequestedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	job, err := h.factory.CreateJob(payload.TaskID, payload.OwnerID, payload.Description)
	if err != nil {
		h.logger.Error("failed to create job",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create job: %w", err)
	}

	if err := h.queue.Enqueue(job); err != nil {
		h.logger.Error("failed to enqueue job",
			"error", err,
			"job_id", job.ID(),
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	h.logger.Debug("job created and enqueued",
		"job_id", job.ID(),
		"task_id", payload.TaskID,
		"event_id", event.ID)
	return nil
}

// Ensure EventHandler implements events.Handler
var _ events.Handler = (*EventHandler)(nil)
