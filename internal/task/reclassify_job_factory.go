package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskwell/matrix-api/internal/realtime"
	"github.com/taskwell/matrix-api/internal/store"
)

// ReclassifyJobFactory creates ReclassifyJob instances with their shared
// dependencies already bound.
type ReclassifyJobFactory struct {
	classifier  Classifier
	taskStore   store.TaskStore
	broadcaster realtime.Broadcaster
	logger      *slog.Logger
}

// NewReclassifyJobFactory creates a new factory for reclassification jobs.
func NewReclassifyJobFactory(
	classifier Classifier,
	taskStore store.TaskStore,
	broadcaster realtime.Broadcaster,
	logger *slog.Logger,
) *ReclassifyJobFactory {
	return &ReclassifyJobFactory{
		classifier:  classifier,
		taskStore:   taskStore,
		broadcaster: broadcaster,
		logger:      logger.With("component", "reclassify_job_factory"),
	}
}

// CreateJob creates a new reclassification job for the specified task.
func (f *ReclassifyJobFactory) CreateJob(taskID, ownerID uuid.UUID, description string) (Job, error) {
	job, err := NewReclassifyJob(
		taskID,
		ownerID,
		description,
		f.classifier,
		f.taskStore,
		f.broadcaster,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
