// Package task provides the in-process background job machinery: a bounded
// queue, a worker pool, and the reclassification job submitted after task
// mutations. Jobs are fire-and-forget; a failed or dropped job leaves the
// owning row at its current ratings and is rerun only by a later mutation or
// an explicit reanalyze request.
package task

import (
	"context"

	"github.com/google/uuid"
)

// TypeReclassification identifies the AI reclassification job.
const TypeReclassification = "reclassification"

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel, allowing workers
// to consume jobs without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// QueueWriter provides write access to the job queue, allowing services to
// enqueue jobs for processing.
type QueueWriter interface {
	// Enqueue adds a job to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()
}
