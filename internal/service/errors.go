// Package service implements the task mutation pipeline: validation,
// persistence, derived-field recomputation, live notifications, and the
// scheduling of background reclassification.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates the task does not exist for the requesting
	// owner. A task owned by someone else is deliberately indistinguishable
	// from a missing one.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoDescription indicates a reanalysis was requested for a task
	// that has no description to analyze.
	ErrNoDescription = errors.New("task has no description to analyze")

	// ErrInvalidPeriod indicates a year/month query parameter outside the
	// accepted range.
	ErrInvalidPeriod = errors.New("invalid year or month")
)

// TaskServiceError wraps unexpected errors from the task service with
// operation context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// Known sentinel errors pass through unwrapped so errors.Is checks at the
// API layer keep working.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrNoDescription) ||
		errors.Is(err, ErrInvalidPeriod) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
