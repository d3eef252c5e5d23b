// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a task status is not one of the
	// known status values.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidKind is returned when a task kind is not daily or monthly.
	ErrInvalidKind = errors.New("invalid task kind")

	// ErrInvalidRecurrence is returned when a recurrence pattern is not valid.
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")
)
