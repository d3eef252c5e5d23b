// Package classify defines the boundary to the external text-classification
// capability. An Analyzer rates free text on the urgency/importance scales;
// the Adapter wraps an Analyzer with the timeout, clamping and
// default-on-failure policy the pipeline relies on.
package classify

import (
	"context"
	"errors"
)

// Common errors returned by Analyzer implementations.
var (
	// ErrEmptyDescription is returned when an analyzer is invoked with no text.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrInvalidResponse is returned when the provider response cannot be
	// parsed into the expected two-field numeric structure.
	ErrInvalidResponse = errors.New("invalid response from classification provider")

	// ErrTransientFailure is returned for temporary provider errors that
	// might resolve on retry.
	ErrTransientFailure = errors.New("transient classification failure")

	// ErrInvalidConfig is returned when the analyzer configuration is invalid.
	ErrInvalidConfig = errors.New("invalid classifier configuration")
)

// Assessment is the result of classifying a task description: both ratings
// on the 1-4 scale plus a human-readable rationale.
type Assessment struct {
	Urgency    int    `json:"urgency"`
	Importance int    `json:"importance"`
	Rationale  string `json:"rationale"`
}

// Analyzer is the opaque external text-classification capability: given free
// text, it returns an Assessment or fails. Implementations may return values
// outside [1,4]; the Adapter clamps them.
type Analyzer interface {
	Analyze(ctx context.Context, description string) (Assessment, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, description string) (Assessment, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, description string) (Assessment, error) {
	return f(ctx, description)
}
