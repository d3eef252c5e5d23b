package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwell/matrix-api/internal/domain"
)

// DefaultTimeout bounds a single classification call when the adapter is
// constructed with a non-positive timeout.
const DefaultTimeout = 30 * time.Second

// defaultRationale is returned when there is nothing to classify.
const defaultRationale = "no description provided"

// Adapter wraps an Analyzer with the contract the pipeline depends on:
// classification is an enhancement, not a correctness requirement, so
// Classify never fails observably. Provider errors, timeouts and malformed
// payloads all degrade to the default assessment with a rationale naming
// the failure. Out-of-range ratings are clamped to [1,4] so the stored
// invariant holds regardless of provider behavior.
type Adapter struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAdapter creates an Adapter around the given analyzer.
// A nil logger falls back to slog.Default.
func NewAdapter(analyzer Analyzer, timeout time.Duration, logger *slog.Logger) *Adapter {
	if analyzer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("analyzer cannot be nil for Adapter")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		analyzer: analyzer,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "classify_adapter")),
	}
}

// DefaultAssessment is the fixed fallback used for empty descriptions and
// failed classifications.
func DefaultAssessment(rationale string) Assessment {
	if rationale == "" {
		rationale = defaultRationale
	}
	return Assessment{
		Urgency:    domain.DefaultRating,
		Importance: domain.DefaultRating,
		Rationale:  rationale,
	}
}

// Classify rates the given description. It never returns an error:
//   - An empty description short-circuits to the default assessment
//     without touching the provider.
//   - Provider failure of any kind degrades to the default assessment
//     with a rationale describing the failure.
//   - Ratings outside [1,4] are clamped.
func (a *Adapter) Classify(ctx context.Context, description string) Assessment {
	if description == "" {
		return DefaultAssessment("")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.analyzer.Analyze(callCtx, description)
	if err != nil {
		a.logger.Warn("classification degraded to defaults",
			slog.String("error", err.Error()),
			slog.Int("description_length", len(description)))
		return DefaultAssessment(fmt.Sprintf("analysis failed: %v", err))
	}

	result.Urgency = domain.ClampRating(result.Urgency)
	result.Importance = domain.ClampRating(result.Importance)
	if result.Rationale == "" {
		result.Rationale = "analysis completed"
	}
	return result
}
