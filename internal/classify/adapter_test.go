package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdapterClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("empty description short-circuits without calling the analyzer", func(t *testing.T) {
		called := false
		analyzer := AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			called = true
			return Assessment{}, nil
		})
		adapter := NewAdapter(analyzer, time.Second, discardLogger())

		result := adapter.Classify(ctx, "")

		assert.False(t, called)
		assert.Equal(t, 2, result.Urgency)
		assert.Equal(t, 2, result.Importance)
		assert.Equal(t, "no description provided", result.Rationale)
	})

	t.Run("empty description is idempotent", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			return Assessment{}, errors.New("should not be called")
		}), time.Second, discardLogger())

		first := adapter.Classify(ctx, "")
		second := adapter.Classify(ctx, "")
		assert.Equal(t, first, second)
	})

	t.Run("successful analysis passes through", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			return Assessment{Urgency: 4, Importance: 4, Rationale: "deadline tomorrow"}, nil
		}), time.Second, discardLogger())

		result := adapter.Classify(ctx, "Due tomorrow, huge penalty if late")
		assert.Equal(t, Assessment{Urgency: 4, Importance: 4, Rationale: "deadline tomorrow"}, result)
	})

	t.Run("analyzer error degrades to defaults", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			return Assessment{}, errors.New("provider exploded")
		}), time.Second, discardLogger())

		result := adapter.Classify(ctx, "some description")
		assert.Equal(t, 2, result.Urgency)
		assert.Equal(t, 2, result.Importance)
		assert.Contains(t, result.Rationale, "analysis failed")
		assert.Contains(t, result.Rationale, "provider exploded")
	})

	t.Run("slow analyzer is cut off by the timeout", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			select {
			case <-ctx.Done():
				return Assessment{}, ctx.Err()
			case <-time.After(5 * time.Second):
				return Assessment{Urgency: 4, Importance: 4}, nil
			}
		}), 20*time.Millisecond, discardLogger())

		start := time.Now()
		result := adapter.Classify(ctx, "anything")
		require.Less(t, time.Since(start), time.Second)

		assert.Equal(t, 2, result.Urgency)
		assert.Contains(t, result.Rationale, "analysis failed")
	})

	t.Run("out-of-range ratings are clamped", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			return Assessment{Urgency: 9, Importance: -2, Rationale: "weird provider"}, nil
		}), time.Second, discardLogger())

		result := adapter.Classify(ctx, "anything")
		assert.Equal(t, 4, result.Urgency)
		assert.Equal(t, 1, result.Importance)
	})

	t.Run("missing rationale gets a default", func(t *testing.T) {
		adapter := NewAdapter(AnalyzerFunc(func(ctx context.Context, description string) (Assessment, error) {
			return Assessment{Urgency: 3, Importance: 2}, nil
		}), time.Second, discardLogger())

		result := adapter.Classify(ctx, "anything")
		assert.Equal(t, "analysis completed", result.Rationale)
	})
}
