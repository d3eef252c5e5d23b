// Package gemini implements the classify.Analyzer interface using
// Google's Gemini API to rate task descriptions for urgency and importance.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/taskwell/matrix-api/internal/classify"
	"github.com/taskwell/matrix-api/internal/config"
)

// promptTemplate asks for a strict two-field numeric JSON object. The
// wording mirrors the scales the product exposes (1-4 on both axes).
const promptTemplate = `Analyze the following task and rate it on two scales from 1 to 4:

Task: %s

Rate the task on:
1. Urgency (1=Not urgent, 2=Somewhat urgent, 3=Urgent, 4=Very urgent)
2. Importance (1=Not important, 2=Somewhat important, 3=Important, 4=Very important)

Consider:
- Urgency: deadlines, time-sensitive nature, immediate consequences
- Importance: long-term impact, strategic value, alignment with goals

Respond ONLY in this exact JSON format:
{"urgency": <number 1-4>, "importance": <number 1-4>, "reasoning": "<brief explanation>"}`

// responseSchema is the expected shape of the model output.
type responseSchema struct {
	Urgency    *int   `json:"urgency"`
	Importance *int   `json:"importance"`
	Reasoning  string `json:"reasoning"`
}

// Analyzer implements classify.Analyzer against the Gemini API.
type Analyzer struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// Ensure Analyzer implements classify.Analyzer.
var _ classify.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates a Gemini-backed Analyzer with the provided
// configuration. Returns classify.ErrInvalidConfig when required settings
// are missing.
func NewAnalyzer(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Analyzer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", classify.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", classify.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", classify.ErrInvalidConfig, err)
	}

	return &Analyzer{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Analyze implements classify.Analyzer. It sends a bounded prompt to the
// model, retrying transient failures with exponential backoff, and parses
// the JSON response into an Assessment. Rating values are returned as-is;
// clamping is the classify.Adapter's job.
func (a *Analyzer) Analyze(ctx context.Context, description string) (classify.Assessment, error) {
	if description == "" {
		return classify.Assessment{}, classify.ErrEmptyDescription
	}

	prompt := fmt.Sprintf(promptTemplate, description)

	maxRetries := a.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		a.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		assessment, err := a.callOnce(ctx, prompt)
		if err == nil {
			return assessment, nil
		}
		lastErr = err

		// Malformed payloads never improve on retry.
		if errors.Is(err, classify.ErrInvalidResponse) {
			return classify.Assessment{}, err
		}

		a.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if attempt == maxRetries {
			break
		}

		// Exponential backoff with jitter between transient failures.
		backoff := float64(time.Second) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return classify.Assessment{}, fmt.Errorf("%w: %v", classify.ErrTransientFailure, ctx.Err())
		}
	}

	return classify.Assessment{}, fmt.Errorf("%w: %v", classify.ErrTransientFailure, lastErr)
}

// callOnce performs a single GenerateContent round trip.
func (a *Analyzer) callOnce(ctx context.Context, prompt string) (classify.Assessment, error) {
	resp, err := a.client.Models.GenerateContent(
		ctx,
		a.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.3),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return classify.Assessment{}, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return classify.Assessment{}, fmt.Errorf("%w: no content generated", classify.ErrInvalidResponse)
	}

	return parseResponse(resp.Text())
}

// parseResponse decodes the model output into an Assessment. It tolerates
// markdown code fences around the JSON but requires both numeric fields.
func parseResponse(text string) (classify.Assessment, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return classify.Assessment{}, fmt.Errorf("%w: empty response body", classify.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return classify.Assessment{}, fmt.Errorf("%w: %v", classify.ErrInvalidResponse, err)
	}

	if parsed.Urgency == nil || parsed.Importance == nil {
		return classify.Assessment{}, fmt.Errorf("%w: missing urgency or importance", classify.ErrInvalidResponse)
	}

	rationale := parsed.Reasoning
	if rationale == "" {
		rationale = "analysis completed"
	}

	return classify.Assessment{
		Urgency:    *parsed.Urgency,
		Importance: *parsed.Importance,
		Rationale:  rationale,
	}, nil
}

// stripCodeFence removes a surrounding ```json ... ``` or ``` ... ``` fence.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
