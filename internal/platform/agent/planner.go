package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/applyflow/applyflow-api/internal/platform/logger"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

// PlannerConfig holds the settings for the Gemini-backed planner.
type PlannerConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// ModelName selects the model, e.g. "gemini-2.0-flash".
	ModelName string

	// MaxRetries bounds retry attempts for transient API failures.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff between
	// retries.
	RetryDelay time.Duration
}

// Planner asks the Gemini API to turn a form inventory and candidate
// data into a FillPlan.
type Planner struct {
	client *genai.Client
	config PlannerConfig
	logger *slog.Logger
}

// NewPlanner creates a planner backed by the Gemini API.
func NewPlanner(ctx context.Context, config PlannerConfig, log *slog.Logger) (*Planner, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if config.ModelName == "" {
		return nil, errors.New("model name cannot be empty")
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Planner{
		client: client,
		config: config,
		logger: log.With(slog.String("component", "fill_planner")),
	}, nil
}

// Plan sends the prompt to the model and parses the returned fill plan.
// Transient API failures are retried with exponential backoff; a plan the
// model formats badly is not retried, the caller decides how to degrade.
func (p *Planner) Plan(ctx context.Context, prompt string) (*FillPlan, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}

	var text string
	backoff := retry.WithMaxRetries(uint64(p.config.MaxRetries), retry.NewExponential(p.config.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result, err := p.client.Models.GenerateContent(
			ctx,
			p.config.ModelName,
			genai.Text(prompt),
			genConfig,
		)
		if err != nil {
			log.Warn("model call failed, may retry",
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}

		text = result.Text()
		if text == "" {
			log.Warn("model returned empty response, may retry")
			return retry.RetryableError(ErrEmptyResponse)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fill planning failed: %w", err)
	}

	plan, err := ParsePlan(text)
	if err != nil {
		log.Error("failed to parse fill plan",
			slog.String("error", err.Error()),
			slog.Int("response_length", len(text)))
		return nil, err
	}

	log.Debug("fill plan generated",
		slog.Int("action_count", len(plan.Actions)),
		slog.Bool("needs_review", plan.NeedsReview))
	return plan, nil
}
