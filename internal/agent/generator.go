package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"fdassist/internal/log"
)

// fallbackResponse is returned when the model produces an empty reply.
const fallbackResponse = "I was unable to generate a response. Please try rephrasing your question."

// generateFn matches the signature of genkit.Generate. Tests substitute a fake.
type generateFn func(ctx context.Context, g *genkit.Genkit, opts ...ai.GenerateOption) (*ai.ModelResponse, error)

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Genkit      *genkit.Genkit
	ModelName   string
	RateLimiter *rate.Limiter // nil gets a default limiter
	Retry       RetryConfig   // zero value gets DefaultRetryConfig
	Logger      log.Logger
}

func (c *GeneratorConfig) validate() error {
	if c.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if c.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Generator issues model calls with rate limiting and retry. The LLM
// specialists share one Generator so the rate limit applies across the
// whole pipeline.
type Generator struct {
	g           *genkit.Genkit
	modelName   string
	rateLimiter *rate.Limiter
	retryConfig RetryConfig
	logger      log.Logger
	generate    generateFn
}

// NewGenerator creates a Generator from the config, filling in defaults
// for the limiter, retry policy, and logger.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = rate.NewLimiter(10, 30)
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Generator{
		g:           cfg.Genkit,
		modelName:   cfg.ModelName,
		rateLimiter: cfg.RateLimiter,
		retryConfig: cfg.Retry,
		logger:      cfg.Logger,
		generate:    genkit.Generate,
	}, nil
}

// Generate runs one model call and returns the response text. An empty
// model reply yields a fallback message rather than an error.
func (gen *Generator) Generate(ctx context.Context, opts ...ai.GenerateOption) (string, error) {
	all := make([]ai.GenerateOption, 0, len(opts)+1)
	all = append(all, ai.WithModelName(gen.modelName))
	all = append(all, opts...)

	resp, err := gen.executeWithRetry(ctx, all)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		gen.logger.Warn("model returned empty response", "model", gen.modelName)
		return fallbackResponse, nil
	}
	return text, nil
}
