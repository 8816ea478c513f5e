// Package llm provides the bounded, retrying gateway over a text
// generation backend. Providers (Anthropic, OpenAI-compatible, mock)
// implement a single non-streaming call; the gateway adds retry with
// exponential backoff, a concurrency budget, and error classification.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/config"
)

// Provider is a text-generation backend. Implementations classify their
// failures with the agent error taxonomy so the gateway can decide
// retry eligibility.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *agent.GenerateRequest) (string, error)
	Close() error
}

// Gateway implements agent.LLMClient: at most MaxConcurrent in-flight
// provider calls (additional callers queue on the semaphore), bounded
// retries with exponential backoff on transient failures.
type Gateway struct {
	provider    Provider
	slots       *semaphore.Weighted
	maxAttempts int
	retryBase   time.Duration
	defaults    agent.GenerateRequest
	logger      *slog.Logger
}

// NewGateway wraps provider with the configured budget and retry policy.
func NewGateway(provider Provider, cfg *config.LLMConfig) *Gateway {
	return &Gateway{
		provider:    provider,
		slots:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBase,
		defaults: agent.GenerateRequest{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
		logger: slog.With("component", "llm_gateway", "provider", provider.Name()),
	}
}

// Generate implements agent.LLMClient.
func (g *Gateway) Generate(ctx context.Context, req *agent.GenerateRequest) (string, error) {
	if req == nil || req.Prompt == "" {
		return "", agent.Validationf("prompt is required")
	}

	effective := *req
	if effective.MaxTokens <= 0 {
		effective.MaxTokens = g.defaults.MaxTokens
	}
	if effective.Temperature <= 0 {
		effective.Temperature = g.defaults.Temperature
	}

	if err := g.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire llm slot: %w", err)
	}
	defer g.slots.Release(1)

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		text, err := g.provider.Generate(ctx, &effective)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !agent.IsRetryable(err) || attempt == g.maxAttempts {
			break
		}

		backoff := g.retryBase << (attempt - 1)
		g.logger.Warn("Transient LLM failure, retrying",
			"attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// Close implements agent.LLMClient.
func (g *Gateway) Close() error {
	return g.provider.Close()
}

// NewProvider builds the configured provider.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockProvider(), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
