// Package generation builds grounded prompts and sends them to a hosted language model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go"

	"github.com/DreamCats/docqa/internal/config"
)

// Generator turns a prompt into an answer
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ServiceError wraps a failure reported by, or on the way to, the model provider.
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generator %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generator %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Transient reports whether asking again later could succeed:
// network failures, timeouts, 408, 429 and 5xx responses.
func (e *ServiceError) Transient() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	}
	return false
}

// New creates the generator selected by cfg, wrapped with the configured per-call timeout.
func New(cfg *config.GeneratorConfig, apiKey string) (Generator, error) {
	var gen Generator
	var err error

	switch cfg.Provider {
	case "gemini", "openai":
		gen, err = NewOpenAIGenerator(cfg, apiKey)
	case "ollama":
		gen, err = NewOllamaGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return WithTimeout(gen, cfg.Provider, cfg.Timeout), nil
}

type timeoutGenerator struct {
	next     Generator
	provider string
	timeout  time.Duration
}

// WithTimeout bounds every Generate call of next by timeout. Expiry is
// reported as a transient *ServiceError. A zero timeout disables the bound.
func WithTimeout(next Generator, provider string, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, provider: provider, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	answer, err := g.next.Generate(callCtx, prompt)
	if err == nil {
		return answer, nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return "", err
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", &ServiceError{
			Provider: g.provider,
			Err:      fmt.Errorf("no answer within %s: %w", g.timeout, err),
		}
	}
	return "", err
}

// classify wraps a provider error as a *ServiceError carrying the HTTP
// status when one is known. Caller cancellation is returned unchanged.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	svcErr := &ServiceError{Provider: provider, Err: err}

	var apiErr *openai.Error
	var statusErr api.StatusError
	switch {
	case errors.As(err, &apiErr):
		svcErr.StatusCode = apiErr.StatusCode
	case errors.As(err, &statusErr):
		svcErr.StatusCode = statusErr.StatusCode
	}
	return svcErr
}
