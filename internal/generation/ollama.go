package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/DreamCats/docqa/internal/config"
)

// OllamaGenerator answers with a chat model served by a local Ollama instance
type OllamaGenerator struct {
	model       string
	temperature float64
	client      *api.Client
}

// NewOllamaGenerator creates a generator for the Ollama chat API
func NewOllamaGenerator(cfg *config.GeneratorConfig) (*OllamaGenerator, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultOllamaEndpoint
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOllamaChatModel
	}

	return &OllamaGenerator{
		model:       model,
		temperature: cfg.Temperature,
		client:      api.NewClient(base, http.DefaultClient),
	}, nil
}

// Generate sends prompt as a single user message and collects the full reply
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": g.temperature,
		},
		Stream: &stream,
	}

	var answer strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		answer.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classify("ollama", err)
	}

	return strings.TrimSpace(answer.String()), nil
}
