package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/DreamCats/docqa/internal/config"
)

// OllamaClient implements Client for a local Ollama server
type OllamaClient struct {
	model      string
	dimensions int
	client     *api.Client
}

// NewOllamaClient creates a new Ollama embedding client
func NewOllamaClient(cfg *config.EmbeddingConfig) (*OllamaClient, error) {
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
		model = config.DefaultOllamaEmbedModel
	}

	return &OllamaClient{
		model:      model,
		dimensions: cfg.Dimensions,
		client: api.NewClient(base, &http.Client{
			Timeout: 60 * time.Second,
		}),
	}, nil
}

// Embed generates an embedding for a single text
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings request failed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	if c.dimensions == 0 {
		c.dimensions = len(embedding)
	}
	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts, one request per text
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))
	for i, text := range texts {
		embedding, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		results = append(results, embedding)
	}
	return results, nil
}

// Dimensions returns the configured dimension, or the one observed on the
// first response when none was configured.
func (c *OllamaClient) Dimensions() int {
	return c.dimensions
}
