package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/DreamCats/docqa/internal/config"
)

// OpenAIClient implements Client for OpenAI-compatible embedding APIs
type OpenAIClient struct {
	model      string
	dimensions int
	client     openai.Client
}

// NewOpenAIClient creates a new OpenAI embedding client. Extra request
// options are appended after the ones derived from cfg.
func NewOpenAIClient(cfg *config.EmbeddingConfig, apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIEmbedModel
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.Endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.Endpoint))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIClient{
		model:      model,
		dimensions: cfg.Dimensions,
		client:     openai.NewClient(reqOpts...),
	}, nil
}

// Embed generates an embedding for a single text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	}
	if c.dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.dimensions))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= len(texts) {
			return nil, fmt.Errorf("invalid embedding index: %d", data.Index)
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		embeddings[data.Index] = vec
	}

	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	if c.dimensions == 0 {
		c.dimensions = len(embeddings[0])
	}

	return embeddings, nil
}

// Dimensions returns the dimension of the embeddings
func (c *OpenAIClient) Dimensions() int {
	return c.dimensions
}
