package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/vec/search"

	"github.com/DreamCats/docqa/internal/config"
)

// Service provides embedding generation functionality
type Service struct {
	cfg    *config.EmbeddingConfig
	client Client
}

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// ServiceError wraps a failure reported by the embedding provider.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("embedding service %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying on the next query.
// Every provider failure qualifies; configuration problems never reach here.
func (e *ServiceError) Transient() bool {
	return true
}

// NewService creates a new embedding service. apiKey is only used by
// providers that authenticate.
func NewService(cfg *config.EmbeddingConfig, apiKey string) (*Service, error) {
	var client Client
	var err error

	switch cfg.Provider {
	case "ollama":
		client, err = NewOllamaClient(cfg)
	case "openai":
		client, err = NewOpenAIClient(cfg, apiKey)
	case "hash":
		client = NewHashClient(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return NewServiceWithClient(cfg, client), nil
}

// NewServiceWithClient wraps an existing client.
func NewServiceWithClient(cfg *config.EmbeddingConfig, client Client) *Service {
	return &Service{cfg: cfg, client: client}
}

// Encode embeds texts in order, optionally scaling every vector to unit length.
func (s *Service) Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error) {
	return s.EncodeBatches(ctx, texts, normalize, nil)
}

// EncodeBatches is Encode with a callback invoked after every batch with the
// number of texts embedded so far.
func (s *Service) EncodeBatches(ctx context.Context, texts []string, normalize bool, onBatch func(done int)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("cannot embed empty text at position %d", i)
		}
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultEmbeddingBatch
	}

	results := make([][]float32, 0, len(texts))
	dim := 0

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := s.client.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, &ServiceError{
				Provider: s.cfg.Provider,
				Err:      fmt.Errorf("failed to embed batch %d-%d: %w", i, end, err),
			}
		}
		if len(embeddings) != end-i {
			return nil, &ServiceError{
				Provider: s.cfg.Provider,
				Err:      fmt.Errorf("expected %d embeddings, got %d", end-i, len(embeddings)),
			}
		}

		for j, emb := range embeddings {
			if dim == 0 {
				dim = len(emb)
			}
			if len(emb) == 0 || len(emb) != dim {
				return nil, &ServiceError{
					Provider: s.cfg.Provider,
					Err:      fmt.Errorf("embedding %d has dimension %d, want %d", i+j, len(emb), dim),
				}
			}
			if normalize {
				emb = Normalize(emb)
			}
			results = append(results, emb)
		}

		if onBatch != nil {
			onBatch(end)
		}
	}

	return results, nil
}

// Dimensions returns the dimension of the embeddings
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}

// Provider returns the configured provider name.
func (s *Service) Provider() string {
	return s.cfg.Provider
}

// Normalize returns a copy of v scaled to unit length. Zero vectors are returned unchanged.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	magnitude := search.Float32s(v).Magnitude()
	if magnitude == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / magnitude
	}
	return out
}
