package embedding

import (
	"context"
	"hash/fnv"

	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// DefaultHashDimensions is used when no dimension is configured for the hash provider.
const DefaultHashDimensions = 256

// HashClient is a deterministic local embedder based on feature hashing.
// Texts sharing words get similar vectors; no network access is needed.
type HashClient struct {
	dimensions int
}

// NewHashClient creates a hash embedder producing vectors of the given size.
func NewHashClient(dimensions int) *HashClient {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashClient{dimensions: dimensions}
}

// Embed hashes every token of text into a signed bucket.
func (c *HashClient) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, c.dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(c.dimensions))
		// high bit picks the sign so unrelated tokens tend to cancel
		if sum>>63 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently
func (c *HashClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = vec
	}
	return results, nil
}

// Dimensions returns the dimension of the embeddings
func (c *HashClient) Dimensions() int {
	return c.dimensions
}

// tokenAnalyzer lowercases unicode word tokens and drops English stop words.
var tokenAnalyzer = mapping.NewIndexMapping().AnalyzerNamed(standard.Name)

func tokenize(text string) []string {
	stream := tokenAnalyzer.Analyze([]byte(text))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}
