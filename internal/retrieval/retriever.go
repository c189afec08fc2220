package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DreamCats/docqa/internal/chunk"
	"github.com/DreamCats/docqa/internal/index"
)

var (
	// ErrNoContext is returned when there is nothing to retrieve from.
	ErrNoContext = errors.New("no context available")
	// ErrEmptyQuery is returned for queries that are blank after trimming.
	ErrEmptyQuery = errors.New("empty query")
)

// Encoder turns texts into embedding vectors
type Encoder interface {
	Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error)
}

// Retriever maps a query to the most similar chunks of a collection
type Retriever struct {
	chunks   chunk.Collection
	encoder  Encoder
	index    index.Index
	defaultK int
}

// Result is one retrieved chunk with its similarity to the query
type Result struct {
	Chunk chunk.Chunk
	Score float32
}

// New creates a retriever over an index already built from chunks.
func New(chunks chunk.Collection, encoder Encoder, idx index.Index, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = 1
	}
	return &Retriever{
		chunks:   chunks,
		encoder:  encoder,
		index:    idx,
		defaultK: defaultK,
	}
}

// Build embeds every chunk, loads the vectors into idx and returns a retriever over them.
// An empty collection builds an empty index without calling the encoder.
func Build(ctx context.Context, chunks chunk.Collection, encoder Encoder, idx index.Index, defaultK int) (*Retriever, error) {
	var vectors [][]float32
	if len(chunks) > 0 {
		var err error
		vectors, err = encoder.Encode(ctx, chunks.Texts(), true)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
	}
	return FromVectors(chunks, vectors, encoder, idx, defaultK)
}

// FromVectors loads precomputed chunk vectors into idx. vectors[i] must be
// the normalized embedding of chunks[i].
func FromVectors(chunks chunk.Collection, vectors [][]float32, encoder Encoder, idx index.Index, defaultK int) (*Retriever, error) {
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d chunk embeddings, got %d", len(chunks), len(vectors))
	}

	if err := idx.Build(vectors); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	return New(chunks, encoder, idx, defaultK), nil
}

// Len returns the number of retrievable chunks
func (r *Retriever) Len() int {
	return len(r.chunks)
}

// DefaultK returns the number of chunks retrieved when no k is given
func (r *Retriever) DefaultK() int {
	return r.defaultK
}

// Retrieve returns up to k chunks ordered by descending similarity to query.
// k <= 0 selects the default; k is clamped to the collection size.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if len(r.chunks) == 0 {
		return nil, ErrNoContext
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if k <= 0 {
		k = r.defaultK
	}
	if k > len(r.chunks) {
		k = len(r.chunks)
	}

	vectors, err := r.encoder.Encode(ctx, []string{query}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}

	hits, err := r.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	results := make([]Result, 0, len(hits))
	seen := make(map[int]bool, len(hits))
	for _, hit := range hits {
		c, ok := r.chunks.Get(hit.ID)
		if !ok {
			return nil, fmt.Errorf("index returned unknown chunk id %d (collection has %d)", hit.ID, len(r.chunks))
		}
		if seen[hit.ID] {
			return nil, fmt.Errorf("index returned chunk id %d twice", hit.ID)
		}
		seen[hit.ID] = true
		results = append(results, Result{Chunk: c, Score: hit.Score})
		if len(results) == k {
			break
		}
	}

	return results, nil
}

// JoinContext concatenates the texts of results in retrieval order, one per line.
func JoinContext(results []Result) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text()
	}
	return strings.Join(texts, "\n")
}
