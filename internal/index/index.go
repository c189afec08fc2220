// Package index holds the similarity index contract and the flat in-memory backend.
package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotBuilt is returned by Search before Build has been called.
var ErrNotBuilt = errors.New("index not built")

// Hit is one search result: the position of a stored vector and its inner product with the query.
type Hit struct {
	ID    int
	Score float32
}

// Index stores vectors and answers exact top-k inner product queries.
// Hits are ordered by descending score, ties broken by lowest ID.
type Index interface {
	Build(vectors [][]float32) error
	Search(query []float32, k int) ([]Hit, error)
	Len() int
}

// Flat is an exhaustive inner product index held in memory.
type Flat struct {
	vectors [][]float32
	dim     int
	built   bool
}

// NewFlat creates an empty flat index.
func NewFlat() *Flat {
	return &Flat{}
}

// Build replaces the stored vectors. All vectors must share one dimension.
func (f *Flat) Build(vectors [][]float32) error {
	dim, err := CheckDimensions(vectors)
	if err != nil {
		return err
	}
	f.vectors = vectors
	f.dim = dim
	f.built = true
	return nil
}

// Search returns the k highest scoring vectors.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if !f.built {
		return nil, ErrNotBuilt
	}
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dim)
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{ID: i, Score: Dot(query, v)}
	}
	return TopK(hits, k), nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dot returns the inner product of two equal length vectors.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// TopK sorts hits by descending score, lowest ID first on ties, and keeps at most k.
func TopK(hits []Hit, k int) []Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// CheckDimensions verifies that every vector is non-empty and of the same length,
// returning that length (0 for no vectors).
func CheckDimensions(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return 0, fmt.Errorf("vector %d is empty", i)
		}
		if len(v) != dim {
			return 0, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return dim, nil
}
