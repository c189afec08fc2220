package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DreamCats/docqa/internal/index"
)

func newTestIndex(t *testing.T) *VectorIndex {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewVectorIndex(db)
}

func TestVectorIndex_MatchesFlat(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
		{1, 0, 0},
		{0, 0, 1},
	}
	queries := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
		{0, 0, -1},
	}

	sqliteIdx := newTestIndex(t)
	if err := sqliteIdx.Build(vectors); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	flat := index.NewFlat()
	if err := flat.Build(vectors); err != nil {
		t.Fatalf("Flat.Build() error = %v", err)
	}

	for _, q := range queries {
		for _, k := range []int{1, 3, 10} {
			want, _ := flat.Search(q, k)
			got, err := sqliteIdx.Search(q, k)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Search(%v, %d) = %v, want %v", q, k, got, want)
			}
		}
	}
}

func TestVectorIndex_Rebuild(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Build([][]float32{{1}, {2}, {3}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := idx.Build([][]float32{{1, 0}}); err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
	// rows from the first build must be gone
	hits, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ID != 0 {
		t.Errorf("Search() = %v, want only chunk 0", hits)
	}
}

func TestVectorIndex_NotBuilt(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, index.ErrNotBuilt) {
		t.Errorf("Search() error = %v, want ErrNotBuilt", err)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out, err := blobToVector(vectorToBlob(in))
	if err != nil {
		t.Fatalf("blobToVector() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}

	if _, err := blobToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}
