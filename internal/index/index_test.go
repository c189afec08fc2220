package index

import (
	"errors"
	"reflect"
	"testing"
)

func TestFlat_Search(t *testing.T) {
	idx := NewFlat()
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.6, 0.8},
		{1, 0}, // duplicate of 0, tie broken by ID
	}
	if err := idx.Build(vectors); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		name  string
		query []float32
		k     int
		ids   []int
	}{
		{name: "x axis", query: []float32{1, 0}, k: 2, ids: []int{0, 3}},
		{name: "y axis", query: []float32{0, 1}, k: 2, ids: []int{1, 2}},
		{name: "k larger than index", query: []float32{1, 0}, k: 10, ids: []int{0, 3, 2, 1}},
		{name: "k zero", query: []float32{1, 0}, k: 0, ids: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(tt.query, tt.k)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			var ids []int
			for _, h := range hits {
				ids = append(ids, h.ID)
			}
			if !reflect.DeepEqual(ids, tt.ids) {
				t.Errorf("Search() ids = %v, want %v", ids, tt.ids)
			}
		})
	}
}

func TestFlat_ScoresDescending(t *testing.T) {
	idx := NewFlat()
	_ = idx.Build([][]float32{{0.1}, {0.9}, {0.5}, {0.9}})

	hits, err := idx.Search([]float32{1}, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not descending at %d: %v", i, hits)
		}
		if hits[i].Score == hits[i-1].Score && hits[i].ID < hits[i-1].ID {
			t.Errorf("tie not broken by lowest ID at %d: %v", i, hits)
		}
	}
}

func TestFlat_Errors(t *testing.T) {
	idx := NewFlat()
	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Search() before Build error = %v, want ErrNotBuilt", err)
	}

	if err := idx.Build([][]float32{{1, 0}, {1}}); err == nil {
		t.Error("Build() expected error for mixed dimensions")
	}

	_ = idx.Build([][]float32{{1, 0}})
	if _, err := idx.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Error("Search() expected error for query dimension mismatch")
	}
}

func TestFlat_Empty(t *testing.T) {
	idx := NewFlat()
	if err := idx.Build(nil); err != nil {
		t.Fatalf("Build(nil) error = %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	hits, err := idx.Search([]float32{1}, 3)
	if err != nil || len(hits) != 0 {
		t.Errorf("Search() on empty index = %v, %v", hits, err)
	}
}
