package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/DreamCats/docqa/internal/index"
)

// VectorIndex is an index.Index backed by the chunk_vectors table.
// Search scores every stored vector exactly.
type VectorIndex struct {
	db    *DB
	dim   int
	count int
	built bool
}

var _ index.Index = (*VectorIndex)(nil)

// NewVectorIndex creates a vector index on top of db
func NewVectorIndex(db *DB) *VectorIndex {
	return &VectorIndex{db: db}
}

// Build replaces the stored vectors in a single transaction.
// The position of each vector becomes its chunk_id.
func (v *VectorIndex) Build(vectors [][]float32) error {
	dim, err := index.CheckDimensions(vectors)
	if err != nil {
		return err
	}

	tx, err := v.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chunk_vectors"); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO chunk_vectors (chunk_id, vector, dimension) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, vector := range vectors {
		if _, err := stmt.Exec(i, vectorToBlob(vector), len(vector)); err != nil {
			return fmt.Errorf("failed to insert vector %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	v.dim = dim
	v.count = len(vectors)
	v.built = true
	return nil
}

// Search performs exact inner product search over all stored vectors
func (v *VectorIndex) Search(query []float32, k int) ([]index.Hit, error) {
	if !v.built {
		return nil, index.ErrNotBuilt
	}
	if v.count == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != v.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), v.dim)
	}

	rows, err := v.db.sqlDB.Query("SELECT chunk_id, vector FROM chunk_vectors ORDER BY chunk_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	hits := make([]index.Hit, 0, v.count)
	for rows.Next() {
		var id int
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		vector, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", id, err)
		}
		if len(vector) != len(query) {
			return nil, fmt.Errorf("chunk %d: stored dimension %d does not match query dimension %d", id, len(vector), len(query))
		}

		hits = append(hits, index.Hit{ID: id, Score: index.Dot(query, vector)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return index.TopK(hits, k), nil
}

// Len returns the number of vectors stored by the last Build
func (v *VectorIndex) Len() int {
	return v.count
}

// vectorToBlob converts a float32 slice to a little-endian binary blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:i*4+4], math.Float32bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to a float32 slice
func blobToVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob size %d is not a multiple of 4", len(blob))
	}

	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}

	return vector, nil
}
