package indexer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DreamCats/docqa/internal/chunk"
	"github.com/DreamCats/docqa/internal/config"
	"github.com/DreamCats/docqa/internal/document"
	"github.com/DreamCats/docqa/internal/embedding"
	"github.com/DreamCats/docqa/internal/retrieval"
)

type countingEncoder struct {
	*embedding.Service
	calls int
}

func (c *countingEncoder) Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error) {
	c.calls++
	return c.Service.Encode(ctx, texts, normalize)
}

func (c *countingEncoder) EncodeBatches(ctx context.Context, texts []string, normalize bool, onBatch func(int)) ([][]float32, error) {
	c.calls++
	return c.Service.EncodeBatches(ctx, texts, normalize, onBatch)
}

func newEncoder() *countingEncoder {
	cfg := &config.EmbeddingConfig{Provider: "hash", BatchSize: 4}
	return &countingEncoder{Service: embedding.NewServiceWithClient(cfg, embedding.NewHashClient(4096))}
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "document.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

func testConfig(size, overlap int, backend string) *config.Config {
	cfg := config.Default()
	cfg.Chunking.Size = size
	cfg.Chunking.Overlap = overlap
	cfg.Index.Backend = backend
	cfg.Retrieval.TopK = 2
	return cfg
}

func TestBuild(t *testing.T) {
	text := "solar panels convert sunlight " +
		"wind turbines spin generators " +
		"medieval castles heavy stone"

	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			idx := New(testConfig(4, 0, backend), newEncoder(), Options{Output: io.Discard})
			corpus, err := idx.Build(context.Background(), writeDoc(t, text))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer corpus.Close()

			if len(corpus.Chunks) != 3 {
				t.Fatalf("got %d chunks, want 3", len(corpus.Chunks))
			}
			if corpus.Retriever.Len() != len(corpus.Chunks) {
				t.Errorf("retriever holds %d chunks, want %d", corpus.Retriever.Len(), len(corpus.Chunks))
			}

			results, err := corpus.Retriever.Retrieve(context.Background(), "heavy stone castles", 0)
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}
			if len(results) != 2 {
				t.Fatalf("got %d results, want 2", len(results))
			}
			if results[0].Chunk.ID != 2 {
				t.Errorf("top result = chunk %d (%q), want chunk 2", results[0].Chunk.ID, results[0].Chunk.Text())
			}
			// three of four words shared: 3/(sqrt(3)*2)
			if results[0].Score < 0.85 {
				t.Errorf("top score = %v, want about 0.866", results[0].Score)
			}
			if gap := results[0].Score - results[1].Score; gap < 0.5 {
				t.Errorf("score gap = %v, want the matching chunk well ahead", gap)
			}
		})
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	enc := newEncoder()
	idx := New(testConfig(150, 30, "memory"), enc, Options{Output: io.Discard})

	corpus, err := idx.Build(context.Background(), writeDoc(t, "  \n\t "))
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("Build() error = %v, want ErrEmptyCorpus", err)
	}
	if corpus == nil {
		t.Fatal("Build() should still return a corpus")
	}
	if len(corpus.Chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(corpus.Chunks))
	}

	if _, err := corpus.Retriever.Retrieve(context.Background(), "anything", 3); !errors.Is(err, retrieval.ErrNoContext) {
		t.Errorf("Retrieve() error = %v, want ErrNoContext", err)
	}
	if enc.calls != 0 {
		t.Errorf("encoder called %d times, want 0", enc.calls)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		idx := New(testConfig(150, 30, "memory"), newEncoder(), Options{Output: io.Discard})
		_, err := idx.Build(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, document.ErrNotFound) {
			t.Errorf("Build() error = %v, want document.ErrNotFound", err)
		}
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		idx := New(testConfig(5, 5, "memory"), newEncoder(), Options{Output: io.Discard})
		_, err := idx.Build(context.Background(), writeDoc(t, "a b c d e f g"))
		if !errors.Is(err, chunk.ErrInvalidConfiguration) {
			t.Errorf("Build() error = %v, want chunk.ErrInvalidConfiguration", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		idx := New(testConfig(5, 1, "faiss"), newEncoder(), Options{Output: io.Discard})
		if _, err := idx.Build(context.Background(), writeDoc(t, "a b c")); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

func TestNewIndex(t *testing.T) {
	for _, backend := range []string{"", "memory", "sqlite"} {
		idx, closer, err := NewIndex(backend)
		if err != nil {
			t.Fatalf("NewIndex(%q) error = %v", backend, err)
		}
		if idx == nil {
			t.Errorf("NewIndex(%q) returned nil index", backend)
		}
		if closer != nil {
			closer.Close()
		}
	}
}
