package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/DreamCats/docqa/internal/chunk"
	"github.com/DreamCats/docqa/internal/config"
	"github.com/DreamCats/docqa/internal/document"
	"github.com/DreamCats/docqa/internal/index"
	"github.com/DreamCats/docqa/internal/progress"
	"github.com/DreamCats/docqa/internal/retrieval"
	"github.com/DreamCats/docqa/internal/store"
)

// ErrEmptyCorpus is returned together with a usable Corpus when the
// document yields no chunks. Every query against it finds no context.
var ErrEmptyCorpus = errors.New("document produced no chunks")

// Encoder embeds texts in batches, reporting how many are done after each batch
type Encoder interface {
	retrieval.Encoder
	EncodeBatches(ctx context.Context, texts []string, normalize bool, onBatch func(done int)) ([][]float32, error)
}

// Corpus is everything the question loop reads: the document, its chunks
// and a retriever over their vectors. It is built once and not modified after.
type Corpus struct {
	Document  *document.Document
	Chunks    chunk.Collection
	Retriever *retrieval.Retriever

	closer io.Closer
}

// Close releases the index backend, if it holds any resources
func (c *Corpus) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Options tunes startup feedback
type Options struct {
	Progress bool      // draw a progress bar and spinner
	Output   io.Writer // destination for progress; defaults to stderr
}

// Indexer handles the startup pipeline: load, chunk, embed, index
type Indexer struct {
	cfg     *config.Config
	encoder Encoder
	opts    Options
}

// New creates a new indexer
func New(cfg *config.Config, encoder Encoder, opts Options) *Indexer {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Indexer{cfg: cfg, encoder: encoder, opts: opts}
}

// Build loads the document at path and makes it searchable. When the
// document has no words it returns the empty Corpus along with ErrEmptyCorpus.
func (idx *Indexer) Build(ctx context.Context, path string) (*Corpus, error) {
	startTime := time.Now()

	// Step 1: Load document
	log.Printf("Loading document %s", path)
	doc, err := document.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	log.Printf("Loaded document format=%s chars=%d", doc.Format, len(doc.Text))

	// Step 2: Chunk
	chunks, err := chunk.Split(doc.Text, idx.cfg.Chunking.Size, idx.cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}
	log.Printf("Split into %d chunks size=%d overlap=%d", len(chunks), idx.cfg.Chunking.Size, idx.cfg.Chunking.Overlap)

	// Step 3: Embed
	vectors, err := idx.embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	// Step 4: Build index
	vecIndex, closer, err := NewIndex(idx.cfg.Index.Backend)
	if err != nil {
		return nil, err
	}
	stop := progress.StartSpinner(idx.opts.Progress && len(chunks) > 0, idx.opts.Output, "building index")
	retriever, err := retrieval.FromVectors(chunks, vectors, idx.encoder, vecIndex, idx.cfg.Retrieval.TopK)
	stop()
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	log.Printf("Index ready backend=%s vectors=%d in %v", idx.cfg.Index.Backend, vecIndex.Len(), time.Since(startTime))

	corpus := &Corpus{
		Document:  doc,
		Chunks:    chunks,
		Retriever: retriever,
		closer:    closer,
	}
	if len(chunks) == 0 {
		return corpus, ErrEmptyCorpus
	}
	return corpus, nil
}

func (idx *Indexer) embed(ctx context.Context, chunks chunk.Collection) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	bar := progress.New(idx.opts.Progress, idx.opts.Output, "embedding")
	bar.Start(len(chunks))
	defer bar.Finish()

	embedStart := time.Now()
	vectors, err := idx.encoder.EncodeBatches(ctx, chunks.Texts(), true, bar.Set)
	if err != nil {
		return nil, err
	}
	log.Printf("Embedded %d chunks in %v", len(vectors), time.Since(embedStart))
	return vectors, nil
}

// NewIndex creates an empty index for the named backend. The closer is
// non-nil when the backend holds resources that must be released.
func NewIndex(backend string) (index.Index, io.Closer, error) {
	switch backend {
	case "", "memory":
		return index.NewFlat(), nil, nil
	case "sqlite":
		db, err := store.OpenMemory()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite index: %w", err)
		}
		return store.NewVectorIndex(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported index backend: %s", backend)
	}
}
