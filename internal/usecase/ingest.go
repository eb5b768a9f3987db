package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/store"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// Ingestor rebuilds the persisted index from a document set: segment each
// document, embed its chunk texts in one batch call, accumulate vectors
// and metadata in arrival order, then build and persist in one pass.
// Rebuilds are always full; additive indexing is a future extension.
type Ingestor struct {
	chunker  *chunker.Chunker
	embedder port.Embedder
	store    port.VectorStore
	catalog  *store.Catalog
	outDir   string
	logger   *slog.Logger

	// Serializes rebuilds. A second concurrent run is rejected, never
	// interleaved.
	rebuild sync.Mutex

	// OnDocument, when set, is called after each document is embedded.
	OnDocument func(name string, chunks int)
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Documents int  // documents that produced chunks
	Skipped   int  // documents whose text yielded zero chunks
	Chunks    int  // total vectors/records persisted
	Dimension int  // embedding dimension of the built index
	NoOp      bool // true when no non-empty document was seen
	Elapsed   time.Duration
}

// NewIngestor wires the pipeline against an output directory. catalog may
// be nil; the run then skips catalog bookkeeping.
func NewIngestor(
	ch *chunker.Chunker,
	embedder port.Embedder,
	vs port.VectorStore,
	catalog *store.Catalog,
	outDir string,
	logger *slog.Logger,
) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		chunker:  ch,
		embedder: embedder,
		store:    vs,
		catalog:  catalog,
		outDir:   outDir,
		logger:   logger,
	}
}

// Ingest consumes the document sequence exactly once. With zero non-empty
// documents the run is a no-op: nothing is built and any previously
// persisted artifacts stay untouched.
func (ing *Ingestor) Ingest(ctx context.Context, source port.DocumentSource) (*IngestResult, error) {
	if !ing.rebuild.TryLock() {
		return nil, domain.ErrRebuildInProgress
	}
	defer ing.rebuild.Unlock()

	start := time.Now()
	result := &IngestResult{}

	var (
		allVectors  [][]float32
		allRecords  []domain.ChunkRecord
		catalogDocs []store.CatalogDoc
		dim         int
	)

	err := source.Documents(func(doc domain.Document) error {
		chunks := ing.chunker.Chunk(doc.Name, doc.Text)
		if len(chunks) == 0 {
			result.Skipped++
			ing.logger.Debug("skipping empty document", "doc", doc.Name)
			return nil
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		// One batch call per document bounds backend round-trips.
		vectors, err := ing.embedder.Encode(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(chunks) {
			return &domain.BackendError{
				Backend: "embedding",
				Err:     fmt.Errorf("got %d vectors for %d chunks of %s", len(vectors), len(chunks), doc.Name),
			}
		}

		if dim == 0 && len(vectors[0]) > 0 {
			dim = len(vectors[0])
		}
		for _, v := range vectors {
			if len(v) != dim {
				return &domain.DimensionError{Want: dim, Got: len(v)}
			}
		}

		allVectors = append(allVectors, vectors...)
		for _, c := range chunks {
			allRecords = append(allRecords, domain.ChunkRecord{
				DocName: c.DocName,
				ChunkID: c.ChunkID,
				Text:    c.Text,
			})
		}
		catalogDocs = append(catalogDocs, store.CatalogDoc{
			Name:   doc.Name,
			Path:   doc.Path,
			Chunks: len(chunks),
			Bytes:  len(doc.Text),
		})

		result.Documents++
		result.Chunks += len(chunks)
		ing.logger.Debug("embedded document", "doc", doc.Name, "chunks", len(chunks))
		if ing.OnDocument != nil {
			ing.OnDocument(doc.Name, len(chunks))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(allVectors) == 0 {
		result.NoOp = true
		result.Elapsed = time.Since(start)
		ing.logger.Info("ingest saw no non-empty documents; leaving prior index untouched")
		return result, nil
	}

	if err := ing.store.Build(allVectors, allRecords); err != nil {
		return nil, err
	}
	if err := ing.store.Persist(ing.outDir); err != nil {
		return nil, err
	}

	result.Dimension = dim
	result.Elapsed = time.Since(start)

	if ing.catalog != nil {
		stamp := store.BuildStamp{
			Model:       ing.embedder.ModelName(),
			Dimension:   dim,
			Documents:   result.Documents,
			Chunks:      result.Chunks,
			BuiltAt:     time.Now().UTC(),
			ElapsedMSec: result.Elapsed.Milliseconds(),
		}
		if err := ing.catalog.Record(stamp, catalogDocs); err != nil {
			return nil, fmt.Errorf("record catalog: %w", err)
		}
	}

	ing.logger.Info("ingest complete",
		"documents", result.Documents,
		"skipped", result.Skipped,
		"chunks", result.Chunks,
		"dimension", dim,
		"elapsed", result.Elapsed)

	return result, nil
}
