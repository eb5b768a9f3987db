package usecase

import (
	"context"
	"errors"
	"os"
	"testing"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/store"
	"docqa/internal/domain"
)

type sliceSource struct {
	docs []domain.Document
}

func (s *sliceSource) Documents(fn func(domain.Document) error) error {
	for _, doc := range s.docs {
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// raggedEmbedder returns a different dimension on every call, simulating a
// backend that changed models mid-run.
type raggedEmbedder struct {
	calls int
}

func (e *raggedEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	dim := 4 * e.calls
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, dim)
	}
	return out, nil
}

func (e *raggedEmbedder) Dimension() int    { return 4 }
func (e *raggedEmbedder) ModelName() string { return "ragged" }

func newTestIngestor(t *testing.T, outDir string) (*Ingestor, *store.FlatStore) {
	t.Helper()
	ch, err := chunker.New(16, 4)
	if err != nil {
		t.Fatal(err)
	}
	fs := store.NewFlatStore()
	catalog, err := store.OpenCatalog(store.CatalogPath(outDir))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { catalog.Close() })
	return NewIngestor(ch, embedding.NewLocalEmbedder(256), fs, catalog, outDir, nil), fs
}

func TestIngestBuildsAndPersists(t *testing.T) {
	dir := t.TempDir()
	ing, fs := newTestIngestor(t, dir)

	source := &sliceSource{docs: []domain.Document{
		{Name: "sky.txt", Path: "/docs/sky.txt", Text: "The sky is blue. Grass is green."},
		{Name: "sea.txt", Path: "/docs/sea.txt", Text: "The sea is deep."},
	}}

	result, err := ing.Ingest(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if result.NoOp {
		t.Fatal("unexpected no-op")
	}
	if result.Documents != 2 {
		t.Errorf("documents %d, want 2", result.Documents)
	}
	if result.Chunks != 4 { // 3 chunks for sky.txt, 1 for sea.txt
		t.Errorf("chunks %d, want 4", result.Chunks)
	}
	if result.Dimension != 256 {
		t.Errorf("dimension %d, want 256", result.Dimension)
	}

	if !fs.Ready() || fs.Count() != 4 {
		t.Fatalf("store not built: ready=%v count=%d", fs.Ready(), fs.Count())
	}
	for _, name := range []string{store.IndexFileName, store.MetaFileName} {
		if _, err := os.Stat(dir + "/" + name); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}
}

func TestIngestThenRetrieveFindsSkyChunk(t *testing.T) {
	dir := t.TempDir()
	ing, fs := newTestIngestor(t, dir)

	source := &sliceSource{docs: []domain.Document{
		{Name: "sky.txt", Text: "The sky is blue. Grass is green."},
	}}
	if _, err := ing.Ingest(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	retriever, err := NewRetriever(embedding.NewLocalEmbedder(256), fs, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	results, err := retriever.Retrieve(context.Background(), "sky color")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].DocName != "sky.txt" || results[0].ChunkID != 0 {
		t.Errorf("top result %s #%d, want sky.txt #0 (the chunk containing %q)",
			results[0].DocName, results[0].ChunkID, "The sky is blue.")
	}
}

func TestIngestSkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	ing, _ := newTestIngestor(t, dir)

	source := &sliceSource{docs: []domain.Document{
		{Name: "empty.txt", Text: ""},
		{Name: "real.txt", Text: "content here"},
	}}

	result, err := ing.Ingest(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if result.Documents != 1 || result.Skipped != 1 {
		t.Errorf("documents=%d skipped=%d, want 1 and 1", result.Documents, result.Skipped)
	}
}

func TestIngestZeroDocumentsIsNoOp(t *testing.T) {
	dir := t.TempDir()

	// Persist a prior index, then run an empty ingest against the same dir.
	prior := store.NewFlatStore()
	if err := prior.Build(
		[][]float32{{1, 2}},
		[]domain.ChunkRecord{{DocName: "old.txt", ChunkID: 0, Text: "old"}},
	); err != nil {
		t.Fatal(err)
	}
	if err := prior.Persist(dir); err != nil {
		t.Fatal(err)
	}
	beforeIndex, err := os.ReadFile(store.IndexPath(dir))
	if err != nil {
		t.Fatal(err)
	}

	ing, fs := newTestIngestor(t, dir)
	result, err := ing.Ingest(context.Background(), &sliceSource{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.NoOp {
		t.Fatal("expected a no-op result")
	}
	if fs.Ready() {
		t.Error("no-op ingest built store state")
	}

	afterIndex, err := os.ReadFile(store.IndexPath(dir))
	if err != nil {
		t.Fatalf("prior index gone after no-op ingest: %v", err)
	}
	if len(beforeIndex) != len(afterIndex) {
		t.Error("no-op ingest modified the prior index artifact")
	}
}

func TestIngestDimensionMismatchAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	ch, err := chunker.New(1200, 200)
	if err != nil {
		t.Fatal(err)
	}
	ing := NewIngestor(ch, &raggedEmbedder{}, store.NewFlatStore(), nil, dir, nil)

	source := &sliceSource{docs: []domain.Document{
		{Name: "a.txt", Text: "first"},
		{Name: "b.txt", Text: "second"},
	}}

	var dimErr *domain.DimensionError
	_, err = ing.Ingest(context.Background(), source)
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestIngestIdempotentMetadata(t *testing.T) {
	source := &sliceSource{docs: []domain.Document{
		{Name: "sky.txt", Text: "The sky is blue. Grass is green."},
		{Name: "sea.txt", Text: "The sea is deep and cold."},
	}}

	dirA := t.TempDir()
	ingA, _ := newTestIngestor(t, dirA)
	if _, err := ingA.Ingest(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	dirB := t.TempDir()
	ingB, _ := newTestIngestor(t, dirB)
	if _, err := ingB.Ingest(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	metaA, err := os.ReadFile(store.MetaPath(dirA))
	if err != nil {
		t.Fatal(err)
	}
	metaB, err := os.ReadFile(store.MetaPath(dirB))
	if err != nil {
		t.Fatal(err)
	}
	if string(metaA) != string(metaB) {
		t.Error("re-ingesting the same documents produced different metadata")
	}
}

func TestIngestRecordsCatalog(t *testing.T) {
	dir := t.TempDir()
	ch, _ := chunker.New(16, 4)
	catalog, err := store.OpenCatalog(store.CatalogPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	defer catalog.Close()

	ing := NewIngestor(ch, embedding.NewLocalEmbedder(64), store.NewFlatStore(), catalog, dir, nil)
	source := &sliceSource{docs: []domain.Document{
		{Name: "sky.txt", Path: "/docs/sky.txt", Text: "The sky is blue. Grass is green."},
	}}
	if _, err := ing.Ingest(context.Background(), source); err != nil {
		t.Fatal(err)
	}

	stamp, ok, err := catalog.Stamp()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("no build stamp recorded")
	}
	if stamp.Model != "local-trigram" || stamp.Dimension != 64 {
		t.Errorf("stamp %+v", stamp)
	}
	if stamp.Chunks != 3 {
		t.Errorf("stamp chunks %d, want 3", stamp.Chunks)
	}

	docs, err := catalog.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Name != "sky.txt" || docs[0].Chunks != 3 {
		t.Errorf("catalog docs %+v", docs)
	}
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) Documents(fn func(domain.Document) error) error {
	close(s.entered)
	<-s.release
	return fn(domain.Document{Name: "a.txt", Text: "content"})
}

func TestIngestRejectsConcurrentRebuild(t *testing.T) {
	dir := t.TempDir()
	ing, _ := newTestIngestor(t, dir)

	src := &blockingSource{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := ing.Ingest(context.Background(), src)
		done <- err
	}()

	<-src.entered
	_, err := ing.Ingest(context.Background(), &sliceSource{})
	if !errors.Is(err, domain.ErrRebuildInProgress) {
		t.Fatalf("expected ErrRebuildInProgress, got %v", err)
	}

	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
}
