package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), CatalogFileName))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalogEmptyStamp(t *testing.T) {
	c := openTestCatalog(t)

	_, ok, err := c.Stamp()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fresh catalog reports a build stamp")
	}

	docs, err := c.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("fresh catalog lists %d documents", len(docs))
	}
}

func TestCatalogRecordRoundTrip(t *testing.T) {
	c := openTestCatalog(t)

	stamp := BuildStamp{
		Model:     "text-embedding-3-small",
		Dimension: 1536,
		Documents: 2,
		Chunks:    7,
		BuiltAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	docs := []CatalogDoc{
		{Name: "a.txt", Path: "/docs/a.txt", Chunks: 3, Bytes: 3000},
		{Name: "b.txt", Path: "/docs/b.txt", Chunks: 4, Bytes: 4200},
	}

	if err := c.Record(stamp, docs); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Stamp()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("stamp not recorded")
	}
	if got.Model != stamp.Model || got.Dimension != stamp.Dimension || got.Chunks != stamp.Chunks {
		t.Errorf("stamp round-trip mismatch: %+v", got)
	}
	if !got.BuiltAt.Equal(stamp.BuiltAt) {
		t.Errorf("built_at %v, want %v", got.BuiltAt, stamp.BuiltAt)
	}

	gotDocs, err := c.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(gotDocs) != 2 {
		t.Fatalf("got %d documents, want 2", len(gotDocs))
	}
	if gotDocs[0].Name != "a.txt" || gotDocs[0].Chunks != 3 {
		t.Errorf("unexpected first doc %+v", gotDocs[0])
	}
}

func TestCatalogRecordReplaces(t *testing.T) {
	c := openTestCatalog(t)

	first := []CatalogDoc{
		{Name: "old1.txt", Chunks: 1},
		{Name: "old2.txt", Chunks: 1},
	}
	if err := c.Record(BuildStamp{Model: "m1"}, first); err != nil {
		t.Fatal(err)
	}

	second := []CatalogDoc{{Name: "new.txt", Chunks: 5}}
	if err := c.Record(BuildStamp{Model: "m2"}, second); err != nil {
		t.Fatal(err)
	}

	docs, err := c.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Name != "new.txt" {
		t.Fatalf("old entries survived a full rebuild: %+v", docs)
	}

	stamp, _, err := c.Stamp()
	if err != nil {
		t.Fatal(err)
	}
	if stamp.Model != "m2" {
		t.Errorf("stamp model %q, want m2", stamp.Model)
	}
}
