package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, s *DirSource) []domain.Document {
	t.Helper()
	var docs []domain.Document
	err := s.Documents(func(doc domain.Document) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return docs
}

func TestDirSourceYieldsTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha content")
	writeFile(t, dir, "sub/b.md", "# beta\ncontent")
	writeFile(t, dir, "ignored.bin", "binary")

	docs := collect(t, NewDirSource(dir, nil, nil))

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	byName := map[string]domain.Document{}
	for _, d := range docs {
		byName[d.Name] = d
	}
	if byName["a.txt"].Text != "alpha content" {
		t.Errorf("a.txt text %q", byName["a.txt"].Text)
	}
	if byName["b.md"].Text == "" {
		t.Error("b.md not loaded")
	}
	if byName["a.txt"].Path == "" {
		t.Error("document path missing")
	}
}

func TestDirSourceSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n\t\n")
	writeFile(t, dir, "real.txt", "content")

	docs := collect(t, NewDirSource(dir, nil, nil))

	if len(docs) != 1 || docs[0].Name != "real.txt" {
		t.Fatalf("expected only real.txt, got %+v", docs)
	}
}

func TestDirSourceExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "keep")
	writeFile(t, dir, "skip/drop.txt", "drop")

	docs := collect(t, NewDirSource(dir, nil, []string{"skip/**"}))

	if len(docs) != 1 || docs[0].Name != "keep.txt" {
		t.Fatalf("exclude pattern not applied: %+v", docs)
	}
}

func TestDirSourceCallbackErrorStopsWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one")
	writeFile(t, dir, "b.txt", "two")

	sentinel := errors.New("stop")
	seen := 0
	err := NewDirSource(dir, nil, nil).Documents(func(domain.Document) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("callback error not propagated: %v", err)
	}
	if seen != 1 {
		t.Fatalf("walk continued after error, saw %d documents", seen)
	}
}

func TestDirSourceRestartable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one")

	s := NewDirSource(dir, nil, nil)
	first := collect(t, s)
	second := collect(t, s)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("second pass differs: %d then %d", len(first), len(second))
	}
}
