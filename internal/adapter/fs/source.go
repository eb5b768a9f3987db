package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

// DirSource walks a directory tree and yields one Document per readable
// file whose extension it understands. Plain text and markdown are read
// directly; PDF pages are extracted with the pdf package. Files whose
// extracted text is empty after trimming are skipped.
type DirSource struct {
	root     string
	includes []string
	excludes []string
}

func NewDirSource(root string, includes, excludes []string) *DirSource {
	if len(includes) == 0 {
		includes = []string{"**/*.txt", "**/*.md", "**/*.pdf"}
	}
	return &DirSource{
		root:     root,
		includes: includes,
		excludes: excludes,
	}
}

// Documents walks the tree once from the start and pushes each document to
// fn. An error from fn stops the walk and is returned unchanged.
func (s *DirSource) Documents(fn func(domain.Document) error) error {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return err
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if s.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.shouldInclude(relPath) || s.shouldExclude(relPath) {
			return nil
		}

		text, err := extractText(path)
		if err != nil {
			return fmt.Errorf("extract %s: %w", relPath, err)
		}
		if strings.TrimSpace(text) == "" {
			return nil
		}

		return fn(domain.Document{
			Name: filepath.Base(path),
			Path: path,
			Text: text,
		})
	})
}

func (s *DirSource) shouldInclude(path string) bool {
	for _, pattern := range s.includes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (s *DirSource) shouldExclude(path string) bool {
	for _, pattern := range s.excludes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func extractPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with unsupported encodings yield nothing.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
