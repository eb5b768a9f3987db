package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"docqa/internal/domain"
)

const (
	// IndexFileName is the opaque vector index artifact.
	IndexFileName = "vectors.idx"
	// MetaFileName is the line-delimited-JSON chunk metadata artifact.
	// Line order is identical to vector row order.
	MetaFileName = "chunks.jsonl"
)

// IndexPath returns the index artifact path under a store directory.
func IndexPath(dir string) string { return filepath.Join(dir, IndexFileName) }

// MetaPath returns the metadata artifact path under a store directory.
func MetaPath(dir string) string { return filepath.Join(dir, MetaFileName) }

// indexState is one immutable generation of store content. Build and Load
// assemble a fresh state off to the side and swap the pointer under the
// write lock, so every query sees entirely-old or entirely-new content.
type indexState struct {
	dim     int
	vectors [][]float32
	records []domain.ChunkRecord
}

// FlatStore is an exact nearest-neighbor store over an N x D vector batch
// with a parallel metadata list. Search is brute force under squared
// Euclidean distance, which is accurate and fast enough for private
// document collections; an approximate index can slot in behind the same
// interface later.
type FlatStore struct {
	mu    sync.RWMutex
	state *indexState
	gen   uint64
}

func NewFlatStore() *FlatStore {
	return &FlatStore{}
}

// Build constructs in-memory state from an N x D batch and N metadata
// records and makes it the queryable state.
func (s *FlatStore) Build(vectors [][]float32, records []domain.ChunkRecord) error {
	if len(vectors) == 0 {
		return &domain.ConfigError{Field: "vectors", Reason: "must contain at least one row"}
	}
	if len(vectors) != len(records) {
		return &domain.ConfigError{
			Field:  "records",
			Reason: fmt.Sprintf("count %d does not match vector count %d", len(records), len(vectors)),
		}
	}

	dim := len(vectors[0])
	if dim == 0 {
		return &domain.DimensionError{Want: 1, Got: 0}
	}
	for _, row := range vectors {
		if len(row) != dim {
			return &domain.DimensionError{Want: dim, Got: len(row)}
		}
	}

	s.swap(&indexState{dim: dim, vectors: vectors, records: records})
	return nil
}

// Load restores a persisted index and its parallel metadata. On any
// failure the previous state, if any, remains in place.
func (s *FlatStore) Load(indexPath, metaPath string) error {
	f, err := os.Open(indexPath)
	if err != nil {
		return &domain.StoreLoadError{Path: indexPath, Err: err}
	}
	dim, vectors, err := readVectors(f)
	f.Close()
	if err != nil {
		return &domain.StoreLoadError{Path: indexPath, Err: err}
	}

	records, err := readRecords(metaPath)
	if err != nil {
		return &domain.StoreLoadError{Path: metaPath, Err: err}
	}

	// The cross-artifact invariant: row i of the index pairs with line i
	// of the metadata. A count mismatch means the pair is corrupt.
	if len(vectors) != len(records) {
		return &domain.StoreLoadError{
			Path: metaPath,
			Err:  fmt.Errorf("%d metadata records for %d vectors", len(records), len(vectors)),
		}
	}
	if len(vectors) == 0 {
		return &domain.StoreLoadError{Path: indexPath, Err: fmt.Errorf("empty index")}
	}

	s.swap(&indexState{dim: dim, vectors: vectors, records: records})
	return nil
}

// Persist writes both artifacts under dir. Each is written to a temporary
// path and renamed into place, so a crash mid-write leaves the prior
// index/metadata pair intact rather than a mismatched one.
func (s *FlatStore) Persist(dir string) error {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()

	if st == nil {
		return domain.ErrStoreNotReady
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	indexTmp := IndexPath(dir) + ".tmp"
	metaTmp := MetaPath(dir) + ".tmp"

	if err := writeVectorFile(indexTmp, st.dim, st.vectors); err != nil {
		return err
	}
	if err := writeRecordFile(metaTmp, st.records); err != nil {
		os.Remove(indexTmp)
		return err
	}

	if err := os.Rename(indexTmp, IndexPath(dir)); err != nil {
		os.Remove(metaTmp)
		return err
	}
	return os.Rename(metaTmp, MetaPath(dir))
}

// Query returns up to topK entries ordered by ascending distance, ties
// broken by ascending chunk id then doc name. Fewer than topK results is
// normal when the store holds fewer vectors.
func (s *FlatStore) Query(vector []float32, topK int) ([]domain.QueryResult, error) {
	if topK < 1 {
		return nil, &domain.ConfigError{Field: "top_k", Reason: "must be >= 1"}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st == nil {
		return nil, domain.ErrStoreNotReady
	}
	if len(vector) != st.dim {
		return nil, &domain.DimensionError{Want: st.dim, Got: len(vector)}
	}

	type hit struct {
		distance float64
		pos      int
	}
	hits := make([]hit, len(st.vectors))
	for i, row := range st.vectors {
		hits[i] = hit{distance: squaredL2(vector, row), pos: i}
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		ra, rb := st.records[a.pos], st.records[b.pos]
		if ra.ChunkID != rb.ChunkID {
			return ra.ChunkID < rb.ChunkID
		}
		return ra.DocName < rb.DocName
	})

	if topK > len(hits) {
		topK = len(hits)
	}

	results := make([]domain.QueryResult, 0, topK)
	for _, h := range hits[:topK] {
		if h.pos < 0 || h.pos >= len(st.records) {
			continue
		}
		rec := st.records[h.pos]
		results = append(results, domain.QueryResult{
			Distance: h.distance,
			DocName:  rec.DocName,
			ChunkID:  rec.ChunkID,
			Text:     rec.Text,
		})
	}
	return results, nil
}

// Count returns the number of stored vectors, zero when empty.
func (s *FlatStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return 0
	}
	return len(s.state.vectors)
}

// Ready reports whether the store holds queryable state.
func (s *FlatStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != nil
}

// Dimension returns the vector dimension of the current state, zero when
// empty.
func (s *FlatStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return 0
	}
	return s.state.dim
}

// Generation increments on every successful Build or Load.
func (s *FlatStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *FlatStore) swap(st *indexState) {
	s.mu.Lock()
	s.state = st
	s.gen++
	s.mu.Unlock()
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func writeVectorFile(path string, dim int, vectors [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeVectors(f, dim, vectors); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func writeRecordFile(path string, records []domain.ChunkRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func readRecords(path string) ([]domain.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []domain.ChunkRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec domain.ChunkRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
