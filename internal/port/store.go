package port

import "docqa/internal/domain"

// VectorStore holds chunk vectors plus parallel metadata and answers exact
// nearest-neighbor queries over them.
type VectorStore interface {
	// Build replaces the store's state with an N x D vector batch and N
	// metadata records. Fails on N == 0 or ragged rows.
	Build(vectors [][]float32, records []domain.ChunkRecord) error

	// Load restores state from persisted artifacts.
	Load(indexPath, metaPath string) error

	// Persist writes both artifacts under dir, atomically relative to
	// each other.
	Persist(dir string) error

	// Query returns up to topK results ordered by ascending distance.
	// Fails with domain.ErrStoreNotReady when no state is present.
	Query(vector []float32, topK int) ([]domain.QueryResult, error)

	// Count returns the number of stored vectors.
	Count() int

	// Ready reports whether the store has queryable state.
	Ready() bool

	// Generation increments on every successful Build or Load. Used by
	// caches to drop results from a replaced index.
	Generation() uint64
}
