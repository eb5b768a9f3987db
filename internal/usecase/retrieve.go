package usecase

import (
	"context"
	"fmt"

	"docqa/internal/adapter/cache"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// Retriever embeds a question and delegates to the vector store. It is a
// coordination layer: store and backend errors pass through unchanged, and
// retry policy stays with the caller.
type Retriever struct {
	embedder port.Embedder
	store    port.VectorStore
	topK     int
	cache    *cache.QueryCache
}

// NewRetriever fixes topK for the lifetime of the retriever. queryCache is
// optional; pass nil to disable memoization.
func NewRetriever(embedder port.Embedder, store port.VectorStore, topK int, queryCache *cache.QueryCache) (*Retriever, error) {
	if topK < 1 {
		return nil, &domain.ConfigError{Field: "top_k", Reason: "must be >= 1"}
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		cache:    queryCache,
	}, nil
}

func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.QueryResult, error) {
	gen := r.store.Generation()
	if r.cache != nil {
		if results, ok := r.cache.Get(question, r.topK, gen); ok {
			return results, nil
		}
	}

	vectors, err := r.embedder.Encode(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, &domain.BackendError{
			Backend: "embedding",
			Err:     fmt.Errorf("got %d vectors for one question", len(vectors)),
		}
	}

	results, err := r.store.Query(vectors[0], r.topK)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Put(question, r.topK, gen, results)
	}
	return results, nil
}

// TopK returns the fixed result count.
func (r *Retriever) TopK() int { return r.topK }
