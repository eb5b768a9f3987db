package cli

import (
	"fmt"
	"path/filepath"

	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/store"
	"docqa/internal/port"
)

// Heavy resources are constructed once here and injected into the use
// cases; nothing below the CLI re-acquires a client or re-reads the index
// per call.

func storeDir() string {
	dir := cfg.Store.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootDir, dir)
	}
	return dir
}

func docsDir() string {
	dir := cfg.Documents.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rootDir, dir)
	}
	return dir
}

func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "local":
		return embedding.NewLocalEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func newGenerator() (port.Generator, error) {
	return llm.NewOpenAIGenerator(cfg.LLM.APIKeyEnv, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature)
}

// openLoadedStore loads the persisted artifacts and refuses to pair them
// with an embedder other than the one they were built with.
func openLoadedStore(embedder port.Embedder) (*store.FlatStore, error) {
	dir := storeDir()

	fs := store.NewFlatStore()
	if err := fs.Load(store.IndexPath(dir), store.MetaPath(dir)); err != nil {
		return nil, fmt.Errorf("%w (run 'docqa ingest' first)", err)
	}

	catalog, err := store.OpenCatalog(store.CatalogPath(dir))
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	stamp, ok, err := catalog.Stamp()
	if err != nil {
		return nil, err
	}
	if ok && stamp.Model != embedder.ModelName() {
		return nil, fmt.Errorf("index was built with embedding model %q but config selects %q; re-ingest before querying",
			stamp.Model, embedder.ModelName())
	}

	return fs, nil
}
