package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// CatalogFileName is the ingest catalog database kept beside the index
// artifacts.
const CatalogFileName = "catalog.db"

// CatalogPath returns the catalog path under a store directory.
func CatalogPath(dir string) string { return filepath.Join(dir, CatalogFileName) }

var (
	bucketDocuments = []byte("documents")
	bucketBuild     = []byte("build")
	keyBuild        = []byte("current")
)

// Catalog records what the persisted index was built from: one entry per
// ingested document plus a build stamp naming the embedding model and
// dimension. The stamp is how a later ingest with a different provider is
// rejected instead of mixing vectors from two models in one index.
type Catalog struct {
	db *bbolt.DB
}

// CatalogDoc is one ingested document's catalog entry.
type CatalogDoc struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Chunks int    `json:"chunks"`
	Bytes  int    `json:"bytes"`
}

// BuildStamp describes the build that produced the current artifacts.
type BuildStamp struct {
	Model       string    `json:"model"`
	Dimension   int       `json:"dimension"`
	Documents   int       `json:"documents"`
	Chunks      int       `json:"chunks"`
	BuiltAt     time.Time `json:"built_at"`
	ElapsedMSec int64     `json:"elapsed_ms"`
}

func OpenCatalog(path string) (*Catalog, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocuments, bucketBuild} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db}, nil
}

// Record replaces the catalog content with the outcome of one full
// rebuild, in a single transaction.
func (c *Catalog) Record(stamp BuildStamp, docs []CatalogDoc) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketDocuments); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketDocuments)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(doc.Name), data); err != nil {
				return err
			}
		}

		data, err := json.Marshal(stamp)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBuild).Put(keyBuild, data)
	})
}

// Stamp returns the current build stamp. ok is false when no build has
// been recorded yet.
func (c *Catalog) Stamp() (stamp BuildStamp, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBuild).Get(keyBuild)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &stamp); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return stamp, ok, err
}

// Documents lists catalog entries in key order.
func (c *Catalog) Documents() ([]CatalogDoc, error) {
	var docs []CatalogDoc
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var doc CatalogDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
