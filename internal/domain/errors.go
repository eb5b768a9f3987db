package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotReady is returned by queries against a store that has not
	// been loaded or built. Callers must be able to tell "no index" apart
	// from "nothing matched".
	ErrStoreNotReady = errors.New("vector store not ready: no index loaded or built")

	// ErrRebuildInProgress is returned when a rebuild is requested while
	// another rebuild of the same store is still running.
	ErrRebuildInProgress = errors.New("store rebuild already in progress")
)

// ConfigError reports an invalid caller-supplied parameter. Caller bug,
// surfaced immediately, never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// DimensionError reports embedding vectors of inconsistent length within one
// batch or one store. Fatal for the affected run; vectors are never truncated
// or padded to fit.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// StoreLoadError reports missing or corrupt persisted store artifacts, or a
// vector/metadata count mismatch on load. The store stays empty; the caller
// must re-ingest.
type StoreLoadError struct {
	Path string
	Err  error
}

func (e *StoreLoadError) Error() string {
	return fmt.Sprintf("load store artifact %s: %v", e.Path, e.Err)
}

func (e *StoreLoadError) Unwrap() error { return e.Err }

// BackendError reports a failure from an external embedding or generation
// backend. Propagated untouched; retry policy belongs to the caller.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
