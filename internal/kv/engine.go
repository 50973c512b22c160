// Package kv provides the flat key-value engines the embedded backend
// persists into. Keys are strings, values are opaque bytes.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Engine is a flat key-value store. Implementations need not be safe for
// concurrent use; the embedded backend serializes every access.
type Engine interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying file handles.
	Close() error
}

// Snapshotter is implemented by engines that can copy their complete
// state into a single file while open.
type Snapshotter interface {
	// BackupTo writes a consistent copy of the engine to destPath.
	// destPath must not exist.
	BackupTo(ctx context.Context, destPath string) error
}
