package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("key not found")
	ErrVersionConflict   = errors.New("version conflict")
	ErrTooMuchContention = errors.New("too much contention on key")
)

// Entry is a stored value together with the version it was written at.
// Versions are positive and never reused for the same key.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// KeyValueStore defines the interface for the versioned key/value backends.
// Supports the in-process memory store, the local file store, PostgreSQL and SQLite.
type KeyValueStore interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put writes value if the current version equals expectedVersion and
	// returns the new version. expectedVersion 0 means the key must not exist.
	// A mismatch returns ErrVersionConflict.
	Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}
