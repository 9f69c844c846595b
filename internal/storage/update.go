package storage

import (
	"context"
	"errors"
	"fmt"

	"azoom-rental-backend/internal/logger"
)

// MaxUpdateAttempts bounds the retries of Update under contention.
const MaxUpdateAttempts = 16

// ErrSkipWrite may be returned by an UpdateFunc to end Update without writing.
var ErrSkipWrite = errors.New("skip write")

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
// It may run several times and must not have side effects.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Update performs an optimistic read-modify-write of key. When another writer
// commits between the read and the write, the read is repeated and fn runs again.
func Update(ctx context.Context, s KeyValueStore, key string, fn UpdateFunc) error {
	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			current []byte
			version int64
			exists  bool
		)
		entry, err := s.Get(ctx, key)
		switch {
		case err == nil:
			current, version, exists = entry.Value, entry.Version, true
		case errors.Is(err, ErrNotFound):
		default:
			return fmt.Errorf("failed to read %s: %w", key, err)
		}

		next, err := fn(current, exists)
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = s.Put(ctx, key, next, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		logger.Debug("Retrying contended update", "key", key, "attempt", attempt)
	}
	return fmt.Errorf("%w: %s", ErrTooMuchContention, key)
}
