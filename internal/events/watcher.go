package events

import (
	"context"
	"errors"
	"maps"
	"time"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/storage"
)

// Watcher re-reads the versions of a set of keys and publishes
// EventStoreChanged when they move. Writes made by azoomctl or the cron job
// land in the shared store but never on this process's bus; the watcher is
// how the dashboard hears about them. Local writes are seen too, which costs
// one extra snapshot per change.
type Watcher struct {
	store    storage.KeyValueStore
	pub      Publisher
	interval time.Duration
	keys     []string
	prefixes []string

	seen map[string]int64
}

// NewWatcher watches the exact keys plus every key under the prefixes.
func NewWatcher(store storage.KeyValueStore, pub Publisher, interval time.Duration, keys, prefixes []string) *Watcher {
	return &Watcher{
		store:    store,
		pub:      pub,
		interval: interval,
		keys:     keys,
		prefixes: prefixes,
	}
}

// Run checks the store every interval until ctx is done. The first read only
// records a baseline.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if _, err := w.Check(ctx); err != nil {
		logger.Warn("Store watcher baseline failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Store watcher check failed", "error", err)
			}
		}
	}
}

// Check reads the current versions and publishes when they differ from the
// previous read. It reports whether an event was published.
func (w *Watcher) Check(ctx context.Context) (bool, error) {
	current, err := w.versions(ctx)
	if err != nil {
		return false, err
	}
	previous := w.seen
	w.seen = current
	if previous == nil || maps.Equal(previous, current) {
		return false, nil
	}
	logger.Debug("Store changed outside this process", "keys", len(current))
	w.pub.Publish(domain.ChangeEvent{Type: domain.EventStoreChanged})
	return true, nil
}

func (w *Watcher) versions(ctx context.Context) (map[string]int64, error) {
	keys := append([]string(nil), w.keys...)
	for _, prefix := range w.prefixes {
		found, err := w.store.Keys(ctx, prefix)
		if err != nil {
			return nil, err
		}
		keys = append(keys, found...)
	}

	out := make(map[string]int64, len(keys))
	for _, key := range keys {
		entry, err := w.store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[key] = entry.Version
	}
	return out, nil
}
