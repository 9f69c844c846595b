package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryItem struct {
	value   []byte
	version int64
}

// MemoryStore keeps entries in process memory. Versions come from one counter
// shared by all keys, so a key deleted and re-created never repeats a version.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	seq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Entry{Key: key, Value: append([]byte(nil), item.value...), Version: item.version}, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if (!ok && expectedVersion != 0) || (ok && item.version != expectedVersion) {
		return 0, ErrVersionConflict
	}

	m.seq++
	m.items[key] = memoryItem{value: append([]byte(nil), value...), version: m.seq}
	return m.seq, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
func (m *MemoryStore) Close() error                   { return nil }
