package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/storage"
)

func TestWatcher_Check(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	bus := NewBus(8)
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	_, err := store.Put(ctx, "azoom_bookings", []byte("[]"), 0)
	require.NoError(t, err)
	w := NewWatcher(store, bus, time.Minute, []string{"azoom_bookings", "azoom_users"}, []string{"stock_"})

	changed, err := w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "first check only records a baseline")

	t.Run("UnwatchedKey", func(t *testing.T) {
		_, err := store.Put(ctx, "customerBookings_c1", []byte("[]"), 0)
		require.NoError(t, err)
		changed, err := w.Check(ctx)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("WatchedKeyCreated", func(t *testing.T) {
		_, err := store.Put(ctx, "azoom_users", []byte("[]"), 0)
		require.NoError(t, err)
		changed, err := w.Check(ctx)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.EventStoreChanged, receive(t, ch).Type)
	})

	t.Run("PrefixKeyCreatedAndDeleted", func(t *testing.T) {
		_, err := store.Put(ctx, "stock_Tesla Model 3", []byte("4"), 0)
		require.NoError(t, err)
		changed, err := w.Check(ctx)
		require.NoError(t, err)
		assert.True(t, changed)
		receive(t, ch)

		require.NoError(t, store.Delete(ctx, "stock_Tesla Model 3"))
		changed, err = w.Check(ctx)
		require.NoError(t, err)
		assert.True(t, changed)
		receive(t, ch)
	})

	t.Run("Unchanged", func(t *testing.T) {
		changed, err := w.Check(ctx)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestWatcher_Run(t *testing.T) {
	store := storage.NewMemoryStore()
	bus := NewBus(8)
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	w := NewWatcher(store, bus, 10*time.Millisecond, []string{"azoom_bookings"}, nil)
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Keep writing until a tick lands after the baseline.
	var version int64
	deadline := time.After(time.Second)
	for got := false; !got; {
		var err error
		version, err = store.Put(context.Background(), "azoom_bookings", []byte("[]"), version)
		require.NoError(t, err)
		select {
		case evt := <-ch:
			assert.Equal(t, domain.EventStoreChanged, evt.Type)
			got = true
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("watcher never published")
		}
	}

	stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
