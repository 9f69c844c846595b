package storage_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/storage"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateOnly", func(t *testing.T) {
		s := storage.NewMemoryStore()
		v, err := s.Put(ctx, "savedEmail", []byte("a"), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		_, err = s.Put(ctx, "savedEmail", []byte("b"), 0)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("StaleWrite", func(t *testing.T) {
		s := storage.NewMemoryStore()
		v1, _ := s.Put(ctx, "k", []byte("a"), 0)
		_, err := s.Put(ctx, "k", []byte("b"), v1)
		require.NoError(t, err)

		_, err = s.Put(ctx, "k", []byte("c"), v1)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})

	t.Run("ReturnedValueIsACopy", func(t *testing.T) {
		s := storage.NewMemoryStore()
		_, _ = s.Put(ctx, "k", []byte("abc"), 0)
		e, _ := s.Get(ctx, "k")
		e.Value[0] = 'z'
		again, _ := s.Get(ctx, "k")
		assert.Equal(t, "abc", string(again.Value))
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		s := storage.NewMemoryStore()
		for _, k := range []string{"customerBookings_2", "customerBookings_1", "azoom_bookings"} {
			_, _ = s.Put(ctx, k, []byte("[]"), 0)
		}
		keys, err := s.Keys(ctx, "customerBookings_")
		require.NoError(t, err)
		assert.Equal(t, []string{"customerBookings_1", "customerBookings_2"}, keys)
	})

	t.Run("DeleteThenRecreate", func(t *testing.T) {
		s := storage.NewMemoryStore()
		v1, _ := s.Put(ctx, "k", []byte("a"), 0)
		require.NoError(t, s.Delete(ctx, "k"))
		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		v2, err := s.Put(ctx, "k", []byte("b"), 0)
		require.NoError(t, err)
		assert.NotEqual(t, v1, v2)
	})
}

func TestUpdate_NoLostUpdates(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				for {
					err := storage.Update(ctx, s, "counter", func(cur []byte, exists bool) ([]byte, error) {
						n := 0
						if exists {
							n, _ = strconv.Atoi(string(cur))
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
					if errors.Is(err, storage.ErrTooMuchContention) {
						continue
					}
					assert.NoError(t, err)
					break
				}
			}
		}()
	}
	wg.Wait()

	e, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(workers*perWorker), string(e.Value))
}

func TestUpdate_SkipWriteAndErrors(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	err := storage.Update(ctx, s, "k", func([]byte, bool) ([]byte, error) {
		return nil, storage.ErrSkipWrite
	})
	require.NoError(t, err)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	boom := errors.New("boom")
	err = storage.Update(ctx, s, "k", func([]byte, bool) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	v1, err := fs.Put(ctx, "stock_Tesla Model 3", []byte("4"), 0)
	require.NoError(t, err)
	_, err = fs.Put(ctx, "stock_Tesla Model 3", []byte("3"), v1+100)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
	_, err = fs.Put(ctx, "azoom_users", []byte("[]"), 0)
	require.NoError(t, err)

	// A fresh handle on the same directory sees the data and continues the version sequence.
	reopened, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	e, err := reopened.Get(ctx, "stock_Tesla Model 3")
	require.NoError(t, err)
	assert.Equal(t, "4", string(e.Value))

	v3, err := reopened.Put(ctx, "stockpile", []byte("x"), 0)
	require.NoError(t, err)
	assert.Greater(t, v3, v1)

	keys, err := reopened.Keys(ctx, "stock_")
	require.NoError(t, err)
	assert.Equal(t, []string{"stock_Tesla Model 3"}, keys)

	require.NoError(t, reopened.Delete(ctx, "stock_Tesla Model 3"))
	assert.NoFileExists(t, reopened.GetLocalPath("stock_Tesla Model 3"))
	require.NoError(t, reopened.Ping(ctx))
}

func TestFileStore_VersionsSurviveDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	_, err = fs.Put(ctx, "azoom_users", []byte("[]"), 0)
	require.NoError(t, err)
	top, err := fs.Put(ctx, "stock_Honda Jazz E HEV", []byte("4"), 0)
	require.NoError(t, err)

	// Dropping the newest key leaves nothing on disk carrying its version.
	require.NoError(t, fs.Delete(ctx, "stock_Honda Jazz E HEV"))

	reopened, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	next, err := reopened.Put(ctx, "stock_Honda Jazz E HEV", []byte("3"), 0)
	require.NoError(t, err)
	assert.Greater(t, next, top)

	keys, err := reopened.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"azoom_users", "stock_Honda Jazz E HEV"}, keys)
}
