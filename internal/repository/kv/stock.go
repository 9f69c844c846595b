package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/storage"
)

type stockRepository struct {
	kv storage.KeyValueStore
}

func NewStockRepository(kv storage.KeyValueStore) repository.StockRepository {
	return &stockRepository{kv: kv}
}

func parseStock(key string, raw []byte) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s holds %q", repository.ErrCorruptRecord, key, raw)
	}
	return n, nil
}

func (r *stockRepository) GetStock(ctx context.Context, carName string) (int, bool, error) {
	key := stockKey(carName)
	entry, err := r.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := parseStock(key, entry.Value)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (r *stockRepository) AdjustStock(ctx context.Context, carName string, delta, capacity int) (int, error) {
	key := stockKey(carName)
	var result int
	err := storage.Update(ctx, r.kv, key, func(current []byte, exists bool) ([]byte, error) {
		stock := capacity
		if exists {
			n, err := parseStock(key, current)
			if err != nil {
				return nil, err
			}
			stock = n
		}
		next := stock + delta
		if next < 0 {
			return nil, repository.ErrOutOfStock
		}
		if next > capacity {
			next = capacity
		}
		result = next
		return []byte(strconv.Itoa(next)), nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (r *stockRepository) ClearStock(ctx context.Context) error {
	keys, err := r.kv.Keys(ctx, PrefixStock)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
