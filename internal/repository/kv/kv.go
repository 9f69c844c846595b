package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/storage"
)

// Storage keys. Each collection is one JSON array under one key.
const (
	KeyUsers               = "azoom_users"
	KeyStaff               = "azoom_staff"
	KeyBookings            = "azoom_bookings"
	KeyDamageRequests      = "azoom_damage_requests"
	KeyInspectionQueue     = "azoom_inspection_queue"
	KeySavedEmail          = "savedEmail"
	PrefixCustomerBookings = "customerBookings_"
	PrefixStock            = "stock_"
)

func customerBookingsKey(customerID string) string { return PrefixCustomerBookings + customerID }
func stockKey(carName string) string               { return PrefixStock + carName }

type Store struct {
	kv storage.KeyValueStore
	repository.UserRepository
	repository.StaffRepository
	repository.BookingRepository
	repository.StockRepository
	repository.DamageRequestRepository
	repository.InspectionQueueRepository
	repository.PreferenceRepository
}

func NewStore(kv storage.KeyValueStore) *Store {
	return &Store{
		kv:                        kv,
		UserRepository:            NewUserRepository(kv),
		StaffRepository:           NewStaffRepository(kv),
		BookingRepository:         NewBookingRepository(kv),
		StockRepository:           NewStockRepository(kv),
		DamageRequestRepository:   NewDamageRequestRepository(kv),
		InspectionQueueRepository: NewInspectionQueueRepository(kv),
		PreferenceRepository:      NewPreferenceRepository(kv),
	}
}

// Backend exposes the underlying key/value store for health checks.
func (s *Store) Backend() storage.KeyValueStore { return s.kv }

func loadList[T any](ctx context.Context, kv storage.KeyValueStore, key string) ([]T, error) {
	entry, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[T](key, entry.Value)
}

func decodeList[T any](key string, data []byte) ([]T, error) {
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrCorruptRecord, key, err)
	}
	return items, nil
}

// updateList runs fn over the decoded collection under compare-and-swap.
// fn may run several times and must only touch the slice it is given.
func updateList[T any](ctx context.Context, kv storage.KeyValueStore, key string, fn func(items []T) ([]T, error)) error {
	return storage.Update(ctx, kv, key, func(current []byte, exists bool) ([]byte, error) {
		items := []T{}
		if exists {
			decoded, err := decodeList[T](key, current)
			if err != nil {
				return nil, err
			}
			items = decoded
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		return json.Marshal(next)
	})
}
