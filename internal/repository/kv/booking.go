package kv

import (
	"context"
	"strings"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/storage"
)

type bookingRepository struct {
	kv storage.KeyValueStore
}

func NewBookingRepository(kv storage.KeyValueStore) repository.BookingRepository {
	return &bookingRepository{kv: kv}
}

func (r *bookingRepository) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return loadList[domain.Booking](ctx, r.kv, KeyBookings)
}

func (r *bookingRepository) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	bookings, err := r.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *bookingRepository) AppendBooking(ctx context.Context, b *domain.Booking) error {
	return updateList(ctx, r.kv, KeyBookings, func(bookings []domain.Booking) ([]domain.Booking, error) {
		return append(bookings, *b), nil
	})
}

func (r *bookingRepository) RemoveBooking(ctx context.Context, id string) error {
	return updateList(ctx, r.kv, KeyBookings, func(bookings []domain.Booking) ([]domain.Booking, error) {
		kept := bookings[:0]
		for _, b := range bookings {
			if b.ID != id {
				kept = append(kept, b)
			}
		}
		return kept, nil
	})
}

func (r *bookingRepository) UpdateBooking(ctx context.Context, id string, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	var updated domain.Booking
	err := updateList(ctx, r.kv, KeyBookings, func(bookings []domain.Booking) ([]domain.Booking, error) {
		for i := range bookings {
			if bookings[i].ID != id {
				continue
			}
			if err := fn(&bookings[i]); err != nil {
				return nil, err
			}
			updated = bookings[i]
			return bookings, nil
		}
		return nil, repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *bookingRepository) RetainBookings(ctx context.Context, fn func(bookings []domain.Booking) ([]domain.Booking, error)) ([]domain.Booking, error) {
	var kept []domain.Booking
	err := updateList(ctx, r.kv, KeyBookings, func(bookings []domain.Booking) ([]domain.Booking, error) {
		next, err := fn(bookings)
		if err != nil {
			return nil, err
		}
		kept = next
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if kept == nil {
		kept = []domain.Booking{}
	}
	return kept, nil
}

func (r *bookingRepository) AppendCustomerBooking(ctx context.Context, customerID string, b *domain.Booking) error {
	return updateList(ctx, r.kv, customerBookingsKey(customerID), func(bookings []domain.Booking) ([]domain.Booking, error) {
		return append(bookings, *b), nil
	})
}

func (r *bookingRepository) ListCustomerBookings(ctx context.Context, customerID string) ([]domain.Booking, error) {
	return loadList[domain.Booking](ctx, r.kv, customerBookingsKey(customerID))
}

func (r *bookingRepository) RetainCustomerBookings(ctx context.Context, keep map[string]bool) error {
	keys, err := r.kv.Keys(ctx, PrefixCustomerBookings)
	if err != nil {
		return err
	}
	for _, key := range keys {
		customerID := strings.TrimPrefix(key, PrefixCustomerBookings)
		retained := 0
		err := updateList(ctx, r.kv, key, func(bookings []domain.Booking) ([]domain.Booking, error) {
			kept := bookings[:0]
			for _, b := range bookings {
				if keep[b.ID] {
					kept = append(kept, b)
				}
			}
			retained = len(kept)
			return kept, nil
		})
		if err != nil {
			return err
		}
		if retained == 0 {
			if err := r.kv.Delete(ctx, customerBookingsKey(customerID)); err != nil {
				return err
			}
		}
	}
	return nil
}
