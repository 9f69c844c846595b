package service

import (
	"context"
	"errors"
	"time"

	"azoom-rental-backend/internal/catalog"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository"
)

// bookingLedger holds the status transitions shared by the customer and staff
// flows. Each transition is a single compare-and-swap on the ledger followed
// by its side effects on stock and the inspection queue.
type bookingLedger struct {
	bookingRepo repository.BookingRepository
	stockRepo   repository.StockRepository
	queueRepo   repository.InspectionQueueRepository
	bus         events.Publisher
	now         func() time.Time
}

func newBookingLedger(
	bookingRepo repository.BookingRepository,
	stockRepo repository.StockRepository,
	queueRepo repository.InspectionQueueRepository,
	bus events.Publisher,
) *bookingLedger {
	return &bookingLedger{
		bookingRepo: bookingRepo,
		stockRepo:   stockRepo,
		queueRepo:   queueRepo,
		bus:         bus,
		now:         time.Now,
	}
}

// guard rejects a booking before any change is made to it.
type guard func(b *domain.Booking) error

func anyBooking(*domain.Booking) error { return nil }

func ownedBy(s domain.Session) guard {
	return func(b *domain.Booking) error {
		if !s.Owns(b) {
			return ErrForbidden
		}
		return nil
	}
}

// update applies fn under compare-and-swap and translates repository errors.
func (l *bookingLedger) update(ctx context.Context, id string, check guard, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	b, err := l.bookingRepo.UpdateBooking(ctx, id, func(b *domain.Booking) error {
		if err := check(b); err != nil {
			return err
		}
		return fn(b)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// restock puts one car back, clamped at capacity. Cars no longer in the
// catalog have no stock to restore.
func (l *bookingLedger) restock(ctx context.Context, carName string) {
	car, ok := catalog.Lookup(carName)
	if !ok {
		logger.Warn("restock skipped for unknown car", "car", carName)
		return
	}
	if _, err := l.stockRepo.AdjustStock(ctx, car.Name, 1, car.OriginalStock); err != nil {
		logger.Error("failed to restore stock", "car", carName, "error", err)
	}
}

func (l *bookingLedger) markReturned(ctx context.Context, id, actor string, check guard) (*domain.Booking, error) {
	now := l.now().UTC()
	b, err := l.update(ctx, id, check, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusConfirmed {
			return ErrInvalidTransition
		}
		b.Status = domain.BookingStatusReturned
		b.ReturnedAt = &now
		b.ReturnedBy = actor
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.restock(ctx, b.CarName)
	task := &domain.InspectionTask{
		BookingID:     b.ID,
		CarName:       b.CarName,
		CustomerEmail: b.CustomerEmail,
		QueuedAt:      now,
		QueuedBy:      actor,
	}
	if err := l.queueRepo.EnqueueInspection(ctx, task); err != nil {
		logger.Error("failed to queue inspection", "bookingID", b.ID, "error", err)
	}

	l.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingReturned, SubjectID: b.ID, CarName: b.CarName, Actor: actor, At: now})
	return b, nil
}

func (l *bookingLedger) cancel(ctx context.Context, id, actor string, check guard) (*domain.Booking, error) {
	now := l.now().UTC()
	b, err := l.update(ctx, id, check, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusConfirmed {
			return ErrInvalidTransition
		}
		b.Status = domain.BookingStatusCancelled
		b.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.restock(ctx, b.CarName)
	l.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingCancelled, SubjectID: b.ID, CarName: b.CarName, Actor: actor, At: now})
	return b, nil
}
