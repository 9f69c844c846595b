package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository"
)

const guestCustomerName = "Guest Customer"

type bookingService struct {
	catalogSvc  CatalogService
	bookingRepo repository.BookingRepository
	stockRepo   repository.StockRepository
	emailSvc    EmailService
	bus         events.Publisher
	now         func() time.Time
}

func NewBookingService(
	catalogSvc CatalogService,
	bookingRepo repository.BookingRepository,
	stockRepo repository.StockRepository,
	emailSvc EmailService,
	bus events.Publisher,
) BookingService {
	return &bookingService{
		catalogSvc:  catalogSvc,
		bookingRepo: bookingRepo,
		stockRepo:   stockRepo,
		emailSvc:    emailSvc,
		bus:         bus,
		now:         time.Now,
	}
}

func requireCustomer(s domain.Session) error {
	if s.IsCustomer() {
		return nil
	}
	if s.IsStaff() {
		return ErrForbidden
	}
	return ErrUnauthenticated
}

// Create records a confirmed booking. Stock is taken first; if the ledger
// writes fail the unit is given back and no partial booking remains.
func (s *bookingService) Create(ctx context.Context, session domain.Session, draft domain.BookingDraft) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.Create", "car", draft.CarName, "email", session.Email)

	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	car, quote, err := s.catalogSvc.QuoteDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	if _, err := s.stockRepo.AdjustStock(ctx, car.Name, -1, car.OriginalStock); err != nil {
		if errors.Is(err, repository.ErrOutOfStock) {
			return nil, ErrOutOfStock
		}
		logger.ExitMethodWithError("bookingService.Create", err, "car", car.Name)
		return nil, fmt.Errorf("reserve stock: %w", err)
	}

	name := strings.TrimSpace(session.Name)
	if name == "" {
		name = guestCustomerName
	}
	pickupTime := draft.PickupTime
	if pickupTime == "" {
		pickupTime = domain.DefaultPickupTime
	}

	b := &domain.Booking{
		ID:             "BK-" + uuid.NewString(),
		CustomerID:     session.UserID,
		CustomerName:   name,
		CustomerEmail:  session.Email,
		CarName:        car.Name,
		FuelType:       car.FuelType,
		Color:          draft.Color,
		PickupBranch:   draft.PickupBranch,
		ReturnBranch:   draft.ReturnBranch,
		PickupDate:     draft.PickupDate,
		PickupTime:     pickupTime,
		Period:         quote.Period,
		Duration:       quote.Duration,
		TotalDays:      quote.TotalDays,
		DailyRateCents: car.PricePerDayCents,
		SubtotalCents:  quote.SubtotalCents,
		DiscountCents:  quote.DiscountCents,
		TotalCents:     quote.TotalCents,
		PaymentMethod:  draft.PaymentMethod,
		BookingDate:    s.now().UTC(),
		Status:         domain.BookingStatusConfirmed,
	}

	if err := s.bookingRepo.AppendBooking(ctx, b); err != nil {
		s.releaseStock(ctx, car)
		logger.ExitMethodWithError("bookingService.Create", err, "bookingID", b.ID)
		return nil, fmt.Errorf("append booking: %w", err)
	}
	if err := s.bookingRepo.AppendCustomerBooking(ctx, session.UserID, b); err != nil {
		if rmErr := s.bookingRepo.RemoveBooking(ctx, b.ID); rmErr != nil {
			logger.Error("failed to roll back ledger entry", "bookingID", b.ID, "error", rmErr)
		}
		s.releaseStock(ctx, car)
		logger.ExitMethodWithError("bookingService.Create", err, "bookingID", b.ID)
		return nil, fmt.Errorf("append customer booking: %w", err)
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingCreated, SubjectID: b.ID, CarName: b.CarName, Actor: b.CustomerEmail, At: b.BookingDate})

	if err := s.emailSvc.SendBookingConfirmation(ctx, b); err != nil {
		logger.Warn("booking confirmation email failed", "bookingID", b.ID, "error", err)
	}

	logger.ExitMethod("bookingService.Create", "bookingID", b.ID, "total", b.TotalCents)
	return b, nil
}

func (s *bookingService) releaseStock(ctx context.Context, car *domain.Car) {
	if _, err := s.stockRepo.AdjustStock(ctx, car.Name, 1, car.OriginalStock); err != nil {
		logger.Error("failed to release reserved stock", "car", car.Name, "error", err)
	}
}
