package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/report"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/utils"
)

// fallbackDailyRateCents prices extensions of bookings stored without a rate.
const fallbackDailyRateCents int64 = 50_00

var (
	cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
)

type customerService struct {
	*bookingLedger
	userRepo   repository.UserRepository
	damageRepo repository.DamageRequestRepository
}

func NewCustomerService(
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	stockRepo repository.StockRepository,
	queueRepo repository.InspectionQueueRepository,
	damageRepo repository.DamageRequestRepository,
	bus events.Publisher,
) CustomerService {
	return &customerService{
		bookingLedger: newBookingLedger(bookingRepo, stockRepo, queueRepo, bus),
		userRepo:      userRepo,
		damageRepo:    damageRepo,
	}
}

// myBookings returns the caller's bookings from the ledger, newest first.
func (s *customerService) myBookings(ctx context.Context, session domain.Session) ([]domain.Booking, error) {
	all, err := s.bookingRepo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]domain.Booking, 0)
	for i := range all {
		if session.Owns(&all[i]) {
			mine = append(mine, all[i])
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].BookingDate.After(mine[j].BookingDate)
	})
	return mine, nil
}

func (s *customerService) ListMyBookings(ctx context.Context, session domain.Session, tab domain.BookingTab) ([]domain.Booking, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	mine, err := s.myBookings(ctx, session)
	if err != nil {
		return nil, err
	}
	out := mine[:0]
	for _, b := range mine {
		if tab.Matches(b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *customerService) ReturnBooking(ctx context.Context, session domain.Session, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("customerService.ReturnBooking", "bookingID", bookingID)
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	b, err := s.markReturned(ctx, bookingID, session.Email, ownedBy(session))
	if err != nil {
		logger.ExitMethodWithError("customerService.ReturnBooking", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("customerService.ReturnBooking", "bookingID", bookingID)
	return b, nil
}

func (s *customerService) CancelBooking(ctx context.Context, session domain.Session, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("customerService.CancelBooking", "bookingID", bookingID)
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	b, err := s.cancel(ctx, bookingID, session.Email, ownedBy(session))
	if err != nil {
		logger.ExitMethodWithError("customerService.CancelBooking", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("customerService.CancelBooking", "bookingID", bookingID)
	return b, nil
}

func (s *customerService) ExtendBooking(ctx context.Context, session domain.Session, bookingID string, extraDays int) (*domain.Booking, error) {
	logger.EnterMethod("customerService.ExtendBooking", "bookingID", bookingID, "extraDays", extraDays)
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	if extraDays < 1 {
		return nil, invalid("Extension must be at least 1 day")
	}
	if extraDays > utils.MaxRentalDays {
		return nil, invalid(fmt.Sprintf("Rentals are limited to %d days", utils.MaxRentalDays))
	}

	now := s.now().UTC()
	b, err := s.update(ctx, bookingID, ownedBy(session), func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusConfirmed {
			return ErrInvalidTransition
		}
		if b.TotalDays+extraDays > utils.MaxRentalDays {
			return invalid(fmt.Sprintf("Rentals are limited to %d days", utils.MaxRentalDays))
		}
		rate := b.DailyRateCents
		if rate <= 0 {
			rate = fallbackDailyRateCents
		}
		b.TotalDays += extraDays
		b.TotalCents += int64(extraDays) * rate
		b.Extended = true
		b.ExtensionDate = &now
		b.ExtensionDays += extraDays
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("customerService.ExtendBooking", err, "bookingID", bookingID)
		return nil, err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingExtended, SubjectID: b.ID, CarName: b.CarName, Actor: session.Email, At: now})
	logger.ExitMethod("customerService.ExtendBooking", "bookingID", bookingID, "totalDays", b.TotalDays)
	return b, nil
}

func (s *customerService) ModifyBooking(ctx context.Context, session domain.Session, bookingID string, changes domain.BookingChanges) (*domain.Booking, error) {
	logger.EnterMethod("customerService.ModifyBooking", "bookingID", bookingID)
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	changes.PickupDate = strings.TrimSpace(changes.PickupDate)
	changes.PickupTime = strings.TrimSpace(changes.PickupTime)
	if changes.PickupDate != "" {
		date, err := utils.ParseDate(changes.PickupDate)
		if err != nil {
			return nil, invalid("Pickup date must be YYYY-MM-DD")
		}
		if utils.DaysBetween(now, date) < 0 {
			return nil, invalid("Pickup date cannot be in the past")
		}
	}
	if changes.PickupTime != "" {
		if _, err := time.Parse("15:04", changes.PickupTime); err != nil {
			return nil, invalid("Pickup time must be HH:MM")
		}
	}

	b, err := s.update(ctx, bookingID, ownedBy(session), func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusConfirmed {
			return ErrInvalidTransition
		}
		if changes.PickupDate != "" {
			b.PickupDate = changes.PickupDate
		}
		if changes.PickupTime != "" {
			b.PickupTime = changes.PickupTime
		}
		if v := strings.TrimSpace(changes.PickupBranch); v != "" {
			b.PickupBranch = v
		}
		if v := strings.TrimSpace(changes.ReturnBranch); v != "" {
			b.ReturnBranch = v
		}
		b.LastModified = &now
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("customerService.ModifyBooking", err, "bookingID", bookingID)
		return nil, err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingModified, SubjectID: b.ID, CarName: b.CarName, Actor: session.Email, At: now})
	logger.ExitMethod("customerService.ModifyBooking", "bookingID", bookingID)
	return b, nil
}

func (s *customerService) profile(ctx context.Context, session domain.Session) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, session.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *customerService) AccountSummary(ctx context.Context, session domain.Session) (*domain.AccountSummary, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	user, err := s.profile(ctx, session)
	if err != nil {
		return nil, err
	}
	mine, err := s.myBookings(ctx, session)
	if err != nil {
		return nil, err
	}

	summary := &domain.AccountSummary{
		Profile:       user.Profile(),
		TotalBookings: len(mine),
		MemberSince:   user.SignupDate,
	}
	for _, b := range mine {
		if b.Status == domain.BookingStatusConfirmed {
			summary.ActiveCount++
		}
		summary.TotalSpent += b.TotalCents
	}
	return summary, nil
}

// DeleteAccount removes the caller's account once they have typed their email
// again. Bookings stay in the ledger for the business records.
func (s *customerService) DeleteAccount(ctx context.Context, session domain.Session, confirmEmail string) error {
	logger.EnterMethod("customerService.DeleteAccount", "email", session.Email)
	if err := requireCustomer(session); err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(confirmEmail), strings.TrimSpace(session.Email)) {
		return invalid("Email does not match. Please enter your email correctly.")
	}

	mine, err := s.myBookings(ctx, session)
	if err != nil {
		return err
	}
	for _, b := range mine {
		if b.Status == domain.BookingStatusConfirmed {
			return ErrActiveBookings
		}
	}

	user, err := s.userRepo.DeleteUserByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		logger.ExitMethodWithError("customerService.DeleteAccount", err)
		return err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventUserDeleted, SubjectID: user.ID, Actor: session.Email})
	logger.ExitMethod("customerService.DeleteAccount", "userID", user.ID)
	return nil
}

func (s *customerService) ListDamageRequests(ctx context.Context, session domain.Session) ([]domain.DamageRequest, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	all, err := s.damageRepo.ListDamageRequests(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]domain.DamageRequest, 0)
	for _, r := range all {
		if r.Status == domain.DamageStatusPending && strings.EqualFold(r.CustomerEmail, session.Email) {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// ValidateCard checks card details for shape. Nothing is charged.
func ValidateCard(card domain.CardDetails) error {
	number := strings.ReplaceAll(card.CardNumber, " ", "")
	if !cardNumberPattern.MatchString(number) {
		return invalid("Please enter a valid card number.")
	}
	if !expiryPattern.MatchString(strings.TrimSpace(card.Expiry)) {
		return invalid("Please enter expiry in MM/YY format.")
	}
	if !cvvPattern.MatchString(strings.TrimSpace(card.CVV)) {
		return invalid("Please enter a valid 3-digit CVV.")
	}
	return nil
}

func (s *customerService) PayDamage(ctx context.Context, session domain.Session, requestID string, card domain.CardDetails) (*domain.DamageRequest, error) {
	logger.EnterMethod("customerService.PayDamage", "requestID", requestID)
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	if err := ValidateCard(card); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	req, err := s.damageRepo.UpdateDamageRequest(ctx, requestID, func(r *domain.DamageRequest) error {
		if !strings.EqualFold(r.CustomerEmail, session.Email) {
			return ErrForbidden
		}
		if r.Status == domain.DamageStatusPaid {
			return ErrAlreadyPaid
		}
		r.Status = domain.DamageStatusPaid
		r.PaidAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrDamageNotFound
		}
		logger.ExitMethodWithError("customerService.PayDamage", err, "requestID", requestID)
		return nil, err
	}

	_, err = s.update(ctx, req.BookingID, anyBooking, func(b *domain.Booking) error {
		if b.Inspection == nil {
			return nil
		}
		b.Inspection.DamagePaid = true
		b.Inspection.PaidAt = &now
		return nil
	})
	if err != nil {
		logger.Error("damage paid but booking not updated", "requestID", req.ID, "bookingID", req.BookingID, "error", err)
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventDamagePaid, SubjectID: req.ID, CarName: req.CarName, Actor: session.Email, At: now})
	logger.ExitMethod("customerService.PayDamage", "requestID", requestID, "amount", req.ChargeCents)
	return req, nil
}

func (s *customerService) ExportHistory(ctx context.Context, session domain.Session, w io.Writer) error {
	if err := requireCustomer(session); err != nil {
		return err
	}
	user, err := s.profile(ctx, session)
	if err != nil {
		return err
	}
	mine, err := s.myBookings(ctx, session)
	if err != nil {
		return err
	}
	if err := report.NewHistory(user.Profile(), mine, s.now()).Render(w); err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	return nil
}
