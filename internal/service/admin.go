package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"azoom-rental-backend/internal/catalog"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/report"
	"azoom-rental-backend/internal/repository"
)

type adminService struct {
	*bookingLedger
	userRepo     repository.UserRepository
	damageRepo   repository.DamageRequestRepository
	dashboardSvc DashboardService
	emailSvc     EmailService
}

func NewAdminService(
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	stockRepo repository.StockRepository,
	queueRepo repository.InspectionQueueRepository,
	damageRepo repository.DamageRequestRepository,
	dashboardSvc DashboardService,
	emailSvc EmailService,
	bus events.Publisher,
) AdminService {
	return &adminService{
		bookingLedger: newBookingLedger(bookingRepo, stockRepo, queueRepo, bus),
		userRepo:      userRepo,
		damageRepo:    damageRepo,
		dashboardSvc:  dashboardSvc,
		emailSvc:      emailSvc,
	}
}

func requireStaff(s domain.Session) error {
	if s.IsStaff() {
		return nil
	}
	if s.IsCustomer() {
		return ErrForbidden
	}
	return ErrUnauthenticated
}

// ListUsers returns customer profiles, most recent signup first.
func (s *adminService) ListUsers(ctx context.Context, session domain.Session) ([]domain.Profile, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(users))
	for i := len(users) - 1; i >= 0; i-- {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

func (s *adminService) DeleteUser(ctx context.Context, session domain.Session, email string) error {
	logger.EnterMethod("adminService.DeleteUser", "email", email, "staff", session.Email)
	if err := requireStaff(session); err != nil {
		return err
	}
	user, err := s.userRepo.DeleteUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		logger.ExitMethodWithError("adminService.DeleteUser", err, "email", email)
		return err
	}
	s.bus.Publish(domain.ChangeEvent{Type: domain.EventUserDeleted, SubjectID: user.ID, Actor: session.Email})
	logger.ExitMethod("adminService.DeleteUser", "userID", user.ID)
	return nil
}

func (s *adminService) MarkReturned(ctx context.Context, session domain.Session, bookingID string) (*domain.Booking, error) {
	logger.EnterMethod("adminService.MarkReturned", "bookingID", bookingID, "staff", session.Email)
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	b, err := s.markReturned(ctx, bookingID, session.Email, anyBooking)
	if err != nil {
		logger.ExitMethodWithError("adminService.MarkReturned", err, "bookingID", bookingID)
		return nil, err
	}
	logger.ExitMethod("adminService.MarkReturned", "bookingID", bookingID)
	return b, nil
}

func (s *adminService) ListInspectionQueue(ctx context.Context, session domain.Session) ([]domain.InspectionTask, error) {
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	return s.queueRepo.ListInspectionTasks(ctx)
}

func (s *adminService) InspectBooking(ctx context.Context, session domain.Session, bookingID string, result domain.InspectionResult) (*domain.Booking, *domain.DamageRequest, error) {
	logger.EnterMethod("adminService.InspectBooking", "bookingID", bookingID, "hasDamage", result.HasDamage)
	if err := requireStaff(session); err != nil {
		return nil, nil, err
	}
	result.DamageDescription = strings.TrimSpace(result.DamageDescription)
	if result.HasDamage {
		if result.DamageChargeCents <= 0 {
			return nil, nil, invalid("Please enter a damage charge greater than zero")
		}
		if result.DamageDescription == "" {
			return nil, nil, invalid("Please describe the damage")
		}
	}

	now := s.now().UTC()
	b, err := s.update(ctx, bookingID, anyBooking, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusReturned {
			return ErrInvalidTransition
		}
		if b.Inspection != nil {
			return ErrAlreadyInspected
		}
		insp := &domain.Inspection{
			HasDamage:   result.HasDamage,
			InspectedAt: now,
			InspectedBy: session.Email,
		}
		if result.HasDamage {
			insp.DamageDescription = result.DamageDescription
			insp.DamageChargeCents = result.DamageChargeCents
		}
		b.Inspection = insp
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("adminService.InspectBooking", err, "bookingID", bookingID)
		return nil, nil, err
	}

	if _, err := s.queueRepo.DequeueInspection(ctx, b.ID); err != nil {
		logger.Error("failed to remove inspection task", "bookingID", b.ID, "error", err)
	}
	s.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingInspected, SubjectID: b.ID, CarName: b.CarName, Actor: session.Email, At: now})

	if !result.HasDamage {
		logger.ExitMethod("adminService.InspectBooking", "bookingID", b.ID, "damage", false)
		return b, nil, nil
	}

	req := &domain.DamageRequest{
		ID:            "DMG-" + uuid.NewString(),
		BookingID:     b.ID,
		CustomerEmail: b.CustomerEmail,
		CustomerName:  b.CustomerName,
		CarName:       b.CarName,
		ChargeCents:   result.DamageChargeCents,
		Description:   result.DamageDescription,
		Status:        domain.DamageStatusPending,
		CreatedAt:     now,
		CreatedBy:     session.Email,
	}
	if err := s.damageRepo.CreateDamageRequest(ctx, req); err != nil {
		logger.ExitMethodWithError("adminService.InspectBooking", err, "bookingID", b.ID)
		return b, nil, fmt.Errorf("create damage request: %w", err)
	}
	s.bus.Publish(domain.ChangeEvent{Type: domain.EventDamageCreated, SubjectID: req.ID, CarName: req.CarName, Actor: session.Email, At: now})

	if err := s.emailSvc.SendDamageBill(ctx, req); err != nil {
		logger.Warn("damage bill email failed", "requestID", req.ID, "error", err)
	}

	logger.ExitMethod("adminService.InspectBooking", "bookingID", b.ID, "requestID", req.ID)
	return b, req, nil
}

// ProcessRefund records a refund against a finished booking. No money moves.
func (s *adminService) ProcessRefund(ctx context.Context, session domain.Session, bookingID string, amountCents int64) (*domain.Booking, error) {
	logger.EnterMethod("adminService.ProcessRefund", "bookingID", bookingID, "amount", amountCents)
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	if amountCents < 0 {
		return nil, invalid("Refund amount cannot be negative")
	}

	now := s.now().UTC()
	b, err := s.update(ctx, bookingID, anyBooking, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusCancelled && b.Status != domain.BookingStatusReturned {
			return ErrInvalidTransition
		}
		if b.Refunded {
			return ErrAlreadyRefunded
		}
		amount := amountCents
		if amount == 0 {
			amount = b.TotalCents
		}
		if amount > b.TotalCents {
			return invalid("Refund amount cannot exceed the booking total")
		}
		b.Refunded = true
		b.RefundedAt = &now
		b.RefundedBy = session.Email
		b.RefundAmountCents = amount
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("adminService.ProcessRefund", err, "bookingID", bookingID)
		return nil, err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventBookingRefunded, SubjectID: b.ID, CarName: b.CarName, Actor: session.Email, At: now})
	logger.ExitMethod("adminService.ProcessRefund", "bookingID", b.ID, "amount", b.RefundAmountCents)
	return b, nil
}

func (s *adminService) Reset(ctx context.Context, session domain.Session, mode domain.ResetMode, preserveUsers bool) (*domain.ResetResult, error) {
	logger.EnterMethod("adminService.Reset", "mode", mode, "preserveUsers", preserveUsers)
	if err := requireStaff(session); err != nil {
		return nil, err
	}
	switch mode {
	case domain.ResetAuto, "", domain.ResetFull, domain.ResetPartial:
	default:
		return nil, invalid(fmt.Sprintf("Unknown reset mode %q", mode))
	}

	// The mode is resolved against the same ledger value the swap commits, so
	// a rental confirmed while the reset runs is either kept or refuses it.
	var (
		resolved domain.ResetMode
		total    int
	)
	kept, err := s.bookingRepo.RetainBookings(ctx, func(bookings []domain.Booking) ([]domain.Booking, error) {
		active := make([]domain.Booking, 0)
		for _, b := range bookings {
			if b.Status == domain.BookingStatusConfirmed {
				active = append(active, b)
			}
		}
		total = len(bookings)
		resolved = mode
		switch mode {
		case domain.ResetAuto, "":
			resolved = domain.ResetFull
			if len(active) > 0 {
				resolved = domain.ResetPartial
			}
		case domain.ResetFull:
			if len(active) > 0 {
				return nil, ErrActiveRentals
			}
		}
		if resolved == domain.ResetFull {
			return nil, nil
		}
		return active, nil
	})
	if err != nil {
		logger.ExitMethodWithError("adminService.Reset", err, "mode", mode)
		return nil, err
	}

	var result *domain.ResetResult
	if resolved == domain.ResetFull {
		result, err = s.fullReset(ctx, total, preserveUsers)
	} else {
		result, err = s.partialReset(ctx, total, kept, preserveUsers)
	}
	if err != nil {
		logger.ExitMethodWithError("adminService.Reset", err, "mode", resolved)
		return nil, err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventDataReset, Actor: session.Email})
	logger.Info("data reset", "mode", result.Mode, "bookingsKept", result.BookingsKept, "usersKept", result.UsersKept, "staff", session.Email)
	return result, nil
}

// fullReset runs after the ledger has been emptied.
func (s *adminService) fullReset(ctx context.Context, bookingCount int, preserveUsers bool) (*domain.ResetResult, error) {
	result := &domain.ResetResult{Mode: domain.ResetFull, BookingsRemoved: bookingCount}

	if err := s.bookingRepo.RetainCustomerBookings(ctx, map[string]bool{}); err != nil {
		return nil, err
	}
	if err := s.damageRepo.ReplaceDamageRequests(ctx, nil); err != nil {
		return nil, err
	}
	if err := s.queueRepo.ReplaceInspectionTasks(ctx, nil); err != nil {
		return nil, err
	}
	if err := s.stockRepo.ClearStock(ctx); err != nil {
		return nil, err
	}
	if err := s.reclaimStock(ctx); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if preserveUsers {
		result.UsersKept = len(users)
		return result, nil
	}
	if err := s.userRepo.ReplaceUsers(ctx, nil); err != nil {
		return nil, err
	}
	result.UsersRemoved = len(users)
	return result, nil
}

// reclaimStock takes a car back out of stock for every rental confirmed
// between the ledger swap and the stock clear.
func (s *adminService) reclaimStock(ctx context.Context) error {
	bookings, err := s.bookingRepo.ListBookings(ctx)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.Status != domain.BookingStatusConfirmed {
			continue
		}
		car, ok := catalog.Lookup(b.CarName)
		if !ok {
			continue
		}
		if _, err := s.stockRepo.AdjustStock(ctx, car.Name, -1, car.OriginalStock); err != nil {
			logger.Error("failed to reclaim stock after reset", "car", car.Name, "bookingID", b.ID, "error", err)
		}
	}
	return nil
}

// partialReset keeps active rentals and the customers holding them. Stock is
// left alone because the kept rentals still hold their cars.
func (s *adminService) partialReset(ctx context.Context, bookingCount int, active []domain.Booking, preserveUsers bool) (*domain.ResetResult, error) {
	result := &domain.ResetResult{
		Mode:            domain.ResetPartial,
		BookingsKept:    len(active),
		BookingsRemoved: bookingCount - len(active),
	}

	keep := make(map[string]bool, len(active))
	renters := make(map[string]bool)
	for _, b := range active {
		keep[b.ID] = true
		renters[strings.ToLower(strings.TrimSpace(b.CustomerEmail))] = true
	}

	if err := s.bookingRepo.RetainCustomerBookings(ctx, keep); err != nil {
		return nil, err
	}

	reqs, err := s.damageRepo.ListDamageRequests(ctx)
	if err != nil {
		return nil, err
	}
	keptReqs := make([]domain.DamageRequest, 0)
	for _, r := range reqs {
		if keep[r.BookingID] {
			keptReqs = append(keptReqs, r)
		}
	}
	if err := s.damageRepo.ReplaceDamageRequests(ctx, keptReqs); err != nil {
		return nil, err
	}

	tasks, err := s.queueRepo.ListInspectionTasks(ctx)
	if err != nil {
		return nil, err
	}
	keptTasks := make([]domain.InspectionTask, 0)
	for _, t := range tasks {
		if keep[t.BookingID] {
			keptTasks = append(keptTasks, t)
		}
	}
	if err := s.queueRepo.ReplaceInspectionTasks(ctx, keptTasks); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if preserveUsers {
		result.UsersKept = len(users)
		return result, nil
	}
	keptUsers := make([]domain.User, 0)
	for _, u := range users {
		if renters[strings.ToLower(strings.TrimSpace(u.Email))] {
			keptUsers = append(keptUsers, u)
		}
	}
	if err := s.userRepo.ReplaceUsers(ctx, keptUsers); err != nil {
		return nil, err
	}
	result.UsersKept = len(keptUsers)
	result.UsersRemoved = len(users) - len(keptUsers)
	return result, nil
}

func (s *adminService) MonthlyReport(ctx context.Context, session domain.Session, w io.Writer) error {
	if err := requireStaff(session); err != nil {
		return err
	}
	snap, err := s.dashboardSvc.Snapshot(ctx)
	if err != nil {
		return err
	}
	ledger, err := s.bookingRepo.ListBookings(ctx)
	if err != nil {
		return err
	}
	by := session.Name
	if by == "" {
		by = session.Email
	}
	if err := report.NewMonthlyReport(snap, ledger, by).Render(w); err != nil {
		return fmt.Errorf("render monthly report: %w", err)
	}
	return nil
}
