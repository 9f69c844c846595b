package service

import (
	"context"
	"io"

	"azoom-rental-backend/internal/domain"
)

type CatalogService interface {
	ListCars(ctx context.Context) ([]domain.Car, error)
	GetCar(ctx context.Context, name string) (*domain.Car, error)
	FilterCars(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error)
	SearchCars(ctx context.Context, query string) ([]domain.Car, error)
	QuoteDraft(ctx context.Context, draft domain.BookingDraft) (*domain.Car, domain.Quote, error)
}

type AuthService interface {
	ValidateEmail(email string, staff bool) error
	ValidatePassword(password string) error
	SignupCustomer(ctx context.Context, req domain.SignupRequest) (string, *domain.Profile, error) // token, profile
	SignupStaff(ctx context.Context, req domain.SignupRequest) (string, *domain.Profile, error)
	Login(ctx context.Context, kind domain.SessionKind, email, password string, rememberMe bool) (string, *domain.Profile, error) // token, profile
	SavedEmail(ctx context.Context) (string, error)
	Authenticate(ctx context.Context, token string) (domain.Session, error)
}

type BookingService interface {
	Create(ctx context.Context, s domain.Session, draft domain.BookingDraft) (*domain.Booking, error)
}

type CustomerService interface {
	ListMyBookings(ctx context.Context, s domain.Session, tab domain.BookingTab) ([]domain.Booking, error)
	ReturnBooking(ctx context.Context, s domain.Session, bookingID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, s domain.Session, bookingID string) (*domain.Booking, error)
	ExtendBooking(ctx context.Context, s domain.Session, bookingID string, extraDays int) (*domain.Booking, error)
	ModifyBooking(ctx context.Context, s domain.Session, bookingID string, changes domain.BookingChanges) (*domain.Booking, error)
	AccountSummary(ctx context.Context, s domain.Session) (*domain.AccountSummary, error)
	DeleteAccount(ctx context.Context, s domain.Session, confirmEmail string) error
	ListDamageRequests(ctx context.Context, s domain.Session) ([]domain.DamageRequest, error)
	PayDamage(ctx context.Context, s domain.Session, requestID string, card domain.CardDetails) (*domain.DamageRequest, error)
	ExportHistory(ctx context.Context, s domain.Session, w io.Writer) error
}

type DashboardService interface {
	Snapshot(ctx context.Context) (*domain.DashboardSnapshot, error)
}

type AdminService interface {
	ListUsers(ctx context.Context, s domain.Session) ([]domain.Profile, error)
	DeleteUser(ctx context.Context, s domain.Session, email string) error
	MarkReturned(ctx context.Context, s domain.Session, bookingID string) (*domain.Booking, error)
	ListInspectionQueue(ctx context.Context, s domain.Session) ([]domain.InspectionTask, error)
	InspectBooking(ctx context.Context, s domain.Session, bookingID string, result domain.InspectionResult) (*domain.Booking, *domain.DamageRequest, error)
	ProcessRefund(ctx context.Context, s domain.Session, bookingID string, amountCents int64) (*domain.Booking, error) // amountCents 0 refunds the full total
	Reset(ctx context.Context, s domain.Session, mode domain.ResetMode, preserveUsers bool) (*domain.ResetResult, error)
	MonthlyReport(ctx context.Context, s domain.Session, w io.Writer) error
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, b *domain.Booking) error
	SendDamageBill(ctx context.Context, req *domain.DamageRequest) error
	SendOverdueReminder(ctx context.Context, rental domain.OverdueRental) error

	// Operations
	SendLowStockAlert(ctx context.Context, alerts []domain.LowStockAlert) error
	SendReport(ctx context.Context, subject, htmlBody string) error
}
