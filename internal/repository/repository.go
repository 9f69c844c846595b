package repository

import (
	"context"
	"errors"

	"azoom-rental-backend/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrOutOfStock     = errors.New("car is out of stock")
	ErrCorruptRecord  = errors.New("corrupt stored record")
)

type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser fails with ErrDuplicateEmail when the email (case-insensitive) is taken.
	CreateUser(ctx context.Context, user *domain.User) error
	DeleteUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ReplaceUsers(ctx context.Context, users []domain.User) error
}

type StaffRepository interface {
	ListStaff(ctx context.Context) ([]domain.Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error)
	CreateStaff(ctx context.Context, staff *domain.Staff) error
}

type BookingRepository interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	AppendBooking(ctx context.Context, b *domain.Booking) error
	RemoveBooking(ctx context.Context, id string) error
	// UpdateBooking applies fn to the stored booking under compare-and-swap and
	// returns the committed result. fn may run more than once.
	UpdateBooking(ctx context.Context, id string, fn func(b *domain.Booking) error) (*domain.Booking, error)
	// RetainBookings rewrites the ledger to the subset fn returns, under
	// compare-and-swap, and returns the committed subset. fn may run more than once.
	RetainBookings(ctx context.Context, fn func(bookings []domain.Booking) ([]domain.Booking, error)) ([]domain.Booking, error)

	AppendCustomerBooking(ctx context.Context, customerID string, b *domain.Booking) error
	ListCustomerBookings(ctx context.Context, customerID string) ([]domain.Booking, error)
	// RetainCustomerBookings drops customer-scoped copies whose id is not in keep.
	RetainCustomerBookings(ctx context.Context, keep map[string]bool) error
}

type StockRepository interface {
	// GetStock returns the override for a car and whether one is stored.
	GetStock(ctx context.Context, carName string) (int, bool, error)
	// AdjustStock adds delta to the current stock (capacity when no override
	// exists), clamped to capacity. A result below zero fails with ErrOutOfStock.
	AdjustStock(ctx context.Context, carName string, delta, capacity int) (int, error)
	ClearStock(ctx context.Context) error
}

type DamageRequestRepository interface {
	ListDamageRequests(ctx context.Context) ([]domain.DamageRequest, error)
	GetDamageRequest(ctx context.Context, id string) (*domain.DamageRequest, error)
	CreateDamageRequest(ctx context.Context, req *domain.DamageRequest) error
	UpdateDamageRequest(ctx context.Context, id string, fn func(r *domain.DamageRequest) error) (*domain.DamageRequest, error)
	ReplaceDamageRequests(ctx context.Context, reqs []domain.DamageRequest) error
}

type InspectionQueueRepository interface {
	ListInspectionTasks(ctx context.Context) ([]domain.InspectionTask, error)
	EnqueueInspection(ctx context.Context, task *domain.InspectionTask) error
	// DequeueInspection removes the task for a booking and reports whether it was queued.
	DequeueInspection(ctx context.Context, bookingID string) (bool, error)
	ReplaceInspectionTasks(ctx context.Context, tasks []domain.InspectionTask) error
}

type PreferenceRepository interface {
	GetSavedEmail(ctx context.Context) (string, error)
	SetSavedEmail(ctx context.Context, email string) error
}
