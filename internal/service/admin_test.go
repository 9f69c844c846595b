package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/repository"
)

// racingBookingRepo runs before once, the first time the ledger is about to
// be rewritten, and after once the rewrite has committed.
type racingBookingRepo struct {
	repository.BookingRepository
	before, after func()
	once          sync.Once
}

func (r *racingBookingRepo) RetainBookings(ctx context.Context, fn func([]domain.Booking) ([]domain.Booking, error)) ([]domain.Booking, error) {
	kept, err := r.BookingRepository.RetainBookings(ctx, func(bookings []domain.Booking) ([]domain.Booking, error) {
		if r.before != nil {
			r.once.Do(r.before)
		}
		return fn(bookings)
	})
	if err == nil && r.after != nil {
		r.after()
	}
	return kept, err
}

func TestAdminService_RequiresStaff(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

	_, err := env.admin.ListUsers(ctx, jane)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.admin.Reset(ctx, domain.Session{}, domain.ResetAuto, false)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAdminService_Users(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ops := env.signupStaff(t, "ops@azoom.mymail.sg")
	env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
	env.signupCustomer(t, "Bob", "Tan", "bob@example.com")

	users, err := env.admin.ListUsers(ctx, ops)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob@example.com", users[0].Email)

	require.NoError(t, env.admin.DeleteUser(ctx, ops, "JANE@example.com"))
	assert.ErrorIs(t, env.admin.DeleteUser(ctx, ops, "jane@example.com"), ErrUserNotFound)

	users, err = env.admin.ListUsers(ctx, ops)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAdminService_MarkReturned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ops := env.signupStaff(t, "ops@azoom.mymail.sg")
	jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
	b := env.book(t, jane, "Tesla Model 3")

	returned, err := env.admin.MarkReturned(ctx, ops, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusReturned, returned.Status)
	assert.Equal(t, "ops@azoom.mymail.sg", returned.ReturnedBy)
	assert.Equal(t, 5, env.stock(t, "Tesla Model 3"))

	queue, err := env.admin.ListInspectionQueue(ctx, ops)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "ops@azoom.mymail.sg", queue[0].QueuedBy)

	_, err = env.admin.MarkReturned(ctx, ops, "BK-missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestAdminService_InspectBooking(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, domain.Session, *domain.Booking) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
		b := env.book(t, jane, "Tesla Model 3")
		return env, ops, b
	}

	t.Run("MustBeReturned", func(t *testing.T) {
		env, ops, b := setup(t)
		_, _, err := env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("NoDamage", func(t *testing.T) {
		env, ops, b := setup(t)
		_, err := env.admin.MarkReturned(ctx, ops, b.ID)
		require.NoError(t, err)

		inspected, req, err := env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{})
		require.NoError(t, err)
		assert.Nil(t, req)
		require.NotNil(t, inspected.Inspection)
		assert.False(t, inspected.Inspection.HasDamage)

		queue, err := env.admin.ListInspectionQueue(ctx, ops)
		require.NoError(t, err)
		assert.Empty(t, queue)

		_, _, err = env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{})
		assert.ErrorIs(t, err, ErrAlreadyInspected)
	})

	t.Run("DamageCreatesRequestAndBill", func(t *testing.T) {
		env, ops, b := setup(t)
		_, err := env.admin.MarkReturned(ctx, ops, b.ID)
		require.NoError(t, err)

		_, _, err = env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{HasDamage: true, DamageDescription: "Dent"})
		assert.ErrorIs(t, err, ErrValidation)
		_, _, err = env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{HasDamage: true, DamageChargeCents: 100})
		assert.ErrorIs(t, err, ErrValidation)

		_, req, err := env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{
			HasDamage: true, DamageDescription: " Dent on door ", DamageChargeCents: 15000,
		})
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, domain.DamageStatusPending, req.Status)
		assert.Equal(t, "Dent on door", req.Description)
		assert.Equal(t, "jane@example.com", req.CustomerEmail)
		env.email.AssertCalled(t, "SendDamageBill", mock.Anything, req)
	})
}

func TestAdminService_ProcessRefund(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ops := env.signupStaff(t, "ops@azoom.mymail.sg")
	jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

	active := env.book(t, jane, "Tesla Model 3")
	_, err := env.admin.ProcessRefund(ctx, ops, active.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.customer.CancelBooking(ctx, jane, active.ID)
	require.NoError(t, err)

	_, err = env.admin.ProcessRefund(ctx, ops, active.ID, active.TotalCents+1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.admin.ProcessRefund(ctx, ops, active.ID, -5)
	assert.ErrorIs(t, err, ErrValidation)

	refunded, err := env.admin.ProcessRefund(ctx, ops, active.ID, 0)
	require.NoError(t, err)
	assert.True(t, refunded.Refunded)
	assert.Equal(t, active.TotalCents, refunded.RefundAmountCents)
	assert.Equal(t, "ops@azoom.mymail.sg", refunded.RefundedBy)

	_, err = env.admin.ProcessRefund(ctx, ops, active.ID, 100)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)

	partial := env.book(t, jane, "Honda Jazz E HEV")
	_, err = env.admin.MarkReturned(ctx, ops, partial.ID)
	require.NoError(t, err)
	refunded, err = env.admin.ProcessRefund(ctx, ops, partial.ID, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), refunded.RefundAmountCents)
}

func TestAdminService_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("FullRefusedWithActiveRentals", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
		env.book(t, jane, "Tesla Model 3")

		_, err := env.admin.Reset(ctx, ops, domain.ResetFull, false)
		assert.ErrorIs(t, err, ErrActiveRentals)
	})

	t.Run("AutoWithoutActiveIsFull", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
		b := env.book(t, jane, "Tesla Model 3")
		_, err := env.customer.ReturnBooking(ctx, jane, b.ID)
		require.NoError(t, err)
		c := env.book(t, jane, "Toyota bZ4X")
		_, err = env.customer.CancelBooking(ctx, jane, c.ID)
		require.NoError(t, err)

		result, err := env.admin.Reset(ctx, ops, domain.ResetAuto, false)
		require.NoError(t, err)
		assert.Equal(t, domain.ResetFull, result.Mode)
		assert.Equal(t, 2, result.BookingsRemoved)
		assert.Equal(t, 1, result.UsersRemoved)

		ledger, err := env.store.ListBookings(ctx)
		require.NoError(t, err)
		assert.Empty(t, ledger)
		queue, err := env.store.ListInspectionTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, queue)
		copies, err := env.store.ListCustomerBookings(ctx, jane.UserID)
		require.NoError(t, err)
		assert.Empty(t, copies)
		_, ok, err := env.store.GetStock(ctx, "Tesla Model 3")
		require.NoError(t, err)
		assert.False(t, ok)

		// staff accounts survive a reset
		_, _, err = env.auth.Login(ctx, domain.SessionStaff, "ops@azoom.mymail.sg", "Secret123", false)
		assert.NoError(t, err)
	})

	t.Run("FullPreservingUsers", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

		result, err := env.admin.Reset(ctx, ops, domain.ResetFull, true)
		require.NoError(t, err)
		assert.Equal(t, 1, result.UsersKept)
		users, err := env.store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("AutoWithActiveIsPartial", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
		bob := env.signupCustomer(t, "Bob", "Tan", "bob@example.com")
		env.signupCustomer(t, "Amy", "Lim", "amy@example.com")

		kept := env.book(t, jane, "Tesla Model 3")
		done := env.book(t, bob, "Tesla Model 3")
		_, err := env.customer.ReturnBooking(ctx, bob, done.ID)
		require.NoError(t, err)
		_, _, err = env.admin.InspectBooking(ctx, ops, done.ID, domain.InspectionResult{
			HasDamage: true, DamageDescription: "Scratch", DamageChargeCents: 5000,
		})
		require.NoError(t, err)

		result, err := env.admin.Reset(ctx, ops, domain.ResetAuto, false)
		require.NoError(t, err)
		assert.Equal(t, domain.ResetPartial, result.Mode)
		assert.Equal(t, 1, result.BookingsKept)
		assert.Equal(t, 1, result.BookingsRemoved)
		assert.Equal(t, 1, result.UsersKept)
		assert.Equal(t, 2, result.UsersRemoved)

		ledger, err := env.store.ListBookings(ctx)
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		assert.Equal(t, kept.ID, ledger[0].ID)

		reqs, err := env.store.ListDamageRequests(ctx)
		require.NoError(t, err)
		assert.Empty(t, reqs)

		users, err := env.store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "jane@example.com", users[0].Email)

		// the kept rental still holds its car
		assert.Equal(t, 4, env.stock(t, "Tesla Model 3"))
	})

	t.Run("UnknownMode", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		_, err := env.admin.Reset(ctx, ops, domain.ResetMode("everything"), false)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("AutoKeepsRentalBookedDuringReset", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
		bob := env.signupCustomer(t, "Bob", "Tan", "bob@example.com")
		done := env.book(t, jane, "Tesla Model 3")
		_, err := env.customer.ReturnBooking(ctx, jane, done.ID)
		require.NoError(t, err)

		var late *domain.Booking
		svc := env.admin.(*adminService)
		svc.bookingRepo = &racingBookingRepo{
			BookingRepository: svc.bookingRepo,
			before:            func() { late = env.book(t, bob, "Tesla Model 3") },
		}

		result, err := env.admin.Reset(ctx, ops, domain.ResetAuto, false)
		require.NoError(t, err)
		assert.Equal(t, domain.ResetPartial, result.Mode)
		assert.Equal(t, 1, result.BookingsKept)
		assert.Equal(t, 1, result.BookingsRemoved)

		ledger, err := env.store.ListBookings(ctx)
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		assert.Equal(t, late.ID, ledger[0].ID)
		assert.Equal(t, 4, env.stock(t, "Tesla Model 3"))

		users, err := env.store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "bob@example.com", users[0].Email)
	})

	t.Run("FullRefusedByRentalBookedDuringReset", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

		svc := env.admin.(*adminService)
		svc.bookingRepo = &racingBookingRepo{
			BookingRepository: svc.bookingRepo,
			before:            func() { env.book(t, jane, "Toyota bZ4X") },
		}

		_, err := env.admin.Reset(ctx, ops, domain.ResetFull, false)
		assert.ErrorIs(t, err, ErrActiveRentals)

		ledger, err := env.store.ListBookings(ctx)
		require.NoError(t, err)
		assert.Len(t, ledger, 1)
		assert.Equal(t, 3, env.stock(t, "Toyota bZ4X"))
	})

	t.Run("FullReclaimsStockForRentalAfterSwap", func(t *testing.T) {
		env := newTestEnv(t)
		ops := env.signupStaff(t, "ops@azoom.mymail.sg")
		jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

		svc := env.admin.(*adminService)
		svc.bookingRepo = &racingBookingRepo{
			BookingRepository: svc.bookingRepo,
			after:             func() { env.book(t, jane, "Tesla Model 3") },
		}

		result, err := env.admin.Reset(ctx, ops, domain.ResetFull, true)
		require.NoError(t, err)
		assert.Equal(t, domain.ResetFull, result.Mode)

		ledger, err := env.store.ListBookings(ctx)
		require.NoError(t, err)
		assert.Len(t, ledger, 1)
		assert.Equal(t, 4, env.stock(t, "Tesla Model 3"))
	})
}

func TestAdminService_MonthlyReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ops := env.signupStaff(t, "ops@azoom.mymail.sg")
	jane := env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
	b := env.book(t, jane, "Tesla Model 3")

	var buf bytes.Buffer
	require.NoError(t, env.admin.MonthlyReport(ctx, ops, &buf))
	out := buf.String()
	assert.Contains(t, out, "January 2025")
	assert.Contains(t, out, "Ops Lead")
	assert.Contains(t, out, b.ID)
	assert.Contains(t, out, "$285.00")
}
