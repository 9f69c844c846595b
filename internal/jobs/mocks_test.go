package jobs

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"azoom-rental-backend/internal/domain"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Snapshot(ctx context.Context) (*domain.DashboardSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSnapshot), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, s domain.Session) ([]domain.Profile, error) {
	args := m.Called(ctx, s)
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, s domain.Session, email string) error {
	return m.Called(ctx, s, email).Error(0)
}

func (m *MockAdminService) MarkReturned(ctx context.Context, s domain.Session, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, s, bookingID)
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockAdminService) ListInspectionQueue(ctx context.Context, s domain.Session) ([]domain.InspectionTask, error) {
	args := m.Called(ctx, s)
	return args.Get(0).([]domain.InspectionTask), args.Error(1)
}

func (m *MockAdminService) InspectBooking(ctx context.Context, s domain.Session, bookingID string, result domain.InspectionResult) (*domain.Booking, *domain.DamageRequest, error) {
	args := m.Called(ctx, s, bookingID, result)
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.DamageRequest), args.Error(2)
}

func (m *MockAdminService) ProcessRefund(ctx context.Context, s domain.Session, bookingID string, amountCents int64) (*domain.Booking, error) {
	args := m.Called(ctx, s, bookingID, amountCents)
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockAdminService) Reset(ctx context.Context, s domain.Session, mode domain.ResetMode, preserveUsers bool) (*domain.ResetResult, error) {
	args := m.Called(ctx, s, mode, preserveUsers)
	return args.Get(0).(*domain.ResetResult), args.Error(1)
}

func (m *MockAdminService) MonthlyReport(ctx context.Context, s domain.Session, w io.Writer) error {
	args := m.Called(ctx, s, w)
	if body := args.String(1); body != "" {
		io.WriteString(w, body)
	}
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockEmailService) SendDamageBill(ctx context.Context, req *domain.DamageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, rental domain.OverdueRental) error {
	return m.Called(ctx, rental).Error(0)
}

func (m *MockEmailService) SendLowStockAlert(ctx context.Context, alerts []domain.LowStockAlert) error {
	return m.Called(ctx, alerts).Error(0)
}

func (m *MockEmailService) SendReport(ctx context.Context, subject, htmlBody string) error {
	return m.Called(ctx, subject, htmlBody).Error(0)
}
