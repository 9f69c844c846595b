package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/repository/kv"
	"azoom-rental-backend/internal/security"
	"azoom-rental-backend/internal/storage"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingConfirmation(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockEmailService) SendDamageBill(ctx context.Context, req *domain.DamageRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, rental domain.OverdueRental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}

func (m *MockEmailService) SendLowStockAlert(ctx context.Context, alerts []domain.LowStockAlert) error {
	args := m.Called(ctx, alerts)
	return args.Error(0)
}

func (m *MockEmailService) SendReport(ctx context.Context, subject, htmlBody string) error {
	args := m.Called(ctx, subject, htmlBody)
	return args.Error(0)
}

// failingCustomerCopies fails every write of the customer-scoped booking list.
type failingCustomerCopies struct {
	repository.BookingRepository
}

var errCustomerCopy = errors.New("customer list unavailable")

func (f failingCustomerCopies) AppendCustomerBooking(context.Context, string, *domain.Booking) error {
	return errCustomerCopy
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

const testSecret = "test-secret-that-is-at-least-32-chars"

type testEnv struct {
	store     *kv.Store
	bus       *events.Bus
	email     *MockEmailService
	tokens    security.TokenManager
	clock     *fakeClock
	catalog   CatalogService
	auth      AuthService
	booking   BookingService
	customer  CustomerService
	dashboard DashboardService
	admin     AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := kv.NewStore(storage.NewMemoryStore())
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	email := new(MockEmailService)
	email.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil).Maybe()
	email.On("SendDamageBill", mock.Anything, mock.Anything).Return(nil).Maybe()

	clock := &fakeClock{t: time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)}
	tokens := security.NewTokenManager(testSecret, time.Hour)

	env := &testEnv{store: store, bus: bus, email: email, tokens: tokens, clock: clock}
	env.catalog = NewCatalogService(store)
	env.auth = NewAuthService(store, store, store, tokens, bus, "@azoom.mymail.sg")
	env.booking = NewBookingService(env.catalog, store, store, email, bus)
	env.customer = NewCustomerService(store, store, store, store, store, bus)
	env.dashboard = NewDashboardService(store, store, env.catalog)
	env.admin = NewAdminService(store, store, store, store, store, env.dashboard, email, bus)

	env.auth.(*authService).now = clock.Now
	env.booking.(*bookingService).now = clock.Now
	env.customer.(*customerService).now = clock.Now
	env.dashboard.(*dashboardService).now = clock.Now
	env.admin.(*adminService).now = clock.Now
	return env
}

func (e *testEnv) signupCustomer(t *testing.T, first, last, email string) domain.Session {
	t.Helper()
	token, _, err := e.auth.SignupCustomer(context.Background(), domain.SignupRequest{
		FirstName:       first,
		LastName:        last,
		Email:           email,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		AgreeTerms:      true,
	})
	require.NoError(t, err)
	s, err := e.tokens.ValidateToken(token)
	require.NoError(t, err)
	return s
}

func (e *testEnv) signupStaff(t *testing.T, email string) domain.Session {
	t.Helper()
	token, _, err := e.auth.SignupStaff(context.Background(), domain.SignupRequest{
		FirstName:       "Ops",
		LastName:        "Lead",
		Email:           email,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		AgreeTerms:      true,
		StaffID:         "S-001",
		Department:      "Operations",
	})
	require.NoError(t, err)
	s, err := e.tokens.ValidateToken(token)
	require.NoError(t, err)
	return s
}

func (e *testEnv) book(t *testing.T, s domain.Session, car string) *domain.Booking {
	t.Helper()
	b, err := e.booking.Create(context.Background(), s, testDraft(car))
	require.NoError(t, err)
	return b
}

func testDraft(car string) domain.BookingDraft {
	return domain.BookingDraft{
		CarName:       car,
		Period:        domain.PeriodDaily,
		Duration:      3,
		Color:         "Pearl White",
		PickupBranch:  "Storhub - 615 Lorong 4 Toa Payoh",
		ReturnBranch:  "Keppel Bay - 2 Keppel Bay Vista",
		PickupDate:    "2025-01-12",
		PickupTime:    "10:00",
		PaymentMethod: "card",
	}
}

func (e *testEnv) stock(t *testing.T, car string) int {
	t.Helper()
	c, err := e.catalog.GetCar(context.Background(), car)
	require.NoError(t, err)
	return c.CurrentStock
}
