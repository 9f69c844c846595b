package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/repository/kv"
	"azoom-rental-backend/internal/security"
	"azoom-rental-backend/internal/service"
	"azoom-rental-backend/internal/storage"
)

const testSecret = "test-secret-that-is-at-least-32-chars"

type apiEnv struct {
	server *httptest.Server
	hub    *DashboardHub
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	store := kv.NewStore(storage.NewMemoryStore())
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)
	tokens := security.NewTokenManager(testSecret, time.Hour)
	email := service.NewEmailService("", "noreply@azoom.mymail.sg", "AZoom", "")

	catalogSvc := service.NewCatalogService(store)
	authSvc := service.NewAuthService(store, store, store, tokens, bus, "@azoom.mymail.sg")
	bookingSvc := service.NewBookingService(catalogSvc, store, store, email, bus)
	customerSvc := service.NewCustomerService(store, store, store, store, store, bus)
	dashboardSvc := service.NewDashboardService(store, store, catalogSvc)
	adminSvc := service.NewAdminService(store, store, store, store, store, dashboardSvc, email, bus)

	hub := NewDashboardHub(dashboardSvc, bus, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := NewRouter(Handlers{
		Auth:       NewAuthHandler(authSvc),
		Catalog:    NewCatalogHandler(catalogSvc),
		Customer:   NewCustomerHandler(bookingSvc, customerSvc),
		Admin:      NewAdminHandler(adminSvc, dashboardSvc),
		Dashboard:  hub,
		Middleware: NewAuthMiddleware(authSvc),
	})
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return &apiEnv{server: server, hub: hub}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *apiEnv) signup(t *testing.T, kind domain.SessionKind, email string) string {
	t.Helper()
	body := map[string]any{
		"kind":             kind,
		"first_name":       "Jane",
		"last_name":        "Doe",
		"email":            email,
		"password":         "Secret123",
		"confirm_password": "Secret123",
		"agree_terms":      true,
	}
	if kind == domain.SessionStaff {
		body["first_name"], body["last_name"] = "Ops", "Lead"
		body["staff_id"], body["department"] = "S-1", "Operations"
	}
	resp := e.do(t, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[authResponse](t, resp).Token
}

func draftQuery(car string) string {
	return domain.BookingDraft{
		CarName:       car,
		Period:        domain.PeriodWeekly,
		Duration:      2,
		Color:         "Midnight Silver",
		PickupBranch:  "Storhub - 615 Lorong 4 Toa Payoh",
		ReturnBranch:  "Storhub - 615 Lorong 4 Toa Payoh",
		PickupDate:    time.Now().UTC().AddDate(0, 0, 2).Format(domain.DateLayout),
		PickupTime:    "10:00",
		PaymentMethod: "card",
	}.Values(nil).Encode()
}

func TestRouter_PublicCatalog(t *testing.T) {
	env := newAPIEnv(t)

	resp := env.do(t, http.MethodGet, "/api/cars?max_price=55&sort=price-asc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cars := decode[[]domain.Car](t, resp)
	require.Len(t, cars, 3)
	assert.Equal(t, "Honda Jazz E HEV", cars[0].Name)

	resp = env.do(t, http.MethodGet, "/api/cars?q=tesla", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Car](t, resp), 1)

	resp = env.do(t, http.MethodGet, "/api/cars/"+url.PathEscape("Tesla Model 3"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decode[domain.Car](t, resp).CurrentStock)

	resp = env.do(t, http.MethodGet, "/api/cars/Nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Quote(t *testing.T) {
	env := newAPIEnv(t)

	// client-side totals are ignored
	resp := env.do(t, http.MethodGet, "/api/checkout?"+draftQuery("Honda E Electric Advance")+"&total=1.00", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	q := decode[quoteResponse](t, resp)
	assert.Equal(t, 14, q.Quote.TotalDays)
	assert.Equal(t, int64(69300), q.Quote.TotalCents)
	assert.Contains(t, q.Next, "total=693.00")

	resp = env.do(t, http.MethodGet, "/api/quote?car=Tesla+Model+3&duration=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_AuthLevels(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.signup(t, domain.SessionCustomer, "jane@example.com")
	staff := env.signup(t, domain.SessionStaff, "ops@azoom.mymail.sg")

	resp := env.do(t, http.MethodGet, "/api/me/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/me/bookings", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/me/bookings", staff, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/admin/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/me/bookings", customer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/admin/dashboard", staff, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jane@example.com", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decode[errorResponse](t, resp).Error)

	resp = env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{"email": "jane@example.com", "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_BookingFlow(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.signup(t, domain.SessionCustomer, "jane@example.com")
	staff := env.signup(t, domain.SessionStaff, "ops@azoom.mymail.sg")

	resp := env.do(t, http.MethodPost, "/api/bookings?"+draftQuery("Tesla Model 3"), customer, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	b := decode[domain.Booking](t, resp)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)

	resp = env.do(t, http.MethodGet, "/api/me/bookings?tab=current", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Booking](t, resp), 1)

	resp = env.do(t, http.MethodPost, "/api/me/bookings/"+b.ID+"/extend", customer, map[string]int{"days": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 15, decode[domain.Booking](t, resp).TotalDays)

	resp = env.do(t, http.MethodPost, "/api/admin/bookings/"+b.ID+"/return", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/api/me/bookings/"+b.ID+"/cancel", customer, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/bookings/"+b.ID+"/inspect", staff, domain.InspectionResult{
		HasDamage: true, DamageDescription: "Scuffed rim", DamageChargeCents: 8000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inspected := decode[inspectResponse](t, resp)
	require.NotNil(t, inspected.DamageRequest)

	resp = env.do(t, http.MethodPost, "/api/me/damage/"+inspected.DamageRequest.ID+"/pay", customer, domain.CardDetails{
		CardNumber: "4111111111111111", Expiry: "10/29", CVV: "321",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.DamageStatusPaid, decode[domain.DamageRequest](t, resp).Status)

	resp = env.do(t, http.MethodGet, "/api/me/bookings/export", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	resp = env.do(t, http.MethodGet, "/api/admin/reports/monthly", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/reset", staff, map[string]any{"mode": "auto"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ResetFull, decode[domain.ResetResult](t, resp).Mode)
}

func TestDashboardHub_PushesOnChange(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.signup(t, domain.SessionCustomer, "jane@example.com")
	staff := env.signup(t, domain.SessionStaff, "ops@azoom.mymail.sg")

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/admin/dashboard/ws?token=" + url.QueryEscape(staff)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var snap domain.DashboardSnapshot
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, 0, snap.ConfirmedCount)

	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := env.do(t, http.MethodPost, "/api/bookings?"+draftQuery("Tesla Model 3"), customer, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// snapshots triggered by the signups may still be in flight
	for snap.ConfirmedCount == 0 {
		require.NoError(t, conn.ReadJSON(&snap))
	}
	assert.Equal(t, 1, snap.ConfirmedCount)
	assert.Equal(t, "39/40", snap.ActiveFleet)
}

func TestDashboardHub_RequiresStaff(t *testing.T) {
	env := newAPIEnv(t)
	customer := env.signup(t, domain.SessionCustomer, "jane@example.com")

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/admin/dashboard/ws?token=" + url.QueryEscape(customer)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://admin.azoom.sg"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://admin.azoom.sg")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker(nil)(req))
}
