package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Customer   *CustomerHandler
	Admin      *AdminHandler
	Dashboard  *DashboardHub
	Middleware *AuthMiddleware
}

// NewRouter registers every API route under its security name and wraps the
// router with the auth middleware.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost).Name("auth.signup")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/saved-email", h.Auth.SavedEmail).Methods(http.MethodGet).Name("auth.saved_email")

	api.HandleFunc("/cars", h.Catalog.ListCars).Methods(http.MethodGet).Name("cars.list")
	api.HandleFunc("/cars/{name}", h.Catalog.GetCar).Methods(http.MethodGet).Name("cars.get")
	api.HandleFunc("/quote", h.Catalog.Quote).Methods(http.MethodGet).Name("quotes.create")
	api.HandleFunc("/checkout", h.Catalog.Checkout).Methods(http.MethodGet).Name("checkout.get")

	api.HandleFunc("/bookings", h.Customer.CreateBooking).Methods(http.MethodPost).Name("bookings.create")
	api.HandleFunc("/me/bookings", h.Customer.ListBookings).Methods(http.MethodGet).Name("me.bookings.list")
	api.HandleFunc("/me/bookings/export", h.Customer.ExportHistory).Methods(http.MethodGet).Name("me.bookings.export")
	api.HandleFunc("/me/bookings/{id}/return", h.Customer.ReturnBooking).Methods(http.MethodPost).Name("me.bookings.return")
	api.HandleFunc("/me/bookings/{id}/cancel", h.Customer.CancelBooking).Methods(http.MethodPost).Name("me.bookings.cancel")
	api.HandleFunc("/me/bookings/{id}/extend", h.Customer.ExtendBooking).Methods(http.MethodPost).Name("me.bookings.extend")
	api.HandleFunc("/me/bookings/{id}", h.Customer.ModifyBooking).Methods(http.MethodPatch).Name("me.bookings.modify")
	api.HandleFunc("/me/account", h.Customer.Account).Methods(http.MethodGet).Name("me.account.get")
	api.HandleFunc("/me/account", h.Customer.DeleteAccount).Methods(http.MethodDelete).Name("me.account.delete")
	api.HandleFunc("/me/damage", h.Customer.ListDamage).Methods(http.MethodGet).Name("me.damage.list")
	api.HandleFunc("/me/damage/{id}/pay", h.Customer.PayDamage).Methods(http.MethodPost).Name("me.damage.pay")

	api.HandleFunc("/admin/dashboard", h.Admin.Dashboard).Methods(http.MethodGet).Name("admin.dashboard")
	api.HandleFunc("/admin/dashboard/ws", h.Dashboard.ServeWS).Methods(http.MethodGet).Name("admin.dashboard.ws")
	api.HandleFunc("/admin/users", h.Admin.ListUsers).Methods(http.MethodGet).Name("admin.users.list")
	api.HandleFunc("/admin/users/{email}", h.Admin.DeleteUser).Methods(http.MethodDelete).Name("admin.users.delete")
	api.HandleFunc("/admin/bookings/{id}/return", h.Admin.MarkReturned).Methods(http.MethodPost).Name("admin.bookings.return")
	api.HandleFunc("/admin/inspections", h.Admin.InspectionQueue).Methods(http.MethodGet).Name("admin.inspections.list")
	api.HandleFunc("/admin/bookings/{id}/inspect", h.Admin.Inspect).Methods(http.MethodPost).Name("admin.bookings.inspect")
	api.HandleFunc("/admin/bookings/{id}/refund", h.Admin.Refund).Methods(http.MethodPost).Name("admin.bookings.refund")
	api.HandleFunc("/admin/reset", h.Admin.Reset).Methods(http.MethodPost).Name("admin.reset")
	api.HandleFunc("/admin/reports/monthly", h.Admin.MonthlyReport).Methods(http.MethodGet).Name("admin.reports.monthly")

	router.Use(h.Middleware.Handler)
	return router
}
