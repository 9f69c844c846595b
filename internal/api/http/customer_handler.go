package http

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/service"
)

type CustomerHandler struct {
	bookingSvc  service.BookingService
	customerSvc service.CustomerService
}

func NewCustomerHandler(bookingSvc service.BookingService, customerSvc service.CustomerService) *CustomerHandler {
	return &CustomerHandler{bookingSvc: bookingSvc, customerSvc: customerSvc}
}

// CreateBooking takes the draft from the query string or a form body, the
// same parameters the funnel relays between steps.
func (h *CustomerHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, badRequest("Malformed booking parameters"))
		return
	}
	draft, err := domain.ParseDraft(r.Form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.Create(r.Context(), sessionFrom(r), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *CustomerHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	tab := domain.BookingTab(strings.ToLower(r.URL.Query().Get("tab")))
	if tab == "" {
		tab = domain.TabAll
	}
	bookings, err := h.customerSvc.ListMyBookings(r.Context(), sessionFrom(r), tab)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *CustomerHandler) ReturnBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.customerSvc.ReturnBooking(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *CustomerHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.customerSvc.CancelBooking(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type extendRequest struct {
	Days int `json:"days"`
}

func (h *CustomerHandler) ExtendBooking(w http.ResponseWriter, r *http.Request) {
	var req extendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.customerSvc.ExtendBooking(r.Context(), sessionFrom(r), mux.Vars(r)["id"], req.Days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *CustomerHandler) ModifyBooking(w http.ResponseWriter, r *http.Request) {
	var changes domain.BookingChanges
	if err := decodeJSON(r, &changes); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.customerSvc.ModifyBooking(r.Context(), sessionFrom(r), mux.Vars(r)["id"], changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ExportHistory serves the printable booking history page.
func (h *CustomerHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.customerSvc.ExportHistory(r.Context(), sessionFrom(r), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	writeHTML(w, &buf)
}

func (h *CustomerHandler) Account(w http.ResponseWriter, r *http.Request) {
	summary, err := h.customerSvc.AccountSummary(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type deleteAccountRequest struct {
	ConfirmEmail string `json:"confirm_email"`
}

func (h *CustomerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.customerSvc.DeleteAccount(r.Context(), sessionFrom(r), req.ConfirmEmail); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) ListDamage(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.customerSvc.ListDamageRequests(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *CustomerHandler) PayDamage(w http.ResponseWriter, r *http.Request) {
	var card domain.CardDetails
	if err := decodeJSON(r, &card); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.customerSvc.PayDamage(r.Context(), sessionFrom(r), mux.Vars(r)["id"], card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func writeHTML(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
