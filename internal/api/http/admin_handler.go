package http

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/service"
)

type AdminHandler struct {
	adminSvc     service.AdminService
	dashboardSvc service.DashboardService
}

func NewAdminHandler(adminSvc service.AdminService, dashboardSvc service.DashboardService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, dashboardSvc: dashboardSvc}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboardSvc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminSvc.ListUsers(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminSvc.DeleteUser(r.Context(), sessionFrom(r), mux.Vars(r)["email"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	b, err := h.adminSvc.MarkReturned(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *AdminHandler) InspectionQueue(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.adminSvc.ListInspectionQueue(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type inspectResponse struct {
	Booking       *domain.Booking       `json:"booking"`
	DamageRequest *domain.DamageRequest `json:"damage_request,omitempty"`
}

func (h *AdminHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var result domain.InspectionResult
	if err := decodeJSON(r, &result); err != nil {
		writeError(w, r, err)
		return
	}
	b, req, err := h.adminSvc.InspectBooking(r.Context(), sessionFrom(r), mux.Vars(r)["id"], result)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspectResponse{Booking: b, DamageRequest: req})
}

type refundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *AdminHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.adminSvc.ProcessRefund(r.Context(), sessionFrom(r), mux.Vars(r)["id"], req.AmountCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type resetRequest struct {
	Mode          domain.ResetMode `json:"mode"`
	PreserveUsers bool             `json:"preserve_users"`
}

func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.adminSvc.Reset(r.Context(), sessionFrom(r), req.Mode, req.PreserveUsers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.adminSvc.MonthlyReport(r.Context(), sessionFrom(r), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	writeHTML(w, &buf)
}
