package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/service"
)

type CatalogHandler struct {
	catalogSvc service.CatalogService
}

func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListCars searches by name when q is present and filters otherwise.
// max_price is in whole dollars, like the catalog's price slider.
func (h *CatalogHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, ok := q["q"]; ok {
		cars, err := h.catalogSvc.SearchCars(r.Context(), q.Get("q"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cars)
		return
	}

	filter := domain.CarFilter{
		Availability: domain.AvailabilityFilter(strings.ToLower(q.Get("availability"))),
		Sort:         domain.CarSort(strings.ToLower(q.Get("sort"))),
	}
	if v := q.Get("max_price"); v != "" {
		dollars, err := strconv.ParseInt(v, 10, 64)
		if err != nil || dollars < 0 {
			writeError(w, r, badRequest("max_price must be a whole number of dollars"))
			return
		}
		filter.MaxPriceCents = dollars * 100
	}
	cars, err := h.catalogSvc.FilterCars(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CatalogHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.catalogSvc.GetCar(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

type quoteResponse struct {
	Car   *domain.Car         `json:"car"`
	Draft domain.BookingDraft `json:"draft"`
	Quote domain.Quote        `json:"quote"`
	// Next is the query string for the following funnel step, totals included for display.
	Next string `json:"next"`
}

func (h *CatalogHandler) quote(w http.ResponseWriter, r *http.Request) {
	draft, err := domain.ParseDraft(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	car, quote, err := h.catalogSvc.QuoteDraft(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Car:   car,
		Draft: draft,
		Quote: quote,
		Next:  draft.Values(&quote).Encode(),
	})
}

// Quote prices a draft for the booking step.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) { h.quote(w, r) }

// Checkout re-prices the draft relayed to the payment step. Totals in the
// query string are ignored.
func (h *CatalogHandler) Checkout(w http.ResponseWriter, r *http.Request) { h.quote(w, r) }
