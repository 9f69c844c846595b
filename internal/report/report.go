package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"azoom-rental-backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": Money,
	"upper": strings.ToUpper,
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"stamp": func(t time.Time) string { return t.Format("Monday, January 2, 2006 at 15:04 MST") },
}).ParseFS(templateFS, "templates/*.html"))

const (
	monthlyTemplate = "monthly.html"
	historyTemplate = "history.html"
	recentLimit     = 10
)

// Money renders cents as a dollar amount with thousands separators.
func Money(cents int64) string {
	s := domain.FormatCents(cents)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func percent(part, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(part)*100/float64(total))
}

type StatusRow struct {
	Label   string
	Class   string
	Count   int
	Percent string
}

type TopCarRow struct {
	Rank         string
	CarName      string
	Bookings     int
	RevenueCents int64
}

type BookingRow struct {
	ID          string
	Customer    string
	CarName     string
	BookingDate time.Time
	PickupDate  string
	TotalDays   int
	Branch      string
	TotalCents  int64
	Status      domain.BookingStatus
}

func bookingRow(b domain.Booking) BookingRow {
	customer := b.CustomerName
	if customer == "" {
		customer = b.CustomerEmail
	}
	branch, _, _ := strings.Cut(b.PickupBranch, " - ")
	if branch == "" {
		branch = "N/A"
	}
	return BookingRow{
		ID:          b.ID,
		Customer:    customer,
		CarName:     b.CarName,
		BookingDate: b.BookingDate,
		PickupDate:  b.PickupDate,
		TotalDays:   b.TotalDays,
		Branch:      branch,
		TotalCents:  b.TotalCents,
		Status:      b.Status,
	}
}

// MonthlyReport is the view model behind the staff monthly business report.
type MonthlyReport struct {
	Period      string
	GeneratedAt time.Time
	GeneratedBy string

	TotalCustomers int
	TotalBookings  int
	ActiveRentals  int

	FleetAvailable int
	FleetTotal     int
	FleetRented    int
	Utilization    string

	RevenueWeek  domain.RevenueBucket
	RevenueMonth domain.RevenueBucket
	RevenueAll   domain.RevenueBucket

	Statuses []StatusRow
	TopCars  []TopCarRow
	Recent   []BookingRow
}

// NewMonthlyReport builds the report from a dashboard snapshot and the ledger
// in insertion order.
func NewMonthlyReport(snap *domain.DashboardSnapshot, ledger []domain.Booking, generatedBy string) *MonthlyReport {
	if generatedBy == "" {
		generatedBy = "Admin"
	}
	r := &MonthlyReport{
		Period:         snap.GeneratedAt.Format("January 2006"),
		GeneratedAt:    snap.GeneratedAt,
		GeneratedBy:    generatedBy,
		TotalCustomers: snap.TotalUsers,
		TotalBookings:  snap.TotalBookings,
		ActiveRentals:  snap.ConfirmedCount,
		FleetAvailable: snap.FleetAvailable,
		FleetTotal:     snap.FleetTotal,
		FleetRented:    snap.FleetRented,
		Utilization:    percent(snap.FleetRented, snap.FleetTotal),
		RevenueWeek:    snap.RevenueWeek,
		RevenueMonth:   snap.RevenueMonth,
		RevenueAll:     snap.RevenueAll,
		Statuses: []StatusRow{
			{Label: "Confirmed/Active", Class: "confirmed", Count: snap.ConfirmedCount, Percent: percent(snap.ConfirmedCount, snap.TotalBookings)},
			{Label: "Returned", Class: "returned", Count: snap.ReturnedCount, Percent: percent(snap.ReturnedCount, snap.TotalBookings)},
			{Label: "Cancelled", Class: "cancelled", Count: snap.CancelledCount, Percent: percent(snap.CancelledCount, snap.TotalBookings)},
		},
	}

	for i, c := range snap.PopularCars {
		rank := fmt.Sprintf("#%d", i+1)
		r.TopCars = append(r.TopCars, TopCarRow{Rank: rank, CarName: c.CarName, Bookings: c.Bookings, RevenueCents: c.RevenueCents})
	}

	for i := len(ledger) - 1; i >= 0 && len(r.Recent) < recentLimit; i-- {
		r.Recent = append(r.Recent, bookingRow(ledger[i]))
	}
	return r
}

func (r *MonthlyReport) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, monthlyTemplate, r)
}

// History is the view model behind a customer's booking history export.
type History struct {
	GeneratedAt   time.Time
	CustomerName  string
	CustomerEmail string
	TotalBookings int
	ActiveCount   int
	TotalSpent    int64
	Bookings      []BookingRow
}

// NewHistory lists bookings newest first.
func NewHistory(profile domain.Profile, bookings []domain.Booking, now time.Time) *History {
	sorted := make([]domain.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BookingDate.After(sorted[j].BookingDate)
	})

	h := &History{
		GeneratedAt:   now,
		CustomerName:  strings.TrimSpace(profile.FirstName + " " + profile.LastName),
		CustomerEmail: profile.Email,
		TotalBookings: len(sorted),
	}
	for _, b := range sorted {
		if b.Status == domain.BookingStatusConfirmed {
			h.ActiveCount++
		}
		h.TotalSpent += b.TotalCents
		h.Bookings = append(h.Bookings, bookingRow(b))
	}
	return h
}

func (h *History) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, historyTemplate, h)
}
