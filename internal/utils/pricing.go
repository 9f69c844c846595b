package utils

import (
	"errors"
	"fmt"
	"time"

	"azoom-rental-backend/internal/domain"
)

// MaxRentalDays caps the length of a single rental, extensions included.
const MaxRentalDays = 365

var (
	ErrInvalidDuration = errors.New("duration must be at least 1")
	ErrInvalidPeriod   = errors.New("unknown rental period")
	ErrInvalidRate     = errors.New("daily rate must be positive")
)

// periodTerms holds the days per unit and the discount percentage for each period.
var periodTerms = map[domain.RentalPeriod]struct {
	days         int
	discountPct  int64
	discountText string
}{
	domain.PeriodDaily:   {days: 1, discountPct: 0},
	domain.PeriodWeekly:  {days: 7, discountPct: 10, discountText: "10% weekly discount applied!"},
	domain.PeriodMonthly: {days: 30, discountPct: 20, discountText: "20% monthly discount applied!"},
}

// CalculatePrice quotes a rental of duration periods at the given daily rate.
// The discount is rounded half up to the cent; total = subtotal - discount.
func CalculatePrice(dailyRateCents int64, duration int, period domain.RentalPeriod) (domain.Quote, error) {
	terms, ok := periodTerms[period]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	if duration < 1 {
		return domain.Quote{}, ErrInvalidDuration
	}
	if duration > MaxRentalDays/terms.days {
		return domain.Quote{}, fmt.Errorf("%w: rentals are limited to %d days", ErrInvalidDuration, MaxRentalDays)
	}
	if dailyRateCents <= 0 {
		return domain.Quote{}, ErrInvalidRate
	}

	totalDays := duration * terms.days
	subtotal := dailyRateCents * int64(totalDays)
	discount := (subtotal*terms.discountPct + 50) / 100

	return domain.Quote{
		Period:        period,
		Duration:      duration,
		TotalDays:     totalDays,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
		DiscountText:  terms.discountText,
	}, nil
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %q", dateStr)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent Sunday at midnight.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns the first of t's month at midnight.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from one date to another, ignoring
// the time of day. It is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
