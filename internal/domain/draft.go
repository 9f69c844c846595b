package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDraft = errors.New("invalid booking draft")

const DefaultPickupTime = "10:00"

// BookingDraft is the state carried between the catalog, booking, payment and
// confirmation steps of the funnel. It travels as query-string parameters.
type BookingDraft struct {
	CarName       string       `json:"car"`
	Period        RentalPeriod `json:"period"`
	Duration      int          `json:"duration"`
	Color         string       `json:"color"`
	PickupBranch  string       `json:"pickup"`
	ReturnBranch  string       `json:"return"`
	PickupDate    string       `json:"date_from"`
	PickupTime    string       `json:"time"`
	PaymentMethod string       `json:"payment"`
}

// Values encodes the draft. When q is non-nil the computed totals are included
// for display on the next step; they are never trusted on the way back in.
func (d BookingDraft) Values(q *Quote) url.Values {
	v := url.Values{}
	v.Set("car", d.CarName)
	v.Set("period", string(d.Period))
	v.Set("duration", strconv.Itoa(d.Duration))
	v.Set("color", d.Color)
	v.Set("pickup", d.PickupBranch)
	v.Set("return", d.ReturnBranch)
	v.Set("date-from", d.PickupDate)
	v.Set("time", d.PickupTime)
	if d.PaymentMethod != "" {
		v.Set("payment", d.PaymentMethod)
	}
	if q != nil {
		v.Set("days", strconv.Itoa(q.TotalDays))
		v.Set("total", FormatCents(q.TotalCents))
		v.Set("discount", FormatCents(q.DiscountCents))
	}
	return v
}

// ParseDraft decodes and validates a draft from query-string parameters.
func ParseDraft(v url.Values) (BookingDraft, error) {
	d := BookingDraft{
		CarName:       strings.TrimSpace(v.Get("car")),
		Period:        RentalPeriod(strings.ToLower(strings.TrimSpace(v.Get("period")))),
		Color:         strings.TrimSpace(v.Get("color")),
		PickupBranch:  strings.TrimSpace(v.Get("pickup")),
		ReturnBranch:  strings.TrimSpace(v.Get("return")),
		PickupDate:    strings.TrimSpace(v.Get("date-from")),
		PickupTime:    strings.TrimSpace(v.Get("time")),
		PaymentMethod: strings.TrimSpace(v.Get("payment")),
	}

	if d.CarName == "" {
		return d, fmt.Errorf("%w: car is required", ErrInvalidDraft)
	}
	switch d.Period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	case "":
		d.Period = PeriodDaily
	default:
		return d, fmt.Errorf("%w: unknown period %q", ErrInvalidDraft, d.Period)
	}

	duration, err := strconv.Atoi(strings.TrimSpace(v.Get("duration")))
	if err != nil || duration < 1 {
		return d, fmt.Errorf("%w: duration must be a positive whole number", ErrInvalidDraft)
	}
	d.Duration = duration

	if d.PickupBranch == "" || d.ReturnBranch == "" {
		return d, fmt.Errorf("%w: pickup and return branches are required", ErrInvalidDraft)
	}
	if _, err := time.Parse(DateLayout, d.PickupDate); err != nil {
		return d, fmt.Errorf("%w: pickup date must be YYYY-MM-DD", ErrInvalidDraft)
	}
	if d.PickupTime == "" {
		d.PickupTime = DefaultPickupTime
	}
	if _, err := time.Parse("15:04", d.PickupTime); err != nil {
		return d, fmt.Errorf("%w: pickup time must be HH:MM", ErrInvalidDraft)
	}

	return d, nil
}

// FormatCents renders an amount as dollars with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
