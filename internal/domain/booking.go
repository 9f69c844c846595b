package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusReturned  BookingStatus = "returned"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CountsAsRevenue reports whether bookings in this status contribute to revenue figures.
func (s BookingStatus) CountsAsRevenue() bool {
	return s == BookingStatusConfirmed || s == BookingStatusReturned
}

type RentalPeriod string

const (
	PeriodDaily   RentalPeriod = "daily"
	PeriodWeekly  RentalPeriod = "weekly"
	PeriodMonthly RentalPeriod = "monthly"
)

const DateLayout = "2006-01-02"

type Booking struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`

	CarName      string   `json:"car_name"`
	FuelType     FuelType `json:"fuel_type"`
	Color        string   `json:"color"`
	PickupBranch string   `json:"pickup_branch"`
	ReturnBranch string   `json:"return_branch"`
	PickupDate   string   `json:"pickup_date"` // YYYY-MM-DD
	PickupTime   string   `json:"pickup_time"` // HH:MM

	Period         RentalPeriod `json:"period"`
	Duration       int          `json:"duration"`
	TotalDays      int          `json:"total_days"`
	DailyRateCents int64        `json:"daily_rate_cents"`
	SubtotalCents  int64        `json:"subtotal_cents"`
	DiscountCents  int64        `json:"discount_cents"`
	TotalCents     int64        `json:"total_cents"`
	PaymentMethod  string       `json:"payment_method"`

	BookingDate time.Time     `json:"booking_date"`
	Status      BookingStatus `json:"status"`

	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	ReturnedBy  string     `json:"returned_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Extended      bool       `json:"extended,omitempty"`
	ExtensionDate *time.Time `json:"extension_date,omitempty"`
	ExtensionDays int        `json:"extension_days,omitempty"`
	LastModified  *time.Time `json:"last_modified,omitempty"`

	Inspection *Inspection `json:"inspection,omitempty"`

	Refunded          bool       `json:"refunded,omitempty"`
	RefundedAt        *time.Time `json:"refunded_at,omitempty"`
	RefundedBy        string     `json:"refunded_by,omitempty"`
	RefundAmountCents int64      `json:"refund_amount_cents,omitempty"`
}

// ExpectedReturn is the pickup date plus the rented days, at midnight UTC.
func (b *Booking) ExpectedReturn() (time.Time, error) {
	pickup, err := time.Parse(DateLayout, b.PickupDate)
	if err != nil {
		return time.Time{}, err
	}
	return pickup.AddDate(0, 0, b.TotalDays), nil
}

type Inspection struct {
	HasDamage         bool       `json:"has_damage"`
	DamageDescription string     `json:"damage_description,omitempty"`
	DamageChargeCents int64      `json:"damage_charge_cents,omitempty"`
	DamagePaid        bool       `json:"damage_paid"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	InspectedAt       time.Time  `json:"inspected_at"`
	InspectedBy       string     `json:"inspected_by"`
}

// InspectionTask is a returned car waiting for a staff inspection.
type InspectionTask struct {
	BookingID     string    `json:"booking_id"`
	CarName       string    `json:"car_name"`
	CustomerEmail string    `json:"customer_email"`
	QueuedAt      time.Time `json:"queued_at"`
	QueuedBy      string    `json:"queued_by"`
}

type InspectionResult struct {
	HasDamage         bool   `json:"has_damage"`
	DamageDescription string `json:"damage_description"`
	DamageChargeCents int64  `json:"damage_charge_cents"`
}

// BookingChanges are the fields a customer may modify on a confirmed booking.
// Empty fields are left unchanged.
type BookingChanges struct {
	PickupDate   string `json:"pickup_date"`
	PickupTime   string `json:"pickup_time"`
	PickupBranch string `json:"pickup_branch"`
	ReturnBranch string `json:"return_branch"`
}

type BookingTab string

const (
	TabCurrent BookingTab = "current"
	TabPast    BookingTab = "past"
	TabAll     BookingTab = "all"
)

// Matches reports whether a booking in status s belongs on the tab.
func (t BookingTab) Matches(s BookingStatus) bool {
	switch t {
	case TabCurrent:
		return s == BookingStatusConfirmed
	case TabPast:
		return s == BookingStatusReturned || s == BookingStatusCancelled
	default:
		return true
	}
}

// Quote is the result of the funnel's price calculator.
type Quote struct {
	Period        RentalPeriod `json:"period"`
	Duration      int          `json:"duration"`
	TotalDays     int          `json:"total_days"`
	SubtotalCents int64        `json:"subtotal_cents"`
	DiscountCents int64        `json:"discount_cents"`
	TotalCents    int64        `json:"total_cents"`
	DiscountText  string       `json:"discount_text,omitempty"`
}
