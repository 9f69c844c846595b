package domain

import "time"

type DamageStatus string

const (
	DamageStatusPending DamageStatus = "pending"
	DamageStatusPaid    DamageStatus = "paid"
)

type DamageRequest struct {
	ID            string       `json:"id"`
	BookingID     string       `json:"booking_id"`
	CustomerEmail string       `json:"customer_email"`
	CustomerName  string       `json:"customer_name"`
	CarName       string       `json:"car_name"`
	ChargeCents   int64        `json:"charge_cents"`
	Description   string       `json:"description"`
	Status        DamageStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	CreatedBy     string       `json:"created_by"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
}

// CardDetails are checked for shape only; nothing is charged.
type CardDetails struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"` // MM/YY
	CVV        string `json:"cvv"`
}
