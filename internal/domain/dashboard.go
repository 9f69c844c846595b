package domain

import "time"

type RevenueBucket struct {
	Cents int64 `json:"cents"`
	Count int   `json:"count"`
}

type FleetEntry struct {
	CarName       string `json:"car_name"`
	CurrentStock  int    `json:"current_stock"`
	OriginalStock int    `json:"original_stock"`
	Rented        int    `json:"rented"`
	StatusText    string `json:"status_text"`
}

type PopularCar struct {
	CarName      string `json:"car_name"`
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenue_cents"`
}

type OverdueRental struct {
	BookingID      string    `json:"booking_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CarName        string    `json:"car_name"`
	PickupDate     string    `json:"pickup_date"`
	ExpectedReturn time.Time `json:"expected_return"`
	DaysOverdue    int       `json:"days_overdue"`
}

type LowStockAlert struct {
	CarName      string `json:"car_name"`
	CurrentStock int    `json:"current_stock"`
	Label        string `json:"label"`
}

type ActivityKind string

const (
	ActivityBooking ActivityKind = "booking"
	ActivitySignup  ActivityKind = "signup"
)

type ActivityItem struct {
	Kind    ActivityKind `json:"kind"`
	At      time.Time    `json:"at"`
	Summary string       `json:"summary"`
}

// DashboardSnapshot is the full staff dashboard, recomputed from storage.
type DashboardSnapshot struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalUsers    int `json:"total_users"`
	NewUsersToday int `json:"new_users_today"`

	TotalBookings  int `json:"total_bookings"`
	ConfirmedCount int `json:"confirmed_count"`
	ReturnedCount  int `json:"returned_count"`
	CancelledCount int `json:"cancelled_count"`
	PendingPickup  int `json:"pending_pickup"`

	RevenueToday RevenueBucket `json:"revenue_today"`
	RevenueWeek  RevenueBucket `json:"revenue_week"`
	RevenueMonth RevenueBucket `json:"revenue_month"`
	RevenueAll   RevenueBucket `json:"revenue_all"`

	FleetAvailable int          `json:"fleet_available"`
	FleetTotal     int          `json:"fleet_total"`
	FleetRented    int          `json:"fleet_rented"`
	ActiveFleet    string       `json:"active_fleet"`
	Fleet          []FleetEntry `json:"fleet"`

	PopularCars    []PopularCar    `json:"popular_cars"`
	Overdue        []OverdueRental `json:"overdue"`
	LowStock       []LowStockAlert `json:"low_stock"`
	Activity       []ActivityItem  `json:"activity"`
	RecentBookings []Booking       `json:"recent_bookings"`
}

type ResetMode string

const (
	ResetAuto    ResetMode = "auto"
	ResetFull    ResetMode = "full"
	ResetPartial ResetMode = "partial"
)

type ResetResult struct {
	Mode            ResetMode `json:"mode"`
	BookingsKept    int       `json:"bookings_kept"`
	BookingsRemoved int       `json:"bookings_removed"`
	UsersKept       int       `json:"users_kept"`
	UsersRemoved    int       `json:"users_removed"`
}
