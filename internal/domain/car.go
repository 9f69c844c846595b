package domain

type FuelType string

const (
	FuelTypeElectric FuelType = "Electric"
	FuelTypeHybrid   FuelType = "Hybrid"
)

// Car is a catalog entry. The static fields never change at runtime; CurrentStock
// and Available are derived from the stock override when the car is read.
type Car struct {
	Name             string     `json:"name"`
	PricePerDayCents int64      `json:"price_per_day_cents"`
	OriginalStock    int        `json:"original_stock"`
	FuelType         FuelType   `json:"fuel_type"`
	Image            string     `json:"image"`
	Angles           []CarAngle `json:"angles,omitempty"`
	CurrentStock     int        `json:"current_stock"`
	Available        bool       `json:"available"`
}

type CarAngle struct {
	Angle string `json:"angle"`
	Image string `json:"image"`
}

type AvailabilityFilter string

const (
	AvailabilityAll         AvailabilityFilter = "all"
	AvailabilityAvailable   AvailabilityFilter = "available"
	AvailabilityUnavailable AvailabilityFilter = "unavailable"
)

type CarSort string

const (
	CarSortNameAsc   CarSort = "name-asc"
	CarSortNameDesc  CarSort = "name-desc"
	CarSortPriceAsc  CarSort = "price-asc"
	CarSortPriceDesc CarSort = "price-desc"
)

type CarFilter struct {
	Availability  AvailabilityFilter `json:"availability"`
	MaxPriceCents int64              `json:"max_price_cents"`
	Sort          CarSort            `json:"sort"`
}
