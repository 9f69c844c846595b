package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"azoom-rental-backend/internal/catalog"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/utils"
)

// DefaultMaxPriceCents is the upper bound of the catalog price slider.
const DefaultMaxPriceCents int64 = 500_00

type catalogService struct {
	stockRepo repository.StockRepository
}

func NewCatalogService(stockRepo repository.StockRepository) CatalogService {
	return &catalogService{stockRepo: stockRepo}
}

// withStock fills the derived stock fields. Overrides outside [0, capacity]
// are clamped on read.
func (s *catalogService) withStock(ctx context.Context, car domain.Car) (domain.Car, error) {
	stock, ok, err := s.stockRepo.GetStock(ctx, car.Name)
	if err != nil {
		return car, fmt.Errorf("stock for %s: %w", car.Name, err)
	}
	if !ok {
		stock = car.OriginalStock
	}
	stock = max(0, min(stock, car.OriginalStock))
	car.CurrentStock = stock
	car.Available = stock > 0
	return car, nil
}

func (s *catalogService) ListCars(ctx context.Context) ([]domain.Car, error) {
	fleet := catalog.Fleet()
	cars := make([]domain.Car, 0, len(fleet))
	for _, c := range fleet {
		car, err := s.withStock(ctx, c)
		if err != nil {
			logger.ExitMethodWithError("catalogService.ListCars", err)
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, nil
}

func (s *catalogService) GetCar(ctx context.Context, name string) (*domain.Car, error) {
	c, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCarNotFound, name)
	}
	car, err := s.withStock(ctx, c)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (s *catalogService) FilterCars(ctx context.Context, filter domain.CarFilter) ([]domain.Car, error) {
	cars, err := s.ListCars(ctx)
	if err != nil {
		return nil, err
	}

	maxPrice := filter.MaxPriceCents
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPriceCents
	}

	out := cars[:0]
	for _, c := range cars {
		switch filter.Availability {
		case domain.AvailabilityAvailable:
			if !c.Available {
				continue
			}
		case domain.AvailabilityUnavailable:
			if c.Available {
				continue
			}
		}
		if c.PricePerDayCents > maxPrice {
			continue
		}
		out = append(out, c)
	}

	switch filter.Sort {
	case domain.CarSortNameAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case domain.CarSortNameDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	case domain.CarSortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerDayCents < out[j].PricePerDayCents })
	case domain.CarSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerDayCents > out[j].PricePerDayCents })
	}
	return out, nil
}

// SearchCars matches the query against car names. An empty query lists the
// cars that can currently be booked.
func (s *catalogService) SearchCars(ctx context.Context, query string) ([]domain.Car, error) {
	cars, err := s.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))

	out := cars[:0]
	for _, c := range cars {
		if q == "" {
			if c.Available {
				out = append(out, c)
			}
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// QuoteDraft prices a draft against the catalog rate. Totals carried by the
// client are never used.
func (s *catalogService) QuoteDraft(ctx context.Context, draft domain.BookingDraft) (*domain.Car, domain.Quote, error) {
	car, err := s.GetCar(ctx, draft.CarName)
	if err != nil {
		return nil, domain.Quote{}, err
	}
	q, err := utils.CalculatePrice(car.PricePerDayCents, draft.Duration, draft.Period)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidDuration) || errors.Is(err, utils.ErrInvalidPeriod) {
			return nil, domain.Quote{}, invalid(err.Error())
		}
		return nil, domain.Quote{}, err
	}
	return car, q, nil
}
