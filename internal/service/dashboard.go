package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/utils"
)

const (
	popularCarsLimit    = 5
	activityLimit       = 8
	recentBookingsLimit = 5
	lowStockThreshold   = 2
)

type dashboardService struct {
	userRepo    repository.UserRepository
	bookingRepo repository.BookingRepository
	catalogSvc  CatalogService
	now         func() time.Time
}

func NewDashboardService(userRepo repository.UserRepository, bookingRepo repository.BookingRepository, catalogSvc CatalogService) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		catalogSvc:  catalogSvc,
		now:         time.Now,
	}
}

// Snapshot recomputes every dashboard figure from storage. Day, week and
// month boundaries are calendar boundaries in UTC.
func (s *dashboardService) Snapshot(ctx context.Context) (*domain.DashboardSnapshot, error) {
	logger.EnterMethod("dashboardService.Snapshot")

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		logger.ExitMethodWithError("dashboardService.Snapshot", err)
		return nil, err
	}
	bookings, err := s.bookingRepo.ListBookings(ctx)
	if err != nil {
		logger.ExitMethodWithError("dashboardService.Snapshot", err)
		return nil, err
	}
	cars, err := s.catalogSvc.ListCars(ctx)
	if err != nil {
		logger.ExitMethodWithError("dashboardService.Snapshot", err)
		return nil, err
	}

	now := s.now().UTC()
	today := utils.StartOfDay(now)
	snap := &domain.DashboardSnapshot{
		GeneratedAt:    now,
		TotalUsers:     len(users),
		TotalBookings:  len(bookings),
		Fleet:          []domain.FleetEntry{},
		PopularCars:    []domain.PopularCar{},
		Overdue:        []domain.OverdueRental{},
		LowStock:       []domain.LowStockAlert{},
		Activity:       []domain.ActivityItem{},
		RecentBookings: []domain.Booking{},
	}

	for _, u := range users {
		if utils.DaysBetween(u.SignupDate.UTC(), today) == 0 {
			snap.NewUsersToday++
		}
	}

	countBookings(snap, bookings, today)
	sumRevenue(snap, bookings, now)
	fleetStatus(snap, cars)
	snap.PopularCars = popularCars(bookings)
	snap.Overdue = overdueRentals(bookings, today)
	snap.Activity = activityFeed(bookings, users)

	for i := len(bookings) - 1; i >= 0 && len(snap.RecentBookings) < recentBookingsLimit; i-- {
		snap.RecentBookings = append(snap.RecentBookings, bookings[i])
	}

	logger.ExitMethod("dashboardService.Snapshot", "bookings", snap.TotalBookings, "users", snap.TotalUsers)
	return snap, nil
}

func countBookings(snap *domain.DashboardSnapshot, bookings []domain.Booking, today time.Time) {
	todayStr := today.Format(domain.DateLayout)
	for _, b := range bookings {
		switch b.Status {
		case domain.BookingStatusConfirmed:
			snap.ConfirmedCount++
			// YYYY-MM-DD compares correctly as a string
			if b.PickupDate >= todayStr {
				snap.PendingPickup++
			}
		case domain.BookingStatusReturned:
			snap.ReturnedCount++
		case domain.BookingStatusCancelled:
			snap.CancelledCount++
		}
	}
}

func sumRevenue(snap *domain.DashboardSnapshot, bookings []domain.Booking, now time.Time) {
	dayStart := utils.StartOfDay(now)
	weekStart := utils.StartOfWeek(now)
	monthStart := utils.StartOfMonth(now)

	add := func(bucket *domain.RevenueBucket, cents int64) {
		bucket.Cents += cents
		bucket.Count++
	}
	for _, b := range bookings {
		if !b.Status.CountsAsRevenue() {
			continue
		}
		at := b.BookingDate.UTC()
		add(&snap.RevenueAll, b.TotalCents)
		if !at.Before(monthStart) {
			add(&snap.RevenueMonth, b.TotalCents)
		}
		if !at.Before(weekStart) {
			add(&snap.RevenueWeek, b.TotalCents)
		}
		if !at.Before(dayStart) {
			add(&snap.RevenueToday, b.TotalCents)
		}
	}
}

func fleetStatus(snap *domain.DashboardSnapshot, cars []domain.Car) {
	for _, c := range cars {
		snap.FleetAvailable += c.CurrentStock
		snap.FleetTotal += c.OriginalStock

		status := "All Rented"
		if c.CurrentStock > 0 {
			status = fmt.Sprintf("%d Available", c.CurrentStock)
		}
		snap.Fleet = append(snap.Fleet, domain.FleetEntry{
			CarName:       c.Name,
			CurrentStock:  c.CurrentStock,
			OriginalStock: c.OriginalStock,
			Rented:        c.OriginalStock - c.CurrentStock,
			StatusText:    status,
		})

		if c.CurrentStock < lowStockThreshold {
			label := "OUT OF STOCK"
			if c.CurrentStock > 0 {
				label = fmt.Sprintf("Only %d left", c.CurrentStock)
			}
			snap.LowStock = append(snap.LowStock, domain.LowStockAlert{CarName: c.Name, CurrentStock: c.CurrentStock, Label: label})
		}
	}
	snap.FleetRented = snap.FleetTotal - snap.FleetAvailable
	snap.ActiveFleet = fmt.Sprintf("%d/%d", snap.FleetAvailable, snap.FleetTotal)
}

// popularCars ranks cars by bookings in any status. Ties go to the name that
// sorts first.
func popularCars(bookings []domain.Booking) []domain.PopularCar {
	byCar := make(map[string]*domain.PopularCar)
	for _, b := range bookings {
		if b.CarName == "" {
			continue
		}
		p, ok := byCar[b.CarName]
		if !ok {
			p = &domain.PopularCar{CarName: b.CarName}
			byCar[b.CarName] = p
		}
		p.Bookings++
		p.RevenueCents += b.TotalCents
	}

	out := make([]domain.PopularCar, 0, len(byCar))
	for _, p := range byCar {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bookings != out[j].Bookings {
			return out[i].Bookings > out[j].Bookings
		}
		return out[i].CarName < out[j].CarName
	})
	if len(out) > popularCarsLimit {
		out = out[:popularCarsLimit]
	}
	return out
}

// overdueRentals lists confirmed bookings whose pickup date plus rented days
// falls before today. Bookings with an unreadable pickup date are skipped.
func overdueRentals(bookings []domain.Booking, today time.Time) []domain.OverdueRental {
	out := []domain.OverdueRental{}
	for _, b := range bookings {
		if b.Status != domain.BookingStatusConfirmed {
			continue
		}
		// b is a copy; the clamp must not reach the caller's slice.
		if b.TotalDays < 1 {
			b.TotalDays = 1
		}
		expected, err := b.ExpectedReturn()
		if err != nil {
			logger.Warn("skipping booking with bad pickup date", "bookingID", b.ID, "pickupDate", b.PickupDate)
			continue
		}
		days := utils.DaysBetween(expected, today)
		if days <= 0 {
			continue
		}
		name := b.CustomerName
		if name == "" {
			name = b.CustomerEmail
		}
		out = append(out, domain.OverdueRental{
			BookingID:      b.ID,
			CustomerName:   name,
			CustomerEmail:  b.CustomerEmail,
			CarName:        b.CarName,
			PickupDate:     b.PickupDate,
			ExpectedReturn: expected,
			DaysOverdue:    days,
		})
	}
	return out
}

func activityFeed(bookings []domain.Booking, users []domain.User) []domain.ActivityItem {
	items := make([]domain.ActivityItem, 0, len(bookings)+len(users))
	for _, b := range bookings {
		name := b.CustomerName
		if name == "" {
			name = "Customer"
		}
		var summary string
		switch b.Status {
		case domain.BookingStatusReturned:
			summary = fmt.Sprintf("%s returned %s", name, b.CarName)
		case domain.BookingStatusCancelled:
			summary = fmt.Sprintf("Booking cancelled: %s", b.CarName)
		default:
			summary = fmt.Sprintf("%s booked %s", name, b.CarName)
		}
		items = append(items, domain.ActivityItem{Kind: domain.ActivityBooking, At: b.BookingDate, Summary: summary})
	}
	for i := range users {
		summary := "New user registered: " + users[i].FullName()
		if strings.TrimSpace(users[i].FullName()) == "" {
			summary = "New user: " + users[i].Email
		}
		items = append(items, domain.ActivityItem{Kind: domain.ActivitySignup, At: users[i].SignupDate, Summary: summary})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].At.After(items[j].At) })
	if len(items) > activityLimit {
		items = items[:activityLimit]
	}
	return items
}
