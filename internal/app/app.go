package app

import (
	"context"
	"fmt"

	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository/kv"
	"azoom-rental-backend/internal/security"
	"azoom-rental-backend/internal/service"
	"azoom-rental-backend/internal/storage"
	"azoom-rental-backend/internal/storage/gormstore"
	"azoom-rental-backend/internal/storage/pgstore"
)

// eventBuffer is the per-subscriber channel depth of the change bus.
const eventBuffer = 64

// App is the wired service graph shared by the server, the cron runner and the CLI.
type App struct {
	Config *config.Config
	Store  *kv.Store
	Bus    *events.Bus
	Tokens security.TokenManager

	Catalog   service.CatalogService
	Auth      service.AuthService
	Booking   service.BookingService
	Customer  service.CustomerService
	Dashboard service.DashboardService
	Admin     service.AdminService
	Email     service.EmailService
}

// StorageConfig maps the application configuration onto a backend selection.
func StorageConfig(cfg *config.Config) storage.Config {
	sc := storage.Config{
		Type:       cfg.Storage.Type,
		Dir:        cfg.Storage.Dir,
		SQLitePath: cfg.Storage.SQLitePath,
	}
	if sc.Type == "postgres" {
		sc.DSN = cfg.GetDatabaseConnectionString()
	}
	return sc
}

// OpenStore opens the configured key/value backend. The postgres schema is
// migrated on open.
func OpenStore(ctx context.Context, sc storage.Config) (storage.KeyValueStore, error) {
	logger.Info("Opening storage", "type", sc.Type)

	switch sc.Type {
	case "", "memory":
		return storage.NewMemoryStore(), nil
	case "file":
		store, err := storage.NewFileStore(sc.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		store, err := gormstore.Open(sc.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		store, err := pgstore.Open(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", sc.Type)
	}
}

// New opens storage and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, err := OpenStore(ctx, StorageConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := backend.Ping(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("storage ping failed: %w", err)
	}
	logger.Info("Storage ready", "type", cfg.Storage.Type)

	return NewWithBackend(cfg, backend), nil
}

// NewWithBackend builds every service on an already open backend.
func NewWithBackend(cfg *config.Config, backend storage.KeyValueStore) *App {
	store := kv.NewStore(backend)
	bus := events.NewBus(eventBuffer)
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL())

	emailSvc := service.NewEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromAddress,
		cfg.Email.FromName,
		cfg.Email.OpsAddress,
	)
	if cfg.Email.SendGridAPIKey == "" {
		logger.Warn("No SendGrid API key configured, emails will be logged only")
	}

	catalogSvc := service.NewCatalogService(store)
	authSvc := service.NewAuthService(store, store, store, tokens, bus, cfg.Auth.StaffEmailDomain)
	bookingSvc := service.NewBookingService(catalogSvc, store, store, emailSvc, bus)
	customerSvc := service.NewCustomerService(store, store, store, store, store, bus)
	dashboardSvc := service.NewDashboardService(store, store, catalogSvc)
	adminSvc := service.NewAdminService(store, store, store, store, store, dashboardSvc, emailSvc, bus)

	return &App{
		Config:    cfg,
		Store:     store,
		Bus:       bus,
		Tokens:    tokens,
		Catalog:   catalogSvc,
		Auth:      authSvc,
		Booking:   bookingSvc,
		Customer:  customerSvc,
		Dashboard: dashboardSvc,
		Admin:     adminSvc,
		Email:     emailSvc,
	}
}

// Watcher feeds the bus with writes other processes make to the store, such
// as azoomctl or the cron job. It watches the keys the dashboard reads and is
// nil when watching is off.
func (a *App) Watcher() *events.Watcher {
	interval := a.Config.WatchInterval()
	if interval <= 0 {
		return nil
	}
	return events.NewWatcher(a.Store.Backend(), a.Bus, interval,
		[]string{kv.KeyUsers, kv.KeyBookings, kv.KeyDamageRequests, kv.KeyInspectionQueue},
		[]string{kv.PrefixStock},
	)
}

// Close stops the event bus and releases the storage backend.
func (a *App) Close() error {
	a.Bus.Close()
	return a.Store.Backend().Close()
}
