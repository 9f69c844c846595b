package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcapi "azoom-rental-backend/internal/api/grpc"
	"azoom-rental-backend/internal/api/grpc/interceptor"
	httpapi "azoom-rental-backend/internal/api/http"
	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AZoom Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_port", cfg.Server.HealthPort)
	logger.Info("Storage configuration", "type", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage and services
	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	// Live dashboard push
	hub := httpapi.NewDashboardHub(a.Dashboard, a.Bus, cfg.CoalesceWindow(), cfg.Server.AllowedOrigins)
	go hub.Run(ctx)
	if w := a.Watcher(); w != nil {
		logger.Info("Watching storage for external writes", "interval", cfg.WatchInterval())
		go w.Run(ctx)
	}

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:       httpapi.NewAuthHandler(a.Auth),
		Catalog:    httpapi.NewCatalogHandler(a.Catalog),
		Customer:   httpapi.NewCustomerHandler(a.Booking, a.Customer),
		Admin:      httpapi.NewAdminHandler(a.Admin, a.Dashboard),
		Dashboard:  hub,
		Middleware: httpapi.NewAuthMiddleware(a.Auth),
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	// Set up gRPC health server on its own port
	if cfg.Server.HealthPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetHealthAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		health := grpcapi.NewHealthServer(a.Store.Backend(), grpcapi.DefaultCheckInterval,
			grpc.UnaryInterceptor(interceptor.Unary()),
		)
		go func() {
			if err := health.Serve(ctx, lis); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
		stop()
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("AZoom Rental Backend stopped. Goodbye!")
}
