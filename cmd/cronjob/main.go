package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/jobs"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'overdue_rentals', 'low_stock', 'monthly_report', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting AZoom Cronjob Runner...", "log_level", cfg.Log.Level, "storage", cfg.Storage.Type)
	if cfg.Storage.Type == "memory" {
		logger.Warn("Memory storage is not shared with the server process, jobs will see an empty store")
	}

	// Initialize storage and services
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Dashboard: a.Dashboard,
		Admin:     a.Admin,
		Email:     a.Email,
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	if jobName == "all" {
		jobRunner.RunAll()
		return
	}
	if jobRunner.RunJob(jobName) {
		return
	}

	logger.Error("Unknown job name", "job", jobName)
	fmt.Printf("Available jobs:\n")
	fmt.Printf("  - %s\n", jobs.JobOverdueRentals)
	fmt.Printf("  - %s\n", jobs.JobLowStock)
	fmt.Printf("  - %s\n", jobs.JobMonthlyReport)
	fmt.Printf("  - all\n")
	os.Exit(1)
}
