package jobs

import (
	"time"

	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/service"
)

// Job names accepted by RunJob and the cronjob -run-once flag.
const (
	JobOverdueRentals = "overdue_rentals"
	JobLowStock       = "low_stock"
	JobMonthlyReport  = "monthly_report"
)

// systemSession is the staff identity scheduled jobs act under.
var systemSession = domain.Session{
	Kind:   domain.SessionStaff,
	UserID: "system",
	Email:  "system@azoom.mymail.sg",
	Name:   "AZoom Scheduler",
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Dashboard service.DashboardService
	Admin     service.AdminService
	Email     service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunJob runs a single job by name and reports whether the name was known
func (jr *JobRunner) RunJob(name string) bool {
	switch name {
	case JobOverdueRentals:
		jr.SendOverdueReminders()
	case JobLowStock:
		jr.CheckLowStock()
	case JobMonthlyReport:
		jr.GenerateMonthlyReport()
	default:
		return false
	}
	return true
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendOverdueReminders()
	jr.CheckLowStock()
	jr.GenerateMonthlyReport()
}
