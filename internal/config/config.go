package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Reports   ReportsConfig   `yaml:"reports"`
}

// ServerConfig contains HTTP and health server settings
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	HealthPort int    `yaml:"health_port"` // gRPC health service; 0 disables it
	// Allowed websocket origins for the staff dashboard; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig selects the key/value backend
type StorageConfig struct {
	Type       string `yaml:"type"`        // "memory", "file", "postgres" or "sqlite"
	Dir        string `yaml:"dir"`         // file backend
	SQLitePath string `yaml:"sqlite_path"` // sqlite backend
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// AuthConfig contains session token and account policy settings
type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	TokenExpiryMinutes int    `yaml:"token_expiry_minutes"`
	StaffEmailDomain   string `yaml:"staff_email_domain"`
}

// EmailConfig contains SendGrid settings. An empty API key logs messages instead of sending.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromAddress    string `yaml:"from_address"`
	FromName       string `yaml:"from_name"`
	OpsAddress     string `yaml:"ops_address"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	OverdueRentals string `yaml:"overdue_rentals"`
	LowStock       string `yaml:"low_stock"`
	MonthlyReport  string `yaml:"monthly_report"`
}

// DashboardConfig tunes the live dashboard push
type DashboardConfig struct {
	CoalesceMillis int `yaml:"coalesce_millis"`
	// How often the server re-reads storage versions to catch writes made by
	// azoomctl or the cron job. Negative disables it.
	WatchMillis int `yaml:"watch_millis"`
}

// ReportsConfig controls where scheduled reports are written
type ReportsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first so that its variables take part in the overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with AZOOM_* environment variables
func (c *Config) overrideWithEnv() {
	setString := func(name string, dst *string) {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
	setInt := func(name string, dst *int) {
		if val := os.Getenv(name); val != "" {
			fmt.Sscanf(val, "%d", dst)
		}
	}

	setString("AZOOM_SERVER_HOST", &c.Server.Host)
	setInt("AZOOM_SERVER_PORT", &c.Server.Port)
	setInt("AZOOM_HEALTH_PORT", &c.Server.HealthPort)
	if val := os.Getenv("AZOOM_ALLOWED_ORIGINS"); val != "" {
		c.Server.AllowedOrigins = strings.Split(val, ",")
	}

	setString("AZOOM_STORAGE_TYPE", &c.Storage.Type)
	setString("AZOOM_STORAGE_DIR", &c.Storage.Dir)
	setString("AZOOM_SQLITE_PATH", &c.Storage.SQLitePath)

	setString("AZOOM_DB_HOST", &c.Database.Host)
	setInt("AZOOM_DB_PORT", &c.Database.Port)
	setString("AZOOM_DB_USER", &c.Database.User)
	setString("AZOOM_DB_PASSWORD", &c.Database.Password)
	setString("AZOOM_DB_NAME", &c.Database.Database)
	setString("AZOOM_DB_SSL_MODE", &c.Database.SSLMode)

	setString("AZOOM_JWT_SECRET", &c.Auth.JWTSecret)
	setString("AZOOM_STAFF_EMAIL_DOMAIN", &c.Auth.StaffEmailDomain)

	setString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	setString("AZOOM_EMAIL_FROM", &c.Email.FromAddress)
	setString("AZOOM_OPS_EMAIL", &c.Email.OpsAddress)

	setString("AZOOM_LOG_LEVEL", &c.Log.Level)
	setString("AZOOM_LOG_FORMAT", &c.Log.Format)

	setString("AZOOM_REPORTS_DIR", &c.Reports.OutputDir)
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HealthPort < 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", c.Server.HealthPort)
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	switch c.Storage.Type {
	case "memory":
	case "file":
		if c.Storage.Dir == "" {
			c.Storage.Dir = "./data"
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			c.Storage.SQLitePath = "azoom.db"
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for postgres storage")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required for postgres storage")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required for postgres storage")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Auth.TokenExpiryMinutes <= 0 {
		c.Auth.TokenExpiryMinutes = 120
	}
	if c.Auth.StaffEmailDomain == "" {
		c.Auth.StaffEmailDomain = "@azoom.mymail.sg"
	}
	if !strings.HasPrefix(c.Auth.StaffEmailDomain, "@") {
		c.Auth.StaffEmailDomain = "@" + c.Auth.StaffEmailDomain
	}

	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "noreply@azoom.mymail.sg"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "AZoom Car Rental"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.OverdueRentals == "" {
		c.Scheduler.OverdueRentals = "0 0 8 * * *" // daily 8 AM UTC
	}
	if c.Scheduler.LowStock == "" {
		c.Scheduler.LowStock = "0 0 * * * *" // hourly
	}
	if c.Scheduler.MonthlyReport == "" {
		c.Scheduler.MonthlyReport = "0 0 6 1 * *" // 1st of month at 6 AM UTC
	}

	if c.Dashboard.CoalesceMillis <= 0 {
		c.Dashboard.CoalesceMillis = 250
	}
	if c.Dashboard.WatchMillis == 0 {
		c.Dashboard.WatchMillis = 2000
	}
	if c.Reports.OutputDir == "" {
		c.Reports.OutputDir = "./reports"
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHealthAddress returns the gRPC health listen address
func (c *Config) GetHealthAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HealthPort)
}

// TokenTTL returns the session token lifetime
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenExpiryMinutes) * time.Minute
}

// WatchInterval returns how often storage is re-read for external writes.
// Zero means watching is off: it is disabled in config or the store is
// in-memory and cannot be shared with another process.
func (c *Config) WatchInterval() time.Duration {
	if c.Dashboard.WatchMillis < 0 || c.Storage.Type == "memory" {
		return 0
	}
	return time.Duration(c.Dashboard.WatchMillis) * time.Millisecond
}

// CoalesceWindow returns how long the dashboard hub waits to batch change events
func (c *Config) CoalesceWindow() time.Duration {
	return time.Duration(c.Dashboard.CoalesceMillis) * time.Millisecond
}
