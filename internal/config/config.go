package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// AnalyticsConfig holds scoring targets and report settings
type AnalyticsConfig struct {
	WorkoutWeeklyTarget    int
	DefaultProteinMinGrams float64
	// ReportTimezone is an IANA name used for calendar days; empty means the host zone
	ReportTimezone string
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Bind specific environment variables
	bindEnvVars(v)

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)
	v.SetDefault("database.automigrate", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Analytics defaults
	v.SetDefault("analytics.workoutweeklytarget", 5)
	v.SetDefault("analytics.defaultproteinmingrams", 140)
	v.SetDefault("analytics.reporttimezone", "")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.automigrate", "DATABASE_AUTO_MIGRATE")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")

	// Analytics
	v.BindEnv("analytics.workoutweeklytarget", "WORKOUT_WEEKLY_TARGET")
	v.BindEnv("analytics.defaultproteinmingrams", "DEFAULT_PROTEIN_MIN_GRAMS")
	v.BindEnv("analytics.reporttimezone", "REPORT_TIMEZONE")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if c.Analytics.WorkoutWeeklyTarget < 0 {
		return fmt.Errorf("analytics.workoutweeklytarget must not be negative")
	}

	if c.Analytics.DefaultProteinMinGrams <= 0 {
		return fmt.Errorf("analytics.defaultproteinmingrams must be positive")
	}

	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("analytics.reporttimezone: %w", err)
	}

	return nil
}

// Location resolves ReportTimezone
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.ReportTimezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(a.ReportTimezone)
}
