// Package config loads the service configuration from environment variables
// through viper and validates it before anything is started.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	AppPort  string
	BasePath string

	DBDriver    string
	DatabaseDSN string
	SeedDemo    bool

	RabbitMQURL string

	AuthEnabled   bool
	JWTSecret     string
	TokenDuration time.Duration

	LogLevel  string
	LogFormat string

	UploadMaxBytes int
}

// SetDefaults registers every known key and its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("BASE_PATH", "/api/v1")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_DURATION", 24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
}

// Load reads the configuration from v, which should already have its sources
// (environment, flags) attached, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		BasePath:       "/" + strings.Trim(v.GetString("BASE_PATH"), "/"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SeedDemo:       v.GetBool("SEED_DEMO"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		AuthEnabled:    v.GetBool("AUTH_ENABLED"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenDuration:  v.GetDuration("TOKEN_DURATION"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		UploadMaxBytes: v.GetInt("UPLOAD_MAX_BYTES"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.AppPort == "" {
		errs = append(errs, errors.New("APP_PORT is required"))
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseDSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_DSN is required for driver %q", c.DBDriver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of postgres, sqlite, memory", c.DBDriver))
	}
	if c.AuthEnabled {
		if c.DBDriver == DriverMemory {
			errs = append(errs, errors.New("AUTH_ENABLED requires a database driver"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED is set"))
		}
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// ProductsPath is the mount point of the product routes.
func (c *Config) ProductsPath() string {
	return strings.TrimRight(c.BasePath, "/") + "/products"
}
