// Package config provides environment configuration and the static domain
// reference data (cities, thresholds) for the pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingDatabaseConfig is returned when no datastore endpoint or
// credential can be resolved from the environment.
var ErrMissingDatabaseConfig = errors.New("DATABASE_URL (or DB_HOST and DB_PASSWORD) must be set")

// Config holds process configuration resolved from the environment.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// LogLevel is the zerolog level name (default "info").
	LogLevel string

	// AppPort is the port for the health endpoint in interval mode.
	AppPort string

	// Environment is the deployment environment name.
	Environment string

	// RunInterval, when non-zero, switches the binary from one-shot batch
	// mode to a long-lived loop running every interval.
	RunInterval time.Duration

	// OTelEnabled gates OpenTelemetry initialization.
	OTelEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string
}

// Load resolves configuration from the environment, consulting a .env file
// when one is present. Absence of the datastore endpoint or credential is an
// error; everything else has a default.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		AppPort:      getEnvOrDefault("APP_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		OTelEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if cfg.DatabaseURL == "" {
		url, err := databaseURLFromParts()
		if err != nil {
			return Config{}, err
		}
		cfg.DatabaseURL = url
	}

	if raw := os.Getenv("PIPELINE_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIPELINE_INTERVAL %q: %w", raw, err)
		}
		cfg.RunInterval = interval
	}

	return cfg, nil
}

// databaseURLFromParts composes a connection string from DB_* variables.
// The host and password are the endpoint and service credential; both are
// required.
func databaseURLFromParts() (string, error) {
	host := os.Getenv("DB_HOST")
	password := os.Getenv("DB_PASSWORD")
	if host == "" || password == "" {
		return "", ErrMissingDatabaseConfig
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnvOrDefault("DB_USER", "aridwatch"),
		password,
		host,
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_NAME", "aridwatch"),
		getEnvOrDefault("DB_SSL_MODE", "require"),
	), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
