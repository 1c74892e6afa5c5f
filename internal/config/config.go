// Package config provides application configuration management,
// loading settings from environment variables, .env files, and the
// restricted-zone YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Service configuration
	ServiceName string
	Environment string
	HTTPPort    string

	// Identity sent with every backend payload
	TouristID string
	DeviceID  string

	// Backend API
	BackendBaseURL string

	// Key-value storage; empty address selects the in-memory store
	RedisAddr   string
	RedisPrefix string

	// Sampling policy
	TrackingMinInterval time.Duration
	TrackingMinDistance float64
	FixFetchTimeout     time.Duration

	// Panic countdown cadence
	PanicTickInterval time.Duration

	// Restricted zone configuration file
	ZonesPath string

	// Simulated GPS walker
	SimStartLat   float64
	SimStartLon   float64
	SimStepMeters float64
	SimBearing    float64

	// OpenTelemetry configuration
	OTELEndpoint   string
	TracingEnabled bool

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "touro-care"),
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		TouristID: getEnv("TOURIST_ID", "tourist-demo"),
		DeviceID:  getEnv("DEVICE_ID", uuid.New().String()),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "tourocare"),

		ZonesPath: getEnv("ZONES_PATH", "zones.yaml"),

		OTELEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled: getEnv("TRACING_ENABLED", "false") == "true",

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.TrackingMinInterval, err = parseDuration("TRACKING_MIN_INTERVAL", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKING_MIN_INTERVAL: %w", err)
	}

	cfg.TrackingMinDistance, err = parseFloat("TRACKING_MIN_DISTANCE_M", "10")
	if err != nil {
		return nil, fmt.Errorf("invalid TRACKING_MIN_DISTANCE_M: %w", err)
	}

	cfg.FixFetchTimeout, err = parseDuration("FIX_FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid FIX_FETCH_TIMEOUT: %w", err)
	}

	cfg.PanicTickInterval, err = parseDuration("PANIC_TICK_INTERVAL", "1s")
	if err != nil {
		return nil, fmt.Errorf("invalid PANIC_TICK_INTERVAL: %w", err)
	}

	cfg.SimStartLat, err = parseFloat("SIM_START_LAT", "25.5788")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_START_LAT: %w", err)
	}

	cfg.SimStartLon, err = parseFloat("SIM_START_LON", "91.8933")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_START_LON: %w", err)
	}

	cfg.SimStepMeters, err = parseFloat("SIM_STEP_METERS", "25")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_STEP_METERS: %w", err)
	}

	cfg.SimBearing, err = parseFloat("SIM_BEARING_DEGREES", "0")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_BEARING_DEGREES: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseFloat parses a float64 from an environment variable or default value
func parseFloat(key, defaultValue string) (float64, error) {
	value := getEnv(key, defaultValue)
	return strconv.ParseFloat(value, 64)
}

// parseDuration parses a duration from an environment variable or default value
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnv(key, defaultValue)
	return time.ParseDuration(value)
}
