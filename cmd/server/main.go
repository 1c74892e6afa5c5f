package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/himanshu427-droid/touro-care/internal/adapters/backend"
	"github.com/himanshu427-droid/touro-care/internal/adapters/device"
	"github.com/himanshu427-droid/touro-care/internal/adapters/kvstore"
	"github.com/himanshu427-droid/touro-care/internal/alerts"
	"github.com/himanshu427-droid/touro-care/internal/api"
	"github.com/himanshu427-droid/touro-care/internal/config"
	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/geofence"
	"github.com/himanshu427-droid/touro-care/internal/ports"
	"github.com/himanshu427-droid/touro-care/internal/sos"
	"github.com/himanshu427-droid/touro-care/internal/tracing"
	"github.com/himanshu427-droid/touro-care/internal/tracking"
)

func main() {
	// Initialize structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting touro-care safety core")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	zones, err := config.LoadZones(cfg.ZonesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ZonesPath).Msg("Failed to load restricted zones")
	}

	log.Info().
		Str("service_name", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("http_port", cfg.HTTPPort).
		Str("backend", cfg.BackendBaseURL).
		Int("zones", len(zones)).
		Msg("Configuration loaded")

	// Tracing
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// Key-value storage
	var kv ports.KVStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis ping failed")
		}
		kv = kvstore.NewRedisStore(client, cfg.RedisPrefix)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis key-value store")
	} else {
		kv = kvstore.NewMemoryStore()
		log.Info().Msg("Using in-memory key-value store")
	}

	// Platform collaborators
	provider := device.NewSimProvider(
		cfg.SimStartLat, cfg.SimStartLon,
		cfg.SimStepMeters, cfg.SimBearing,
		time.Second, log.Logger,
	)
	perms := device.StaticPermissions{Foreground: true, Background: true}
	haptics := device.LogHaptics{Log: log.Logger}
	geocoder := device.StubGeocoder{}
	notifier := device.LogNotifier{Log: log.Logger}
	launcher := device.LogLauncher{Log: log.Logger}

	// Backend API client
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.TouristID, cfg.DeviceID, nil, log.Logger)

	// Core components
	tracker := tracking.New(provider, perms, geocoder, backendClient, kv, log.Logger, tracking.Config{
		MinInterval:  cfg.TrackingMinInterval,
		MinDistanceM: cfg.TrackingMinDistance,
		FetchTimeout: cfg.FixFetchTimeout,
	})

	manager := alerts.NewManager(tracker, backendClient, notifier, launcher, kv, log.Logger)
	monitor := geofence.NewMonitor(zones, manager, haptics, log.Logger)
	sequence := sos.New(manager, haptics, log.Logger, cfg.PanicTickInterval)

	// Every accepted fix is evaluated against the restricted zones.
	onFix := func(fix domain.LocationFix) {
		monitor.CheckViolation(context.Background(), fix)
	}

	handler := api.NewHandler(tracker, monitor, sequence, manager, onFix, log.Logger)
	router := api.NewRouter(handler, cfg.Environment)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutdown signal received, gracefully stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown incomplete, forcing close")
		_ = server.Close()
	}

	sequence.Close()
	tracker.StopTracking()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown tracer")
	}

	log.Info().Msg("Service shutdown complete")
}

// setLogLevel configures the global log level
func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Str("level", level).Msg("Log level set")
}
