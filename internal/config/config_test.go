package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ServiceName != "touro-care" {
		t.Errorf("ServiceName = %s, want touro-care", cfg.ServiceName)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s, want 8080", cfg.HTTPPort)
	}
	if cfg.TrackingMinInterval != 30*time.Second {
		t.Errorf("TrackingMinInterval = %v, want 30s", cfg.TrackingMinInterval)
	}
	if cfg.TrackingMinDistance != 10 {
		t.Errorf("TrackingMinDistance = %v, want 10", cfg.TrackingMinDistance)
	}
	if cfg.FixFetchTimeout != 10*time.Second {
		t.Errorf("FixFetchTimeout = %v, want 10s", cfg.FixFetchTimeout)
	}
	if cfg.PanicTickInterval != time.Second {
		t.Errorf("PanicTickInterval = %v, want 1s", cfg.PanicTickInterval)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %s, want empty (in-memory store)", cfg.RedisAddr)
	}
	if cfg.DeviceID == "" {
		t.Error("DeviceID should default to a generated identifier")
	}
	if cfg.SimStartLat != 25.5788 || cfg.SimStartLon != 91.8933 {
		t.Errorf("sim start = (%v, %v), want (25.5788, 91.8933)", cfg.SimStartLat, cfg.SimStartLon)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("SERVICE_NAME", "touro-care-test")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TOURIST_ID", "tourist-42")
	t.Setenv("BACKEND_BASE_URL", "http://backend.test/api")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TRACKING_MIN_INTERVAL", "5s")
	t.Setenv("TRACKING_MIN_DISTANCE_M", "2.5")
	t.Setenv("PANIC_TICK_INTERVAL", "100ms")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ServiceName != "touro-care-test" {
		t.Errorf("ServiceName = %s, want touro-care-test", cfg.ServiceName)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %s, want 9090", cfg.HTTPPort)
	}
	if cfg.TouristID != "tourist-42" {
		t.Errorf("TouristID = %s, want tourist-42", cfg.TouristID)
	}
	if cfg.BackendBaseURL != "http://backend.test/api" {
		t.Errorf("BackendBaseURL = %s", cfg.BackendBaseURL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %s, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.TrackingMinInterval != 5*time.Second {
		t.Errorf("TrackingMinInterval = %v, want 5s", cfg.TrackingMinInterval)
	}
	if cfg.TrackingMinDistance != 2.5 {
		t.Errorf("TrackingMinDistance = %v, want 2.5", cfg.TrackingMinDistance)
	}
	if cfg.PanicTickInterval != 100*time.Millisecond {
		t.Errorf("PanicTickInterval = %v, want 100ms", cfg.PanicTickInterval)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled should be true")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TRACKING_MIN_INTERVAL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid TRACKING_MIN_INTERVAL")
	}
}

func TestLoad_InvalidFloat(t *testing.T) {
	t.Setenv("TRACKING_MIN_DISTANCE_M", "ten")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid TRACKING_MIN_DISTANCE_M")
	}
}

func TestLoadZones(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.yaml")
	data := `zones:
  - name: Restricted Military Zone
    center_lat: 25.5788
    center_lon: 91.8933
    radius_m: 1000
  - name: Border Buffer
    center_lat: 25.2
    center_lon: 92.1
    radius_m: 5000
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	zones, err := LoadZones(path)
	if err != nil {
		t.Fatalf("LoadZones() failed: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("len(zones) = %d, want 2", len(zones))
	}
	if zones[0].Name != "Restricted Military Zone" {
		t.Errorf("zones[0].Name = %s", zones[0].Name)
	}
	if zones[0].RadiusMeters != 1000 {
		t.Errorf("zones[0].RadiusMeters = %v, want 1000", zones[0].RadiusMeters)
	}
}

func TestLoadZones_MissingFileIsEmpty(t *testing.T) {
	zones, err := LoadZones(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadZones() failed: %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("len(zones) = %d, want 0", len(zones))
	}
}

func TestLoadZones_RejectsInvalidZone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.yaml")
	data := `zones:
  - name: ""
    center_lat: 25.5788
    center_lon: 91.8933
    radius_m: 1000
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadZones(path); err == nil {
		t.Error("expected error for zone with empty name")
	}
}
