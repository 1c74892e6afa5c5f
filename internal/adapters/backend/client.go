// Package backend implements the HTTP JSON client for the tourist safety
// backend API. All calls are best-effort from the core's perspective;
// failures surface as domain.ErrNetworkFailure and are handled softly by
// callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// Client talks to the backend over HTTP.
type Client struct {
	baseURL   string
	touristID string
	deviceID  string
	session   *http.Client
	log       zerolog.Logger
}

// NewClient builds a backend client. A nil session falls back to a client
// with a 15-second timeout.
func NewClient(baseURL, touristID, deviceID string, session *http.Client, logger zerolog.Logger) *Client {
	if session == nil {
		session = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		touristID: touristID,
		deviceID:  deviceID,
		session:   session,
		log:       logger.With().Str("component", "backend").Logger(),
	}
}

type locationPayload struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Speed    float64 `json:"speed"`
	Accuracy float64 `json:"accuracy"`
	TS       int64   `json:"ts"`
}

type locationUpdateRequest struct {
	TouristID string            `json:"touristId"`
	DeviceID  string            `json:"deviceId"`
	Locations []locationPayload `json:"locations"`
}

type sosRequest struct {
	TouristID string          `json:"touristId"`
	DeviceID  string          `json:"deviceId"`
	Location  locationPayload `json:"location"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
}

type incidentRequest struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Location    locationPayload `json:"location"`
	ReportedBy  string          `json:"reportedBy"`
	Timestamp   int64           `json:"timestamp"`
}

// SendLocationUpdate posts a batch of location samples.
func (c *Client) SendLocationUpdate(ctx context.Context, updates []ports.LocationUpdate) error {
	body := locationUpdateRequest{
		TouristID: c.touristID,
		DeviceID:  c.deviceID,
		Locations: make([]locationPayload, len(updates)),
	}
	for i, u := range updates {
		body.Locations[i] = toPayload(u.Fix, u.SpeedMps)
	}
	return c.post(ctx, "/tourist/location", body)
}

// SendSOS posts an emergency alert.
func (c *Client) SendSOS(ctx context.Context, alert domain.EmergencyAlert) error {
	body := sosRequest{
		TouristID: c.touristID,
		DeviceID:  c.deviceID,
		Location:  toPayload(alert.Location, 0),
		Message:   alert.Message,
		Type:      string(alert.Kind),
		Timestamp: alert.CreatedAt.UnixMilli(),
	}
	return c.post(ctx, "/tourist/sos", body)
}

// SendIncident posts a write-once incident report.
func (c *Client) SendIncident(ctx context.Context, report domain.IncidentReport) error {
	body := incidentRequest{
		Type:        report.Type,
		Description: report.Description,
		Location:    toPayload(report.Location, 0),
		ReportedBy:  c.touristID,
		Timestamp:   report.ReportedAt.UnixMilli(),
	}
	return c.post(ctx, "/incidents", body)
}

func toPayload(fix domain.LocationFix, speed float64) locationPayload {
	return locationPayload{
		Lat:      fix.Latitude,
		Lon:      fix.Longitude,
		Speed:    speed,
		Accuracy: fix.AccuracyMeters,
		TS:       fix.Timestamp.UnixMilli(),
	}
}

// post sends one JSON request and maps any failure, transport or status,
// onto domain.ErrNetworkFailure.
func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, domain.ErrNetworkFailure)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s: %w", path, resp.StatusCode, strings.TrimSpace(string(b)), domain.ErrNetworkFailure)
	}

	return nil
}
