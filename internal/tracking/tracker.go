// Package tracking implements the location sampling loop: permission
// lifecycle, one-shot fixes with best-effort reverse geocoding, and a
// continuous subscription gated by a hybrid interval-plus-displacement
// trigger feeding a bounded history and the backend collaborator.
package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/geo"
	"github.com/himanshu427-droid/touro-care/internal/observability"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// Sampling policy defaults. Both constraints must hold before a new fix is
// emitted, mirroring mobile geofencing power-saving policy.
const (
	DefaultMinInterval  = 30 * time.Second
	DefaultMinDistanceM = 10.0
	DefaultFetchTimeout = 10 * time.Second
)

// trackingEnabledKey persists the session flag across restarts.
const trackingEnabledKey = "tracking_enabled"

// Config tunes the sampling policy. Zero values fall back to the defaults.
type Config struct {
	MinInterval  time.Duration
	MinDistanceM float64
	FetchTimeout time.Duration
}

// Tracker owns the tracking session. All mutation happens behind its mutex;
// callers only ever receive copies.
type Tracker struct {
	provider ports.LocationProvider
	perms    ports.PermissionService
	geocoder ports.ReverseGeocoder
	backend  ports.Backend
	kv       ports.KVStore
	log      zerolog.Logger

	minInterval  time.Duration
	minDistance  float64
	fetchTimeout time.Duration

	mu       sync.Mutex
	session  domain.TrackingSession
	sub      ports.Subscription
	lastEmit time.Time
}

// New creates a tracker in the stopped state.
func New(
	provider ports.LocationProvider,
	perms ports.PermissionService,
	geocoder ports.ReverseGeocoder,
	backend ports.Backend,
	kv ports.KVStore,
	logger zerolog.Logger,
	cfg Config,
) *Tracker {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.MinDistanceM <= 0 {
		cfg.MinDistanceM = DefaultMinDistanceM
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	return &Tracker{
		provider:     provider,
		perms:        perms,
		geocoder:     geocoder,
		backend:      backend,
		kv:           kv,
		log:          logger.With().Str("component", "tracking").Logger(),
		minInterval:  cfg.MinInterval,
		minDistance:  cfg.MinDistanceM,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// RequestPermissions asks for foreground and, best-effort, background
// location access. A foreground refusal fails with
// domain.ErrPermissionDenied; a background refusal only drops the tracker
// into reduced-capability mode.
func (t *Tracker) RequestPermissions(ctx context.Context) error {
	granted, err := t.perms.RequestForegroundLocation(ctx)
	if err != nil {
		return fmt.Errorf("foreground permission request: %w", domain.ErrPermissionDenied)
	}
	if !granted {
		return fmt.Errorf("foreground location refused: %w", domain.ErrPermissionDenied)
	}

	bg, err := t.perms.RequestBackgroundLocation(ctx)
	if err != nil || !bg {
		t.log.Warn().Msg("Background location refused, tracking in reduced-capability mode")
	}

	return nil
}

// CurrentFix performs a one-shot high-accuracy fetch, bounded by the
// configured timeout. On success it attempts reverse geocoding; a geocoding
// failure only leaves the resolved address empty.
func (t *Tracker) CurrentFix(ctx context.Context) (domain.LocationFix, error) {
	ctx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	fix, err := t.provider.CurrentFix(ctx, ports.AccuracyHigh)
	if err != nil {
		return domain.LocationFix{}, fmt.Errorf("one-shot fetch: %w", domain.ErrLocationUnavailable)
	}

	if addr, err := t.geocoder.ResolveAddress(ctx, fix.Latitude, fix.Longitude); err != nil {
		t.log.Warn().Err(err).Msg("Reverse geocoding failed, leaving address empty")
	} else {
		fix.ResolvedAddress = addr
	}

	return fix, nil
}

// StartTracking requests permissions and opens the location subscription.
// Idempotent: a second call while active returns success without creating
// another subscription. Each accepted fix is appended to the bounded
// history, forwarded to the backend fire-and-forget, and handed to onFix.
func (t *Tracker) StartTracking(ctx context.Context, onFix func(domain.LocationFix)) error {
	t.mu.Lock()
	if t.session.Active {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.RequestPermissions(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session.Active {
		return nil
	}

	sub, err := t.provider.Subscribe(ports.SubscribeOptions{
		MinInterval: t.minInterval,
		MinDistance: t.minDistance,
	}, func(fix domain.LocationFix) {
		t.handleFix(fix, onFix)
	})
	if err != nil {
		return fmt.Errorf("open subscription: %w", domain.ErrLocationUnavailable)
	}

	t.sub = sub
	t.session.Active = true
	t.lastEmit = time.Time{}

	if err := t.kv.SetItem(context.Background(), trackingEnabledKey, "true"); err != nil {
		t.log.Warn().Err(err).Msg("Failed to persist tracking flag")
	}

	t.log.Info().
		Dur("min_interval", t.minInterval).
		Float64("min_distance_m", t.minDistance).
		Msg("Tracking started")

	return nil
}

// StopTracking cancels the subscription and clears the session. Safe to
// call when already stopped.
func (t *Tracker) StopTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Active {
		return
	}

	if t.sub != nil {
		t.sub.Cancel()
		t.sub = nil
	}

	t.session = domain.TrackingSession{}
	t.lastEmit = time.Time{}

	if err := t.kv.SetItem(context.Background(), trackingEnabledKey, "false"); err != nil {
		t.log.Warn().Err(err).Msg("Failed to persist tracking flag")
	}

	t.log.Info().Msg("Tracking stopped")
}

// Active reports whether a subscription is open.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Active
}

// History returns a snapshot copy of the bounded fix history, oldest first.
func (t *Tracker) History() []domain.LocationFix {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.LocationFix, len(t.session.History))
	copy(out, t.session.History)
	return out
}

// Session returns a snapshot of the tracking session.
func (t *Tracker) Session() domain.TrackingSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := domain.TrackingSession{Active: t.session.Active}
	if t.session.LastFix != nil {
		last := *t.session.LastFix
		snap.LastFix = &last
	}
	snap.History = make([]domain.LocationFix, len(t.session.History))
	copy(snap.History, t.session.History)
	return snap
}

// handleFix applies the hybrid trigger, records the fix, and forwards it.
func (t *Tracker) handleFix(fix domain.LocationFix, onFix func(domain.LocationFix)) {
	t.mu.Lock()

	if !t.session.Active {
		// Fix delivered after cancellation; drop it.
		t.mu.Unlock()
		return
	}

	var speed float64
	if t.session.LastFix != nil {
		prev := *t.session.LastFix
		elapsed := fix.Timestamp.Sub(t.lastEmit)
		dist := geo.DistanceMeters(
			geo.Point{Latitude: prev.Latitude, Longitude: prev.Longitude},
			geo.Point{Latitude: fix.Latitude, Longitude: fix.Longitude},
		)
		if elapsed < t.minInterval || dist < t.minDistance {
			t.mu.Unlock()
			return
		}
		speed = geo.SpeedMps(
			geo.Point{Latitude: prev.Latitude, Longitude: prev.Longitude}, prev.Timestamp,
			geo.Point{Latitude: fix.Latitude, Longitude: fix.Longitude}, fix.Timestamp,
		)
	}

	t.session.History = append(t.session.History, fix)
	if len(t.session.History) > domain.HistoryCapacity {
		t.session.History = t.session.History[len(t.session.History)-domain.HistoryCapacity:]
	}
	fixCopy := fix
	t.session.LastFix = &fixCopy
	t.lastEmit = fix.Timestamp

	t.mu.Unlock()

	observability.FixesSampled.Inc()

	// Fire-and-forget: updates may complete out of order and a network
	// failure must never stop tracking.
	go t.forward(fix, speed)

	if onFix != nil {
		onFix(fix)
	}
}

// forward sends one update batch to the backend, swallowing failures.
func (t *Tracker) forward(fix domain.LocationFix, speed float64) {
	ctx, cancel := context.WithTimeout(context.Background(), t.fetchTimeout)
	defer cancel()

	err := t.backend.SendLocationUpdate(ctx, []ports.LocationUpdate{{Fix: fix, SpeedMps: speed}})
	if err != nil {
		observability.LocationUpdatesFailed.Inc()
		t.log.Warn().Err(err).
			Float64("lat", fix.Latitude).
			Float64("lon", fix.Longitude).
			Msg("Location update delivery failed")
		return
	}
	observability.LocationUpdatesSent.Inc()
}
