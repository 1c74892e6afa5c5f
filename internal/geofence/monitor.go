// Package geofence evaluates location fixes against the configured
// restricted zones and raises a safety alert on each zone entry. While the
// tourist stays inside a zone no repeat alert is emitted; leaving the
// radius re-arms it.
package geofence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/geo"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// AlertRaiser raises a geofence alert for a zone entry and is told when
// the zone is exited so its suppression window re-arms. RaiseGeofenceAlert
// returns false when the alert was suppressed. Satisfied by the alert
// manager.
type AlertRaiser interface {
	RaiseGeofenceAlert(ctx context.Context, zone domain.RestrictedZone, fix domain.LocationFix) bool
	ClearGeofenceAlert(zoneName string)
}

// Monitor holds the static zone set and the per-zone entry state.
type Monitor struct {
	zones   []domain.RestrictedZone
	raiser  AlertRaiser
	haptics ports.Haptics
	log     zerolog.Logger

	mu     sync.Mutex
	inside map[string]time.Time // zone name -> insideSince
}

// NewMonitor builds a monitor over a static zone set.
func NewMonitor(zones []domain.RestrictedZone, raiser AlertRaiser, haptics ports.Haptics, logger zerolog.Logger) *Monitor {
	return &Monitor{
		zones:   zones,
		raiser:  raiser,
		haptics: haptics,
		log:     logger.With().Str("component", "geofence").Logger(),
		inside:  make(map[string]time.Time),
	}
}

// CheckViolation evaluates one fix against every zone and reports whether
// the fix violates any of them. An alert fires only on the transition from
// outside to inside a zone, not on every fix while inside.
func (m *Monitor) CheckViolation(ctx context.Context, fix domain.LocationFix) bool {
	point := geo.Point{Latitude: fix.Latitude, Longitude: fix.Longitude}

	m.mu.Lock()

	violated := false
	var entered []domain.RestrictedZone
	var exited []string
	for _, zone := range m.zones {
		dist := geo.DistanceMeters(point, geo.Point{Latitude: zone.CenterLat, Longitude: zone.CenterLon})

		if dist > zone.RadiusMeters {
			if _, was := m.inside[zone.Name]; was {
				delete(m.inside, zone.Name)
				exited = append(exited, zone.Name)
				m.log.Info().Str("zone", zone.Name).Msg("Restricted zone exited")
			}
			continue
		}

		violated = true
		if _, already := m.inside[zone.Name]; already {
			continue
		}
		m.inside[zone.Name] = fix.Timestamp
		entered = append(entered, zone)

		m.log.Warn().
			Str("zone", zone.Name).
			Float64("distance_m", dist).
			Float64("radius_m", zone.RadiusMeters).
			Msg("Restricted zone entered")
	}

	m.mu.Unlock()

	for _, name := range exited {
		m.raiser.ClearGeofenceAlert(name)
	}
	for _, zone := range entered {
		m.haptics.Pulse()
		m.raiser.RaiseGeofenceAlert(ctx, zone, fix)
	}

	return violated
}

// InsideZones returns the names of zones the last checked fix was inside.
func (m *Monitor) InsideZones() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.inside))
	for name := range m.inside {
		out = append(out, name)
	}
	return out
}

// Zones returns a copy of the configured zone set.
func (m *Monitor) Zones() []domain.RestrictedZone {
	out := make([]domain.RestrictedZone, len(m.zones))
	copy(out, m.zones)
	return out
}
