// Package device supplies the platform-side collaborators for runs without
// real hardware: a deterministic simulated GPS provider plus permission,
// haptics, geocoder, notifier, and URL launcher stubs.
package device

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// metersPerDegreeLat approximates one degree of latitude.
const metersPerDegreeLat = 111320.0

// SimProvider is a deterministic GPS simulator that walks from a start
// point along a fixed bearing, one step per emission.
type SimProvider struct {
	stepMeters     float64
	bearingDegrees float64
	emitInterval   time.Duration
	log            zerolog.Logger

	mu        sync.Mutex
	lat       float64
	lon       float64
	available bool
}

// NewSimProvider starts the walker at (lat, lon). stepMeters is the
// distance covered between consecutive emissions.
func NewSimProvider(lat, lon, stepMeters, bearingDegrees float64, emitInterval time.Duration, logger zerolog.Logger) *SimProvider {
	if emitInterval <= 0 {
		emitInterval = time.Second
	}
	return &SimProvider{
		stepMeters:     stepMeters,
		bearingDegrees: bearingDegrees,
		emitInterval:   emitInterval,
		log:            logger.With().Str("component", "sim_gps").Logger(),
		lat:            lat,
		lon:            lon,
		available:      true,
	}
}

// SetAvailable toggles fix production, simulating GPS signal loss.
func (p *SimProvider) SetAvailable(available bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.available = available
}

// CurrentFix returns the walker's current position.
func (p *SimProvider) CurrentFix(_ context.Context, _ ports.Accuracy) (domain.LocationFix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.available {
		return domain.LocationFix{}, domain.ErrLocationUnavailable
	}

	return domain.LocationFix{
		Latitude:       p.lat,
		Longitude:      p.lon,
		AccuracyMeters: 5,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// Subscribe emits a fix every emit interval, advancing the walker one step
// each time. Cancelling the returned handle deterministically stops
// delivery; no callback runs after Cancel returns.
func (p *SimProvider) Subscribe(_ ports.SubscribeOptions, fn func(domain.LocationFix)) (ports.Subscription, error) {
	p.mu.Lock()
	if !p.available {
		p.mu.Unlock()
		return nil, domain.ErrLocationUnavailable
	}
	p.mu.Unlock()

	sub := &simSubscription{
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(p.emitInterval)
		defer ticker.Stop()
		defer close(sub.stopped)

		for {
			select {
			case <-sub.stop:
				return
			case <-ticker.C:
				fix, ok := p.step()
				if !ok {
					continue
				}
				select {
				case <-sub.stop:
					return
				default:
					fn(fix)
				}
			}
		}
	}()

	return sub, nil
}

// step advances the walker and returns the new fix.
func (p *SimProvider) step() (domain.LocationFix, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.available {
		return domain.LocationFix{}, false
	}

	rad := p.bearingDegrees * math.Pi / 180
	p.lat += p.stepMeters * math.Cos(rad) / metersPerDegreeLat
	p.lon += p.stepMeters * math.Sin(rad) / (metersPerDegreeLat * math.Cos(p.lat*math.Pi/180))

	return domain.LocationFix{
		Latitude:       p.lat,
		Longitude:      p.lon,
		AccuracyMeters: 5,
		Timestamp:      time.Now().UTC(),
	}, true
}

// simSubscription stops the emitter goroutine and waits for it to exit, so
// no fix is delivered after Cancel returns.
type simSubscription struct {
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func (s *simSubscription) Cancel() {
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped
	})
}
