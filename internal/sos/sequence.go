// Package sos implements the panic-button countdown state machine:
// press-and-hold arms a three-tick countdown that can still be cancelled;
// on expiry it triggers an SOS alert and stays active until resolved.
package sos

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/alerts"
	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/observability"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// CountdownTicks is the number of one-interval ticks before the alert fires.
const CountdownTicks = 3

// DefaultTickInterval is the production countdown cadence.
const DefaultTickInterval = time.Second

// AlertService is the slice of the alert manager the sequence drives.
type AlertService interface {
	Trigger(ctx context.Context, kind domain.AlertKind, message string) (alerts.TriggerOutcome, error)
	Resolve(id string) error
}

// Snapshot is a copy of the sequence state for the UI layer.
type Snapshot struct {
	State     domain.PanicState `json:"state"`
	Remaining int               `json:"remaining"`
	AlertID   string            `json:"alert_id,omitempty"`
}

// Sequence is the countdown state machine. Exactly one instance exists per
// device session. Every exit path (cancel, completion, resolve, Close)
// clears the scheduled tick; the generation counter guards against a stale
// timer firing after a transition.
type Sequence struct {
	svc     AlertService
	haptics ports.Haptics
	log     zerolog.Logger

	interval time.Duration

	mu        sync.Mutex
	state     domain.PanicState
	remaining int
	gen       uint64
	timer     *time.Timer
	alertID   string
}

// New builds an idle sequence. A non-positive tickInterval falls back to
// the one-second default.
func New(svc AlertService, haptics ports.Haptics, logger zerolog.Logger, tickInterval time.Duration) *Sequence {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &Sequence{
		svc:      svc,
		haptics:  haptics,
		log:      logger.With().Str("component", "sos").Logger(),
		interval: tickInterval,
		state:    domain.PanicIdle,
	}
}

// Start arms the countdown. Valid only from idle; calls from any other
// state are no-ops so the UI can race on double-presses. Returns whether
// the countdown was started.
func (s *Sequence) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.PanicIdle {
		return false
	}

	s.state = domain.PanicCountingDown
	s.remaining = CountdownTicks
	s.gen++
	s.schedule(s.gen)

	s.haptics.Pulse()
	observability.CountdownsStarted.Inc()
	s.log.Info().Int("remaining", s.remaining).Msg("Panic countdown started")
	return true
}

// Cancel releases the countdown before expiry. Valid only while counting
// down; no alert is produced. Returns whether a countdown was cancelled.
func (s *Sequence) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.PanicCountingDown {
		return false
	}

	s.clearTimer()
	s.state = domain.PanicIdle
	s.remaining = 0

	observability.CountdownsCancelled.Inc()
	s.log.Info().Msg("Panic countdown cancelled")
	return true
}

// Resolve closes out an active emergency: resolves the triggered alert and
// returns the sequence to idle. A call from any other state is a no-op.
func (s *Sequence) Resolve() error {
	s.mu.Lock()
	if s.state != domain.PanicActive {
		s.mu.Unlock()
		return nil
	}
	id := s.alertID
	s.mu.Unlock()

	if id != "" {
		if err := s.svc.Resolve(id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.state = domain.PanicIdle
	s.alertID = ""
	s.mu.Unlock()

	s.log.Info().Str("alert_id", id).Msg("Panic emergency resolved")
	return nil
}

// Close tears the sequence down, clearing any scheduled tick.
func (s *Sequence) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearTimer()
	s.state = domain.PanicIdle
	s.remaining = 0
}

// State returns a copy of the current sequence state.
func (s *Sequence) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{State: s.state, Remaining: s.remaining, AlertID: s.alertID}
}

// schedule arms the next tick. Callers must hold s.mu.
func (s *Sequence) schedule(gen uint64) {
	s.timer = time.AfterFunc(s.interval, func() { s.tick(gen) })
}

// clearTimer stops the pending tick and invalidates in-flight ones.
// Callers must hold s.mu.
func (s *Sequence) clearTimer() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// tick decrements the countdown; reaching zero transitions to active and
// triggers the SOS alert. A trigger failure never reverts the transition,
// it only leaves the sequence active without a recorded alert id.
func (s *Sequence) tick(gen uint64) {
	s.mu.Lock()

	if s.state != domain.PanicCountingDown || gen != s.gen {
		s.mu.Unlock()
		return
	}

	s.remaining--
	if s.remaining > 0 {
		s.schedule(gen)
		s.log.Debug().Int("remaining", s.remaining).Msg("Panic countdown tick")
		s.mu.Unlock()
		return
	}

	s.timer = nil
	s.state = domain.PanicActive
	s.mu.Unlock()

	outcome, err := s.svc.Trigger(context.Background(), domain.KindSOS, "Panic button activated")
	if err != nil {
		s.log.Error().Err(err).Msg("SOS trigger failed, panic state stays active")
		return
	}

	s.mu.Lock()
	if s.state == domain.PanicActive && gen == s.gen {
		s.alertID = outcome.Alert.ID
		s.mu.Unlock()

		s.log.Info().
			Str("alert_id", outcome.Alert.ID).
			Bool("partial_failure", outcome.PartialFailure).
			Msg("Panic countdown expired, SOS alert triggered")
		return
	}
	s.mu.Unlock()

	// The emergency was resolved while the trigger was in flight; close out
	// the freshly created alert so it does not linger as sent.
	if err := s.svc.Resolve(outcome.Alert.ID); err != nil {
		s.log.Warn().Err(err).Str("alert_id", outcome.Alert.ID).Msg("Failed to resolve superseded SOS alert")
		return
	}
	s.log.Info().Str("alert_id", outcome.Alert.ID).Msg("SOS alert resolved, emergency ended during trigger")
}
