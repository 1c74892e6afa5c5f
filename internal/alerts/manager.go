// Package alerts owns the emergency alert lifecycle: triggering, dispatch
// to the backend and contacts, acknowledgement and resolution, incident
// reports, and the emergency contact set. The local record of an alert is
// never rolled back on downstream failure; callers see a partial-failure
// flag instead.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/observability"
	"github.com/himanshu427-droid/touro-care/internal/ports"
)

// contactsKey caches the contact set in the key-value store.
const contactsKey = "emergency_contacts"

// FixSource supplies the current device location for alerts and incident
// reports. Satisfied by the location tracker.
type FixSource interface {
	CurrentFix(ctx context.Context) (domain.LocationFix, error)
}

// TriggerOutcome reports a trigger or incident dispatch. The alert is
// always locally recorded when error is nil; PartialFailure marks
// best-effort delivery problems.
type TriggerOutcome struct {
	Alert            domain.EmergencyAlert
	BackendDelivered bool
	NotifyFailures   int
	PartialFailure   bool
}

// Manager owns the alert history and contact set. Both are exposed to
// callers only as copies.
type Manager struct {
	fixes    FixSource
	backend  ports.Backend
	notifier ports.ContactNotifier
	launcher ports.URLLauncher
	kv       ports.KVStore
	log      zerolog.Logger

	mu              sync.Mutex
	history         []*domain.EmergencyAlert // most recent first
	contacts        []domain.EmergencyContact
	openZones       map[string]struct{} // zones with an alert raised for the current presence
	lastAlertMillis int64
}

// NewManager builds a manager and restores the cached contact set. An
// empty or unreadable cache falls back to the default national numbers.
func NewManager(
	fixes FixSource,
	backend ports.Backend,
	notifier ports.ContactNotifier,
	launcher ports.URLLauncher,
	kv ports.KVStore,
	logger zerolog.Logger,
) *Manager {
	m := &Manager{
		fixes:     fixes,
		backend:   backend,
		notifier:  notifier,
		launcher:  launcher,
		kv:        kv,
		log:       logger.With().Str("component", "alerts").Logger(),
		openZones: make(map[string]struct{}),
	}

	var cached []domain.EmergencyContact
	if err := kv.GetJSON(context.Background(), contactsKey, &cached); err != nil || len(cached) == 0 {
		cached = defaultContacts()
	}
	m.contacts = cached

	return m
}

func defaultContacts() []domain.EmergencyContact {
	return []domain.EmergencyContact{
		{Name: "Police", Phone: "100", Type: domain.ContactPolice},
		{Name: "Ambulance", Phone: "108", Type: domain.ContactMedical},
		{Name: "Tourist Helpline", Phone: "1363", Type: domain.ContactAuthority},
	}
}

// Trigger records and dispatches a new alert of the given kind. Fails with
// domain.ErrLocationUnavailable when no fix is obtainable; no alert is
// created in that case.
func (m *Manager) Trigger(ctx context.Context, kind domain.AlertKind, message string) (TriggerOutcome, error) {
	fix, err := m.fixes.CurrentFix(ctx)
	if err != nil {
		return TriggerOutcome{}, fmt.Errorf("trigger %s alert: %w", kind, err)
	}
	return m.record(ctx, kind, message, "", fix), nil
}

// RaiseGeofenceAlert records and dispatches a geofence alert for the given
// zone using the violating fix directly. The suppression window is scoped
// to one continuous presence: a second raise for the same zone before
// ClearGeofenceAlert returns false, while exit and re-entry always produce
// a fresh alert regardless of the prior alert's status.
func (m *Manager) RaiseGeofenceAlert(ctx context.Context, zone domain.RestrictedZone, fix domain.LocationFix) bool {
	m.mu.Lock()
	if _, open := m.openZones[zone.Name]; open {
		m.mu.Unlock()
		m.log.Debug().Str("zone", zone.Name).Msg("Suppressing duplicate geofence alert")
		return false
	}
	m.openZones[zone.Name] = struct{}{}
	m.mu.Unlock()

	message := fmt.Sprintf("Entered restricted zone: %s", zone.Name)
	m.record(ctx, domain.KindGeofence, message, zone.Name, fix)
	return true
}

// ClearGeofenceAlert closes the zone's suppression window when the tourist
// leaves it, re-arming RaiseGeofenceAlert for the next entry.
func (m *Manager) ClearGeofenceAlert(zoneName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.openZones, zoneName)
}

// record appends the alert to history and dispatches it. The local append
// happens before any network call so the record survives poor connectivity.
func (m *Manager) record(ctx context.Context, kind domain.AlertKind, message, zone string, fix domain.LocationFix) TriggerOutcome {
	m.mu.Lock()
	alert := &domain.EmergencyAlert{
		ID:        m.nextAlertID(),
		Kind:      kind,
		Message:   message,
		Zone:      zone,
		Location:  fix,
		CreatedAt: time.Now().UTC(),
		Status:    domain.StatusSent,
	}
	m.history = append([]*domain.EmergencyAlert{alert}, m.history...)
	contacts := make([]domain.EmergencyContact, len(m.contacts))
	copy(contacts, m.contacts)
	m.mu.Unlock()

	observability.AlertsTriggered.WithLabelValues(string(kind)).Inc()
	if kind == domain.KindGeofence {
		observability.GeofenceViolations.Inc()
	}

	outcome := TriggerOutcome{Alert: *alert, BackendDelivered: true}

	if err := m.backend.SendSOS(ctx, *alert); err != nil {
		outcome.BackendDelivered = false
		m.log.Error().Err(err).Str("alert_id", alert.ID).Msg("Backend alert dispatch failed")
	}

	var notified []string
	for _, c := range contacts {
		if err := m.notifier.Notify(ctx, c, *alert); err != nil {
			outcome.NotifyFailures++
			m.log.Warn().Err(err).Str("contact", c.Phone).Str("alert_id", alert.ID).Msg("Contact notification failed")
			continue
		}
		notified = append(notified, c.Phone)
	}

	m.mu.Lock()
	alert.NotifiedContacts = notified
	m.mu.Unlock()

	outcome.Alert.NotifiedContacts = notified
	outcome.PartialFailure = !outcome.BackendDelivered || outcome.NotifyFailures > 0

	m.log.Info().
		Str("alert_id", alert.ID).
		Str("kind", string(kind)).
		Bool("partial_failure", outcome.PartialFailure).
		Int("contacts_notified", len(notified)).
		Msg("Emergency alert recorded")

	return outcome
}

// nextAlertID returns a time-derived unique id. Callers must hold m.mu.
func (m *Manager) nextAlertID() string {
	ms := time.Now().UnixMilli()
	if ms <= m.lastAlertMillis {
		ms = m.lastAlertMillis + 1
	}
	m.lastAlertMillis = ms
	return fmt.Sprintf("ALERT-%d", ms)
}

// Acknowledge moves a sent alert to acknowledged. Acknowledging an alert
// that already moved past sent is a no-op success; an unknown id fails
// with domain.ErrNotFound.
func (m *Manager) Acknowledge(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert := m.find(id)
	if alert == nil {
		return fmt.Errorf("acknowledge %s: %w", id, domain.ErrNotFound)
	}
	if alert.Status != domain.StatusSent {
		return nil
	}

	now := time.Now().UTC()
	alert.Status = domain.StatusAcknowledged
	alert.AcknowledgedAt = &now
	return nil
}

// Resolve moves an alert to resolved. Resolving an already-resolved alert
// is a no-op success and leaves the original resolution time untouched.
func (m *Manager) Resolve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert := m.find(id)
	if alert == nil {
		return fmt.Errorf("resolve %s: %w", id, domain.ErrNotFound)
	}
	if alert.Status == domain.StatusResolved {
		return nil
	}

	now := time.Now().UTC()
	alert.Status = domain.StatusResolved
	alert.ResolvedAt = &now
	return nil
}

// Cancel force-resolves an alert regardless of its current status.
func (m *Manager) Cancel(id string) error {
	return m.Resolve(id)
}

// find returns the history entry for id. Callers must hold m.mu.
func (m *Manager) find(id string) *domain.EmergencyAlert {
	for _, a := range m.history {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// History returns a snapshot of the alert history, most recent first.
func (m *Manager) History() []domain.EmergencyAlert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.EmergencyAlert, len(m.history))
	for i, a := range m.history {
		out[i] = *a
	}
	return out
}

// ReportIncident builds a write-once incident report and forwards it to
// the backend. When loc is nil the current fix is fetched first; failure
// there propagates and no report is produced. The returned flag reports
// backend delivery.
func (m *Manager) ReportIncident(ctx context.Context, incidentType, description string, loc *domain.LocationFix) (domain.IncidentReport, bool, error) {
	var fix domain.LocationFix
	if loc != nil {
		fix = *loc
	} else {
		var err error
		fix, err = m.fixes.CurrentFix(ctx)
		if err != nil {
			return domain.IncidentReport{}, false, fmt.Errorf("report incident: %w", err)
		}
	}

	report := domain.IncidentReport{
		ID:          uuid.New().String(),
		Type:        incidentType,
		Description: description,
		Location:    fix,
		ReportedAt:  time.Now().UTC(),
	}

	delivered := true
	if err := m.backend.SendIncident(ctx, report); err != nil {
		delivered = false
		m.log.Warn().Err(err).Str("incident_id", report.ID).Msg("Incident delivery failed")
	}

	m.log.Info().
		Str("incident_id", report.ID).
		Str("type", incidentType).
		Bool("delivered", delivered).
		Msg("Incident reported")

	return report, delivered, nil
}

// Contacts returns a copy of the emergency contact set.
func (m *Manager) Contacts() []domain.EmergencyContact {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.EmergencyContact, len(m.contacts))
	copy(out, m.contacts)
	return out
}

// AddContact adds or replaces a contact keyed by phone number and
// persists the set. Cache write failures are logged, not surfaced.
func (m *Manager) AddContact(ctx context.Context, contact domain.EmergencyContact) {
	m.mu.Lock()
	replaced := false
	for i, c := range m.contacts {
		if c.Phone == contact.Phone {
			m.contacts[i] = contact
			replaced = true
			break
		}
	}
	if !replaced {
		m.contacts = append(m.contacts, contact)
	}
	snapshot := make([]domain.EmergencyContact, len(m.contacts))
	copy(snapshot, m.contacts)
	m.mu.Unlock()

	m.persistContacts(ctx, snapshot)
}

// RemoveContact removes the contact with the given phone number. Removing
// an unknown number is a no-op.
func (m *Manager) RemoveContact(ctx context.Context, phone string) {
	m.mu.Lock()
	kept := m.contacts[:0]
	for _, c := range m.contacts {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}
	m.contacts = kept
	snapshot := make([]domain.EmergencyContact, len(m.contacts))
	copy(snapshot, m.contacts)
	m.mu.Unlock()

	m.persistContacts(ctx, snapshot)
}

func (m *Manager) persistContacts(ctx context.Context, contacts []domain.EmergencyContact) {
	if err := m.kv.SetJSON(ctx, contactsKey, contacts); err != nil {
		m.log.Warn().Err(err).Msg("Failed to cache contact set")
	}
}

// CallContact opens a tel: deep link for the given phone number through
// the platform URL launcher.
func (m *Manager) CallContact(phone string) error {
	url := "tel:" + strings.ReplaceAll(phone, " ", "")
	if !m.launcher.CanOpen(url) {
		return fmt.Errorf("cannot open %s", url)
	}
	return m.launcher.Open(url)
}
