package domain

import "time"

// AlertKind classifies an emergency alert.
type AlertKind string

// Alert kinds.
const (
	KindSOS      AlertKind = "sos"
	KindMedical  AlertKind = "medical"
	KindSecurity AlertKind = "security"
	KindGeofence AlertKind = "geofence"
)

// AlertStatus is the lifecycle state of an alert. Transitions are forward
// only (sent -> acknowledged -> resolved); an explicit cancel force-resolves.
type AlertStatus string

// Alert statuses.
const (
	StatusSent         AlertStatus = "sent"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
)

// ContactType classifies an emergency contact.
type ContactType string

// Contact types.
const (
	ContactPolice    ContactType = "police"
	ContactMedical   ContactType = "medical"
	ContactFamily    ContactType = "family"
	ContactEmbassy   ContactType = "embassy"
	ContactAuthority ContactType = "authority"
)

// EmergencyContact is a phone number notified when an alert fires.
type EmergencyContact struct {
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Type  ContactType `json:"type"`
}

// EmergencyAlert records one triggered emergency. A sent or acknowledged
// alert always carries a location; history entries are immutable once
// resolved.
type EmergencyAlert struct {
	ID               string      `json:"id"`
	Kind             AlertKind   `json:"kind"`
	Message          string      `json:"message"`
	Zone             string      `json:"zone,omitempty"`
	Location         LocationFix `json:"location"`
	CreatedAt        time.Time   `json:"created_at"`
	Status           AlertStatus `json:"status"`
	AcknowledgedAt   *time.Time  `json:"acknowledged_at,omitempty"`
	ResolvedAt       *time.Time  `json:"resolved_at,omitempty"`
	NotifiedContacts []string    `json:"notified_contacts,omitempty"`
}

// IncidentReport is a write-once record forwarded to the backend.
type IncidentReport struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Location    LocationFix `json:"location"`
	ReportedAt  time.Time   `json:"reported_at"`
}

// PanicState is the countdown state machine position.
type PanicState string

// Panic states.
const (
	PanicIdle         PanicState = "idle"
	PanicCountingDown PanicState = "counting_down"
	PanicActive       PanicState = "active"
)
