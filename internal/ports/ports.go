// Package ports declares the collaborator contracts the safety core
// consumes: the platform location provider, permission service, reverse
// geocoder, backend API, contact notifier, key-value store, haptics, and
// URL launcher. Implementations live under internal/adapters.
package ports

import (
	"context"
	"time"

	"github.com/himanshu427-droid/touro-care/internal/domain"
)

// Accuracy selects the location provider accuracy profile.
type Accuracy string

// Accuracy profiles.
const (
	AccuracyHigh     Accuracy = "high"
	AccuracyBalanced Accuracy = "balanced"
)

// SubscribeOptions configures a continuous location subscription.
type SubscribeOptions struct {
	MinInterval time.Duration
	MinDistance float64 // meters
}

// Subscription is a cancellable location stream handle. Cancel is
// idempotent; after it returns no further callbacks are delivered.
type Subscription interface {
	Cancel()
}

// LocationProvider abstracts the platform GPS stack.
type LocationProvider interface {
	// CurrentFix performs a one-shot fetch. Fails with
	// domain.ErrLocationUnavailable when no fix can be produced.
	CurrentFix(ctx context.Context, accuracy Accuracy) (domain.LocationFix, error)

	// Subscribe delivers fixes to fn until the subscription is cancelled.
	Subscribe(opts SubscribeOptions, fn func(domain.LocationFix)) (Subscription, error)
}

// PermissionService abstracts the platform permission dialogs.
// Each call reports whether access was granted.
type PermissionService interface {
	RequestForegroundLocation(ctx context.Context) (bool, error)
	RequestBackgroundLocation(ctx context.Context) (bool, error)
}

// ReverseGeocoder resolves a coordinate into a human-readable address.
// Failures are tolerated by all callers.
type ReverseGeocoder interface {
	ResolveAddress(ctx context.Context, lat, lon float64) (string, error)
}

// LocationUpdate is one backend location sample: a fix plus the speed
// relative to the previously emitted fix.
type LocationUpdate struct {
	Fix      domain.LocationFix
	SpeedMps float64
}

// Backend is the HTTP backend API. All three calls are best-effort
// fire-and-forget from the core's perspective.
type Backend interface {
	SendLocationUpdate(ctx context.Context, updates []LocationUpdate) error
	SendSOS(ctx context.Context, alert domain.EmergencyAlert) error
	SendIncident(ctx context.Context, report domain.IncidentReport) error
}

// ContactNotifier delivers an alert notification to a single contact.
// Delivery mechanics (push, SMS) are a collaborator concern.
type ContactNotifier interface {
	Notify(ctx context.Context, contact domain.EmergencyContact, alert domain.EmergencyAlert) error
}

// KVStore is a small persistent key-value abstraction for the
// tracking-enabled flag and the cached contact set.
type KVStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	GetJSON(ctx context.Context, key string, out any) error
	SetJSON(ctx context.Context, key string, value any) error
}

// Haptics fires a device vibration pulse. Failure is ignored everywhere.
type Haptics interface {
	Pulse()
}

// URLLauncher opens tel: and map-app deep links.
type URLLauncher interface {
	CanOpen(url string) bool
	Open(url string) error
}
