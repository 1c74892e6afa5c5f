package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/domain"
)

// StaticPermissions is a permission service with fixed answers.
type StaticPermissions struct {
	Foreground bool
	Background bool
}

// RequestForegroundLocation reports the configured foreground grant.
func (p StaticPermissions) RequestForegroundLocation(context.Context) (bool, error) {
	return p.Foreground, nil
}

// RequestBackgroundLocation reports the configured background grant.
func (p StaticPermissions) RequestBackgroundLocation(context.Context) (bool, error) {
	return p.Background, nil
}

// LogHaptics logs in place of a vibration motor.
type LogHaptics struct {
	Log zerolog.Logger
}

// Pulse fires one haptic pulse.
func (h LogHaptics) Pulse() {
	h.Log.Debug().Msg("Haptic pulse")
}

// StubGeocoder formats the coordinate instead of calling a geocoding
// service. Never fails.
type StubGeocoder struct{}

// ResolveAddress returns a printable coordinate string.
func (StubGeocoder) ResolveAddress(_ context.Context, lat, lon float64) (string, error) {
	return fmt.Sprintf("%.4f, %.4f", lat, lon), nil
}

// LogNotifier logs alert notifications in place of a push/SMS channel.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify records the notification.
func (n LogNotifier) Notify(_ context.Context, contact domain.EmergencyContact, alert domain.EmergencyAlert) error {
	n.Log.Info().
		Str("contact", contact.Phone).
		Str("contact_name", contact.Name).
		Str("alert_id", alert.ID).
		Str("kind", string(alert.Kind)).
		Msg("Contact notified")
	return nil
}

// LogLauncher validates and logs deep links instead of opening them.
type LogLauncher struct {
	Log zerolog.Logger
}

// CanOpen accepts tel: and map deep links.
func (LogLauncher) CanOpen(url string) bool {
	return strings.HasPrefix(url, "tel:") || strings.HasPrefix(url, "geo:") || strings.HasPrefix(url, "https://maps.")
}

// Open logs the launch.
func (l LogLauncher) Open(url string) error {
	if !l.CanOpen(url) {
		return fmt.Errorf("unsupported url scheme: %s", url)
	}
	l.Log.Info().Str("url", url).Msg("Opening deep link")
	return nil
}
