// Package observability registers the Prometheus metrics emitted by the
// safety core. Counters are package-level and registered on the default
// registry; the HTTP layer exposes them at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "tourocare_"

var (
	// FixesSampled counts fixes accepted by the tracking hybrid trigger.
	FixesSampled = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "fixes_sampled_total",
		Help: "Location fixes accepted into the tracking history",
	})

	// LocationUpdatesSent counts successful backend location forwards.
	LocationUpdatesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "location_updates_sent_total",
		Help: "Location update batches delivered to the backend",
	})

	// LocationUpdatesFailed counts swallowed backend forwarding failures.
	LocationUpdatesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "location_updates_failed_total",
		Help: "Location update batches that failed backend delivery",
	})

	// AlertsTriggered counts alerts recorded locally, by kind.
	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "alerts_triggered_total",
		Help: "Emergency alerts recorded, labelled by kind",
	}, []string{"kind"})

	// GeofenceViolations counts zone entries detected by the monitor.
	GeofenceViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "geofence_violations_total",
		Help: "Restricted zone entries detected",
	})

	// CountdownsStarted counts panic countdowns armed.
	CountdownsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "panic_countdowns_started_total",
		Help: "Panic countdowns started",
	})

	// CountdownsCancelled counts panic countdowns released before expiry.
	CountdownsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "panic_countdowns_cancelled_total",
		Help: "Panic countdowns cancelled before expiry",
	})
)
