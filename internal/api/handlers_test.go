package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanshu427-droid/touro-care/internal/adapters/kvstore"
	"github.com/himanshu427-droid/touro-care/internal/alerts"
	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/geofence"
	"github.com/himanshu427-droid/touro-care/internal/ports"
	"github.com/himanshu427-droid/touro-care/internal/sos"
	"github.com/himanshu427-droid/touro-care/internal/tracking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testFix = domain.LocationFix{
	Latitude:       25.5788,
	Longitude:      91.8933,
	AccuracyMeters: 5,
	Timestamp:      time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
}

type fakeProvider struct {
	mu  sync.Mutex
	fix domain.LocationFix
	err error
}

func (p *fakeProvider) CurrentFix(context.Context, ports.Accuracy) (domain.LocationFix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return domain.LocationFix{}, p.err
	}
	return p.fix, nil
}

func (p *fakeProvider) Subscribe(_ ports.SubscribeOptions, _ func(domain.LocationFix)) (ports.Subscription, error) {
	return nopSubscription{}, nil
}

type nopSubscription struct{}

func (nopSubscription) Cancel() {}

type grantedPerms struct{}

func (grantedPerms) RequestForegroundLocation(context.Context) (bool, error) { return true, nil }
func (grantedPerms) RequestBackgroundLocation(context.Context) (bool, error) { return true, nil }

type nopGeocoder struct{}

func (nopGeocoder) ResolveAddress(context.Context, float64, float64) (string, error) {
	return "Police Bazar, Shillong", nil
}

type nopBackend struct{}

func (nopBackend) SendLocationUpdate(context.Context, []ports.LocationUpdate) error { return nil }
func (nopBackend) SendSOS(context.Context, domain.EmergencyAlert) error             { return nil }
func (nopBackend) SendIncident(context.Context, domain.IncidentReport) error        { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.EmergencyContact, domain.EmergencyAlert) error {
	return nil
}

type nopLauncher struct{}

func (nopLauncher) CanOpen(string) bool { return true }
func (nopLauncher) Open(string) error   { return nil }

type nopHaptics struct{}

func (nopHaptics) Pulse() {}

type testEnv struct {
	router   *gin.Engine
	provider *fakeProvider
	manager  *alerts.Manager
	sequence *sos.Sequence
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zerolog.Nop()
	provider := &fakeProvider{fix: testFix}
	kv := kvstore.NewMemoryStore()

	tracker := tracking.New(provider, grantedPerms{}, nopGeocoder{}, nopBackend{}, kv, log, tracking.Config{})
	manager := alerts.NewManager(tracker, nopBackend{}, nopNotifier{}, nopLauncher{}, kv, log)
	monitor := geofence.NewMonitor([]domain.RestrictedZone{{
		Name:         "Restricted Military Zone",
		CenterLat:    25.5788,
		CenterLon:    91.8933,
		RadiusMeters: 1000,
	}}, manager, nopHaptics{}, log)
	sequence := sos.New(manager, nopHaptics{}, log, time.Minute)
	t.Cleanup(sequence.Close)

	h := NewHandler(tracker, monitor, sequence, manager, nil, log)
	return &testEnv{
		router:   NewRouter(h, "test"),
		provider: provider,
		manager:  manager,
		sequence: sequence,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPanicStart_ReturnsCountdownSnapshot(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/panic/start", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["started"])

	panic_, ok := body["panic"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.PanicCountingDown), panic_["state"])
	assert.Equal(t, float64(sos.CountdownTicks), panic_["remaining"])

	// A second start while counting down is a no-op.
	w = env.do(t, http.MethodPost, "/api/panic/start", "")
	assert.Equal(t, false, decode(t, w)["started"])
}

func TestPanicCancel_ReturnsToIdle(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/panic/start", "")
	w := env.do(t, http.MethodPost, "/api/panic/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["cancelled"])

	w = env.do(t, http.MethodGet, "/api/panic", "")
	assert.Equal(t, string(domain.PanicIdle), decode(t, w)["state"])
}

func TestTrackingLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/tracking/start", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/tracking/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["active"])

	w = env.do(t, http.MethodPost, "/api/tracking/stop", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/tracking/history", "")
	assert.Equal(t, false, decode(t, w)["active"])
}

func TestTrackingFix_UnavailableIs503(t *testing.T) {
	env := newTestEnv(t)
	env.provider.err = domain.ErrLocationUnavailable

	w := env.do(t, http.MethodGet, "/api/tracking/fix", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTriggerAlert(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/alerts", `{"kind":"medical","message":"allergic reaction"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	alert, ok := body["alert"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.KindMedical), alert["kind"])
	assert.Equal(t, string(domain.StatusSent), alert["status"])
	assert.Equal(t, false, body["partial_failure"])

	w = env.do(t, http.MethodGet, "/api/alerts", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestTriggerAlert_ValidatesKind(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/alerts", `{"kind":"tsunami"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/alerts", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlertStatus_UnknownIDIs404(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/alerts/ALERT-404/acknowledge", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/alerts/ALERT-404/resolve", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlertLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/alerts", `{"kind":"sos"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	alert := decode(t, w)["alert"].(map[string]any)
	id := alert["id"].(string)

	w = env.do(t, http.MethodPost, "/api/alerts/"+id+"/acknowledge", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/alerts/"+id+"/resolve", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/alerts", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, string(domain.StatusResolved), list[0]["status"])
}

func TestListZones(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/zones", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	zones, ok := body["zones"].([]any)
	require.True(t, ok)
	require.Len(t, zones, 1)
	assert.Equal(t, "Restricted Military Zone", zones[0].(map[string]any)["name"])
}

func TestContactsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/contacts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	defaults := len(contacts)
	require.NotZero(t, defaults, "default contact set must be seeded")

	w = env.do(t, http.MethodPost, "/api/contacts", `{"name":"Asha","phone":"+91-98-555","type":"family"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	assert.Len(t, contacts, defaults+1)

	w = env.do(t, http.MethodPost, "/api/contacts", `{"name":"Asha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/contacts/+91-98-555", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	assert.Len(t, contacts, defaults)
}

func TestReportIncidentOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/incidents", `{"type":"theft","description":"wallet stolen","latitude":25.6,"longitude":91.9}`)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["delivered"])
	report, ok := body["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "theft", report["type"])

	w = env.do(t, http.MethodPost, "/api/incidents", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
