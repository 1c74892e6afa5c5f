// Package api exposes the safety core to the UI layer over HTTP. Handlers
// contain no business logic: they translate requests into core calls and
// core results into plain JSON status payloads.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/himanshu427-droid/touro-care/internal/alerts"
	"github.com/himanshu427-droid/touro-care/internal/domain"
	"github.com/himanshu427-droid/touro-care/internal/geofence"
	"github.com/himanshu427-droid/touro-care/internal/sos"
	"github.com/himanshu427-droid/touro-care/internal/tracking"
)

// Handler bundles the core components behind the HTTP surface. onFix is the
// per-fix hook wired by the composition root (geofence evaluation).
type Handler struct {
	tracker  *tracking.Tracker
	monitor  *geofence.Monitor
	sequence *sos.Sequence
	alerts   *alerts.Manager
	onFix    func(domain.LocationFix)
	log      zerolog.Logger
}

// NewHandler builds the HTTP handler set.
func NewHandler(
	tracker *tracking.Tracker,
	monitor *geofence.Monitor,
	sequence *sos.Sequence,
	manager *alerts.Manager,
	onFix func(domain.LocationFix),
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		tracker:  tracker,
		monitor:  monitor,
		sequence: sequence,
		alerts:   manager,
		onFix:    onFix,
		log:      logger.With().Str("component", "api").Logger(),
	}
}

// Register mounts all routes on the given group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/panic/start", h.PanicStart)
	r.POST("/panic/cancel", h.PanicCancel)
	r.POST("/panic/resolve", h.PanicResolve)
	r.GET("/panic", h.PanicState)

	r.POST("/tracking/start", h.TrackingStart)
	r.POST("/tracking/stop", h.TrackingStop)
	r.GET("/tracking/history", h.TrackingHistory)
	r.GET("/tracking/fix", h.TrackingFix)

	r.POST("/alerts", h.TriggerAlert)
	r.GET("/alerts", h.ListAlerts)
	r.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
	r.POST("/alerts/:id/resolve", h.ResolveAlert)
	r.POST("/alerts/:id/cancel", h.CancelAlert)

	r.GET("/zones", h.ListZones)

	r.GET("/contacts", h.ListContacts)
	r.POST("/contacts", h.AddContact)
	r.DELETE("/contacts/:phone", h.RemoveContact)
	r.POST("/contacts/:phone/call", h.CallContact)

	r.POST("/incidents", h.ReportIncident)
}

// PanicStart arms the countdown and returns the resulting state.
func (h *Handler) PanicStart(c *gin.Context) {
	started := h.sequence.Start()
	c.JSON(http.StatusOK, gin.H{"started": started, "panic": h.sequence.State()})
}

// PanicCancel releases the countdown before expiry.
func (h *Handler) PanicCancel(c *gin.Context) {
	cancelled := h.sequence.Cancel()
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled, "panic": h.sequence.State()})
}

// PanicResolve closes out an active emergency.
func (h *Handler) PanicResolve(c *gin.Context) {
	if err := h.sequence.Resolve(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"panic": h.sequence.State()})
}

// PanicState returns the countdown snapshot.
func (h *Handler) PanicState(c *gin.Context) {
	c.JSON(http.StatusOK, h.sequence.State())
}

// TrackingStart opens the location subscription.
func (h *Handler) TrackingStart(c *gin.Context) {
	if err := h.tracker.StartTracking(c.Request.Context(), h.onFix); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true})
}

// TrackingStop cancels the subscription. Idempotent.
func (h *Handler) TrackingStop(c *gin.Context) {
	h.tracker.StopTracking()
	c.JSON(http.StatusOK, gin.H{"active": false})
}

// TrackingHistory returns the bounded fix history snapshot.
func (h *Handler) TrackingHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":  h.tracker.Active(),
		"history": h.tracker.History(),
	})
}

// TrackingFix performs a one-shot high-accuracy fetch.
func (h *Handler) TrackingFix(c *gin.Context) {
	fix, err := h.tracker.CurrentFix(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fix)
}

type triggerRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Message string `json:"message"`
}

// TriggerAlert records and dispatches an alert of the requested kind.
func (h *Handler) TriggerAlert(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind is required"})
		return
	}

	kind := domain.AlertKind(req.Kind)
	switch kind {
	case domain.KindSOS, domain.KindMedical, domain.KindSecurity:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown alert kind"})
		return
	}

	outcome, err := h.alerts.Trigger(c.Request.Context(), kind, req.Message)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"alert":           outcome.Alert,
		"partial_failure": outcome.PartialFailure,
	})
}

// ListAlerts returns the alert history, most recent first.
func (h *Handler) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.History())
}

// AcknowledgeAlert moves an alert to acknowledged.
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	if err := h.alerts.Acknowledge(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}

// ResolveAlert moves an alert to resolved. Idempotent.
func (h *Handler) ResolveAlert(c *gin.Context) {
	if err := h.alerts.Resolve(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// CancelAlert force-resolves an alert regardless of its current status.
func (h *Handler) CancelAlert(c *gin.Context) {
	if err := h.alerts.Cancel(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

// ListZones returns the configured restricted zones and current entries.
func (h *Handler) ListZones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"zones":  h.monitor.Zones(),
		"inside": h.monitor.InsideZones(),
	})
}

// ListContacts returns the emergency contact set.
func (h *Handler) ListContacts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alerts.Contacts())
}

type contactRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Type  string `json:"type" binding:"required"`
}

// AddContact adds or replaces an emergency contact.
func (h *Handler) AddContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, phone, and type are required"})
		return
	}

	h.alerts.AddContact(c.Request.Context(), domain.EmergencyContact{
		Name:  req.Name,
		Phone: req.Phone,
		Type:  domain.ContactType(req.Type),
	})
	c.JSON(http.StatusCreated, h.alerts.Contacts())
}

// RemoveContact removes a contact by phone number.
func (h *Handler) RemoveContact(c *gin.Context) {
	h.alerts.RemoveContact(c.Request.Context(), c.Param("phone"))
	c.JSON(http.StatusOK, h.alerts.Contacts())
}

// CallContact opens a tel: deep link for the contact.
func (h *Handler) CallContact(c *gin.Context) {
	if err := h.alerts.CallContact(c.Param("phone")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "calling"})
}

type incidentReq struct {
	Type        string   `json:"type" binding:"required"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// ReportIncident forwards a write-once incident report to the backend.
// When no coordinate is supplied the current fix is fetched.
func (h *Handler) ReportIncident(c *gin.Context) {
	var req incidentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}

	var loc *domain.LocationFix
	if req.Latitude != nil && req.Longitude != nil {
		loc = &domain.LocationFix{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	report, delivered, err := h.alerts.ReportIncident(c.Request.Context(), req.Type, req.Description, loc)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report, "delivered": delivered})
}

// fail maps the error taxonomy onto HTTP status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLocationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Unhandled core error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
