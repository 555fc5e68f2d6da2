// Package api provides HTTP handlers for dietinsights.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store         Pinger
	hub           ClientCounter
	log           *logrus.Logger
	version       string
	backend       string
	schemaVersion int
	startTime     time.Time
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
// store and hub may be nil.
func NewHealthHandler(store Pinger, hub ClientCounter, log *logrus.Logger, version, backend string, schemaVersion int) *HealthHandler {
	return &HealthHandler{
		store:         store,
		hub:           hub,
		log:           log,
		version:       version,
		backend:       backend,
		schemaVersion: schemaVersion,
		startTime:     time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Store         string  `json:"store"`
	StoreBackend  string  `json:"store_backend"`
	SchemaVersion int     `json:"schema_version,omitempty"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Store:         "connected",
		StoreBackend:  h.backend,
		SchemaVersion: h.schemaVersion,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Best-effort store ping (non-fatal for liveness).
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			resp.Store = "disconnected"
		}
	} else {
		resp.Store = "not_configured"
	}

	if h.hub != nil {
		resp.WSClients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"store": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if h.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Error("readiness: store ping failed")
		checks["store"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}
