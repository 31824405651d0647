// Package api provides the HTTP handlers of the degrees server.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/degrees/internal/ws"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	hub       *ws.Hub
	version   string
	provider  string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(hub *ws.Hub, version, provider string) *HealthHandler {
	return &HealthHandler{hub: hub, version: version, provider: provider, startTime: time.Now()}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Provider      string  `json:"provider"`
	Streams       int     `json:"streams"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Provider:      h.provider,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.hub != nil {
		resp.Streams = h.hub.Count()
	}

	c.JSON(http.StatusOK, resp)
}
