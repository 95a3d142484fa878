package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler exposes health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db      Pinger
	version string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health reports liveness
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready reports readiness, including database connectivity
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	h.Success(c, gin.H{"status": "ready"})
}
