// Package http exposes the broker's read-only inspection API: health,
// the service table, and aggregate stats.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orbitalos/backend/internal/sm"
)

// Handlers serves the inspection endpoints against one registry.
type Handlers struct {
	registry *sm.ServiceRegistry
	started  time.Time
}

// NewHandlers creates the inspection handler set.
func NewHandlers(registry *sm.ServiceRegistry) *Handlers {
	return &Handlers{registry: registry, started: time.Now()}
}

// Health reports daemon liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// ListServices returns every registry entry with capacity figures.
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": h.registry.List(),
	})
}

// GetService returns one registry entry by name, or 404.
func (h *Handlers) GetService(c *gin.Context) {
	name := c.Param("name")
	for _, info := range h.registry.List() {
		if info.Name == name {
			c.JSON(http.StatusOK, info)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "service not registered"})
}

// Stats returns aggregate registry statistics.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Stats())
}
