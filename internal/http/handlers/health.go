package handlers

import (
	"context"
	"net/http"
	"time"

	"todoapp/internal/store"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store     store.Store
	startTime time.Time
	version   string
}

func NewHealthHandler(s store.Store, version string) *HealthHandler {
	return &HealthHandler{store: s, startTime: time.Now(), version: version}
}

// Liveness answers /healthz without touching storage.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness answers /readyz with a storage ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"store": "healthy"}
	status := "healthy"
	code := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = "unhealthy: " + err.Error()
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"version":   h.version,
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// Health is the combined /health endpoint.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
