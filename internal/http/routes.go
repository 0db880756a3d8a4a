// Package http wires the gin engine: middleware, API routes, the change
// feed and the static frontend.
package http

import (
	"path/filepath"
	"time"

	"todoapp/internal/config"
	"todoapp/internal/http/handlers"
	"todoapp/internal/http/middleware"
	"todoapp/internal/store"
	"todoapp/internal/ws"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, s store.Store, hub *ws.Hub, cfg *config.Config, version string) {
	h := handlers.NewHandler(s, hub)
	healthHandler := handlers.NewHealthHandler(s, version)

	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	// Health checks bypass rate limiting
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(cfg.APIRateLimit, time.Duration(cfg.APIRateWindow)*time.Second))
	{
		api.GET("/todos", h.ListTodos)
		api.POST("/todos", h.CreateTodo)
		api.GET("/todos/:id", h.GetTodo)
		api.PUT("/todos/:id", h.UpdateTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)
	}

	// Change feed
	r.GET("/ws", ws.Handle(hub))

	// Static frontend with index fallback
	if cfg.StaticDir != "" {
		r.StaticFS("/assets", gin.Dir(cfg.StaticDir, false))
		r.NoRoute(func(c *gin.Context) {
			c.File(filepath.Join(cfg.StaticDir, "index.html"))
		})
	}
}
