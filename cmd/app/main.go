package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapp/internal/config"
	httpServer "todoapp/internal/http"
	"todoapp/internal/http/middleware"
	"todoapp/internal/logger"
	"todoapp/internal/store"
	"todoapp/internal/store/memory"
	"todoapp/internal/store/postgres"
	"todoapp/internal/store/sqlite"
	"todoapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	s := openStore(cfg)
	defer s.Close()

	middleware.InitRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	hub := ws.NewHub()
	go hub.Run()

	r := gin.Default()

	// CORS so a frontend on another origin can talk to the API
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpServer.RegisterRoutes(r, s, hub, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// openStore builds the configured store backend; the handle is closed on
// shutdown by the deferred Close in main.
func openStore(cfg *config.Config) store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Store {
	case config.StorePostgres:
		s, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connect failed", "error", err)
		}
		return s
	case config.StoreMemory:
		logger.Warn("using in-memory store, records will not survive a restart")
		return memory.New()
	default:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open failed", "error", err, "path", cfg.SQLitePath)
		}
		return s
	}
}
