package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todoapp/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRateLimiter wires the shared Redis client used by RateLimit. With an
// empty addr, or when the ping fails, the limiter falls back to the
// in-process fixed window.
func InitRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-process rate limiter", "addr", addr, "error", err)
		return
	}
	redisClient = client
}

type windowCounter struct {
	start time.Time
	count int
}

var (
	localMu      sync.Mutex
	localWindows = make(map[string]*windowCounter)
)

// RateLimit is a fixed-window limiter keyed by client IP. It uses Redis
// INCR/EXPIRE when a client was configured and an in-process map otherwise;
// Redis errors fail open so the API stays available.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if redisClient != nil {
			key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ip
			val, err := redisClient.Incr(c.Request.Context(), key).Result()
			if err != nil {
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
			if val == 1 {
				redisClient.Expire(c.Request.Context(), key, window)
			}
			if val > int64(maxRequests) {
				rlBlocked.WithLabelValues(c.FullPath()).Inc()
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}
			c.Next()
			return
		}

		localMu.Lock()
		w, ok := localWindows[ip]
		now := time.Now()
		if !ok || now.Sub(w.start) > window {
			localWindows[ip] = &windowCounter{start: now, count: 1}
			localMu.Unlock()
			c.Next()
			return
		}
		w.count++
		blocked := w.count > maxRequests
		localMu.Unlock()

		if blocked {
			rlBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
