package ws

import (
	"net/http"
	"os"

	"todoapp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handle upgrades GET /ws to a change-feed subscription. Origins are open
// unless ALLOWED_ORIGIN is set.
func Handle(hub *Hub) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}
		go newClient(hub, conn).run()
	}
}
