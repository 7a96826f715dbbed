package ws

import (
	"net/http"

	"taskhub/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenParser validates a bearer token and yields the user it was
// issued to.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

// Handle upgrades GET /ws?token=<jwt> connections and subscribes them
// to the authenticated user's room. Connections without a valid token
// are refused before the upgrade: anonymous subscribers are not allowed.
func Handle(hub *Hub, tokens TokenParser, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(userID, conn, hub)
		go client.Run()
	}
}
