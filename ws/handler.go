package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/e-course-backend/apierr"
	"github.com/vnkhanh/e-course-backend/middleware"
	"github.com/vnkhanh/e-course-backend/response"
)

// NewUpgrader accepts requests without an Origin header and those from allowed origins.
func NewUpgrader(allowed []string) *websocket.Upgrader {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || set["*"] || set[origin]
		},
	}
}

// HandleProgressWebSocket streams the caller's progress events. It runs behind
// AuthMiddleware.
func HandleProgressWebSocket(hub *Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			response.Error(c, nil, apierr.Unauthorized("authentication required"))
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
			return
		}
		client := hub.Register(userID, conn)
		defer hub.Unregister(userID, conn)
		hub.log.Debug("progress ws connected", "user_id", userID)

		client.Send <- []byte(`{"type":"connected"}`)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.log.Debug("progress ws disconnected", "user_id", userID)
	}
}
