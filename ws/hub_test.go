package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/e-course-backend/logger"
)

func TestProgressWebSocketReceivesUserEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(logger.NewNop())
	userID := uuid.New()

	r := gin.New()
	r.GET("/ws/progress", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, HandleProgressWebSocket(hub, NewUpgrader(nil)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello map[string]string
	if err := conn.ReadJSON(&hello); err != nil || hello["type"] != "connected" {
		t.Fatalf("hello: err=%v msg=%v", err, hello)
	}

	hub.SendToUser(uuid.New(), map[string]string{"type": "not_for_you"})
	hub.SendToUser(userID, map[string]string{"type": "video_watched"})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]string
	if err := json.Unmarshal(raw, &msg); err != nil || msg["type"] != "video_watched" {
		t.Fatalf("event: err=%v msg=%s", err, raw)
	}
	if n := hub.Connections(userID); n != 1 {
		t.Fatalf("connections: want=1 got=%d", n)
	}
}

func TestUpgraderChecksOrigin(t *testing.T) {
	up := NewUpgrader([]string{"https://app.example.com"})
	cases := map[string]bool{
		"":                        true,
		"https://app.example.com": true,
		"https://evil.example":    false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws/progress", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := up.CheckOrigin(req); got != want {
			t.Fatalf("origin %q: want=%v got=%v", origin, want, got)
		}
	}
}
