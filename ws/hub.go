package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/e-course-backend/logger"
)

const sendBuffer = 64

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans progress events out to every open connection of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*websocket.Conn]*Client
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*websocket.Conn]*Client),
		log:     log.With("component", "ws.Hub"),
	}
}

func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) *Client {
	client := &Client{Conn: conn, Send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]*Client)
	}
	h.clients[userID][conn] = client
	h.mu.Unlock()

	go h.writePump(client)
	return client
}

func (h *Hub) Unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	if client, ok := clients[conn]; ok {
		close(client.Send)
		delete(clients, conn)
	}
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// SendToUser queues payload as JSON for every connection of userID. A client whose
// buffer is full misses the message.
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal ws payload", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			h.log.Warn("dropping ws message for slow client", "user_id", userID)
		}
	}
}

func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) writePump(client *Client) {
	defer client.Conn.Close()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
