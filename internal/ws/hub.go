package ws

import (
	"encoding/json"
	"sync"

	"taskhub/internal/domain"
	"taskhub/internal/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var connections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "ws_connections_open",
	Help: "Currently open websocket connections",
})

func init() {
	prometheus.MustRegister(connections)
}

// Hub groups live connections into per-user rooms and fans task
// change events out to them. It is constructed once at startup and
// injected everywhere it is needed; there is no package-level instance.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Subscribe adds the client to its user's room.
func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.UserID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.UserID] = room
	}
	room[c] = struct{}{}
	connections.Inc()

	logger.Debug("ws subscribed", "user_id", c.UserID, "room_size", len(room))
}

// Unsubscribe removes the client from its room and closes its send
// channel. Safe to call more than once for the same client.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.UserID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}

	delete(room, c)
	close(c.Send)
	connections.Dec()
	if len(room) == 0 {
		delete(h.rooms, c.UserID)
	}

	logger.Debug("ws unsubscribed", "user_id", c.UserID)
}

// Publish delivers a task event to every connection in userID's room.
// Fire and forget: an empty room is a no-op, and a client whose send
// buffer is full has the event dropped rather than blocking the writer.
func (h *Hub) Publish(userID uuid.UUID, event string, task *domain.Task) {
	msg, err := json.Marshal(domain.TaskEvent{Type: event, Task: task})
	if err != nil {
		logger.Error("ws marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws send buffer full, dropping event", "user_id", userID, "event", event)
		}
	}
}

// RoomSize reports how many connections are subscribed for userID.
func (h *Hub) RoomSize(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}
