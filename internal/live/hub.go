// Package live broadcasts game lifecycle events to websocket clients.
// It is fan-out only: dashboards and overlays subscribe, games publish.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventType tags the lifecycle moments worth broadcasting.
type EventType string

const (
	EventGameStarted  EventType = "game_started"
	EventGameFinished EventType = "game_finished"
)

// Event is one broadcast message. The target is never included: a
// spectator feed must not leak answers for games still in flight.
type Event struct {
	Type       EventType `json:"type"`
	GameType   string    `json:"game_type"`
	GameID     string    `json:"game_id"`
	Difficulty string    `json:"difficulty"`
	Won        *bool     `json:"won,omitempty"`
	At         time.Time `json:"at"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

type Stats struct {
	Clients int `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish sends an event to every connected client; dead connections are
// dropped on write failure.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients)}
}
