// Package live pushes change events to connected browsers so a notice or
// shopping item added on one device shows up on the others without a manual
// reload.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	EntityNotice   = "notice"
	EntityShopping = "shopping_item"

	ActionCreated = "created"
	ActionDeleted = "deleted"
	ActionChecked = "checked"
)

// Event tells clients which listing changed and how. Clients only use it to
// decide whether to refresh; the payload stays deliberately small.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

func NewEvent(entity, action string, id int64) Event {
	return Event{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Hub tracks connected clients and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast fans the event out to every connected client. A client whose
// send buffer is full misses the event rather than stalling the rest; a
// missed refresh hint is harmless.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
