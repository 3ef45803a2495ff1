package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is pushed to a hint owner's dashboard socket.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types.
const (
	EventQuestion = "question"
	EventAnswer   = "answer"
)

// Hub fans events out to connected dashboard clients, one room per user id.
type Hub struct {
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Run is a placeholder for future housekeeping; the hub currently needs no
// background loop.
func (h *Hub) Run() {}

func (h *Hub) join(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*Client]bool)
	}
	h.rooms[userID][c] = true
}

func (h *Hub) leave(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.rooms[userID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// Notify delivers an event to every socket the user has open. Slow clients
// are dropped rather than blocking the caller. The room is snapshotted under
// the lock: a client disconnecting mid-fanout mutates the live map.
func (h *Hub) Notify(userID string, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshalling ws event: %v", err)
		return
	}
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.rooms[userID]))
	for c := range h.rooms[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		select {
		case c.send <- b:
		default:
			go c.Close()
		}
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)
