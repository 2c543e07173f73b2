package realtime

import (
	"log"
	"sync"

	"github.com/goccy/go-json"
)

// Event names broadcast to connected clients. Every event goes to every
// client; there is no per-client filtering and no replay.
const (
	EventPostLike      = "post:like"
	EventPostComment   = "post:comment"
	EventUserFollow    = "user:follow"
	EventUserFollowing = "user:following"
)

// Event is the wire envelope for a broadcast message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Broadcaster is the emission surface handlers depend on. Handlers receive it
// at construction so they stay testable without a running hub.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

// Hub maintains the set of active clients and fans events out to all of them.
// Delivery is best-effort: a hint for clients to re-fetch, never a source of
// truth.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registrations and broadcasts. It blocks; start it in
// its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client registered. Total clients: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client unregistered. Total clients: %d", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the connection, not the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a named event for delivery to all connected clients. It
// never blocks the caller: if the hub's queue is full the event is dropped,
// since HTTP success must not depend on broadcast delivery.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		log.Printf("Error marshaling event %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		log.Printf("Broadcast queue full, dropping event %s", event)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
