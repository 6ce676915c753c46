package web

import (
	"sync"

	"github.com/RevCBH/specfix/internal/events"
)

// clientBuffer is the number of events queued per subscriber before
// events are dropped for it
const clientBuffer = 256

// Hub fans events out to SSE subscribers. Broadcast never blocks; a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	stopped bool
}

// Client is one connected SSE subscriber.
type Client struct {
	id     string
	events chan *events.Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// NewClient creates a subscriber with a buffered event channel.
func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan *events.Event, clientBuffer)}
}

// Register adds c. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.events)
	}
}

// Broadcast queues e for every subscriber.
func (h *Hub) Broadcast(e *events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.events <- e:
		default:
		}
	}
}

// Stop closes every subscriber channel, which ends their streams.
// Safe to call more than once.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for c := range h.clients {
		close(c.events)
	}
	clear(h.clients)
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
