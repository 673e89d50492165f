package bus

import (
	"sync"

	"github.com/akenozll/restoransiparis2/internal/orders"
)

// Hub is the in-process binding feeding the SSE and websocket
// streams. Each client gets its own buffered channel; a full buffer
// means the client is too slow and the event is dropped for that
// client only. Delivery is at-most-once, fire-and-forget.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	buffer  int
}

type Client struct {
	hub *Hub
	ch  chan orders.Envelope
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{clients: make(map[*Client]struct{}), buffer: buffer}
}

// Register adds a client with its connect snapshot already queued.
// The engine calls this while holding its lock, so the snapshot is
// delivered before any delta the client can receive.
func (h *Hub) Register(preload []orders.Envelope) *Client {
	c := &Client{hub: h, ch: make(chan orders.Envelope, h.buffer+len(preload))}
	for _, ev := range preload {
		c.ch <- ev
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Publish(ev orders.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.ch <- ev:
		default: // slow client, drop
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) Events() <-chan orders.Envelope { return c.ch }

// Close deregisters the client. The channel is left open so an
// in-flight Publish can never hit a closed channel.
func (c *Client) Close() {
	c.hub.mu.Lock()
	delete(c.hub.clients, c)
	c.hub.mu.Unlock()
}
