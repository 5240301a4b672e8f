package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection with payer context.
// closed is guarded by the owning hub's mutex.
type Client struct {
	PayerID string
	Send    chan []byte
	hub     *Hub
	closed  bool
}

// Close deregisters the client and closes its Send channel. Safe to call
// more than once.
func (c *Client) Close() {
	if c.hub == nil {
		return
	}
	c.hub.unregister(c)
}

// Hub maintains active status-stream connections, indexed by payer so a
// settled payment can be pushed to every session that payer has open.
// Send channels are closed only under the write lock, so holding the read
// lock guarantees a registered client's channel stays open.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byPayer map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byPayer: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
	if h.byPayer[c.PayerID] == nil {
		h.byPayer[c.PayerID] = make(map[*Client]struct{})
	}
	h.byPayer[c.PayerID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	delete(h.clients, c)
	if m := h.byPayer[c.PayerID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byPayer, c.PayerID)
		}
	}
}

func (h *Hub) BroadcastToPayer(payerID string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byPayer[payerID] {
		// Non-blocking: slow consumers drop messages instead of stalling
		// the reconciler.
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
