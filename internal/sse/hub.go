package sse

import "sync"

// Hub fans change notifications out to SSE subscribers, keyed by game id.
// Delivery is best effort: sends never block, and a missed notification is
// harmless because clients re-pull the aggregate.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan string]struct{})}
}

// Subscribe registers an observer for a game and returns its event channel.
func (h *Hub) Subscribe(gameID string) chan string {
	ch := make(chan string, SubscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan string]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes an observer and closes its channel.
func (h *Hub) Unsubscribe(gameID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.subs[gameID]
	if !ok {
		return
	}
	if _, ok := clients[ch]; !ok {
		return
	}
	delete(clients, ch)
	close(ch)
	if len(clients) == 0 {
		delete(h.subs, gameID)
	}
}

// NotifyChanged tells every observer of the game that its state changed.
func (h *Hub) NotifyChanged(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[gameID] {
		select {
		case ch <- EventChanged:
		default:
			// Drop if the subscriber is lagging; the next event catches it up.
		}
	}
}
