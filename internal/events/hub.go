// Package events is the explicit signal hub shared by the cart, auth and
// checkout components. Subscribers register per kind and get back a function
// that removes them again.
package events

import (
	"sync"
	"time"
)

type Kind string

const (
	CartChanged   Kind = "cart_changed"
	LoggedIn      Kind = "logged_in"
	LoggedOut     Kind = "logged_out"
	OrderPlaced   Kind = "order_placed"
	LoginRequired Kind = "login_required"
)

type Signal struct {
	Kind    Kind      `json:"kind"`
	Origin  string    `json:"origin"`
	OrderID int       `json:"order_id,omitempty"`
	At      time.Time `json:"at"`
}

type Handler func(Signal)

type subscription struct {
	id      uint64
	handler Handler
}

type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Kind][]subscription
	all    []subscription
}

func NewHub() *Hub {
	return &Hub{subs: map[Kind][]subscription{}}
}

// Subscribe registers handler for one kind of signal.
func (h *Hub) Subscribe(kind Kind, handler Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs[kind] = append(h.subs[kind], subscription{id: id, handler: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.subs[kind] = remove(h.subs[kind], id)
	}
}

// SubscribeAll registers handler for every kind, used by bridges that forward
// signals out of process.
func (h *Hub) SubscribeAll(handler Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.all = append(h.all, subscription{id: id, handler: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.all = remove(h.all, id)
	}
}

// Publish delivers synchronously, in subscription order. Handlers may publish
// or subscribe themselves; the snapshot taken here is not affected.
func (h *Hub) Publish(signal Signal) {
	if signal.At.IsZero() {
		signal.At = time.Now()
	}

	h.mu.RLock()
	targets := make([]Handler, 0, len(h.subs[signal.Kind])+len(h.all))
	for _, sub := range h.subs[signal.Kind] {
		targets = append(targets, sub.handler)
	}
	for _, sub := range h.all {
		targets = append(targets, sub.handler)
	}
	h.mu.RUnlock()

	for _, handler := range targets {
		handler(signal)
	}
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0]
	for _, sub := range subs {
		if sub.id != id {
			out = append(out, sub)
		}
	}
	return out
}
