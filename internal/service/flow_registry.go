package service

import (
	"sync"

	"storefront/internal/events"
)

type FlowFactory func(orderID int) *ConfirmationFlow

// FlowRegistry keeps one confirmation flow per order for the signed-in user.
// Signing out forgets all of them.
type FlowRegistry struct {
	factory FlowFactory

	mu    sync.Mutex
	flows map[int]*ConfirmationFlow

	unsubscribe func()
}

func NewFlowRegistry(factory FlowFactory, hub *events.Hub) *FlowRegistry {
	r := &FlowRegistry{factory: factory, flows: map[int]*ConfirmationFlow{}}
	r.unsubscribe = hub.Subscribe(events.LoggedOut, func(events.Signal) { r.Reset() })
	return r
}

// Get returns the flow for orderID, creating it when needed. created tells
// the caller that the flow still has to be loaded.
func (r *FlowRegistry) Get(orderID int) (flow *ConfirmationFlow, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if flow, ok := r.flows[orderID]; ok {
		return flow, false
	}
	flow = r.factory(orderID)
	r.flows[orderID] = flow
	return flow, true
}

func (r *FlowRegistry) Drop(orderID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, orderID)
}

func (r *FlowRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows = map[int]*ConfirmationFlow{}
}

func (r *FlowRegistry) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}
