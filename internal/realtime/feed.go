// Package realtime carries payload-free "this potluck changed" signals
// between writers and the clients watching a potluck.
package realtime

import (
	"context"
	"sync"
)

type Feed interface {
	// Publish announces that something in the potluck changed.
	Publish(ctx context.Context, potluckID string) error
	// Subscribe registers onChange for the potluck. The returned function
	// removes the subscription and may be called more than once.
	Subscribe(potluckID string, onChange func()) (unsubscribe func())
	Close() error
}

// Hub fans signals out to subscribers inside this process.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[string]map[uint64]func()
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]func())}
}

func (h *Hub) Publish(_ context.Context, potluckID string) error {
	h.notify(potluckID)
	return nil
}

// notify runs the callbacks outside the lock so they may subscribe or
// unsubscribe themselves.
func (h *Hub) notify(potluckID string) {
	h.mu.RLock()
	callbacks := make([]func(), 0, len(h.subs[potluckID]))
	for _, cb := range h.subs[potluckID] {
		callbacks = append(callbacks, cb)
	}
	h.mu.RUnlock()

	for _, cb := range callbacks {
		cb()
	}
}

func (h *Hub) Subscribe(potluckID string, onChange func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	if h.subs[potluckID] == nil {
		h.subs[potluckID] = make(map[uint64]func())
	}
	h.subs[potluckID][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[potluckID], id)
			if len(h.subs[potluckID]) == 0 {
				delete(h.subs, potluckID)
			}
		})
	}
}

// Subscribers counts the subscriptions of a potluck.
func (h *Hub) Subscribers(potluckID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[potluckID])
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = make(map[string]map[uint64]func())
	return nil
}
