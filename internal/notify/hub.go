// Package notify delivers ledger events to whoever listens after a write
// commits: live UI streams, Prometheus, or nothing at all.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
)

// DefaultBuffer is the per-subscriber queue length used by NewHub.
const DefaultBuffer = 32

// Hub broadcasts events to in-process subscribers. A subscriber whose queue is
// full misses the event; Notify never blocks.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan domain.Event
	buffer  int
	dropped atomic.Uint64
}

var (
	_ portssvc.Notifier        = (*Hub)(nil)
	_ portssvc.EventSubscriber = (*Hub)(nil)
)

// NewHub creates a hub whose subscribers queue up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[int]chan domain.Event), buffer: buffer}
}

// Subscribe registers a new listener. cancel closes the channel and may be
// called more than once.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Notify(_ context.Context, event domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped counts deliveries skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
