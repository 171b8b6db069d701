package events

import (
	"sync"

	"github.com/coder/quartz"
)

// Hub owns one Buffer per season, created on first use.
type Hub struct {
	mu      sync.Mutex
	clock   quartz.Clock
	size    int
	buffers map[string]*Buffer
}

func NewHub(size int, clock quartz.Clock) *Hub {
	return &Hub{clock: clock, size: size, buffers: map[string]*Buffer{}}
}

func (h *Hub) Buffer(seasonID string) *Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buffers[seasonID]
	if !ok {
		b = NewBuffer(h.size, h.clock)
		h.buffers[seasonID] = b
	}
	return b
}

func (h *Hub) Publish(seasonID, event string, data any) StreamEvent {
	return h.Buffer(seasonID).Append(event, seasonID, data)
}

// Close ends every stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, b := range h.buffers {
		b.Close()
		delete(h.buffers, id)
	}
}
