package demo

import (
	"encoding/json"
	"sync"

	"mediastudio/internal/telemetry"
)

// hub fans telemetry frames out to connected WebSocket clients. Slow
// subscribers drop frames rather than block the broadcaster.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []byte
}

func newHub() *hub {
	return &hub{subs: map[int]chan []byte{}}
}

func (h *hub) subscribe() (int, <-chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, 64)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) broadcast(event telemetry.Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
