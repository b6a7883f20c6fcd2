package telemetry

import "sync"

// Buffer holds the most recent events up to a fixed capacity.
type Buffer struct {
	mu     sync.RWMutex
	events []Event
	start  int
	size   int
}

// NewBuffer returns a buffer that keeps at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{events: make([]Event, capacity)}
}

// Push records an event, evicting the oldest once full.
func (b *Buffer) Push(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	capacity := len(b.events)
	if b.size < capacity {
		b.events[(b.start+b.size)%capacity] = event
		b.size++
		return
	}
	b.events[b.start] = event
	b.start = (b.start + 1) % capacity
}

// Snapshot returns a copy of the buffered events, newest first.
func (b *Buffer) Snapshot() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Event, 0, b.size)
	capacity := len(b.events)
	for i := b.size - 1; i >= 0; i-- {
		out = append(out, b.events[(b.start+i)%capacity])
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.events)
}
