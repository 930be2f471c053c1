package realtime

import "sync"

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 10

// Broadcaster fans events out to SSE subscribers.
type Broadcaster[E any] struct {
	mu     sync.Mutex
	buffer int
	subs   map[chan E]struct{}
	closed bool
}

// NewBroadcaster creates an empty broadcaster. A buffer below one falls back to DefaultBuffer.
func NewBroadcaster[E any](buffer int) *Broadcaster[E] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Broadcaster[E]{
		buffer: buffer,
		subs:   make(map[chan E]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
// Subscribing to a closed broadcaster returns an already closed channel.
func (b *Broadcaster[E]) Subscribe() chan E {
	ch := make(chan E, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster[E]) Unsubscribe(ch chan E) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to all subscribers.
func (b *Broadcaster[E]) Publish(event E) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Lagging subscriber; the next event carries a full snapshot anyway.
		}
	}
	b.mu.Unlock()
}

// Len reports the number of live subscribers.
func (b *Broadcaster[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions are closed immediately.
func (b *Broadcaster[E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
