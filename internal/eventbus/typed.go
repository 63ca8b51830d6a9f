package eventbus

import "sync"

// subscriberBuffer bounds each subscriber channel. A slow subscriber
// drops events instead of blocking publishers.
const subscriberBuffer = 8

// TypedBus fans events of type T out to all subscribers. The zero value is
// not usable, construct with NewTyped.
type TypedBus[T any] struct {
	mu     sync.RWMutex
	subs   map[<-chan T]chan T
	closed bool
}

// NewTyped creates a new TypedBus.
func NewTyped[T any]() *TypedBus[T] {
	return &TypedBus[T]{subs: make(map[<-chan T]chan T)}
}

// Publish sends the event to every subscriber. Delivery is non-blocking:
// a subscriber whose buffer is full misses the event.
func (b *TypedBus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel. After Close the
// returned channel is already closed.
func (b *TypedBus[T]) Subscribe() <-chan T {
	ch := make(chan T, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown or
// already removed channels are ignored.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[sub]
	if !ok {
		return
	}
	delete(b.subs, sub)
	if !b.closed {
		close(ch)
	}
}

// Close closes all subscriber channels. Publish and Subscribe afterwards
// are no-ops.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
