// Package broadcast provides in-process broadcast topics that act as the
// simulation's transport. Every subscriber receives every message published
// to a topic and consumers are responsible for their own filtering.
package broadcast

import (
	"sync"
	"sync/atomic"
)

// Per-subscriber buffer. Sized so a simulation run never backs up a consumer
// long enough to drop; Send will not block waiting for a slow receiver.
const subscriberBuffer = 1024

// Topic maintains a set of subscriber channels for values of some type T.
type Topic[T any] struct {
	subs    map[string]chan T
	mu      sync.RWMutex
	dropped uint64
}

// NewTopic constructs a topic for publishing and subscribing.
func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subs: make(map[string]chan T),
	}
}

// Subscribe takes a unique id and returns a channel that receives every
// value published to the topic from this point on. Subscribing twice with
// the same id returns the same channel.
func (t *Topic[T]) Subscribe(id string) <-chan T {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, exists := t.subs[id]
	if exists {
		return ch
	}

	t.subs[id] = make(chan T, subscriberBuffer)
	return t.subs[id]
}

// Unsubscribe closes and removes the channel that was provided by the
// call to Subscribe.
func (t *Topic[T]) Unsubscribe(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, exists := t.subs[id]
	if !exists {
		return
	}

	delete(t.subs, id)
	close(ch)
}

// Send publishes the specified value to every subscriber. Send will not
// block waiting for a receiver; a value that can't be buffered for a
// subscriber is counted as dropped.
func (t *Topic[T]) Send(v T) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, ch := range t.subs {
		select {
		case ch <- v:
		default:
			atomic.AddUint64(&t.dropped, 1)
		}
	}
}

// Dropped returns the number of values that could not be delivered to a
// subscriber because that subscriber's buffer was full.
func (t *Topic[T]) Dropped() uint64 {
	return atomic.LoadUint64(&t.dropped)
}

// Shutdown closes and removes all subscriber channels.
func (t *Topic[T]) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}
