// Package notification provides fan-out topics for broadcasting session events.
package notification

import (
	"sync"
)

// DefaultBufferSize is the per-subscriber channel capacity used when none is given.
const DefaultBufferSize = 16

// Topic broadcasts values of one event type to any number of subscribers.
// Each subscriber owns a buffered channel; publishing never blocks and drops
// the value for subscribers whose buffer is full.
type Topic[T any] struct {
	mu            sync.RWMutex
	subscriptions map[string]chan T
	bufferSize    int
	closed        bool
}

// NewTopic creates a new topic.
func NewTopic[T any](bufferSize int) *Topic[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Topic[T]{
		subscriptions: make(map[string]chan T),
		bufferSize:    bufferSize,
	}
}

// Subscribe registers a subscriber under id and returns its receive channel.
// Subscribing an id twice returns the existing channel. On a closed topic the
// returned channel is already closed.
func (t *Topic[T]) Subscribe(id string) <-chan T {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.subscriptions[id]; ok {
		return ch
	}

	ch := make(chan T, t.bufferSize)
	if t.closed {
		close(ch)
		return ch
	}
	t.subscriptions[id] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (t *Topic[T]) Unsubscribe(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.subscriptions[id]; ok {
		delete(t.subscriptions, id)
		close(ch)
	}
}

// Publish sends v to every subscriber and returns how many received it.
func (t *Topic[T]) Publish(v T) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	delivered := 0
	for _, ch := range t.subscriptions {
		select {
		case ch <- v:
			delivered++
		default:
			// Subscriber is not keeping up, drop
		}
	}
	return delivered
}

// Close closes every subscriber channel and rejects new subscriptions.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for id, ch := range t.subscriptions {
		close(ch)
		delete(t.subscriptions, id)
	}
}
