// Package broadcast fans typed events out to a changing set of subscribers.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const DefaultBufferSize = 256

// Broadcaster delivers every sent event to every subscription that existed
// when it was sent. Send never waits for a subscriber: a subscription whose
// queue is full is disconnected instead.
type Broadcaster[T any] struct {
	name       string
	bufferSize int

	mu          sync.Mutex
	subscribers map[uint64]*Subscription[T]
	nextId      uint64
	closed      bool
}

type Subscription[T any] struct {
	id     uint64
	events chan T
	parent *Broadcaster[T]
	lagged atomic.Bool
}

func New[T any](name string, bufferSize int) *Broadcaster[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster[T]{
		name:        name,
		bufferSize:  bufferSize,
		subscribers: make(map[uint64]*Subscription[T]),
	}
}

// Subscribe registers a receiver for events sent from now on. Subscribing to
// a closed broadcaster returns a subscription whose channel is already closed.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription[T]{
		id:     b.nextId,
		events: make(chan T, b.bufferSize),
		parent: b,
	}
	b.nextId++

	if b.closed {
		close(sub.events)
		return sub
	}
	b.subscribers[sub.id] = sub
	return sub
}

// Send is vacuously successful when nobody is listening. It does no I/O, so
// callers may hold their own locks around it.
func (b *Broadcaster[T]) Send(event T) {
	dropped := b.send(event)
	for _, id := range dropped {
		log.Warn().
			Str("broadcaster", b.name).
			Uint64("subscriber", id).
			Msg("subscriber queue full, disconnecting")
	}
}

func (b *Broadcaster[T]) send(event T) []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var dropped []uint64
	for id, sub := range b.subscribers {
		select {
		case sub.events <- event:
		default:
			sub.lagged.Store(true)
			delete(b.subscribers, id)
			close(sub.events)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close ends every subscription. Later sends are dropped.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub.events)
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.events)
}

// Events is closed once the subscription ends, for whatever reason.
func (s *Subscription[T]) Events() <-chan T {
	return s.events
}

// Close unsubscribes. Safe to call more than once and after the broadcaster
// has dropped the subscription.
func (s *Subscription[T]) Close() {
	s.parent.remove(s.id)
}

// Lagged reports whether the subscription was dropped for falling behind.
func (s *Subscription[T]) Lagged() bool {
	return s.lagged.Load()
}
