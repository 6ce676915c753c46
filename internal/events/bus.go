package events

import (
	"sync"
	"time"
)

// DefaultCapacity is the event buffer size used by NewBus when capacity <= 0
const DefaultCapacity = 256

// Handler processes a single event
type Handler func(Event)

// Bus fans events out to subscribed handlers on a single dispatch goroutine.
// Handlers observe events in emit order.
type Bus struct {
	// mu guards closed; held for reading while an event is queued
	mu     sync.RWMutex
	closed bool

	hmu      sync.Mutex
	handlers []Handler

	events chan Event
	done   chan struct{}
	now    func() time.Time
}

// NewBus creates a new event bus with the specified buffer capacity
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Bus{
		events: make(chan Event, capacity),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.hmu.Lock()
	defer b.hmu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event time and queues it for dispatch.
// It blocks when the buffer is full and is a no-op after Close.
func (b *Bus) Emit(e Event) {
	if e.Time.IsZero() {
		e.Time = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.events <- e
}

// Close stops accepting events and waits until queued events are delivered
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return nil
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()

	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.hmu.Lock()
		handlers := b.handlers
		b.hmu.Unlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
