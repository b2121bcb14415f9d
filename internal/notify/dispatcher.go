package notify

import (
	"context"
	"sync"
)

// Handler consumes a dispatched message.
type Handler func(context.Context, Message) error

// Dispatcher enqueues notifications for best-effort delivery. A failed
// Notify never fails the operation that produced the message.
type Dispatcher interface {
	Notify(ctx context.Context, msg Message) error
}

// InMemoryDispatcher invokes subscribed handlers synchronously. Used in
// tests and when no outbox backend is configured.
type InMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[Kind][]Handler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{
		listeners: make(map[Kind][]Handler),
	}
}

// Notify synchronously invokes handlers for the message kind.
func (d *InMemoryDispatcher) Notify(ctx context.Context, msg Message) error {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[msg.Kind]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		// best-effort: a failing handler does not stop the others
		_ = handler(ctx, msg)
	}
	return nil
}

// Subscribe registers a handler for the given kind.
func (d *InMemoryDispatcher) Subscribe(kind Kind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[kind] = append(d.listeners[kind], handler)
}
