package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans audit events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type syncDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a dispatcher that runs subscribers on the
// publishing goroutine.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{subscribers: make(map[EventType][]EventHandler)}
}

// Publish runs every subscriber of event.Type, even after one fails or
// panics, and returns their joined errors.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subs := append([]EventHandler(nil), d.subscribers[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for i, handle := range subs {
		if err := deliver(ctx, handle, event); err != nil {
			errs = append(errs, fmt.Errorf("%s subscriber %d: %w", event.Type, i, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, handle EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handle(ctx, event)
}

// Subscribe adds handler for eventType.
func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
	d.mu.Unlock()
}
