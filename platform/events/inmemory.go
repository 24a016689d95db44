package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"hotelops_backend/platform/logger"
)

// asyncHandlerTimeout bounds a single handler invocation on the async path
// so a stuck subscriber cannot leak goroutines forever.
const asyncHandlerTimeout = 30 * time.Second

// InMemoryBus is a process-local Bus implementation. Publish dispatches to
// handlers on separate goroutines; PublishSync runs them inline and collects
// errors. Suitable for a modular monolith where all subscribers live in the
// same binary.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event to all subscribers asynchronously.
// Handler errors are logged and otherwise dropped; publishing is
// fire-and-forget by contract.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	if event == nil {
		return
	}

	b.mu.RLock()
	subscribers := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	for _, handler := range subscribers {
		go func(h Handler) {
			// Detach from the caller's context: the publisher's request may
			// already be finished by the time the handler runs.
			handlerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncHandlerTimeout)
			defer cancel()

			if err := h.Handle(handlerCtx, event); err != nil && b.log != nil {
				b.log.Warn("event handler failed",
					"event", event.EventName(),
					"error", err.Error(),
				)
			}
		}(handler)
	}
}

// PublishSync dispatches the event to all subscribers inline and returns the
// combined error when any handler fails.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	if event == nil {
		return nil
	}

	b.mu.RLock()
	subscribers := append([]Handler(nil), b.handlers[event.EventName()]...)
	b.mu.RUnlock()

	var failures []string
	for _, handler := range subscribers {
		if err := handler.Handle(ctx, event); err != nil {
			failures = append(failures, err.Error())
		}
	}

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// Compile-time check that InMemoryBus implements Bus.
var _ Bus = (*InMemoryBus)(nil)
