package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-outlook-starter/core/logger"

	"github.com/google/uuid"
)

// Kind tags an event with its lifecycle meaning. The Outlook integration
// package owns the vocabulary.
type Kind string

// Event is what subscribers receive. Payload is a kind-specific struct.
type Event struct {
	ID         uuid.UUID
	Kind       Kind
	OccurredAt time.Time
	Payload    any
}

// Handler processes one event. A returned error is logged by the bus and
// joined into the Publish result; most publishers ignore it.
type Handler func(ctx context.Context, evt Event) error

type Bus interface {
	Subscribe(kind Kind, name string, fn Handler)
	Publish(ctx context.Context, kind Kind, payload any) error
}

type subscription struct {
	name string
	fn   Handler
}

// InProcessBus dispatches synchronously to subscribers in registration
// order. There is no persistence and no redelivery; a failed handler is a
// log line unless the publisher inspects the returned error.
type InProcessBus struct {
	mu       sync.RWMutex
	handlers map[Kind][]subscription
}

func NewInProcessBus() *InProcessBus {
	return &InProcessBus{
		handlers: make(map[Kind][]subscription),
	}
}

func (b *InProcessBus) Subscribe(kind Kind, name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], subscription{name: name, fn: fn})
	logger.Debug("EventBus:Subscribe", "kind", string(kind), "handler", name)
}

func (b *InProcessBus) Publish(ctx context.Context, kind Kind, payload any) error {
	evt := Event{
		ID:         uuid.New(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	b.mu.RLock()
	subs := b.handlers[kind]
	b.mu.RUnlock()

	if len(subs) == 0 {
		logger.Debug("EventBus:Publish:NoSubscribers", "kind", string(kind), "event_id", evt.ID)
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := sub.fn(ctx, evt); err != nil {
			logger.Error("EventBus:Publish:HandlerError",
				"kind", string(kind),
				"handler", sub.name,
				"event_id", evt.ID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
