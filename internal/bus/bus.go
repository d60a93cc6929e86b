// Package bus provides the publish/subscribe mechanism decoupling the
// connection engine from its consumers. Delivery is synchronous: Publish
// returns only after every subscriber registered before the publish began
// has been invoked, in subscription order. A failing handler is logged and
// skipped; it never prevents delivery to the remaining subscribers.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"serialterm/internal/model"
)

// Handler consumes a published event. Frames carried by the event are
// immutable; handlers must not modify them.
type Handler func(model.Event)

// Filter restricts a subscription to events it returns true for
type Filter func(model.Event) bool

// Subscription is the revocable handle returned by Subscribe
type Subscription struct {
	ID      uuid.UUID
	filter  Filter
	handler Handler
	bus     *Bus
}

// Unsubscribe stops delivery to this subscription. Safe to call more than
// once.
func (s *Subscription) Unsubscribe() {
	s.bus.Unsubscribe(s)
}

// Bus distributes events to subscribers
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	pubMu  sync.Mutex
	logger *zap.Logger
}

// New creates an event bus
func New(logger *zap.Logger) *Bus {
	return &Bus{
		logger: logger.With(zap.String("component", "bus")),
	}
}

// Subscribe registers a handler for all events
func (b *Bus) Subscribe(h Handler) *Subscription {
	return b.SubscribeFiltered(nil, h)
}

// SubscribeTypes registers a handler for the given event types only
func (b *Bus) SubscribeTypes(h Handler, types ...model.EventType) *Subscription {
	return b.SubscribeFiltered(func(ev model.Event) bool {
		for _, t := range types {
			if ev.Type == t {
				return true
			}
		}
		return false
	}, h)
}

// SubscribeFiltered registers a handler restricted by the given filter.
// A nil filter matches every event.
func (b *Bus) SubscribeFiltered(f Filter, h Handler) *Subscription {
	sub := &Subscription{
		ID:      uuid.New(),
		filter:  f,
		handler: h,
		bus:     b,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.logger.Debug("Subscriber registered", zap.String("subscription_id", sub.ID.String()))
	return sub
}

// Unsubscribe removes a subscription from the bus
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.ID == sub.ID {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			b.logger.Debug("Subscriber removed", zap.String("subscription_id", sub.ID.String()))
			return
		}
	}
}

// Publish delivers ev to every current subscriber in subscription order.
// Subscribers registered during delivery do not receive ev. Handlers must
// not call Publish from within their callback.
func (b *Bus) Publish(ev model.Event) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	// pubMu keeps deliveries from interleaving so subscribers observe
	// events in emission order.
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	for _, sub := range subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		b.deliver(sub, ev)
	}
}

func (b *Bus) deliver(sub *Subscription, ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Subscriber handler panicked",
				zap.String("subscription_id", sub.ID.String()),
				zap.String("event_type", string(ev.Type)),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(ev)
}
