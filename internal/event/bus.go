package event

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SubscriberID identifies one registered endpoint.
type SubscriberID = uuid.UUID

// Stats is a point-in-time view of bus counters.
type Stats struct {
	// EventsDispatched counts Dispatch calls.
	EventsDispatched uint64

	// Deliveries counts successful Deliver calls.
	Deliveries uint64

	// Pruned counts endpoints removed after a failed delivery.
	Pruned uint64

	// Subscribers is the current number of registered endpoints.
	Subscribers int
}

type subscriber struct {
	id SubscriberID
	ep Endpoint

	// dead is set on the first failed delivery. Concurrent dispatches
	// holding an older snapshot skip the subscriber from then on.
	dead atomic.Bool
}

// Bus fans change events out to registered endpoints.
// All methods are safe for concurrent use.
type Bus struct {
	// mu guards subs only. It is never held while delivering.
	mu   sync.Mutex
	subs []*subscriber

	config busConfig

	dispatched atomic.Uint64
	delivered  atomic.Uint64
	pruned     atomic.Uint64
}

// NewBus creates a bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{
		config: config,
	}
}

// Register adds ep to the end of the delivery order and returns its ID.
// Register never blocks on an in-flight dispatch. A nil endpoint is
// ignored and yields uuid.Nil.
func (b *Bus) Register(ep Endpoint) SubscriberID {
	if ep == nil {
		return uuid.Nil
	}

	id := uuid.New()
	b.mu.Lock()
	b.subs = append(b.subs, &subscriber{id: id, ep: ep})
	b.mu.Unlock()

	b.config.logger.Debug("registered subscriber %s", id)
	return id
}

// Dispatch delivers ev to every endpoint registered when the call starts,
// in registration order. An endpoint that fails is skipped by every
// dispatch from that moment on, including ones already in flight, and is
// removed after the pass.
//
// Dispatch only returns an error when ctx ends; endpoint failures are
// absorbed. A cancelled dispatch stops early and does not blame the
// endpoint it was waiting on.
func (b *Bus) Dispatch(ctx context.Context, ev ChangeEvent) error {
	b.dispatched.Add(1)

	b.mu.Lock()
	subs := make([]*subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	var failed []*subscriber
	defer func() {
		if len(failed) > 0 {
			b.prune(failed)
		}
	}()

	for _, sub := range subs {
		if sub.dead.Load() {
			continue
		}
		err := b.deliver(ctx, sub.ep, ev)
		if err == nil {
			b.delivered.Add(1)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if sub.dead.CompareAndSwap(false, true) {
			b.config.logger.Debug("delivery of %s to %s failed: %v", ev, sub.id, err)
			failed = append(failed, sub)
		}
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, ep Endpoint, ev ChangeEvent) error {
	if b.config.deliveryTimeout <= 0 {
		return ep.Deliver(ctx, ev)
	}
	ctx, cancel := context.WithTimeout(ctx, b.config.deliveryTimeout)
	defer cancel()
	return ep.Deliver(ctx, ev)
}

// prune removes the failed subscribers and closes their endpoints if they
// implement io.Closer.
func (b *Bus) prune(failed []*subscriber) {
	drop := make(map[SubscriberID]struct{}, len(failed))
	for _, sub := range failed {
		drop[sub.id] = struct{}{}
	}

	var removed []*subscriber
	b.mu.Lock()
	kept := b.subs[:0:0]
	for _, sub := range b.subs {
		if _, ok := drop[sub.id]; ok {
			removed = append(removed, sub)
			continue
		}
		kept = append(kept, sub)
	}
	b.subs = kept
	b.mu.Unlock()

	for _, sub := range removed {
		b.pruned.Add(1)
		if c, ok := sub.ep.(io.Closer); ok {
			_ = c.Close()
		}
		b.config.logger.Info("removed subscriber %s", sub.id)
	}
}

// Len returns the number of registered endpoints.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Contains reports whether id is still registered.
func (b *Bus) Contains(id SubscriberID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsDispatched: b.dispatched.Load(),
		Deliveries:       b.delivered.Load(),
		Pruned:           b.pruned.Load(),
		Subscribers:      b.Len(),
	}
}
