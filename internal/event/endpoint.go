package event

import (
	"context"
	"errors"
	"sync"
)

// Endpoint is the delivery side of one subscriber.
//
// Deliver may block while the endpoint is at capacity. A non-nil error
// means the endpoint can no longer accept events; the bus drops it.
type Endpoint interface {
	Deliver(ctx context.Context, ev ChangeEvent) error
}

// EndpointFunc adapts a function to an Endpoint.
type EndpointFunc func(ctx context.Context, ev ChangeEvent) error

// Deliver calls f.
func (f EndpointFunc) Deliver(ctx context.Context, ev ChangeEvent) error {
	return f(ctx, ev)
}

// ChannelEndpoint delivers events into a bounded channel.
type ChannelEndpoint struct {
	// mu is read-held by senders so Close can wait for them before
	// closing ch.
	mu        sync.RWMutex
	ch        chan ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelEndpoint creates an endpoint buffering up to capacity events.
// A capacity of zero makes every delivery wait for the receiver.
func NewChannelEndpoint(capacity int) *ChannelEndpoint {
	return &ChannelEndpoint{
		ch:   make(chan ChangeEvent, max(capacity, 0)),
		done: make(chan struct{}),
	}
}

// Events returns the receive side. It is closed after Close, once any
// in-flight delivery has returned; buffered events stay readable.
func (e *ChannelEndpoint) Events() <-chan ChangeEvent {
	return e.ch
}

// Deliver sends ev, waiting while the buffer is full.
func (e *ChannelEndpoint) Deliver(ctx context.Context, ev ChangeEvent) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	select {
	case <-e.done:
		return ErrEndpointClosed
	default:
	}

	select {
	case e.ch <- ev:
		return nil
	case <-e.done:
		return ErrEndpointClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrDeliveryTimeout
		}
		return ctx.Err()
	}
}

// Close marks the receiver as gone. Subsequent deliveries fail with
// ErrEndpointClosed. Close is idempotent.
func (e *ChannelEndpoint) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
		e.mu.Lock()
		close(e.ch)
		e.mu.Unlock()
	})
	return nil
}

// Closed reports whether Close has been called.
func (e *ChannelEndpoint) Closed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
