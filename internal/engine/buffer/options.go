package buffer

import (
	"github.com/dshills/textcore/internal/event"
	"github.com/dshills/textcore/internal/logging"
)

// Option is a functional option for configuring a TextBuffer.
type Option func(*TextBuffer)

// WithBus makes the buffer publish to an existing bus instead of creating
// its own. Each buffer keeps its own Seq counter and dispatch order, so
// observers of a shared bus cannot use Seq to order events across buffers.
func WithBus(bus *event.Bus) Option {
	return func(b *TextBuffer) {
		if bus != nil {
			b.bus = bus
		}
	}
}

// WithBusOptions configures the bus the buffer creates.
// It has no effect when combined with WithBus.
func WithBusOptions(opts ...event.BusOption) Option {
	return func(b *TextBuffer) {
		b.busOpts = append(b.busOpts, opts...)
	}
}

// WithLogger sets the logger for the buffer and the bus it creates.
func WithLogger(l *logging.Logger) Option {
	return func(b *TextBuffer) {
		if l != nil {
			b.logger = l
		}
	}
}
