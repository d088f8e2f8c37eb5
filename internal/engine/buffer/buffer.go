package buffer

import (
	"context"

	"github.com/dshills/textcore/internal/engine/rope"
	"github.com/dshills/textcore/internal/engine/store"
	"github.com/dshills/textcore/internal/event"
	"github.com/dshills/textcore/internal/logging"
)

// ByteOffset is a byte position in the buffer.
type ByteOffset = store.ByteOffset

// TextBuffer is a thread-safe text container that notifies observers of
// every mutation.
type TextBuffer struct {
	store *store.Store

	bus     *event.Bus
	busOpts []event.BusOption
	order   *event.Sequencer

	// seq is only touched inside store.Edit, so the store lock guards it.
	seq uint64

	logger *logging.Logger
}

// New creates an empty buffer.
func New(opts ...Option) *TextBuffer {
	return newBuffer(store.New(), opts)
}

// NewFromString creates a buffer with initial content. Loading the
// initial content produces no event.
func NewFromString(s string, opts ...Option) *TextBuffer {
	return newBuffer(store.NewFromString(s), opts)
}

func newBuffer(st *store.Store, opts []Option) *TextBuffer {
	b := &TextBuffer{
		store:  st,
		order:  event.NewSequencer(),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithComponent("buffer")
	if b.bus == nil {
		busOpts := append([]event.BusOption{event.WithLogger(b.logger.WithComponent("bus"))}, b.busOpts...)
		b.bus = event.NewBus(busOpts...)
	}
	return b
}

// Write Operations

// Insert splices text at byte pos and notifies observers with one
// Inserted event. It fails with a *store.BoundsError if pos > LenBytes();
// a failed insert changes nothing and emits nothing. Inserting empty
// text succeeds without an event.
//
// ctx bounds the notification phase only. Once the text has changed the
// edit stands; a cancelled ctx means some observers may miss the event,
// which they can detect from the gap in sequence numbers.
func (b *TextBuffer) Insert(ctx context.Context, pos ByteOffset, text string) error {
	ev := event.ChangeEvent{Kind: event.Inserted, Start: pos, Len: uint64(len(text))}
	return b.mutate(ctx, ev, func(r rope.Rope) (rope.Rope, error) {
		return store.InsertInto(r, pos, text)
	})
}

// Remove deletes [pos, pos+n) and notifies observers with one Removed
// event. It fails with a *store.BoundsError if the range is not inside the
// text. Removing zero bytes at a valid position succeeds without an event.
func (b *TextBuffer) Remove(ctx context.Context, pos, n ByteOffset) error {
	ev := event.ChangeEvent{Kind: event.Removed, Start: pos, Len: n}
	return b.mutate(ctx, ev, func(r rope.Rope) (rope.Rope, error) {
		return store.RemoveFrom(r, pos, n)
	})
}

func (b *TextBuffer) mutate(ctx context.Context, ev event.ChangeEvent, apply func(rope.Rope) (rope.Rope, error)) error {
	err := b.store.Edit(func(r rope.Rope) (rope.Rope, error) {
		next, err := apply(r)
		if err != nil || ev.Len == 0 {
			return next, err
		}
		b.seq++
		ev.Seq = b.seq
		return next, nil
	})
	if err != nil {
		return err
	}
	if ev.Seq == 0 {
		return nil
	}

	// The store lock is released here; only the dispatch order is held.
	derr := b.order.Do(ctx, ev.Seq, func() {
		if err := b.bus.Dispatch(ctx, ev); err != nil {
			b.logger.Warn("notification of %s interrupted: %v", ev, err)
		}
	})
	if derr != nil {
		b.logger.Warn("notification of %s abandoned: %v", ev, derr)
	}
	return nil
}

// Read Operations

// Text returns a copy of the full buffer content.
func (b *TextBuffer) Text() string {
	return b.store.Text()
}

// Range returns a copy of the bytes in [start, end). It fails with a
// *store.BoundsError if start > end or end > LenBytes().
func (b *TextBuffer) Range(start, end ByteOffset) (string, error) {
	return b.store.Range(start, end)
}

// LenBytes returns the content length in bytes.
func (b *TextBuffer) LenBytes() ByteOffset {
	return b.store.LenBytes()
}

// LenLines returns the number of lines (newlines + 1).
func (b *TextBuffer) LenLines() int {
	return b.store.LenLines()
}

// Snapshot returns an immutable view of the current content.
func (b *TextBuffer) Snapshot() rope.Rope {
	return b.store.Snapshot()
}

// Observers

// AddObserver registers ep to receive every future change event.
// There is no explicit removal: an endpoint leaves when a delivery to it
// fails, for example after its receiver closes it.
//
// Deliver must not edit this buffer synchronously. The nested edit's
// notification waits for the delivery that is running it, so the edit
// itself applies but its notification stalls until the ctx handed to
// Deliver ends and is then dropped for every observer. Hand such edits to
// another goroutine instead.
func (b *TextBuffer) AddObserver(ep event.Endpoint) event.SubscriberID {
	return b.bus.Register(ep)
}

// Subscribe registers and returns a new channel endpoint with the given
// buffer capacity.
func (b *TextBuffer) Subscribe(capacity int) *event.ChannelEndpoint {
	ep := event.NewChannelEndpoint(capacity)
	b.bus.Register(ep)
	return ep
}

// ObserverCount returns the number of registered observers.
func (b *TextBuffer) ObserverCount() int {
	return b.bus.Len()
}

// Bus returns the bus the buffer publishes to.
func (b *TextBuffer) Bus() *event.Bus {
	return b.bus
}
