package buffer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/textcore/internal/engine/store"
	"github.com/dshills/textcore/internal/event"
)

func recv(t *testing.T, ep *event.ChannelEndpoint) event.ChangeEvent {
	t.Helper()
	select {
	case ev := <-ep.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return event.ChangeEvent{}
	}
}

func assertNoEvent(t *testing.T, ep *event.ChannelEndpoint) {
	t.Helper()
	select {
	case ev := <-ep.Events():
		t.Fatalf("unexpected event %s", ev)
	default:
	}
}

func TestNewBuffer(t *testing.T) {
	b := New()
	if b.LenBytes() != 0 {
		t.Errorf("expected length 0, got %d", b.LenBytes())
	}
	if b.LenLines() != 1 {
		t.Errorf("expected 1 line, got %d", b.LenLines())
	}
	if b.ObserverCount() != 0 {
		t.Errorf("expected no observers, got %d", b.ObserverCount())
	}
}

func TestInsertNotifiesObserver(t *testing.T) {
	ctx := context.Background()
	b := NewFromString("hello world")
	ep := b.Subscribe(4)

	if err := b.Insert(ctx, 5, " there"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got := recv(t, ep)
	want := event.ChangeEvent{Kind: event.Inserted, Start: 5, Len: 6, Seq: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
	assertNoEvent(t, ep)

	if b.Text() != "hello there world" {
		t.Errorf("expected 'hello there world', got %q", b.Text())
	}
}

func TestInsertRemoveScenario(t *testing.T) {
	ctx := context.Background()
	b := NewFromString("hello world")
	ep := b.Subscribe(4)

	if b.LenBytes() != 11 {
		t.Fatalf("expected 11 bytes, got %d", b.LenBytes())
	}
	if err := b.Insert(ctx, 5, " there"); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hello there world" || b.LenBytes() != 17 {
		t.Fatalf("after insert: %q (%d bytes)", b.Text(), b.LenBytes())
	}
	if err := b.Remove(ctx, 5, 6); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hello world" || b.LenBytes() != 11 {
		t.Fatalf("after remove: %q (%d bytes)", b.Text(), b.LenBytes())
	}

	got := []event.ChangeEvent{recv(t, ep), recv(t, ep)}
	want := []event.ChangeEvent{
		{Kind: event.Inserted, Start: 5, Len: 6, Seq: 1},
		{Kind: event.Removed, Start: 5, Len: 6, Seq: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSpliceProperty(t *testing.T) {
	ctx := context.Background()
	base := "The quick brown fox\njumps over\nthe lazy dog"

	for pos := 0; pos <= len(base); pos++ {
		b := NewFromString(base)
		if err := b.Insert(ctx, uint64(pos), "XYZ"); err != nil {
			t.Fatalf("insert at %d failed: %v", pos, err)
		}
		if want := base[:pos] + "XYZ" + base[pos:]; b.Text() != want {
			t.Fatalf("insert at %d: got %q, want %q", pos, b.Text(), want)
		}
		if err := b.Remove(ctx, uint64(pos), 3); err != nil {
			t.Fatalf("remove at %d failed: %v", pos, err)
		}
		if b.Text() != base {
			t.Fatalf("round trip at %d: got %q", pos, b.Text())
		}
	}
}

func TestOutOfBoundsIsAtomic(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		op   func(b *TextBuffer) error
	}{
		{"insert past end", func(b *TextBuffer) error { return b.Insert(ctx, 12, "x") }},
		{"remove past end", func(b *TextBuffer) error { return b.Remove(ctx, 10, 2) }},
		{"remove start past end", func(b *TextBuffer) error { return b.Remove(ctx, 20, 0) }},
		{"range past end", func(b *TextBuffer) error { _, err := b.Range(0, 12); return err }},
		{"range reversed", func(b *TextBuffer) error { _, err := b.Range(5, 4); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewFromString("hello world")
			ep := b.Subscribe(4)

			err := tt.op(b)
			var be *store.BoundsError
			if !errors.As(err, &be) {
				t.Fatalf("expected *store.BoundsError, got %v", err)
			}
			if b.Text() != "hello world" || b.LenBytes() != 11 {
				t.Errorf("content changed to %q", b.Text())
			}
			if b.ObserverCount() != 1 {
				t.Errorf("observer set changed to %d", b.ObserverCount())
			}
			assertNoEvent(t, ep)
		})
	}
}

func TestEmptyEditEmitsNothing(t *testing.T) {
	ctx := context.Background()
	b := NewFromString("abc")
	ep := b.Subscribe(4)

	if err := b.Insert(ctx, 1, ""); err != nil {
		t.Fatal(err)
	}
	if err := b.Remove(ctx, 3, 0); err != nil {
		t.Fatal(err)
	}
	assertNoEvent(t, ep)

	if err := b.Insert(ctx, 0, "x"); err != nil {
		t.Fatal(err)
	}
	if ev := recv(t, ep); ev.Seq != 1 {
		t.Errorf("first real edit should carry Seq 1, got %d", ev.Seq)
	}
}

func TestDeadObserverIsPruned(t *testing.T) {
	ctx := context.Background()
	b := NewFromString("hello")
	live := b.Subscribe(4)
	dead := b.Subscribe(4)

	dead.Close()
	before := b.ObserverCount()

	if err := b.Insert(ctx, 5, "!"); err != nil {
		t.Fatal(err)
	}
	if after := b.ObserverCount(); after != before-1 {
		t.Errorf("observer count went from %d to %d, want a decrease of one", before, after)
	}
	recv(t, live)
}

func TestConcurrentDisjointEdits(t *testing.T) {
	ctx := context.Background()
	const workers = 16
	const rounds = 50

	// Every edit targets offset 0, which stays valid whatever the other
	// workers did since the text never drops below its initial length.
	b := NewFromString(strings.Repeat(".", 100))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if err := b.Insert(ctx, 0, "ab"); err != nil {
					t.Errorf("insert failed: %v", err)
					return
				}
				if err := b.Remove(ctx, 0, 1); err != nil {
					t.Errorf("remove failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if want := uint64(100 + workers*rounds); b.LenBytes() != want {
		t.Errorf("expected %d bytes, got %d", want, b.LenBytes())
	}
}

func TestObserverSeesMutationOrder(t *testing.T) {
	ctx := context.Background()
	const writers = 8
	const perWriter = 25

	b := New()
	ep := b.Subscribe(writers * perWriter * 2)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = b.Insert(ctx, 0, "x")
			}
		}()
	}
	wg.Wait()

	for want := uint64(1); want <= writers*perWriter; want++ {
		if ev := recv(t, ep); ev.Seq != want {
			t.Fatalf("got Seq %d, want %d", ev.Seq, want)
		}
	}
}

func TestSlowObserverDoesNotBlockReads(t *testing.T) {
	b := NewFromString("abc", WithBusOptions(event.WithDeliveryTimeout(0)))
	ep := b.Subscribe(0) // never drained until the end

	done := make(chan struct{})
	go func() {
		_ = b.Insert(context.Background(), 0, "x")
		close(done)
	}()

	// The insert is stuck notifying, but the text is already visible.
	deadline := time.After(time.Second)
	for b.LenBytes() != 4 {
		select {
		case <-deadline:
			t.Fatal("read blocked behind a pending notification")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if b.Text() != "xabc" {
		t.Errorf("got %q", b.Text())
	}

	recv(t, ep)
	<-done
}

func TestSharedBus(t *testing.T) {
	bus := event.NewBus()
	a := NewFromString("a", WithBus(bus))
	c := NewFromString("c", WithBus(bus))
	ep := a.Subscribe(4)

	if a.Bus() != bus || c.Bus() != bus {
		t.Fatal("buffers should share the supplied bus")
	}
	if err := c.Insert(context.Background(), 1, "!"); err != nil {
		t.Fatal(err)
	}
	if ev := recv(t, ep); ev.Kind != event.Inserted || ev.Start != 1 {
		t.Errorf("unexpected event %s", ev)
	}
}

func TestSharedBusNumbersPerBuffer(t *testing.T) {
	bus := event.NewBus()
	a := NewFromString("a", WithBus(bus))
	c := NewFromString("c", WithBus(bus))
	ep := a.Subscribe(4)
	ctx := context.Background()

	if err := a.Insert(ctx, 1, "1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Insert(ctx, 1, "22"); err != nil {
		t.Fatal(err)
	}

	want := []event.ChangeEvent{
		{Kind: event.Inserted, Start: 1, Len: 1, Seq: 1},
		{Kind: event.Inserted, Start: 1, Len: 2, Seq: 1},
	}
	got := []event.ChangeEvent{recv(t, ep), recv(t, ep)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedEditFromObserverIsDropped(t *testing.T) {
	b := NewFromString("ab", WithBusOptions(event.WithDeliveryTimeout(50*time.Millisecond)))

	nested := make(chan error, 1)
	b.AddObserver(event.EndpointFunc(func(ctx context.Context, ev event.ChangeEvent) error {
		if ev.Seq == 1 {
			nested <- b.Insert(ctx, 0, ">")
		}
		return nil
	}))
	ep := b.Subscribe(4)

	done := make(chan error, 1)
	go func() { done <- b.Insert(context.Background(), 2, "!") }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Insert() did not return")
	}

	if err := <-nested; err != nil {
		t.Errorf("nested Insert() failed: %v", err)
	}
	if got := b.Text(); got != ">ab!" {
		t.Errorf("Text() = %q, want %q", got, ">ab!")
	}
	if ev := recv(t, ep); ev.Seq != 1 {
		t.Errorf("first event Seq = %d, want 1", ev.Seq)
	}

	// The nested edit's notification was dropped; later edits still flow.
	if err := b.Insert(context.Background(), 0, "#"); err != nil {
		t.Fatal(err)
	}
	if ev := recv(t, ep); ev.Seq != 3 {
		t.Errorf("next event Seq = %d, want 3", ev.Seq)
	}
	if n := b.ObserverCount(); n != 2 {
		t.Errorf("ObserverCount() = %d, want 2", n)
	}
}
