package app

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/event"
)

// EncodeEvent renders ev as a single JSON object.
func EncodeEvent(ev event.ChangeEvent) (string, error) {
	out := "{}"
	fields := []struct {
		path  string
		value any
	}{
		{"seq", ev.Seq},
		{"kind", ev.Kind.String()},
		{"start", ev.Start},
		{"len", ev.Len},
	}
	for _, f := range fields {
		var err error
		if out, err = sjson.Set(out, f.path, f.value); err != nil {
			return "", err
		}
	}
	return out, nil
}

// EventPrinter writes every event observed on a buffer as a JSON line.
type EventPrinter struct {
	ep   *event.ChannelEndpoint
	done chan struct{}
}

// PrintEvents subscribes to buf and starts writing to w.
func PrintEvents(buf *buffer.TextBuffer, w io.Writer, capacity int) *EventPrinter {
	p := &EventPrinter{
		ep:   buf.Subscribe(capacity),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for ev := range p.ep.Events() {
			line, err := EncodeEvent(ev)
			if err != nil {
				line = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			fmt.Fprintln(w, line)
		}
	}()
	return p
}

// Stop detaches the printer and waits until buffered events are written.
func (p *EventPrinter) Stop() {
	p.ep.Close()
	<-p.done
}
