// Package document wraps a TextBuffer with file identity, a dirty flag and
// a language tag.
//
// A Document adds no text manipulation of its own. By default the dirty
// flag belongs to the editing controller: buffer mutations never change it.
// WithAutoDirty opts into having the document observe its own buffer and
// mark itself dirty on every change instead.
package document

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/event"
)

// UntitledName is the display name of a document with no path.
const UntitledName = "untitled"

// Document is an open document.
type Document struct {
	buf      *buffer.TextBuffer
	path     string
	language string
	dirty    atomic.Bool

	autoDirty bool
}

// Option configures a Document.
type Option func(*Document)

// WithPath sets the file the document belongs to.
func WithPath(path string) Option {
	return func(d *Document) {
		d.path = path
	}
}

// WithLanguage sets the language tag, overriding detection from the path.
func WithLanguage(language string) Option {
	return func(d *Document) {
		d.language = language
	}
}

// WithAutoDirty makes the document mark itself dirty whenever its buffer
// reports a change.
func WithAutoDirty() Option {
	return func(d *Document) {
		d.autoDirty = true
	}
}

// New wraps buf. A nil buf gets a fresh empty buffer.
func New(buf *buffer.TextBuffer, opts ...Option) *Document {
	if buf == nil {
		buf = buffer.New()
	}
	d := &Document{buf: buf}
	for _, opt := range opts {
		opt(d)
	}
	if d.language == "" {
		d.language = DetectLanguage(d.path)
	}
	if d.autoDirty {
		buf.AddObserver(event.EndpointFunc(func(context.Context, event.ChangeEvent) error {
			d.dirty.Store(true)
			return nil
		}))
	}
	return d
}

// Open creates a clean document for path holding text.
func Open(path, text string, opts ...Option) *Document {
	opts = append([]Option{WithPath(path)}, opts...)
	return New(buffer.NewFromString(text), opts...)
}

// TextBuffer returns the shared buffer.
func (d *Document) TextBuffer() *buffer.TextBuffer {
	return d.buf
}

// IsDirty reports whether the document has unsaved changes.
func (d *Document) IsDirty() bool {
	return d.dirty.Load()
}

// SetDirty sets the dirty flag.
func (d *Document) SetDirty(dirty bool) {
	d.dirty.Store(dirty)
}

// Path returns the file path, or "" for an unsaved document.
func (d *Document) Path() string {
	return d.path
}

// HasPath reports whether the document is backed by a file.
func (d *Document) HasPath() bool {
	return d.path != ""
}

// FileName returns the base name of the path, or UntitledName.
func (d *Document) FileName() string {
	if d.path == "" {
		return UntitledName
	}
	return filepath.Base(d.path)
}

// Language returns the language tag, or "plaintext" if none is known.
func (d *Document) Language() string {
	return d.language
}
