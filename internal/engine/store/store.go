// Package store holds the text content of a buffer behind a single
// exclusive lock.
//
// A Store serializes every operation, reads included, through one mutex.
// The critical sections are short and never wait on anything else, so the
// lock cannot participate in a deadlock. Callers that need to fan out work
// after an edit (such as change notification) must do it after the Store
// call returns.
package store

import (
	"sync"

	"github.com/dshills/textcore/internal/engine/rope"
)

// ByteOffset is a byte position in the text.
type ByteOffset = uint64

// Store is a mutable, thread-safe text container backed by a rope.
type Store struct {
	mu   sync.Mutex
	rope rope.Rope
}

// New creates an empty store.
func New() *Store {
	return &Store{rope: rope.New()}
}

// NewFromString creates a store with initial content.
func NewFromString(s string) *Store {
	return &Store{rope: rope.FromString(s)}
}

// Insert splices text at byte pos. It fails if pos > LenBytes().
func (s *Store) Insert(pos ByteOffset, text string) error {
	return s.Edit(func(r rope.Rope) (rope.Rope, error) {
		return InsertInto(r, pos, text)
	})
}

// Remove deletes the bytes in [pos, pos+n). It fails if the range
// extends past the end of the text.
func (s *Store) Remove(pos, n ByteOffset) error {
	return s.Edit(func(r rope.Rope) (rope.Rope, error) {
		return RemoveFrom(r, pos, n)
	})
}

// Edit runs fn with exclusive access to the content. The rope returned by
// fn replaces the content only when fn returns a nil error, so a failed
// edit leaves the store untouched.
func (s *Store) Edit(fn func(r rope.Rope) (rope.Rope, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.rope)
	if err != nil {
		return err
	}
	s.rope = next
	return nil
}

// Text returns a copy of the full content.
func (s *Store) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rope.String()
}

// Range returns a copy of the bytes in [start, end).
func (s *Store) Range(start, end ByteOffset) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := uint64(s.rope.Len())
	if start > end || end > n {
		return "", &BoundsError{Op: "range", Start: start, End: end, Len: n}
	}
	return s.rope.Slice(rope.ByteOffset(start), rope.ByteOffset(end)), nil
}

// LenBytes returns the content length in bytes.
func (s *Store) LenBytes() ByteOffset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint64(s.rope.Len())
}

// LenLines returns the number of lines (newlines + 1).
func (s *Store) LenLines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.rope.LineCount())
}

// Snapshot returns the current rope. Ropes are immutable, so the result
// may be read from any goroutine without further locking.
func (s *Store) Snapshot() rope.Rope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rope
}

// InsertInto validates and applies an insertion to r. It is the building
// block for callers that run their own logic inside Edit.
func InsertInto(r rope.Rope, pos ByteOffset, text string) (rope.Rope, error) {
	n := uint64(r.Len())
	if pos > n {
		return r, &BoundsError{Op: "insert", Start: pos, End: pos, Len: n}
	}
	return r.Insert(rope.ByteOffset(pos), text), nil
}

// RemoveFrom validates and applies a removal of count bytes at pos to r.
func RemoveFrom(r rope.Rope, pos, count ByteOffset) (rope.Rope, error) {
	n := uint64(r.Len())
	end := pos + count
	if pos > n || end < pos || end > n {
		return r, &BoundsError{Op: "remove", Start: pos, End: end, Len: n}
	}
	return r.Delete(rope.ByteOffset(pos), rope.ByteOffset(end)), nil
}
