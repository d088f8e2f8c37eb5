// Package replay applies recorded edit sequences, stored as YAML, to a
// TextBuffer.
//
// File format:
//
//	initial: "hello world"
//	edits:
//	  - op: insert
//	    pos: 5
//	    text: " there"
//	  - op: remove
//	    pos: 5
//	    len: 6
//	expect: "hello world"
package replay

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Op names an edit operation.
type Op string

const (
	OpInsert Op = "insert"
	OpRemove Op = "remove"
)

// Edit is one recorded mutation.
type Edit struct {
	Op   Op     `yaml:"op"`
	Pos  uint64 `yaml:"pos"`
	Text string `yaml:"text,omitempty"`
	Len  uint64 `yaml:"len,omitempty"`
}

// Script is a recorded editing session.
type Script struct {
	// Initial is the buffer content before the first edit.
	Initial string `yaml:"initial"`

	Edits []Edit `yaml:"edits"`

	// Expect, when set, is the content the edits must produce.
	Expect *string `yaml:"expect,omitempty"`
}

// ErrUnknownOp is returned for an edit whose op is not insert or remove.
var ErrUnknownOp = errors.New("unknown edit op")

// ErrMismatch is returned by Verify when the final text differs from Expect.
var ErrMismatch = errors.New("replayed text does not match expectation")

// EditError reports the edit that stopped a replay.
type EditError struct {
	Index int
	Edit  Edit
	Err   error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("edit %d (%s at %d): %v", e.Index, e.Edit.Op, e.Edit.Pos, e.Err)
}

// Unwrap returns the underlying error.
func (e *EditError) Unwrap() error {
	return e.Err
}

// Parse decodes a script and checks every op name.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing replay script: %w", err)
	}
	for i, e := range s.Edits {
		if e.Op != OpInsert && e.Op != OpRemove {
			return nil, &EditError{Index: i, Edit: e, Err: ErrUnknownOp}
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay script %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes the script as YAML.
func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// NewBuffer creates a buffer holding the script's initial text.
func (s *Script) NewBuffer(opts ...buffer.Option) *buffer.TextBuffer {
	return buffer.NewFromString(s.Initial, opts...)
}

// Apply runs the edits against buf in order. It stops at the first edit
// that fails and returns how many edits were applied.
func (s *Script) Apply(ctx context.Context, buf *buffer.TextBuffer) (int, error) {
	for i, e := range s.Edits {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		var err error
		switch e.Op {
		case OpInsert:
			err = buf.Insert(ctx, e.Pos, e.Text)
		case OpRemove:
			err = buf.Remove(ctx, e.Pos, e.Len)
		default:
			err = ErrUnknownOp
		}
		if err != nil {
			return i, &EditError{Index: i, Edit: e, Err: err}
		}
	}
	return len(s.Edits), nil
}

// Verify compares buf against Expect. It passes when Expect is unset.
func (s *Script) Verify(buf *buffer.TextBuffer) error {
	if s.Expect == nil {
		return nil
	}
	if got := buf.Text(); got != *s.Expect {
		return fmt.Errorf("%w: got %q, want %q", ErrMismatch, got, *s.Expect)
	}
	return nil
}
