// Package script drives a TextBuffer from Lua.
//
// Scripts see a global table named buf:
//
//	buf.insert(pos, text)   -- splice text at byte pos
//	buf.remove(pos, n)      -- delete n bytes at pos
//	buf.text()              -- full content
//	buf.range(start, end)   -- bytes in [start, end)
//	buf.len()               -- length in bytes
//	buf.lines()             -- line count
//
// Out-of-range offsets raise a Lua error carrying the bounds message.
// Only the base, table, string and math libraries are opened.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// ErrRunnerClosed is returned when running on a closed Runner.
var ErrRunnerClosed = errors.New("script runner is closed")

// Runner executes Lua scripts against one buffer.
//
// gopher-lua states are not goroutine-safe; Runner serializes its calls.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	buf    *buffer.TextBuffer
	out    io.Writer
	ctx    context.Context
	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput redirects Lua print output. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// NewRunner creates a runner bound to buf.
func NewRunner(buf *buffer.TextBuffer, opts ...Option) *Runner {
	r := &Runner{
		buf: buf,
		out: os.Stdout,
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// The base library exposes file loaders; scripts only get the buffer.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(r.print))
	L.SetGlobal("buf", r.bufferTable(L))

	r.L = L
	return r
}

func (r *Runner) bufferTable(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"insert": r.insert,
		"remove": r.remove,
		"text":   r.text,
		"range":  r.textRange,
		"len":    r.length,
		"lines":  r.lines,
	})
}

// Run executes src. name labels the chunk in error messages.
func (r *Runner) Run(ctx context.Context, name, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunnerClosed
	}

	fn, err := r.L.Load(strings.NewReader(src), name)
	if err != nil {
		return &Error{Script: name, Err: err}
	}

	r.ctx = ctx
	r.L.SetContext(ctx)
	defer func() {
		r.ctx = context.Background()
		r.L.RemoveContext()
	}()

	r.L.Push(fn)
	if err := r.L.PCall(0, lua.MultRet, nil); err != nil {
		return &Error{Script: name, Err: err}
	}
	return nil
}

// RunFile reads and executes a script file.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	return r.Run(ctx, path, string(src))
}

// Close releases the Lua state.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.L.Close()
	return nil
}

// Error is a failed script run.
type Error struct {
	Script string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

// Unwrap returns the underlying Lua error.
func (e *Error) Unwrap() error {
	return e.Err
}

func checkOffset(L *lua.LState, n int) uint64 {
	v := float64(L.CheckNumber(n))
	if v != math.Trunc(v) {
		L.ArgError(n, "offset must be an integer")
	}
	if v < 0 {
		L.ArgError(n, "offset must not be negative")
	}
	if v >= math.MaxUint64 {
		L.ArgError(n, "offset out of range")
	}
	return uint64(v)
}

func (r *Runner) insert(L *lua.LState) int {
	pos := checkOffset(L, 1)
	text := L.CheckString(2)
	if err := r.buf.Insert(r.ctx, pos, text); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runner) remove(L *lua.LState) int {
	pos := checkOffset(L, 1)
	n := checkOffset(L, 2)
	if err := r.buf.Remove(r.ctx, pos, n); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runner) text(L *lua.LState) int {
	L.Push(lua.LString(r.buf.Text()))
	return 1
}

func (r *Runner) textRange(L *lua.LState) int {
	start := checkOffset(L, 1)
	end := checkOffset(L, 2)
	s, err := r.buf.Range(start, end)
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	L.Push(lua.LString(s))
	return 1
}

func (r *Runner) length(L *lua.LState) int {
	L.Push(lua.LNumber(r.buf.LenBytes()))
	return 1
}

func (r *Runner) lines(L *lua.LState) int {
	L.Push(lua.LNumber(r.buf.LenLines()))
	return 1
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}
