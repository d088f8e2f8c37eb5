package store

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds matches every *BoundsError via errors.Is.
var ErrOutOfBounds = errors.New("offset out of bounds")

// BoundsError reports an offset or range that falls outside the text.
type BoundsError struct {
	// Op is the operation that failed: "insert", "remove" or "range".
	Op string

	// Start and End describe the requested byte range. For insert
	// Start == End == the requested position.
	Start uint64
	End   uint64

	// Len is the text length at the time of the call.
	Len uint64
}

// Error implements the error interface.
func (e *BoundsError) Error() string {
	if e.Start == e.End {
		return fmt.Sprintf("%s: offset %d out of bounds [0, %d]", e.Op, e.Start, e.Len)
	}
	return fmt.Sprintf("%s: range [%d, %d) out of bounds [0, %d]", e.Op, e.Start, e.End, e.Len)
}

// Is allows errors.Is to match BoundsError with ErrOutOfBounds.
func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
