package event

import "fmt"

// Kind tags a ChangeEvent.
type Kind uint8

const (
	// Inserted reports bytes spliced into the text.
	Inserted Kind = iota + 1
	// Removed reports bytes deleted from the text.
	Removed
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// ChangeEvent describes exactly one completed mutation, in byte units.
type ChangeEvent struct {
	Kind Kind

	// Start is the byte offset where the change happened.
	Start uint64

	// Len is the number of bytes inserted or removed.
	Len uint64

	// Seq is strictly increasing per buffer, starting at 1, in the order
	// mutations completed. Buffers sharing one bus number their events
	// independently, so Seq orders events only on a bus fed by a single
	// buffer.
	Seq uint64
}

// End returns Start+Len.
func (e ChangeEvent) End() uint64 {
	return e.Start + e.Len
}

// String returns a compact description such as "inserted{start:5, len:6}#1".
func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s{start:%d, len:%d}#%d", e.Kind, e.Start, e.Len, e.Seq)
}
