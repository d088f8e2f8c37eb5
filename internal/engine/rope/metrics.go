package rope

import "strings"

// ByteOffset represents an absolute byte position in the rope.
type ByteOffset uint64

// TextSummary holds aggregated metrics for a text span.
// Summaries form a monoid under Add, which lets every internal node
// describe its whole subtree without rescanning it.
type TextSummary struct {
	// Bytes is the byte count.
	Bytes ByteOffset

	// Lines is the number of newline characters.
	Lines uint32
}

// ComputeSummary scans s once and returns its metrics.
func ComputeSummary(s string) TextSummary {
	return TextSummary{
		Bytes: ByteOffset(len(s)),
		Lines: uint32(strings.Count(s, "\n")),
	}
}

// Add combines two summaries.
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Lines: s.Lines + other.Lines,
	}
}
