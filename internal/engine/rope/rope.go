package rope

import (
	"io"
	"strings"
)

// Rope is a persistent sequence of bytes stored as a balanced tree of chunks.
// Edits return a new Rope and share unchanged subtrees with the old one.
// This enables cheap snapshots and concurrent read access.
type Rope struct {
	root *Node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf("")}
}

// FromString builds a rope holding s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return fromNodes(leavesFromText(s))
}

// FromReader builds a rope from everything r yields.
func FromReader(r io.Reader) (Rope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Rope{}, err
	}
	return FromString(string(data)), nil
}

// fromNodes stacks same-height nodes into a single root.
func fromNodes(nodes []*Node) Rope {
	for len(nodes) > 1 {
		nodes = group(nodes)
	}
	return Rope{root: nodes[0]}
}

// Len returns the size of the text in bytes.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.Len()
}

// LineCount returns the number of lines (newlines + 1).
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Lines + 1
}

// IsEmpty reports whether the rope holds no bytes.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// Summary returns the root summary.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{}
	}
	return r.root.summary
}

// String materializes the whole text.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns bytes [start, end), clamped to the rope.
// The range is clamped to the rope.
func (r Rope) Slice(start, end ByteOffset) string {
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// Insert returns a rope with text placed at offset.
// Offsets past the end append. Returns a new rope; original is unchanged.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 {
		return r
	}
	if r.IsEmpty() {
		return FromString(text)
	}
	offset = min(offset, r.Len())
	return fromNodes(r.root.insert(offset, text))
}

// Delete returns a rope without bytes [start, end).
// The range is clamped to the rope. Returns a new rope; original is unchanged.
func (r Rope) Delete(start, end ByteOffset) Rope {
	end = min(end, r.Len())
	if r.root == nil || start >= end {
		return r
	}

	root := r.root.delete(start, end)
	if root == nil {
		return New()
	}
	for !root.IsLeaf() && len(root.children) == 1 {
		root = root.children[0]
	}
	return Rope{root: root}
}

// Replace is Delete followed by Insert at start.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	return r.Delete(start, end).Insert(start, text)
}

// Split splits the rope at offset.
// Left contains [0, offset), right contains [offset, end).
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	return r.Delete(offset, r.Len()), r.Delete(0, offset)
}

// Concat returns r followed by other.
func (r Rope) Concat(other Rope) Rope {
	if other.IsEmpty() {
		return r
	}
	return r.Insert(r.Len(), other.String())
}

// Chunks calls fn with each stored chunk in order until fn returns false.
func (r Rope) Chunks(fn func(chunk string) bool) {
	if r.root == nil {
		return
	}
	r.root.walk(fn)
}

// Height is the number of tree levels, zero for an empty rope.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}

// Equals reports whether both ropes hold the same bytes.
// This compares content, not structure.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	return r.String() == other.String()
}
