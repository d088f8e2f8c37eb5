package rope

import "strings"

// Tree shape constants.
const (
	// MinChildren is the fan-out below which adjacent internal nodes are merged.
	MinChildren = 4

	// MaxChildren is the maximum children per internal node before splitting.
	MaxChildren = 8
)

// Node is a node in the rope B+ tree.
// Leaf nodes (height == 0) hold one chunk of text.
// Internal nodes (height > 0) hold child references whose heights are all
// height-1. Nodes are never mutated once they are reachable from a Rope.
type Node struct {
	height   uint8
	summary  TextSummary
	children []*Node
	text     string
}

func newLeaf(text string) *Node {
	return &Node{summary: ComputeSummary(text), text: text}
}

func newInternal(children []*Node) *Node {
	n := &Node{
		height:   children[0].height + 1,
		children: children,
	}
	for _, c := range children {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

// leavesFromText returns the leaves holding s, in order.
func leavesFromText(s string) []*Node {
	chunks := splitIntoChunks(s)
	leaves := make([]*Node, len(chunks))
	for i, c := range chunks {
		leaves[i] = newLeaf(c)
	}
	return leaves
}

// IsLeaf returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.height == 0
}

// Len returns the byte length of text in this subtree.
func (n *Node) Len() ByteOffset {
	return n.summary.Bytes
}

// group packs same-height nodes under as few parents as possible while
// keeping every parent between MinChildren and MaxChildren when there are
// enough nodes to do so.
func group(nodes []*Node) []*Node {
	if len(nodes) <= MaxChildren {
		return []*Node{newInternal(nodes)}
	}

	count := (len(nodes) + MaxChildren - 1) / MaxChildren
	size := len(nodes) / count
	extra := len(nodes) % count

	parents := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		n := size
		if i < extra {
			n++
		}
		children := make([]*Node, n)
		copy(children, nodes[:n])
		parents = append(parents, newInternal(children))
		nodes = nodes[n:]
	}
	return parents
}

// insert splices text at offset and returns the nodes that replace n.
// All returned nodes have n's height; more than one is returned when n
// overflowed and had to split.
func (n *Node) insert(offset ByteOffset, text string) []*Node {
	if n.IsLeaf() {
		return leavesFromText(n.text[:offset] + text + n.text[offset:])
	}

	idx, local := n.childForInsert(offset)
	replaced := n.children[idx].insert(local, text)

	children := make([]*Node, 0, len(n.children)+len(replaced)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, replaced...)
	children = append(children, n.children[idx+1:]...)
	return group(children)
}

// childForInsert finds the child that receives an insertion at offset.
// An offset on a boundary goes to the end of the left child.
func (n *Node) childForInsert(offset ByteOffset) (int, ByteOffset) {
	var acc ByteOffset
	for i, c := range n.children {
		if offset <= acc+c.Len() {
			return i, offset - acc
		}
		acc += c.Len()
	}
	last := len(n.children) - 1
	return last, offset - (acc - n.children[last].Len())
}

// delete removes [start, end) from the subtree. It returns nil when
// nothing remains. The returned node has n's height.
func (n *Node) delete(start, end ByteOffset) *Node {
	if n.IsLeaf() {
		rest := n.text[:start] + n.text[end:]
		if rest == "" {
			return nil
		}
		return newLeaf(rest)
	}

	children := make([]*Node, 0, len(n.children))
	var acc ByteOffset
	for _, c := range n.children {
		cStart, cEnd := acc, acc+c.Len()
		acc = cEnd

		if end <= cStart || start >= cEnd {
			children = append(children, c)
			continue
		}

		localStart := ByteOffset(0)
		if start > cStart {
			localStart = start - cStart
		}
		localEnd := c.Len()
		if end < cEnd {
			localEnd = end - cStart
		}
		if localStart == 0 && localEnd == c.Len() {
			continue
		}
		if kept := c.delete(localStart, localEnd); kept != nil {
			children = append(children, kept)
		}
	}

	if len(children) == 0 {
		return nil
	}
	return newInternal(mergeUnderfull(children))
}

// mergeUnderfull merges adjacent siblings when one of them is underfull
// and the result still fits in a single node.
func mergeUnderfull(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, c := range nodes {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if merged := tryMerge(prev, c); merged != nil {
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func tryMerge(a, b *Node) *Node {
	if a.IsLeaf() {
		if a.Len() >= MinChunkSize && b.Len() >= MinChunkSize {
			return nil
		}
		if a.Len()+b.Len() > MaxChunkSize {
			return nil
		}
		return newLeaf(a.text + b.text)
	}

	if len(a.children) >= MinChildren && len(b.children) >= MinChildren {
		return nil
	}
	if len(a.children)+len(b.children) > MaxChildren {
		return nil
	}
	children := make([]*Node, 0, len(a.children)+len(b.children))
	children = append(children, a.children...)
	children = append(children, b.children...)
	return newInternal(children)
}

// appendTo appends all text in this subtree to the builder.
func (n *Node) appendTo(sb *strings.Builder) {
	if n.IsLeaf() {
		sb.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.appendTo(sb)
	}
}

// appendRange appends text in the byte range [start, end) to the builder.
func (n *Node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}
	if n.IsLeaf() {
		sb.WriteString(n.text[start:end])
		return
	}

	var acc ByteOffset
	for _, c := range n.children {
		cStart, cEnd := acc, acc+c.Len()
		acc = cEnd
		if cEnd <= start {
			continue
		}
		if cStart >= end {
			break
		}
		c.appendRange(sb, max(start, cStart)-cStart, min(end, cEnd)-cStart)
	}
}

// walk calls fn for every leaf chunk in order until fn returns false.
func (n *Node) walk(fn func(chunk string) bool) bool {
	if n.IsLeaf() {
		return fn(n.text)
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
