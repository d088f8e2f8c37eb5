// Package rope provides an immutable rope data structure for byte-addressed
// text storage.
//
// A rope is a B+ tree whose leaves hold bounded text chunks and whose internal
// nodes cache aggregated metrics (byte count, newline count) for their
// subtrees. Edits copy only the path from the root to the affected leaves, so
// insert and delete cost O(log n) node rebuilds plus the size of one chunk,
// and Len and LineCount are answered from the root in O(1).
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r = r.Insert(5, ",")   // "hello, world"
//	r = r.Delete(0, 7)     // "world"
//	text := r.String()     // "world"
//
// Offsets are raw byte positions. The rope never interprets the bytes it
// stores, so an edit may split a multi-byte UTF-8 sequence if the caller asks
// it to.
package rope
