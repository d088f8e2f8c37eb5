package rope

// Chunk size constants control the granularity of leaf storage.
const (
	// MinChunkSize is the size below which adjacent leaves are merged.
	MinChunkSize = 256

	// MaxChunkSize is the maximum bytes held by one leaf.
	MaxChunkSize = 1024

	// TargetChunkSize is the preferred leaf size when splitting long text.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// splitIntoChunks cuts s into pieces no longer than MaxChunkSize.
// Pieces prefer to end just after a newline, then on a UTF-8 boundary,
// so that leaves line up with how editors usually read text.
func splitIntoChunks(s string) []string {
	if len(s) == 0 {
		return nil
	}
	if len(s) <= MaxChunkSize {
		return []string{s}
	}

	chunks := make([]string, 0, len(s)/TargetChunkSize+1)
	for len(s) > MaxChunkSize {
		cut := findSplitPoint(s, TargetChunkSize)
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}

// findSplitPoint returns a cut position near target. The result is always
// in (0, MaxChunkSize] so callers make progress.
func findSplitPoint(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}

	window := MinChunkSize / 2
	lo := max(target-window, 1)
	hi := min(target+window, len(s)-1)

	for i := target; i < hi; i++ {
		if s[i] == '\n' {
			return i + 1
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i] == '\n' {
			return i + 1
		}
	}

	// No newline nearby; back up to the start of a UTF-8 sequence.
	for pos := target; pos > lo; pos-- {
		if isUTF8Start(s[pos]) {
			return pos
		}
	}
	return target
}

// isUTF8Start returns true if b is not a UTF-8 continuation byte.
func isUTF8Start(b byte) bool {
	return b&0xC0 != 0x80
}
