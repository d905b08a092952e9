package procinspect

import "bytes"

// literalMatcher finds every, possibly overlapping, occurrence of a literal
// byte pattern inside a buffer. Wildcards are intentionally unsupported: this
// tool only ever searches for a literal string the operator typed in, not a
// masked byte-and-wildcard pattern.
type literalMatcher struct {
	pattern []byte
}

func newLiteralMatcher(pattern []byte) *literalMatcher {
	return &literalMatcher{pattern: pattern}
}

func (m *literalMatcher) Len() int {
	return len(m.pattern)
}

// FindAll returns every start offset of m.pattern inside data, including
// offsets that overlap a previous match (e.g. pattern "AA" against "AAAA"
// yields 0, 1, 2). bytes.Index is itself a vectorized first-byte filter plus
// tail comparison on every architecture the Go runtime targets, so re-running
// it from one byte past each hit reproduces the original's strstr_u8 loop
// without hand-rolled SIMD.
func (m *literalMatcher) FindAll(data []byte) []int {
	if len(m.pattern) == 0 || len(m.pattern) > len(data) {
		return nil
	}

	var offsets []int
	base := 0
	for {
		rel := bytes.Index(data[base:], m.pattern)
		if rel < 0 {
			break
		}
		offsets = append(offsets, base+rel)
		base = base + rel + 1
		if base >= len(data) {
			break
		}
	}
	return offsets
}
