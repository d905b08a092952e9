package procinspect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLiteralMatcherOverlappingSelfMatches verifies testable property 7:
// pattern "AA" over "AAAA" yields matches at offsets 0, 1, 2.
func TestLiteralMatcherOverlappingSelfMatches(t *testing.T) {
	m := newLiteralMatcher([]byte("AA"))
	got := m.FindAll([]byte("AAAA"))
	require.Equal(t, []int{0, 1, 2}, got)
}

func TestLiteralMatcherBasic(t *testing.T) {
	m := newLiteralMatcher([]byte("needle"))
	got := m.FindAll([]byte("Hello needle World"))
	require.Equal(t, []int{6}, got)
}

func TestLiteralMatcherNoMatch(t *testing.T) {
	m := newLiteralMatcher([]byte("zzz"))
	got := m.FindAll([]byte("no such substring here"))
	require.Nil(t, got)
}

func TestLiteralMatcherPatternLongerThanData(t *testing.T) {
	m := newLiteralMatcher([]byte("a long pattern"))
	got := m.FindAll([]byte("short"))
	require.Nil(t, got)
}
