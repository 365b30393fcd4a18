package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func TestOverlapsBasic(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint", 0, 2, 5, 8, false},
		{"contained", 0, 10, 3, 4, true},
		{"partial", 0, 5, 3, 8, true},
		{"touching endpoints", 0, 5, 5, 10, false},
		{"touching reversed order", 5, 10, 0, 5, false},
		{"identical", 2, 6, 2, 6, true},
		{"zero length against spanning", 3, 3, 0, 10, false},
		{"spanning against zero length", 0, 10, 3, 3, false},
		{"reversed bounds", 6, 2, 0, 10, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOverlapsSymmetry(t *testing.T) {
	pairs := [][4]int{
		{0, 5, 3, 8},
		{0, 2, 5, 8},
		{0, 5, 5, 10},
		{1, 1, 0, 4},
		{0, 10, 2, 3},
	}
	for _, p := range pairs {
		ab := Overlaps(at(p[0]), at(p[1]), at(p[2]), at(p[3]))
		ba := Overlaps(at(p[2]), at(p[3]), at(p[0]), at(p[1]))
		assert.Equal(t, ab, ba, "overlap must be symmetric for %v", p)
	}
}

func TestOverlapsSelf(t *testing.T) {
	assert.True(t, Overlaps(at(1), at(4), at(1), at(4)))
	assert.False(t, Overlaps(at(2), at(2), at(2), at(2)), "zero-length interval never overlaps itself")
}

func TestClipReturnsBoundedSubInterval(t *testing.T) {
	winStart, winEnd := at(0), at(24)

	start, end, ok := Clip(at(-5), at(5), winStart, winEnd)
	require.True(t, ok)
	assert.Equal(t, winStart, start)
	assert.Equal(t, at(5), end)

	start, end, ok = Clip(at(20), at(30), winStart, winEnd)
	require.True(t, ok)
	assert.Equal(t, at(20), start)
	assert.Equal(t, winEnd, end)

	start, end, ok = Clip(at(3), at(7), winStart, winEnd)
	require.True(t, ok)
	assert.Equal(t, at(3), start)
	assert.Equal(t, at(7), end)
}

func TestClipDisjointAgreesWithOverlaps(t *testing.T) {
	winStart, winEnd := at(0), at(24)
	cases := [][2]int{
		{-10, -1},
		{24, 30},
		{-3, 0},
		{5, 5},
		{9, 4},
	}
	for _, c := range cases {
		_, _, ok := Clip(at(c[0]), at(c[1]), winStart, winEnd)
		assert.Equal(t, Overlaps(at(c[0]), at(c[1]), winStart, winEnd), ok,
			"clip ok must match overlaps for [%d,%d)", c[0], c[1])
		assert.False(t, ok)
	}
}
