package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekWindow() TimeWindow {
	return TimeWindow{Start: at(0), End: at(168)}
}

func TestLayoutDropsInvisibleSchedules(t *testing.T) {
	bars := Layout(weekWindow(), []Schedule{
		{ID: "before", Start: at(-48), End: at(-24)},
		{ID: "inside", Start: at(24), End: at(30)},
		{ID: "after", Start: at(200), End: at(210)},
	})
	require.Len(t, bars, 1)
	assert.Equal(t, "inside", bars[0].Schedule.ID)
}

func TestLayoutClipsToWindowEdge(t *testing.T) {
	// A schedule spanning [D-2d, D+2d) against a 7-day window at D clips to
	// [D, D+2d).
	bars := Layout(weekWindow(), []Schedule{{ID: "s", Start: at(-48), End: at(48)}})
	require.Len(t, bars, 1)

	assert.InDelta(t, 0.0, bars[0].LeftFraction, 1e-9)
	assert.InDelta(t, 48.0/168.0, bars[0].WidthFraction, 1e-9)
}

func TestLayoutFractions(t *testing.T) {
	bars := Layout(weekWindow(), []Schedule{{ID: "s", Start: at(24), End: at(36)}})
	require.Len(t, bars, 1)

	assert.InDelta(t, 24.0/168.0, bars[0].LeftFraction, 1e-9)
	assert.InDelta(t, 12.0/168.0, bars[0].WidthFraction, 1e-9)
}

func TestLayoutWidthFloor(t *testing.T) {
	// 15 minutes in a 7-day window is far below the visibility floor.
	bars := Layout(weekWindow(), []Schedule{{ID: "tiny", Start: at(10), End: at(10).Add(15 * time.Minute)}})
	require.Len(t, bars, 1)
	assert.InDelta(t, MinWidthFraction, bars[0].WidthFraction, 1e-9)
}

func TestLayoutNeverExceedsRowBounds(t *testing.T) {
	window := weekWindow()
	schedules := []Schedule{
		{ID: "a", Start: at(-48), End: at(48)},
		{ID: "b", Start: at(160), End: at(300)},
		{ID: "c", Start: at(167), End: at(167).Add(5 * time.Minute)},
		{ID: "d", Start: at(0), End: at(168)},
	}
	for _, bar := range Layout(window, schedules) {
		assert.GreaterOrEqual(t, bar.LeftFraction, 0.0, "bar %s", bar.Schedule.ID)
		assert.LessOrEqual(t, bar.LeftFraction+bar.WidthFraction, 1.0+1e-9, "bar %s", bar.Schedule.ID)
	}
}

func TestLayoutToleratesMalformedIntervals(t *testing.T) {
	bars := Layout(weekWindow(), []Schedule{
		{ID: "zero", Start: at(10), End: at(10)},
		{ID: "negative", Start: at(20), End: at(15)},
		{ID: "ok", Start: at(30), End: at(32)},
	})
	require.Len(t, bars, 1, "malformed rows render invisible, not as a crash")
	assert.Equal(t, "ok", bars[0].Schedule.ID)
}

func TestLayoutPreservesInputOrder(t *testing.T) {
	bars := Layout(weekWindow(), []Schedule{
		{ID: "late", Start: at(50), End: at(60)},
		{ID: "early", Start: at(10), End: at(20)},
	})
	require.Len(t, bars, 2)
	assert.Equal(t, "late", bars[0].Schedule.ID)
	assert.Equal(t, "early", bars[1].Schedule.ID)
}

func TestLayoutNormalizesPriority(t *testing.T) {
	bars := Layout(weekWindow(), []Schedule{
		{ID: "unset", Start: at(1), End: at(2)},
		{ID: "out-of-range", Start: at(3), End: at(4), Priority: 9},
		{ID: "urgent", Start: at(5), End: at(6), Priority: 1},
	})
	require.Len(t, bars, 3)
	assert.Equal(t, DefaultPriority, bars[0].Schedule.Priority)
	assert.Equal(t, DefaultPriority, bars[1].Schedule.Priority)
	assert.Equal(t, 1, bars[2].Schedule.Priority)
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "critical", PriorityLabel(1))
	assert.Equal(t, "normal", PriorityLabel(3))
	assert.Equal(t, "normal", PriorityLabel(0))
	assert.Equal(t, "minimal", PriorityLabel(5))
}
