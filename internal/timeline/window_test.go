package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalHours(t *testing.T) {
	w := TimeWindow{Start: at(0), End: at(168)}
	assert.InDelta(t, 168.0, w.TotalHours(), 1e-9)

	panned := w.Pan(3)
	assert.InDelta(t, 168.0, panned.TotalHours(), 1e-9, "pan preserves the span")
}

func TestHourIndexToTime(t *testing.T) {
	w := TimeWindow{Start: at(0), End: at(168)}

	assert.Equal(t, at(0), w.HourIndexToTime(0))
	assert.Equal(t, at(26), w.HourIndexToTime(26))
	assert.Equal(t, at(-3), w.HourIndexToTime(-3), "negative indices are defined, callers clip")
	assert.Equal(t, at(200), w.HourIndexToTime(200), "indices past the window are defined")
}

func TestFractionalPosition(t *testing.T) {
	w := TimeWindow{Start: at(0), End: at(168)}

	assert.InDelta(t, 0.0, w.FractionalPosition(at(0)), 1e-9)
	assert.InDelta(t, 1.0, w.FractionalPosition(at(168)), 1e-9)
	assert.InDelta(t, 0.5, w.FractionalPosition(at(84)), 1e-9)
	assert.Less(t, w.FractionalPosition(at(-12)), 0.0, "before the window")
	assert.Greater(t, w.FractionalPosition(at(180)), 1.0, "after the window")

	degenerate := TimeWindow{Start: at(5), End: at(5)}
	assert.Equal(t, 0.0, degenerate.FractionalPosition(at(9)))
}

func TestPanShiftsBothBounds(t *testing.T) {
	w := TimeWindow{Start: at(0), End: at(168)}

	next := w.Pan(7)
	assert.Equal(t, w.Start.AddDate(0, 0, 7), next.Start)
	assert.Equal(t, w.End.AddDate(0, 0, 7), next.End)

	prev := w.Pan(-7)
	assert.Equal(t, w.Start.AddDate(0, 0, -7), prev.Start)
	assert.Equal(t, w.End.AddDate(0, 0, -7), prev.End)
}

func TestWeekWindowAnchorsAtTodayMinusHistory(t *testing.T) {
	now := time.Date(2025, time.March, 5, 14, 37, 12, 0, time.UTC)

	w := WeekWindow(now, 1)
	assert.Equal(t, time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), w.End)

	noHistory := WeekWindow(now, 0)
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), noHistory.Start)
}

func TestSpanWindow(t *testing.T) {
	now := time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

	w := SpanWindow(now, 0, 3)
	assert.InDelta(t, 72.0, w.TotalHours(), 1e-9)

	fallback := SpanWindow(now, 0, 0)
	assert.InDelta(t, 168.0, fallback.TotalHours(), 1e-9, "non-positive span falls back to a week")
}
