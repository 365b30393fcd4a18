package timeline

import "time"

// TimeWindow is the visible span of a chart. Start is inclusive, End
// exclusive. Windows are values; panning returns a new one.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// TotalHours is the window width in hours. It is derived on every call so a
// panned window can never be paired with a stale denominator.
func (w TimeWindow) TotalHours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// HourIndexToTime maps an hour-cell index onto the timeline. It is defined
// for any index, including negative or past the window end; callers clip.
func (w TimeWindow) HourIndexToTime(index int) time.Time {
	return w.Start.Add(time.Duration(index) * time.Hour)
}

// FractionalPosition maps an instant to its horizontal position as a
// fraction of the window width. Values below 0 or above 1 mean the instant
// falls before or after the visible window; callers clip rather than error.
func (w TimeWindow) FractionalPosition(t time.Time) float64 {
	total := w.TotalHours()
	if total <= 0 {
		return 0
	}
	return t.Sub(w.Start).Hours() / total
}

// Pan shifts both bounds by whole days, preserving the span.
func (w TimeWindow) Pan(deltaDays int) TimeWindow {
	return TimeWindow{
		Start: w.Start.AddDate(0, 0, deltaDays),
		End:   w.End.AddDate(0, 0, deltaDays),
	}
}

// WeekWindow anchors a seven-day window at the start of now's day, shifted
// back by historyDays so the chart keeps some elapsed schedules visible.
func WeekWindow(now time.Time, historyDays int) TimeWindow {
	return SpanWindow(now, historyDays, 7)
}

// SpanWindow is the caller-sized variant used by the single-resource
// scheduler. A non-positive span falls back to seven days.
func SpanWindow(now time.Time, historyDays, spanDays int) TimeWindow {
	if spanDays <= 0 {
		spanDays = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -historyDays)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, spanDays)}
}
