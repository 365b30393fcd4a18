package timeline

// MinWidthFraction keeps zero-duration or sub-pixel bars clickable.
const MinWidthFraction = 0.005

// DefaultPriority is assumed when a schedule carries no usable ranking.
const DefaultPriority = 3

// NormalizePriority clamps a priority to the 1-5 ranking, 1 being the most
// urgent. Absent or out-of-range values map to DefaultPriority.
func NormalizePriority(p int) int {
	if p < 1 || p > 5 {
		return DefaultPriority
	}
	return p
}

// PriorityLabel names a priority level for badges and exports.
func PriorityLabel(p int) string {
	switch NormalizePriority(p) {
	case 1:
		return "critical"
	case 2:
		return "high"
	case 4:
		return "low"
	case 5:
		return "minimal"
	default:
		return "normal"
	}
}

// Bar is one positioned schedule inside a resource row. Fractions are
// relative to the row width.
type Bar struct {
	Schedule      Schedule
	LeftFraction  float64
	WidthFraction float64
}

// Layout positions one row's schedules against the window. Schedules wholly
// outside the window are dropped; partially visible ones are clipped to the
// window edge. Input order is preserved, so overlapping bars stack in array
// order.
func Layout(window TimeWindow, schedules []Schedule) []Bar {
	total := window.TotalHours()
	if total <= 0 {
		return nil
	}

	bars := make([]Bar, 0, len(schedules))
	for _, s := range schedules {
		visibleStart, visibleEnd, ok := Clip(s.Start, s.End, window.Start, window.End)
		if !ok {
			continue
		}

		left := window.FractionalPosition(visibleStart)
		if left < 0 {
			left = 0
		}
		if left > 1 {
			left = 1
		}

		width := visibleEnd.Sub(visibleStart).Hours() / total
		if width < MinWidthFraction {
			width = MinWidthFraction
		}
		// A floored bar at the right edge is shifted inward instead of
		// protruding past the row.
		if left+width > 1 {
			left = 1 - width
		}

		s.Priority = NormalizePriority(s.Priority)
		bars = append(bars, Bar{Schedule: s, LeftFraction: left, WidthFraction: width})
	}
	return bars
}
