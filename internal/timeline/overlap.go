package timeline

import "time"

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints (aEnd == bStart) do not count, so back-to-back bookings stay
// legal. A zero- or negative-length interval never overlaps anything; it
// denotes an incomplete drag or malformed row, not a booking.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(aEnd) || !bStart.Before(bEnd) {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clip bounds [start, end) to the portion inside [winStart, winEnd).
// ok is false when the interval has no intersection with the window.
func Clip(start, end, winStart, winEnd time.Time) (visibleStart, visibleEnd time.Time, ok bool) {
	if !Overlaps(start, end, winStart, winEnd) {
		return time.Time{}, time.Time{}, false
	}
	visibleStart, visibleEnd = start, end
	if visibleStart.Before(winStart) {
		visibleStart = winStart
	}
	if visibleEnd.After(winEnd) {
		visibleEnd = winEnd
	}
	return visibleStart, visibleEnd, true
}
