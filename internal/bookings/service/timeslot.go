package service

import "time"

// overlaps reports whether the candidate interval [start, end) collides
// with a stored booking [bStart, bEnd). Intervals are half-open, so a
// booking ending exactly when another starts is not a conflict. A
// single-instant candidate (start == end) conflicts when the instant
// falls inside [bStart, bEnd).
func overlaps(start, end, bStart, bEnd time.Time) bool {
	// candidate starts inside the booking
	if !start.Before(bStart) && start.Before(bEnd) {
		return true
	}
	// candidate ends inside the booking
	if end.After(bStart) && !end.After(bEnd) {
		return true
	}
	// candidate fully contains the booking
	if !start.After(bStart) && !end.Before(bEnd) {
		return true
	}
	return false
}

// roundToSlot aligns t to the booking grain: seconds and nanoseconds
// are dropped and the minute is rounded up to the next multiple of
// grainMinutes. Already-aligned instants pass through unchanged.
func roundToSlot(t time.Time, grainMinutes int) time.Time {
	t = t.Truncate(time.Minute)
	if rem := t.Minute() % grainMinutes; rem != 0 {
		t = t.Add(time.Duration(grainMinutes-rem) * time.Minute)
	}
	return t
}
