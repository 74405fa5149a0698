package report

import "time"

// Clock supplies the "now" anchor for month windows and the staleness cutoff.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads wall-clock time.
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
