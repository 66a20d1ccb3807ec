package challenge

import "time"

// Clock supplies the canonical notion of "now" from which the current
// challenge day is derived. Every component that needs today's day takes a
// Clock instead of calling time.Now inline, so an operation derives its day
// exactly once and tests can pin day boundaries.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production Clock. It reads the wall clock and converts
// to UTC so every derived Day shares one frame of reference.
type UTCClock struct{}

// Now returns the current wall-clock time in UTC.
func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}

// Today is shorthand for DayOf(c.Now()).
func Today(c Clock) Day {
	return DayOf(c.Now())
}
