// Package challenge defines the daily challenge calendar shared across layers.
package challenge

import (
	"fmt"
	"time"
)

// DayFormat is the canonical layout for a challenge day on the wire and in storage.
const DayFormat = "2006-01-02"

// Day identifies one daily challenge: a calendar date pinned to UTC.
// Values are comparable and usable as map keys. The zero value is not a
// valid day; use IsZero to detect it.
type Day struct {
	t time.Time
}

// DayOf returns the challenge day containing t. The instant is converted
// to UTC before truncation, so the same moment yields the same day no
// matter which location the caller's timestamp carries.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return Day{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a day in the canonical YYYY-MM-DD layout.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrBadDay, s)
	}
	return Day{t: t}, nil
}

// String renders the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.t.Format(DayFormat)
}

// Start returns the first instant of the day, midnight UTC.
func (d Day) Start() time.Time {
	return d.t
}

// Next returns the day after d.
func (d Day) Next() Day {
	return Day{t: d.t.AddDate(0, 0, 1)}
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}
