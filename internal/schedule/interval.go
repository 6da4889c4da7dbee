// Package schedule provides conflict detection over scheduled events.
//
// Conflicts are computed purely in memory over an already-fetched event
// list. Two events conflict when their half-open time intervals overlap
// on the same calendar date; touching endpoints do not conflict.
package schedule

import (
	"github.com/atelierhq/fieldsync/internal/errors"
)

// Interval is a half-open time range [Start, End) expressed in minutes
// since midnight. A zero-width interval overlaps nothing.
type Interval struct {
	Start int
	End   int
}

// NewInterval builds an interval from a start minute and a duration.
func NewInterval(startMinute, durationMinutes int) Interval {
	return Interval{
		Start: startMinute,
		End:   startMinute + durationMinutes,
	}
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// ParseClock parses a strict 24-hour "HH:MM" string into minutes since
// midnight. Anything outside that exact format is a caller contract
// violation and fails with a TIME_PARSE_ERROR.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, errors.Newf(errors.ErrTimeParse, "malformed time %q, want HH:MM", s)
	}

	hour, ok := parseTwoDigits(s[0], s[1])
	if !ok || hour > 23 {
		return 0, errors.Newf(errors.ErrTimeParse, "malformed time %q: bad hour", s)
	}

	minute, ok := parseTwoDigits(s[3], s[4])
	if !ok || minute > 59 {
		return 0, errors.Newf(errors.ErrTimeParse, "malformed time %q: bad minute", s)
	}

	return hour*60 + minute, nil
}

// parseTwoDigits converts two ASCII digit bytes into an int.
func parseTwoDigits(hi, lo byte) (int, bool) {
	if hi < '0' || hi > '9' || lo < '0' || lo > '9' {
		return 0, false
	}
	return int(hi-'0')*10 + int(lo-'0'), true
}
