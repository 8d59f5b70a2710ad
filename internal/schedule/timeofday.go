// Package schedule decides whether an appointment can be booked: which hours an
// organization is open on a date (special days folded in) and which existing
// appointments a candidate overlaps.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for lookups and on the wire.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds the minute-offset space of a TimeOfDay.
const MinutesPerDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New("schedule: invalid time of day")

// TimeOfDay is a wall-clock time in canonical "HH:MM" form (24h, zero-padded).
type TimeOfDay string

// ParseTimeOfDay accepts "H:MM", "HH:MM" or "HH:MM:SS" (PostgreSQL TIME columns come back
// with seconds) and returns the canonical form. Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || len(parts[0]) > 2 || h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	}
	return FromMinutes(h*60 + m), nil
}

// Minutes returns hours*60+minutes. t is expected in canonical form.
func (t TimeOfDay) Minutes() int {
	h, rest, _ := strings.Cut(string(t), ":")
	if len(rest) > 2 {
		rest = rest[:2]
	}
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(rest)
	return hh*60 + mm
}

func (t TimeOfDay) String() string { return string(t) }

// FromMinutes is the inverse of Minutes for m in [0, 1439]. Values outside the day wrap
// around like a clock; callers that care about crossing midnight check the raw offset first.
func FromMinutes(m int) TimeOfDay {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return TimeOfDay(fmt.Sprintf("%02d:%02d", m/60, m%60))
}

// AddDuration returns start shifted by minutes.
func AddDuration(start TimeOfDay, minutes int) TimeOfDay {
	return FromMinutes(start.Minutes() + minutes)
}

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd) share at least
// one minute. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// SameDate compares the calendar dates of a and b as written (no timezone conversion).
func SameDate(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}
