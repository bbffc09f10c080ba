package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ReferenceDate is the day every time bucket is placed on. Only the
// time-of-day part of a bucket carries meaning.
var ReferenceDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrInvalidTime marks a record whose time fields cannot form a time of day.
var ErrInvalidTime = errors.New("invalid time")

const clockLayout = "15:04:05"

// Normalize converts a 12-hour (hour, minute block, AM/PM) triple into a
// time of day on ReferenceDate.
//
// 12 AM becomes hour 0, 12 PM stays 12 and every other PM hour gets +12.
// Any parse failure or an out-of-range result yields ErrInvalidTime.
func Normalize(hour, minute, meridiem string) (time.Time, error) {
	h, err := parseWhole(hour)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: hour %q", ErrInvalidTime, hour)
	}
	m, err := parseWhole(minute)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: minute %q", ErrInvalidTime, minute)
	}

	switch strings.ToUpper(strings.TrimSpace(meridiem)) {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	default:
		return time.Time{}, fmt.Errorf("%w: meridiem %q", ErrInvalidTime, meridiem)
	}

	return clockTime(h, m)
}

// ParseClock parses a 24-hour "HH:MM" query time onto ReferenceDate.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTime, s)
	}
	return clockTime(t.Hour(), t.Minute())
}

// FormatClock renders the time-of-day part of t as HH:MM:SS.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

func clockTime(h, m int) (time.Time, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d out of range", ErrInvalidTime, h, m)
	}
	return ReferenceDate.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// parseWhole accepts integers and integral floats such as "7.0", which
// spreadsheet exports tend to produce for integer columns.
func parseWhole(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	return int(f), nil
}
