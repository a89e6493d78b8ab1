package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DayLayout is the ISO-8601 calendar-day layout used at the store boundary.
const DayLayout = "2006-01-02"

// CalendarDay truncates t to midnight UTC of its local calendar day, so that
// day arithmetic never crosses DST or zone boundaries.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts an ISO-8601 date ("2024-01-10") or date-time
// ("2024-01-10T15:04:05Z07:00") and returns the local calendar day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return CalendarDay(t.Local()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", s)
}

// ParseOptionalDay parses s unless it is empty, in which case it returns nil.
func ParseOptionalDay(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDay renders a calendar day in DayLayout.
func FormatDay(t time.Time) string {
	return CalendarDay(t).Format(DayLayout)
}

// DaysBetween returns the whole number of calendar days from a to b
// (negative when b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(CalendarDay(b).Sub(CalendarDay(a)).Hours() / 24))
}

// AddDays shifts a calendar day by n days.
func AddDays(t time.Time, n int) time.Time {
	return CalendarDay(t).AddDate(0, 0, n)
}

// DayPtr returns a pointer to the calendar day of t.
func DayPtr(t time.Time) *time.Time {
	d := CalendarDay(t)
	return &d
}

// SameDay reports whether two optional days are equal (both nil counts).
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return CalendarDay(*a).Equal(CalendarDay(*b))
}
