// Package gantt lays elements out on a day-based timeline: visible date
// range, bar geometry, drag editing and dependency arrows.
package gantt

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
)

const (
	DefaultPaddingDays   = 7
	DefaultLookaheadDays = 30
)

type Zoom string

const (
	ZoomDay   Zoom = "day"
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// ParseZoom accepts day, week or month, case-insensitively.
func ParseZoom(s string) (Zoom, error) {
	switch z := Zoom(strings.ToLower(strings.TrimSpace(s))); z {
	case ZoomDay, ZoomWeek, ZoomMonth:
		return z, nil
	}
	return "", domain.Invalid("zoom", "unknown zoom %q (want day, week or month)", s)
}

// ColumnWidth is the pixel width of one day at the given zoom. Unknown
// zooms fall back to the day width.
func ColumnWidth(z Zoom) float64 {
	switch z {
	case ZoomWeek:
		return 80
	case ZoomMonth:
		return 120
	default:
		return 40
	}
}

// DateRange is the visible window, both ends inclusive calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of day columns in the range.
func (r DateRange) Days() int {
	return domain.DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", domain.FormatDay(r.Start), domain.FormatDay(r.End))
}

// ComputeDateRange returns a window that always contains today plus a
// 30-day look-ahead and every scheduled date, padded on both sides.
func ComputeDateRange(elements []*domain.Element, today time.Time, paddingDays int) DateRange {
	return ComputeDateRangeWindow(elements, today, paddingDays, DefaultLookaheadDays)
}

// ComputeDateRangeWindow is ComputeDateRange with a configurable look-ahead.
func ComputeDateRangeWindow(elements []*domain.Element, today time.Time, paddingDays, lookaheadDays int) DateRange {
	today = domain.CalendarDay(today)
	start := today
	end := domain.AddDays(today, lookaheadDays)
	for _, e := range elements {
		if e.StartDate != nil {
			if d := domain.CalendarDay(*e.StartDate); d.Before(start) {
				start = d
			}
		}
		if e.DueDate != nil {
			if d := domain.CalendarDay(*e.DueDate); d.After(end) {
				end = d
			}
		}
	}
	return DateRange{
		Start: domain.AddDays(start, -paddingDays),
		End:   domain.AddDays(end, paddingDays),
	}
}
