package gantt

import (
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// Geometry is a bar's horizontal placement in pixels.
type Geometry struct {
	Left  float64
	Width float64
}

// Right is the x of the bar's right edge.
func (g Geometry) Right() float64 {
	return g.Left + g.Width
}

// EffectiveDates returns the dates a bar is drawn with. A single date is
// used for both ends. ok is false when the element has no dates.
func EffectiveDates(e *domain.Element) (start, end time.Time, ok bool) {
	switch {
	case e.StartDate != nil && e.DueDate != nil:
		return domain.CalendarDay(*e.StartDate), domain.CalendarDay(*e.DueDate), true
	case e.StartDate != nil:
		d := domain.CalendarDay(*e.StartDate)
		return d, d, true
	case e.DueDate != nil:
		d := domain.CalendarDay(*e.DueDate)
		return d, d, true
	}
	return time.Time{}, time.Time{}, false
}

// BarGeometry places e on the timeline. It returns false only when the
// element has neither date. A due date before the start yields a one-day bar
// at the start.
func BarGeometry(e *domain.Element, r DateRange, columnWidth float64) (Geometry, bool) {
	start, end, ok := EffectiveDates(e)
	if !ok {
		return Geometry{}, false
	}
	return barFor(start, end, r, columnWidth), true
}

func barFor(start, end time.Time, r DateRange, columnWidth float64) Geometry {
	days := domain.DaysBetween(start, end)
	if days < 1 {
		days = 1
	}
	return Geometry{
		Left:  float64(domain.DaysBetween(r.Start, start)) * columnWidth,
		Width: float64(days) * columnWidth,
	}
}
