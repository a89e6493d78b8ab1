package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/gantt"
	"github.com/charmbracelet/lipgloss"
)

// GanttOptions tunes the text rendering of a chart.
type GanttOptions struct {
	LabelWidth int
	// Selected highlights one row, used by the interactive view.
	Selected string
	// MaxWidth clips the timeline to this many cells; 0 means no limit.
	MaxWidth int
}

const (
	barFill    = "█"
	todayMark  = "│"
	emptyCell  = "·"
	labelWidth = 24
)

// CellsPerDay is how many terminal cells one day takes at a zoom level.
func CellsPerDay(z gantt.Zoom) float64 {
	switch z {
	case gantt.ZoomWeek:
		return 1
	case gantt.ZoomMonth:
		return 1.0 / 3
	default:
		return 3
	}
}

// dayCell maps a pixel x on the chart to a terminal column.
func dayCell(x float64, c gantt.Chart) int {
	return int(math.Floor(x / c.ColumnWidth * CellsPerDay(c.Zoom)))
}

// FormatGantt renders a chart as one text line per element, bars colored
// by schedule risk.
func FormatGantt(c gantt.Chart, opts GanttOptions) string {
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = labelWidth
	}
	width := max(int(math.Ceil(float64(c.Range.Days())*CellsPerDay(c.Zoom))), 1)
	if opts.MaxWidth > 0 {
		width = min(width, opts.MaxWidth)
	}
	todayX := dayCell(float64(domain.DaysBetween(c.Range.Start, c.Today))*c.ColumnWidth, c)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		StyleHeader.Render("TIMELINE"), Dim(c.Range.String()), Dim("zoom: "+string(c.Zoom))))
	b.WriteString(strings.Repeat(" ", opts.LabelWidth+1) + axis(c, width) + "\n")

	if len(c.Rows) == 0 {
		b.WriteString(Dim("No elements.") + "\n")
		return b.String()
	}

	for _, row := range c.Rows {
		label := padRight(Truncate(row.Element.Title, opts.LabelWidth), opts.LabelWidth)
		if row.Element.ID == opts.Selected {
			label = lipgloss.NewStyle().Reverse(true).Render(label)
		}
		b.WriteString(label + " " + track(row, c, width, todayX))
		if row.HasBar {
			b.WriteString(" " + RiskColor(row.Risk.Level).Render(riskTag(row.Risk)))
		} else {
			b.WriteString(" " + Dim("no dates"))
		}
		b.WriteString("\n")
	}

	if n := len(c.Arrows); n > 0 {
		b.WriteString(Dim(fmt.Sprintf("%d dependenc%s drawn between scheduled rows", n, plural(n, "y", "ies"))) + "\n")
	}
	return b.String()
}

func track(row gantt.Row, c gantt.Chart, width, todayX int) string {
	cells := make([]string, width)
	for i := range cells {
		cells[i] = Dim(emptyCell)
	}
	if todayX >= 0 && todayX < width {
		cells[todayX] = StylePurple.Render(todayMark)
	}
	if row.HasBar {
		from := dayCell(row.Geometry.Left, c)
		to := max(dayCell(row.Geometry.Right(), c), from+1)
		style := RiskColor(row.Risk.Level)
		for i := max(from, 0); i < to && i < width; i++ {
			cells[i] = style.Render(barFill)
		}
	}
	return strings.Join(cells, "")
}

func riskTag(r gantt.RiskResult) string {
	if r.DaysLeft == nil {
		return ""
	}
	switch d := *r.DaysLeft; {
	case d < 0:
		return fmt.Sprintf("%dd late", -d)
	case d == 0:
		return "due today"
	default:
		return fmt.Sprintf("%dd left", d)
	}
}

// axis labels the timeline with a date every few cells.
func axis(c gantt.Chart, width int) string {
	line := []rune(strings.Repeat(" ", width))
	step := max(int(math.Ceil(7/CellsPerDay(c.Zoom))), 1)
	for day := 0; day < c.Range.Days(); day += step {
		pos := int(float64(day) * CellsPerDay(c.Zoom))
		label := []rune(domain.AddDays(c.Range.Start, day).Format("Jan 2"))
		if pos+len(label) > width {
			break
		}
		copy(line[pos:], label)
	}
	return Dim(string(line))
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}
