package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// shortIDLen is how many leading characters of a UUID are shown in lists.
const shortIDLen = 8

// ShortID abbreviates an id for display. The CLI accepts any unique prefix.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly distance from now to t.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueStyled renders a due date with urgency coloring relative to today.
// Closed elements are never colored.
func DueStyled(due *time.Time, status domain.ElementStatus, today time.Time) string {
	if due == nil {
		return Dim("—")
	}
	text := domain.FormatDay(*due)
	if status.IsTerminal() {
		return Dim(text)
	}
	days := domain.DaysBetween(domain.CalendarDay(today), *due)
	switch {
	case days < 0:
		return StyleRed.Render(text + " (" + RelativeDateFrom(*due, domain.CalendarDay(today)) + ")")
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// DateOrDash formats an optional calendar day.
func DateOrDash(d *time.Time) string {
	if d == nil {
		return Dim("—")
	}
	return domain.FormatDay(*d)
}

// Truncate shortens s to width visible characters, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
