package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░] 45%, green above two thirds,
// yellow above one third and red below.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// ChecklistProgress renders "done/total" with a compact bar, or an empty
// string for elements without subelements.
func ChecklistProgress(done, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d %s", done, total, RenderProgress(float64(done)/float64(total), 8))
}
