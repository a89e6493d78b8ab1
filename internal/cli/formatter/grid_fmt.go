package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// CellSource resolves grid cells. *columns.Engine satisfies it.
type CellSource interface {
	GetValue(columnID, elementID string) (any, bool)
	OptionColor(c *domain.CustomColumn, value string) string
}

// maxCellWidth caps free-text cells in the grid.
const maxCellWidth = 32

// FormatValue renders one cell according to its column type. Option values
// are drawn as chips in the option color.
func FormatValue(c *domain.CustomColumn, v any, src CellSource) string {
	if v == nil {
		return ""
	}
	switch c.Type {
	case domain.ColumnSelect, domain.ColumnStatus:
		s := fmt.Sprint(v)
		return Chip(s, src.OptionColor(c, s))
	case domain.ColumnMultiSelect:
		vals := stringList(v)
		chips := make([]string, len(vals))
		for i, s := range vals {
			chips[i] = Chip(s, src.OptionColor(c, s))
		}
		return strings.Join(chips, " ")
	case domain.ColumnPerson, domain.ColumnRelation:
		vals := stringList(v)
		for i, s := range vals {
			vals[i] = "@" + ShortID(s)
		}
		return strings.Join(vals, ", ")
	case domain.ColumnCheckbox:
		if b, _ := v.(bool); b {
			return StyleGreen.Render("☑")
		}
		return Dim("☐")
	case domain.ColumnBudget:
		if f, ok := v.(float64); ok {
			return formatMoney(f)
		}
	case domain.ColumnProgress:
		if f, ok := v.(float64); ok {
			return RenderProgress(f/100, 6)
		}
	case domain.ColumnNumber:
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case domain.ColumnFiles:
		if list, ok := v.([]any); ok {
			return fmt.Sprintf("%d file(s)", len(list))
		}
	}
	return Truncate(fmt.Sprint(v), maxCellWidth)
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

func formatMoney(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	whole := strconv.FormatFloat(f, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "00" {
		out += "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatGrid renders elements as rows against the given columns.
func FormatGrid(cols []*domain.CustomColumn, elements []*domain.Element, src CellSource) string {
	if len(elements) == 0 {
		return Dim("No elements.") + "\n"
	}
	headers := []string{"ID", "Title"}
	right := map[int]bool{}
	for i, c := range cols {
		headers = append(headers, c.Name)
		switch c.Type {
		case domain.ColumnNumber, domain.ColumnBudget:
			right[i+2] = true
		}
	}

	rows := make([][]string, 0, len(elements))
	for _, e := range elements {
		row := []string{Dim(ShortID(e.ID)), Truncate(e.Title, maxCellWidth)}
		for _, c := range cols {
			v, ok := src.GetValue(c.ID, e.ID)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, FormatValue(c, v, src))
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows, RightAlign: right}.Render()
}

// FormatColumns lists a scope's schema, hidden columns included.
func FormatColumns(cols []*domain.CustomColumn) string {
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		kind := "custom"
		if c.IsBuiltIn() {
			kind = "built-in"
		}
		visible := StyleGreen.Render("shown")
		if !c.IsVisible {
			visible = Dim("hidden")
		}
		opts := make([]string, len(c.Options))
		for i, o := range c.Options {
			opts[i] = Chip(o.Value, o.Color)
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Position), c.Name, string(c.Type), kind, visible,
			Dim(c.ID), strings.Join(opts, " "),
		})
	}
	return RenderTable([]string{"#", "NAME", "TYPE", "KIND", "VISIBLE", "ID", "OPTIONS"}, rows)
}
