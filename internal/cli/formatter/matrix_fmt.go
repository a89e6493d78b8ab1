package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/workgrid/internal/matrix"
)

// FormatMatrix renders a matrix view. When attr is set only that attribute
// is shown in each cell; otherwise cells list every key=value pair.
func FormatMatrix(v matrix.View, attr string) string {
	if !v.Configured {
		return Dim("Matrix has no column source yet. Run: workgrid matrix configure TAB SOURCE_OBJECT") + "\n"
	}
	if len(v.Rows) == 0 || len(v.Columns) == 0 {
		return Dim("Matrix is empty: one of its objects has no elements.") + "\n"
	}

	headers := []string{""}
	for _, c := range v.Columns {
		headers = append(headers, Truncate(c.Title, 16))
	}
	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		row := []string{Bold(Truncate(r.Title, 24))}
		for _, c := range v.Columns {
			row = append(row, formatCell(v.Cell(r.ID, c.ID), attr))
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows)
}

func formatCell(cell matrix.CellData, attr string) string {
	if len(cell) == 0 {
		return Dim(emptyCell)
	}
	if attr != "" {
		v, ok := cell[attr]
		if !ok {
			return Dim(emptyCell)
		}
		return fmt.Sprint(v)
	}
	keys := make([]string, 0, len(cell))
	for k := range cell {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, cell[k])
	}
	return Truncate(strings.Join(parts, " "), 24)
}
