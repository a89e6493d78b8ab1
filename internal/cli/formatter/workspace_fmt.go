package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// FormatDiagnostics lists consistency warnings, oldest first.
func FormatDiagnostics(warnings []domain.Warning) string {
	if len(warnings) == 0 {
		return StyleGreen.Render("✔ No consistency warnings.") + "\n"
	}
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{StyleYellow.Render(string(w.Kind)), Dim(ShortID(w.Subject)), w.Detail})
	}
	return Header(fmt.Sprintf("%d warning%s", len(warnings), plural(len(warnings), "", "s"))) + "\n" +
		RenderTable([]string{"KIND", "SUBJECT", "DETAIL"}, rows)
}

// FormatTabs lists an object's tabs in order.
func FormatTabs(tabs []*domain.Tab) string {
	if len(tabs) == 0 {
		return Dim("No tabs.") + "\n"
	}
	rows := make([][]string, 0, len(tabs))
	for _, t := range tabs {
		rows = append(rows, []string{strconv.Itoa(t.OrderIndex), t.Name, StyleBlue.Render(string(t.Kind)), Dim(t.ID)})
	}
	return RenderTable([]string{"#", "NAME", "KIND", "ID"}, rows)
}

// FormatSheets lists an object's sheets in order.
func FormatSheets(sheets []*domain.Sheet) string {
	if len(sheets) == 0 {
		return Dim("No sheets.") + "\n"
	}
	rows := make([][]string, 0, len(sheets))
	for _, s := range sheets {
		rows = append(rows, []string{strconv.Itoa(s.OrderIndex), s.Name, Dim(s.ID)})
	}
	return RenderTable([]string{"#", "NAME", "ID"}, rows)
}

// FormatEdges lists edges with endpoint titles.
func FormatEdges(edges []domain.Edge, titleOf func(id string) string) string {
	if len(edges) == 0 {
		return Dim("No edges.") + "\n"
	}
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{Dim(ShortID(e.ID)), titleOf(e.FromID), StyleBlue.Render(string(e.Type)), titleOf(e.ToID)})
	}
	return RenderTable([]string{"ID", "FROM", "TYPE", "TO"}, rows)
}

// ImportSummary is the printable outcome of a workspace import.
type ImportSummary struct {
	Roots    []string
	Objects  int
	Elements int
	Columns  int
	Edges    int
	Tabs     int
}

func FormatImportSummary(s ImportSummary) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render("✔ Imported workspace") + "\n")
	if len(s.Roots) > 0 {
		b.WriteString(Dim("  roots: ") + strings.Join(s.Roots, ", ") + "\n")
	}
	b.WriteString(Dim(fmt.Sprintf("  %d objects · %d elements · %d columns · %d edges · %d tabs",
		s.Objects, s.Elements, s.Columns, s.Edges, s.Tabs)) + "\n")
	return b.String()
}
