package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/edgegraph"
)

// FormatElementList renders the compact element table of an object.
func FormatElementList(elements []*domain.Element, today time.Time) string {
	if len(elements) == 0 {
		return Dim("No elements.") + "\n"
	}
	rows := make([][]string, 0, len(elements))
	for _, e := range elements {
		rows = append(rows, []string{
			Dim(ShortID(e.ID)),
			Truncate(e.Title, 40),
			StatusPill(e.Status),
			PriorityBadge(e.Priority),
			DateOrDash(e.StartDate),
			DueStyled(e.DueDate, e.Status, today),
			ChecklistProgress(e.CompletedSubelements(), len(e.Subelements)),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "STATUS", "PRIORITY", "START", "DUE", "CHECKLIST"}, rows)
}

// ElementDetail is everything the element detail view shows.
type ElementDetail struct {
	Element  *domain.Element
	Path     []*domain.Object
	Edges    edgegraph.Adjacency
	Blockers []*domain.Element
	// Titles resolves edge endpoints to element titles.
	Titles func(id string) string
	Today  time.Time
	Width  int
}

// FormatElementDetail renders an element with its description as markdown.
func FormatElementDetail(d ElementDetail) string {
	e := d.Element
	var b strings.Builder

	if len(d.Path) > 0 {
		b.WriteString(FormatBreadcrumb(d.Path) + "\n\n")
	}
	b.WriteString(Bold(e.Title) + "  " + Dim(e.ID) + "\n")
	b.WriteString(fmt.Sprintf("%s   %s\n", StatusPill(e.Status), PriorityBadge(e.Priority)))
	b.WriteString(fmt.Sprintf("%s %s → %s\n", Dim("Schedule:"), DateOrDash(e.StartDate), DueStyled(e.DueDate, e.Status, d.Today)))
	if e.Section != nil && *e.Section != "" {
		b.WriteString(Dim("Section: ") + *e.Section + "\n")
	}
	if len(e.Assignees) > 0 {
		names := make([]string, len(e.Assignees))
		for i, a := range e.Assignees {
			names[i] = "@" + a.WorkerID
			if a.Role != "" {
				names[i] += Dim(" (" + a.Role + ")")
			}
		}
		b.WriteString(Dim("Assignees: ") + strings.Join(names, ", ") + "\n")
	}

	if desc := RenderMarkdown(e.Description, d.Width); desc != "" {
		b.WriteString("\n" + desc + "\n")
	}

	if len(e.Subelements) > 0 {
		b.WriteString("\n" + Header("Checklist") + "\n")
		for _, s := range e.Subelements {
			box := Dim("☐")
			title := s.Title
			if s.IsCompleted {
				box = StyleGreen.Render("☑")
				title = Dim(title)
			}
			b.WriteString(fmt.Sprintf("  %s %s  %s\n", box, title, Dim(ShortID(s.ID))))
		}
		b.WriteString("  " + ChecklistProgress(e.CompletedSubelements(), len(e.Subelements)) + "\n")
	}

	if len(d.Edges.Outgoing)+len(d.Edges.Incoming) > 0 {
		b.WriteString("\n" + Header("Links") + "\n")
		for _, edge := range d.Edges.Outgoing {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", StyleBlue.Render(string(edge.Type)), Dim("→"), edgeTitle(d, edge.ToID)))
		}
		for _, edge := range d.Edges.Incoming {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", edgeTitle(d, edge.FromID), Dim("→"), StyleBlue.Render(string(edge.Type))))
		}
	}

	if len(d.Blockers) > 0 {
		b.WriteString("\n" + StyleRed.Render(fmt.Sprintf("Blocked by %d open dependenc%s:", len(d.Blockers), plural(len(d.Blockers), "y", "ies"))) + "\n")
		for _, bl := range d.Blockers {
			b.WriteString(fmt.Sprintf("  %s %s\n", StatusPill(bl.Status), bl.Title))
		}
	}
	return b.String()
}

func edgeTitle(d ElementDetail, id string) string {
	if d.Titles != nil {
		if t := d.Titles(id); t != "" {
			return t
		}
	}
	return Dim(ShortID(id))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
