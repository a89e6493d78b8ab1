package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title string
	// Last records, for each ancestor level and then this line, whether the
	// node is the last of its siblings. Its length is the depth plus one.
	Last   []bool
	Status string
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

func (it TreeItem) prefix() string {
	if len(it.Last) <= 1 {
		return ""
	}
	var b strings.Builder
	for _, last := range it.Last[1 : len(it.Last)-1] {
		if last {
			b.WriteString(treeBlank)
		} else {
			b.WriteString(treePipe)
		}
	}
	if it.Last[len(it.Last)-1] {
		b.WriteString(treeCorner)
	} else {
		b.WriteString(treeBranch)
	}
	return b.String()
}

// RenderTree renders items with box-drawing connectors. Done items get a
// green ✔ prefix, in-progress items an amber ▶, and detail badges are
// right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	widest := 0
	for i, item := range items {
		title := item.Title
		marker := ""
		switch domain.ElementStatus(strings.ToLower(item.Status)) {
		case domain.StatusDone, domain.StatusCancelled:
			marker = StyleGreen.Render("✔ ")
			title = Dim(title)
		case domain.StatusInProgress:
			marker = StyleYellowBold.Render("▶ ")
			title = StyleYellowBold.Render(title)
		}
		contents[i] = Dim(item.prefix()) + marker + title
		widest = max(widest, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(contents[i])
		if item.Detail != "" {
			pad := widest - lipgloss.Width(contents[i])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ObjectTreeItems flattens a built object forest into tree lines. Elements
// are listed under their object, after its child objects, when withElements
// is set.
func ObjectTreeItems(roots []*domain.Object, withElements bool) []TreeItem {
	var items []TreeItem
	var walk func(o *domain.Object, last []bool)
	walk = func(o *domain.Object, last []bool) {
		detail := ShortID(o.ID)
		if n := len(o.Elements); n > 0 {
			detail = fmt.Sprintf("%s · %d el", detail, n)
		}
		items = append(items, TreeItem{
			Title:  Swatch(o.Color) + " " + Bold(o.Name),
			Last:   last,
			Detail: detail,
		})

		total := len(o.Children)
		if withElements {
			total += len(o.Elements)
		}
		i := 0
		for _, c := range o.Children {
			i++
			walk(c, appendLast(last, i == total))
		}
		if !withElements {
			return
		}
		for _, e := range o.Elements {
			i++
			items = append(items, TreeItem{
				Title:  e.Title,
				Last:   appendLast(last, i == total),
				Status: string(e.Status),
				Detail: ShortID(e.ID),
			})
		}
	}
	for i, r := range roots {
		walk(r, []bool{i == len(roots)-1})
	}
	return items
}

func appendLast(last []bool, isLast bool) []bool {
	out := make([]bool, len(last), len(last)+1)
	copy(out, last)
	return append(out, isLast)
}

// FormatObjectTree renders the forest, or a hint when it is empty.
func FormatObjectTree(roots []*domain.Object, withElements bool) string {
	if len(roots) == 0 {
		return Dim("No objects yet. Create one with: workgrid object add NAME") + "\n"
	}
	return RenderTree(ObjectTreeItems(roots, withElements))
}

// FormatBreadcrumb renders an ancestor chain as "Root › Child › Leaf".
func FormatBreadcrumb(chain []*domain.Object) string {
	parts := make([]string, len(chain))
	for i, o := range chain {
		if i == len(chain)-1 {
			parts[i] = Bold(o.Name)
		} else {
			parts[i] = o.Name
		}
	}
	return strings.Join(parts, Dim(" › "))
}
