package gantt

import (
	"fmt"
	"math"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// DefaultRowHeight is the pixel height of one timeline row.
const DefaultRowHeight = 32.0

type Point struct {
	X, Y float64
}

// Arrow is one dependency connector, a cubic Bézier from the dependency's
// right edge to the dependent's left edge.
type Arrow struct {
	EdgeID  string
	FromID  string
	ToID    string
	From    Point
	Control [2]Point
	To      Point
}

// Path renders the arrow as an SVG path.
func (a Arrow) Path() string {
	return fmt.Sprintf("M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f",
		a.From.X, a.From.Y,
		a.Control[0].X, a.Control[0].Y,
		a.Control[1].X, a.Control[1].Y,
		a.To.X, a.To.Y)
}

// Arrows routes one arrow per depends_on edge whose endpoints are both rows
// with a bar. An edge A -> B means B depends on A. Anything else is skipped
// silently. rows gives the vertical order.
func Arrows(rows []*domain.Element, edges []domain.Edge, r DateRange, columnWidth, rowHeight float64) []Arrow {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	type placed struct {
		geo Geometry
		y   float64
	}
	layout := make(map[string]placed, len(rows))
	for i, e := range rows {
		if g, ok := BarGeometry(e, r, columnWidth); ok {
			layout[e.ID] = placed{geo: g, y: float64(i)*rowHeight + rowHeight/2}
		}
	}

	var out []Arrow
	for _, edge := range edges {
		if edge.Type != domain.EdgeDependsOn {
			continue
		}
		dep, ok := layout[edge.FromID]
		if !ok {
			continue
		}
		dependent, ok := layout[edge.ToID]
		if !ok {
			continue
		}
		from := Point{X: dep.geo.Right(), Y: dep.y}
		to := Point{X: dependent.geo.Left, Y: dependent.y}
		bend := math.Max(20, math.Abs(to.X-from.X)/2)
		out = append(out, Arrow{
			EdgeID:  edge.ID,
			FromID:  edge.FromID,
			ToID:    edge.ToID,
			From:    from,
			Control: [2]Point{{X: from.X + bend, Y: from.Y}, {X: to.X - bend, Y: to.Y}},
			To:      to,
		})
	}
	return out
}
