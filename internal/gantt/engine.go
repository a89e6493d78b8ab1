package gantt

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

// Config holds the timeline policy knobs.
type Config struct {
	PaddingDays   int     `mapstructure:"padding_days"`
	LookaheadDays int     `mapstructure:"lookahead_days"`
	Zoom          string  `mapstructure:"zoom"`
	RowHeight     float64 `mapstructure:"row_height"`
}

// DefaultConfig returns the built-in timeline policy.
func DefaultConfig() Config {
	return Config{
		PaddingDays:   DefaultPaddingDays,
		LookaheadDays: DefaultLookaheadDays,
		Zoom:          string(ZoomDay),
		RowHeight:     DefaultRowHeight,
	}
}

// Row is one element on the chart. Geometry is meaningful only when HasBar.
type Row struct {
	Element  *domain.Element
	Geometry Geometry
	HasBar   bool
	Risk     RiskResult
}

// Chart is everything a renderer needs for one object's timeline.
type Chart struct {
	ObjectID    string
	Zoom        Zoom
	ColumnWidth float64
	RowHeight   float64
	Today       time.Time
	Range       DateRange
	Rows        []Row
	Arrows      []Arrow
}

// Engine binds the pure timeline functions to the entity store and owns
// the drag state of one session.
type Engine struct {
	store *entitystore.Store
	cfg   Config
	zoom  Zoom
	drag  *Drag

	// Dates shown for elements whose last drop has not been re-fetched yet.
	optimistic map[string]Drop
}

func New(store *entitystore.Store, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.PaddingDays < 0 {
		cfg.PaddingDays = def.PaddingDays
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = def.LookaheadDays
	}
	if cfg.RowHeight <= 0 {
		cfg.RowHeight = def.RowHeight
	}
	zoom, err := ParseZoom(cfg.Zoom)
	if err != nil {
		zoom = ZoomDay
	}
	return &Engine{
		store:      store,
		cfg:        cfg,
		zoom:       zoom,
		drag:       NewDrag(ColumnWidth(zoom)),
		optimistic: map[string]Drop{},
	}
}

func (e *Engine) Zoom() Zoom {
	return e.zoom
}

// SetZoom changes the zoom level. It is refused mid-drag because pixel
// deltas would be reinterpreted with a different column width.
func (e *Engine) SetZoom(z Zoom) error {
	if _, err := ParseZoom(string(z)); err != nil {
		return err
	}
	if e.drag.Dragging() {
		return domain.Invalid("zoom", "cannot change zoom while dragging")
	}
	e.zoom = z
	e.drag = NewDrag(ColumnWidth(z))
	return nil
}

// Chart lays out the elements of objectID as of today.
func (e *Engine) Chart(objectID string, today time.Time) Chart {
	elements := e.store.ElementsByObject(objectID)
	for _, el := range elements {
		e.applyPreview(el)
	}
	SortRows(elements)

	cw := ColumnWidth(e.zoom)
	r := ComputeDateRangeWindow(elements, today, e.cfg.PaddingDays, e.cfg.LookaheadDays)
	rows := make([]Row, len(elements))
	for i, el := range elements {
		g, ok := BarGeometry(el, r, cw)
		rows[i] = Row{Element: el, Geometry: g, HasBar: ok, Risk: Risk(el, today)}
	}
	return Chart{
		ObjectID:    objectID,
		Zoom:        e.zoom,
		ColumnWidth: cw,
		RowHeight:   e.cfg.RowHeight,
		Today:       domain.CalendarDay(today),
		Range:       r,
		Rows:        rows,
		Arrows:      Arrows(elements, e.store.Edges(), r, cw, e.cfg.RowHeight),
	}
}

// applyPreview overlays in-flight or unconfirmed dates onto el.
func (e *Engine) applyPreview(el *domain.Element) {
	if s, ok := e.drag.State(); ok && s.ElementID == el.ID {
		el.StartDate, el.DueDate = domain.DayPtr(s.CurrentStart), domain.DayPtr(s.CurrentEnd)
		return
	}
	if d, ok := e.optimistic[el.ID]; ok {
		el.StartDate, el.DueDate = domain.DayPtr(d.Start), domain.DayPtr(d.End)
	}
}

// PointerDown starts dragging elementID at pixel x. The drag starts from the
// stored dates, not from an unconfirmed preview.
func (e *Engine) PointerDown(kind DragKind, elementID string, x float64) error {
	el, ok := e.store.Element(elementID)
	if !ok {
		return domain.NotFound("element", elementID)
	}
	return e.drag.PointerDown(kind, el, x)
}

func (e *Engine) PointerMove(x float64) (DragState, bool) {
	return e.drag.PointerMove(x)
}

// Dragging reports whether a drag is in progress.
func (e *Engine) Dragging() bool {
	return e.drag.Dragging()
}

// Release ends the drag at x and persists the result as one partial element
// update. Nothing is written when the dates did not change. A failed write
// is returned as-is and the dropped dates stay visible until Refresh.
func (e *Engine) Release(ctx context.Context, x float64) (Drop, error) {
	drop, ok := e.drag.PointerUp(x)
	if !ok {
		return Drop{}, domain.Invalid("drag", "no drag in progress")
	}
	if !drop.Changed() {
		return drop, nil
	}
	e.optimistic[drop.ElementID] = drop
	if _, err := e.store.Collaborator().UpdateElement(ctx, drop.ElementID, drop.Patch); err != nil {
		return drop, fmt.Errorf("commit drag of %s: %w", drop.ElementID, err)
	}
	delete(e.optimistic, drop.ElementID)
	return drop, e.store.ReloadElements(ctx)
}

// Shift moves or resizes an element by whole days, as a drag of the
// matching pixel distance would.
func (e *Engine) Shift(ctx context.Context, elementID string, kind DragKind, days int) (Drop, error) {
	if err := e.PointerDown(kind, elementID, 0); err != nil {
		return Drop{}, err
	}
	return e.Release(ctx, float64(days)*ColumnWidth(e.zoom))
}

// Preview returns the dates currently shown for an element that has an
// in-flight drag or an unconfirmed drop.
func (e *Engine) Preview(elementID string) (start, end time.Time, ok bool) {
	if s, dragging := e.drag.State(); dragging && s.ElementID == elementID {
		return s.CurrentStart, s.CurrentEnd, true
	}
	if d, pending := e.optimistic[elementID]; pending {
		return d.Start, d.End, true
	}
	return time.Time{}, time.Time{}, false
}

// Refresh re-fetches elements and drops every unconfirmed preview.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.store.ReloadElements(ctx); err != nil {
		return err
	}
	e.optimistic = map[string]Drop{}
	return nil
}
