package gantt

import (
	"math"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
)

type DragKind string

const (
	DragMove        DragKind = "move"
	DragResizeStart DragKind = "resize-start"
	DragResizeEnd   DragKind = "resize-end"
)

// ParseDragKind validates a drag kind name.
func ParseDragKind(s string) (DragKind, error) {
	switch k := DragKind(s); k {
	case DragMove, DragResizeStart, DragResizeEnd:
		return k, nil
	}
	return "", domain.Invalid("kind", "unknown drag kind %q", s)
}

// DragState is the snapshot taken on pointer-down plus the dates computed
// from the latest pointer position.
type DragState struct {
	Kind          DragKind
	ElementID     string
	StartX        float64
	OriginalStart time.Time
	OriginalEnd   time.Time
	CurrentStart  time.Time
	CurrentEnd    time.Time

	// The element's stored fields, to tell which ones a commit changes.
	storedStart *time.Time
	storedDue   *time.Time
}

// Drop is what a pointer-up produces: the final dates and the element
// patch that persists them. Patch is empty when nothing moved.
type Drop struct {
	ElementID string
	Start     time.Time
	End       time.Time
	Patch     domain.ElementPatch
}

// Changed reports whether the drop needs a mutation.
func (d Drop) Changed() bool {
	return !d.Patch.IsEmpty()
}

// Drag is the idle/dragging state machine. It is driven by PointerDown,
// PointerMove and PointerUp and knows nothing about rendering.
type Drag struct {
	columnWidth float64
	state       *DragState
}

func NewDrag(columnWidth float64) *Drag {
	if columnWidth <= 0 {
		columnWidth = ColumnWidth(ZoomDay)
	}
	return &Drag{columnWidth: columnWidth}
}

// Dragging reports whether a drag is in progress.
func (d *Drag) Dragging() bool {
	return d.state != nil
}

// State returns a copy of the in-flight drag.
func (d *Drag) State() (DragState, bool) {
	if d.state == nil {
		return DragState{}, false
	}
	return *d.state, true
}

// PointerDown enters the dragging state. Elements without dates have no
// bar and cannot be dragged.
func (d *Drag) PointerDown(kind DragKind, e *domain.Element, x float64) error {
	if d.state != nil {
		return domain.Invalid("drag", "a drag of %s is already in progress", d.state.ElementID)
	}
	if _, err := ParseDragKind(string(kind)); err != nil {
		return err
	}
	start, end, ok := EffectiveDates(e)
	if !ok {
		return domain.Invalid("drag", "element %s has no dates to drag", e.ID)
	}
	d.state = &DragState{
		Kind:          kind,
		ElementID:     e.ID,
		StartX:        x,
		OriginalStart: start,
		OriginalEnd:   end,
		CurrentStart:  start,
		CurrentEnd:    end,
		storedStart:   copyTime(e.StartDate),
		storedDue:     copyTime(e.DueDate),
	}
	return nil
}

// PointerMove recomputes the in-flight dates. It is a no-op when idle.
func (d *Drag) PointerMove(x float64) (DragState, bool) {
	if d.state == nil {
		return DragState{}, false
	}
	d.state.CurrentStart, d.state.CurrentEnd = d.datesAt(x)
	return *d.state, true
}

// PointerUp leaves the dragging state and returns the final dates computed
// from the release position x. Releasing anywhere commits; there is no
// cancel gesture.
func (d *Drag) PointerUp(x float64) (Drop, bool) {
	if d.state == nil {
		return Drop{}, false
	}
	start, end := d.datesAt(x)
	s := d.state
	d.state = nil
	drop := Drop{ElementID: s.ElementID, Start: start, End: end}
	if start.Equal(s.OriginalStart) && end.Equal(s.OriginalEnd) {
		return drop, true
	}
	if !domain.SameDay(&start, s.storedStart) {
		drop.Patch.StartDate = domain.SetDate(start)
	}
	if !domain.SameDay(&end, s.storedDue) {
		drop.Patch.DueDate = domain.SetDate(end)
	}
	return drop, true
}

// DayDelta converts a pixel delta into whole days.
func (d *Drag) DayDelta(dx float64) int {
	return int(math.Round(dx / d.columnWidth))
}

func (d *Drag) datesAt(x float64) (time.Time, time.Time) {
	s := d.state
	delta := d.DayDelta(x - s.StartX)
	start, end := s.OriginalStart, s.OriginalEnd
	if delta == 0 {
		return start, end
	}
	switch s.Kind {
	case DragMove:
		start = domain.AddDays(start, delta)
		end = domain.AddDays(end, delta)
	case DragResizeStart:
		start = domain.AddDays(start, delta)
		if start.After(end) {
			start = end
		}
	case DragResizeEnd:
		end = domain.AddDays(end, delta)
		if end.Before(start) {
			end = start
		}
	}
	return start, end
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
