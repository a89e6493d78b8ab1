// Package matrix renders a tab as a grid of this object's elements against
// another object's elements, storing cell payloads on edges between them.
package matrix

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

// ConfigKeySource is the tab config key naming the column source object.
const ConfigKeySource = "columnSourceObjectId"

// ActionConfigure is the only action an unconfigured matrix offers.
const ActionConfigure = "configure"

// Config is the matrix view's slice of the tab config.
type Config struct {
	ColumnSourceObjectID string
}

// Configured reports whether a column source has been chosen.
func (c Config) Configured() bool {
	return c.ColumnSourceObjectID != ""
}

// ParseConfig reads the matrix settings out of a tab's opaque config.
func ParseConfig(tab *domain.Tab) Config {
	if tab == nil || tab.Config == nil {
		return Config{}
	}
	s, _ := tab.Config[ConfigKeySource].(string)
	return Config{ColumnSourceObjectID: s}
}

type CellKey struct {
	RowID string
	ColID string
}

// CellData is a cell's attribute bag.
type CellData map[string]any

type View struct {
	TabID      string
	ObjectID   string
	Configured bool
	Actions    []string
	Config     Config
	Rows       []*domain.Element
	Columns    []*domain.Element
	Cells      map[CellKey]CellData
}

// Cell returns the payload at (rowID, colID), or an empty bag.
func (v View) Cell(rowID, colID string) CellData {
	if c, ok := v.Cells[CellKey{RowID: rowID, ColID: colID}]; ok {
		return c
	}
	return CellData{}
}

type Engine struct {
	store *entitystore.Store
}

func New(store *entitystore.Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) matrixTab(tabID string) (*domain.Tab, error) {
	tab, ok := e.store.Tab(tabID)
	if !ok {
		return nil, domain.NotFound("tab", tabID)
	}
	if tab.Kind != domain.TabMatrix {
		return nil, domain.Invalid("tab", "%q is a %s tab, not a matrix", tab.Name, tab.Kind)
	}
	return tab, nil
}

// Configure chooses the object whose elements become the columns. Other
// config keys are preserved.
func (e *Engine) Configure(ctx context.Context, tabID, sourceObjectID string) (*domain.Tab, error) {
	tab, err := e.matrixTab(tabID)
	if err != nil {
		return nil, err
	}
	if _, ok := e.store.Object(sourceObjectID); !ok {
		return nil, domain.NotFound("object", sourceObjectID)
	}
	cfg := domain.CloneJSONMap(tab.Config)
	if cfg == nil {
		cfg = map[string]any{}
	}
	cfg[ConfigKeySource] = sourceObjectID

	updated, err := e.store.Collaborator().UpdateTab(ctx, tabID, domain.TabPatch{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("configure matrix %s: %w", tabID, err)
	}
	if err := e.store.ReloadTabs(ctx, tab.ObjectID); err != nil {
		return nil, err
	}
	return updated, nil
}

// View assembles the grid. Cells are fetched fresh on every call; an
// unconfigured tab fetches nothing and only offers configuration.
func (e *Engine) View(ctx context.Context, tabID string) (View, error) {
	tab, err := e.matrixTab(tabID)
	if err != nil {
		return View{}, err
	}
	cfg := ParseConfig(tab)
	v := View{TabID: tab.ID, ObjectID: tab.ObjectID, Config: cfg}
	if !cfg.Configured() {
		v.Actions = []string{ActionConfigure}
		return v, nil
	}
	if _, ok := e.store.Object(cfg.ColumnSourceObjectID); !ok {
		e.store.Warn(domain.Warning{
			Kind:    domain.WarnUnresolvedEdge,
			Subject: tab.ID,
			Detail:  fmt.Sprintf("column source object %s no longer exists", cfg.ColumnSourceObjectID),
		})
		v.Actions = []string{ActionConfigure}
		return v, nil
	}

	v.Configured = true
	v.Rows = e.store.ElementsByObject(tab.ObjectID)
	v.Columns = e.store.ElementsByObject(cfg.ColumnSourceObjectID)
	if v.Cells, err = e.CellsFor(ctx, v.Rows, v.Columns); err != nil {
		return View{}, err
	}
	return v, nil
}

// CellsFor fetches the cells at the intersections of rows and cols.
// Pairs without a cell are absent from the map.
func (e *Engine) CellsFor(ctx context.Context, rows, cols []*domain.Element) (map[CellKey]CellData, error) {
	cells := map[CellKey]CellData{}
	if len(rows) == 0 || len(cols) == 0 {
		return cells, nil
	}
	edges, err := e.store.Collaborator().GetIntersections(ctx, elementIDs(rows), elementIDs(cols))
	if err != nil {
		return nil, fmt.Errorf("fetch matrix cells: %w", err)
	}
	for _, edge := range edges {
		data := CellData(domain.CloneJSONMap(edge.Attributes))
		if data == nil {
			data = CellData{}
		}
		cells[CellKey{RowID: edge.FromID, ColID: edge.ToID}] = data
	}
	return cells, nil
}

// SetCell merges patch into the cell at (rowID, colID), creating it when
// needed. The store stamps updatedAt. A nil value in patch removes that key.
func (e *Engine) SetCell(ctx context.Context, rowID, colID string, patch map[string]any) (CellData, error) {
	if rowID == colID {
		return nil, domain.Invalid("cell", "row and column must be different elements")
	}
	for _, id := range []string{rowID, colID} {
		if !e.store.HasElement(id) {
			return nil, domain.NotFound("element", id)
		}
	}
	edge, err := e.store.Collaborator().UpsertIntersection(ctx, rowID, colID, patch)
	if err != nil {
		return nil, fmt.Errorf("set matrix cell: %w", err)
	}
	if err := e.store.ReloadEdges(ctx); err != nil {
		return nil, err
	}
	return CellData(domain.CloneJSONMap(edge.Attributes)), nil
}

func elementIDs(elements []*domain.Element) []string {
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID
	}
	return ids
}
