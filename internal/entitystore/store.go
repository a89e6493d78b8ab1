// Package entitystore holds the per-session, normalized in-memory copy of
// the workspace. Engines read snapshots from it, write through the
// collaborator, then ask for the affected slice to be re-fetched.
package entitystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/repository"
)

// DiagnosticsLimit bounds how many warnings Diagnostics keeps.
const DiagnosticsLimit = 200

// Store caches objects, elements, edges, column schemas, sheets and tabs.
// Accessors return copies; nothing handed out aliases internal state.
type Store struct {
	collab repository.Collaborator
	sink   domain.WarningSink

	mu           sync.RWMutex
	objects      []*domain.Object
	elements     []*domain.Element
	elementIdx   map[string]int
	edges        []domain.Edge
	edgesVersion uint64
	columns      map[string][]*domain.CustomColumn
	sheets       map[string][]*domain.Sheet
	tabs         map[string][]*domain.Tab
	loaded       bool

	diagMu      sync.Mutex
	diagnostics []domain.Warning
}

// New creates an empty store. Call Load before reading.
func New(collab repository.Collaborator, sink domain.WarningSink) *Store {
	return &Store{
		collab:     collab,
		sink:       domain.WarningSinkOrNoop(sink),
		elementIdx: map[string]int{},
		columns:    map[string][]*domain.CustomColumn{},
		sheets:     map[string][]*domain.Sheet{},
		tabs:       map[string][]*domain.Tab{},
	}
}

// Collaborator returns the object store mutations are written to.
func (s *Store) Collaborator() repository.Collaborator {
	return s.collab
}

// Load fetches the whole workspace. The new state replaces the old one only
// when every fetch succeeded.
func (s *Store) Load(ctx context.Context) error {
	objects, err := s.collab.FetchObjects(ctx)
	if err != nil {
		return fmt.Errorf("loading objects: %w", err)
	}
	elements, err := s.collab.FetchElements(ctx, nil)
	if err != nil {
		return fmt.Errorf("loading elements: %w", err)
	}
	edges, err := s.collab.FetchEdges(ctx)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	columns := map[string][]*domain.CustomColumn{}
	sheets := map[string][]*domain.Sheet{}
	tabs := map[string][]*domain.Tab{}
	for _, o := range objects {
		objSheets, err := s.collab.FetchSheets(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("loading sheets of %s: %w", o.ID, err)
		}
		sheets[o.ID] = objSheets

		objTabs, err := s.collab.FetchTabs(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("loading tabs of %s: %w", o.ID, err)
		}
		tabs[o.ID] = objTabs

		scopes := []domain.ColumnScope{{ObjectID: o.ID}}
		for _, sh := range objSheets {
			scopes = append(scopes, domain.ColumnScope{ObjectID: o.ID, SheetID: domain.StrPtr(sh.ID)})
		}
		for _, scope := range scopes {
			cols, err := s.collab.FetchCustomColumns(ctx, scope)
			if err != nil {
				return fmt.Errorf("loading columns of %s: %w", scope.Key(), err)
			}
			columns[scope.Key()] = cols
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = objects
	s.setElementsLocked(elements)
	s.edges = edges
	s.edgesVersion++
	s.columns = columns
	s.sheets = sheets
	s.tabs = tabs
	s.loaded = true
	return nil
}

// Loaded reports whether Load has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) ReloadObjects(ctx context.Context) error {
	objects, err := s.collab.FetchObjects(ctx)
	if err != nil {
		return fmt.Errorf("reloading objects: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = objects
	known := make(map[string]bool, len(objects))
	for _, o := range objects {
		known[o.ID] = true
	}
	// Cascaded deletes take their tabs and sheets with them.
	for id := range s.tabs {
		if !known[id] {
			delete(s.tabs, id)
		}
	}
	for id := range s.sheets {
		if !known[id] {
			delete(s.sheets, id)
		}
	}
	return nil
}

func (s *Store) ReloadElements(ctx context.Context) error {
	elements, err := s.collab.FetchElements(ctx, nil)
	if err != nil {
		return fmt.Errorf("reloading elements: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setElementsLocked(elements)
	return nil
}

// ReloadEdges re-fetches all edges and bumps EdgesVersion.
func (s *Store) ReloadEdges(ctx context.Context) error {
	edges, err := s.collab.FetchEdges(ctx)
	if err != nil {
		return fmt.Errorf("reloading edges: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = edges
	s.edgesVersion++
	return nil
}

func (s *Store) ReloadColumns(ctx context.Context, scope domain.ColumnScope) error {
	cols, err := s.collab.FetchCustomColumns(ctx, scope)
	if err != nil {
		return fmt.Errorf("reloading columns of %s: %w", scope.Key(), err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns[scope.Key()] = cols
	return nil
}

func (s *Store) ReloadTabs(ctx context.Context, objectID string) error {
	tabs, err := s.collab.FetchTabs(ctx, objectID)
	if err != nil {
		return fmt.Errorf("reloading tabs of %s: %w", objectID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[objectID] = tabs
	return nil
}

func (s *Store) ReloadSheets(ctx context.Context, objectID string) error {
	sheets, err := s.collab.FetchSheets(ctx, objectID)
	if err != nil {
		return fmt.Errorf("reloading sheets of %s: %w", objectID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[objectID] = sheets
	return nil
}

func (s *Store) setElementsLocked(elements []*domain.Element) {
	s.elements = elements
	s.elementIdx = make(map[string]int, len(elements))
	for i, e := range elements {
		s.elementIdx[e.ID] = i
	}
}

// Objects returns flat copies of all objects in store order.
func (s *Store) Objects() []*domain.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.ShallowCopy()
	}
	return out
}

// Object returns a copy of one object.
func (s *Store) Object(id string) (*domain.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.objects {
		if o.ID == id {
			return o.ShallowCopy(), true
		}
	}
	return nil, false
}

func (s *Store) Elements() []*domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Element, len(s.elements))
	for i, e := range s.elements {
		out[i] = e.Clone()
	}
	return out
}

// ElementsByObject returns the elements owned by objectID in store order.
func (s *Store) ElementsByObject(objectID string) []*domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Element
	for _, e := range s.elements {
		if e.ObjectID == objectID {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) Element(id string) (*domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.elementIdx[id]
	if !ok {
		return nil, false
	}
	return s.elements[i].Clone(), true
}

// HasElement is Element without the copy.
func (s *Store) HasElement(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.elementIdx[id]
	return ok
}

func (s *Store) Edges() []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Clone()
	}
	return out
}

// EdgesVersion changes every time the edge collection is replaced.
func (s *Store) EdgesVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesVersion
}

// Columns returns the raw schema rows of one scope, built-in overrides
// included.
func (s *Store) Columns(scope domain.ColumnScope) []*domain.CustomColumn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cols := s.columns[scope.Key()]
	out := make([]*domain.CustomColumn, len(cols))
	for i, c := range cols {
		out[i] = c.Clone()
	}
	return out
}

// Column finds a column by id across every loaded scope.
func (s *Store) Column(id string) (*domain.CustomColumn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cols := range s.columns {
		for _, c := range cols {
			if c.ID == id {
				return c.Clone(), true
			}
		}
	}
	return nil, false
}

func (s *Store) Sheets(objectID string) []*domain.Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Sheet, len(s.sheets[objectID]))
	for i, sh := range s.sheets[objectID] {
		c := *sh
		out[i] = &c
	}
	return out
}

func (s *Store) Tabs(objectID string) []*domain.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Tab, len(s.tabs[objectID]))
	for i, t := range s.tabs[objectID] {
		out[i] = cloneTab(t)
	}
	return out
}

func (s *Store) Tab(id string) (*domain.Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tabs := range s.tabs {
		for _, t := range tabs {
			if t.ID == id {
				return cloneTab(t), true
			}
		}
	}
	return nil, false
}

func cloneTab(t *domain.Tab) *domain.Tab {
	c := *t
	c.Config = domain.CloneJSONMap(t.Config)
	return &c
}

// Warn forwards w to the sink and keeps it for Diagnostics.
func (s *Store) Warn(w domain.Warning) {
	s.diagMu.Lock()
	s.diagnostics = append(s.diagnostics, w)
	if over := len(s.diagnostics) - DiagnosticsLimit; over > 0 {
		s.diagnostics = append([]domain.Warning(nil), s.diagnostics[over:]...)
	}
	s.diagMu.Unlock()
	s.sink.Warn(w)
}

// Diagnostics returns the most recent warnings, oldest first.
func (s *Store) Diagnostics() []domain.Warning {
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	return append([]domain.Warning(nil), s.diagnostics...)
}
