package service

import (
	"context"
	"time"

	"github.com/alexanderramin/workgrid/internal/columns"
	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/edgegraph"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/gantt"
	"github.com/alexanderramin/workgrid/internal/hierarchy"
	"github.com/alexanderramin/workgrid/internal/matrix"
	"github.com/alexanderramin/workgrid/internal/repository"
)

// SessionOptions configures the engines of a Session. Zero values fall
// back to each engine's defaults.
type SessionOptions struct {
	Gantt          gantt.Config
	StatusKeywords *columns.StatusKeywords
	MaxDepth       int
	Warnings       domain.WarningSink
	// UnitOfWork enables workspace imports; nil disables them.
	UnitOfWork db.UnitOfWork
}

// Session is one user's view of the workspace: a private entity cache with
// every engine and service bound to it.
type Session struct {
	Store *entitystore.Store

	Objects  ObjectService
	Elements ElementService
	Sheets   SheetService
	Tabs     TabService
	Import   ImportService

	Columns *columns.Engine
	Edges   *edgegraph.Graph
	Gantt   *gantt.Engine
	Matrix  *matrix.Engine

	observer UseCaseObserver
}

// NewSession wires a session over collab. Call Load before use.
func NewSession(collab repository.Collaborator, opts SessionOptions, observers ...UseCaseObserver) *Session {
	observer := useCaseObserverOrNoop(observers)
	store := entitystore.New(collab, opts.Warnings)

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = hierarchy.DefaultMaxDepth
	}
	var colOpts []columns.Option
	if opts.StatusKeywords != nil {
		colOpts = append(colOpts, columns.WithStatusKeywords(*opts.StatusKeywords))
	}
	graph := edgegraph.New(store)

	s := &Session{
		Store:    store,
		Objects:  NewObjectService(store, hierarchy.Builder{MaxDepth: maxDepth, Sink: store}, observer),
		Elements: NewElementService(store, graph, observer),
		Sheets:   NewSheetService(store, observer),
		Tabs:     NewTabService(store, observer),
		Columns:  columns.New(store, colOpts...),
		Edges:    graph,
		Gantt:    gantt.New(store, opts.Gantt),
		Matrix:   matrix.New(store),
		observer: observer,
	}
	if opts.UnitOfWork != nil {
		s.Import = NewImportService(opts.UnitOfWork, store, observer)
	}
	return s
}

// Load fetches the whole workspace into the session cache.
func (s *Session) Load(ctx context.Context) (err error) {
	defer track(ctx, s.observer, "load-workspace", time.Now().UTC(), nil, &err)
	return s.Store.Load(ctx)
}

// Run executes an engine mutation as a named, observed use case. Engines
// write and reload on their own; Run only adds telemetry.
func (s *Session) Run(ctx context.Context, name string, fields map[string]any, fn func(ctx context.Context) error) (err error) {
	defer track(ctx, s.observer, name, time.Now().UTC(), fields, &err)
	return fn(ctx)
}

// Diagnostics returns the consistency warnings seen so far.
func (s *Session) Diagnostics() []domain.Warning {
	return s.Store.Diagnostics()
}
