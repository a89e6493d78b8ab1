package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/importer"
	"github.com/alexanderramin/workgrid/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	store    *entitystore.Store
	observer UseCaseObserver
}

// NewImportService imports seed files in one transaction and then reloads
// store. store may be nil when no session needs refreshing.
func NewImportService(uow db.UnitOfWork, store *entitystore.Store, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		store:    store,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportWorkspace(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema, filePath)
}

func (s *importService) ImportWorkspaceFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema, "")
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema, source string) (result *ImportResult, err error) {
	fields := map[string]any{}
	if source != "" {
		fields["file"] = source
	}
	defer track(ctx, s.observer, "import-workspace", time.Now().UTC(), fields, &err)

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	ws, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return persistWorkspace(ctx, repository.NewTxStore(tx), ws)
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{
		RootObjects:  ws.Roots(),
		ObjectCount:  len(ws.Objects),
		ElementCount: len(ws.Elements),
		ColumnCount:  len(ws.Columns),
		EdgeCount:    len(ws.Edges),
		TabCount:     len(ws.Tabs),
	}
	fields["object_count"] = result.ObjectCount
	fields["element_count"] = result.ElementCount
	fields["edge_count"] = result.EdgeCount

	if s.store != nil {
		if err = s.store.Load(ctx); err != nil {
			return nil, fmt.Errorf("reloading after import: %w", err)
		}
	}
	return result, nil
}

func persistWorkspace(ctx context.Context, store repository.Collaborator, ws *importer.Workspace) error {
	for _, o := range ws.Objects {
		if _, err := store.CreateObject(ctx, *o); err != nil {
			return fmt.Errorf("creating object %q: %w", o.Name, err)
		}
	}
	for _, sh := range ws.Sheets {
		if _, err := store.CreateSheet(ctx, *sh); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sh.Name, err)
		}
	}
	for _, c := range ws.Columns {
		if _, err := store.CreateCustomColumn(ctx, *c); err != nil {
			return fmt.Errorf("creating column %q: %w", c.Name, err)
		}
	}
	for _, e := range ws.Elements {
		if _, err := store.CreateElement(ctx, *e); err != nil {
			return fmt.Errorf("creating element %q: %w", e.Title, err)
		}
	}
	for _, v := range ws.Values {
		if _, err := store.SetCustomColumnValue(ctx, v.ColumnID, v.ElementID, v.Value); err != nil {
			return fmt.Errorf("setting column value: %w", err)
		}
	}
	for _, e := range ws.Edges {
		if _, err := store.CreateEdge(ctx, e); err != nil {
			return fmt.Errorf("creating edge: %w", err)
		}
	}
	for _, t := range ws.Tabs {
		if _, err := store.CreateTab(ctx, *t); err != nil {
			return fmt.Errorf("creating tab %q: %w", t.Name, err)
		}
	}
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
