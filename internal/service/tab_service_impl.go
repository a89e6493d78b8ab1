package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

type tabService struct {
	store    *entitystore.Store
	observer UseCaseObserver
}

func NewTabService(store *entitystore.Store, observers ...UseCaseObserver) TabService {
	return &tabService{store: store, observer: useCaseObserverOrNoop(observers)}
}

func (s *tabService) List(objectID string) []*domain.Tab {
	return s.store.Tabs(objectID)
}

func (s *tabService) Get(id string) (*domain.Tab, error) {
	t, ok := s.store.Tab(id)
	if !ok {
		return nil, domain.NotFound("tab", id)
	}
	return t, nil
}

func (s *tabService) Create(ctx context.Context, t domain.Tab) (created *domain.Tab, err error) {
	fields := map[string]any{"object_id": t.ObjectID, "kind": string(t.Kind)}
	defer track(ctx, s.observer, "create-tab", time.Now().UTC(), fields, &err)

	if _, ok := s.store.Object(t.ObjectID); !ok {
		return nil, domain.NotFound("object", t.ObjectID)
	}
	if t.Kind == "" {
		t.Kind = domain.TabElements
	}
	if t.Config == nil {
		t.Config = map[string]any{}
	}
	if t.OrderIndex == 0 {
		t.OrderIndex = len(s.store.Tabs(t.ObjectID))
	}
	created, err = s.store.Collaborator().CreateTab(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("creating tab: %w", err)
	}
	if err = s.store.ReloadTabs(ctx, t.ObjectID); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *tabService) Update(ctx context.Context, id string, patch domain.TabPatch) (updated *domain.Tab, err error) {
	defer track(ctx, s.observer, "update-tab", time.Now().UTC(), map[string]any{"tab_id": id}, &err)

	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	updated, err = s.store.Collaborator().UpdateTab(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating tab: %w", err)
	}
	if err = s.store.ReloadTabs(ctx, current.ObjectID); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *tabService) Delete(ctx context.Context, id string) (err error) {
	defer track(ctx, s.observer, "delete-tab", time.Now().UTC(), map[string]any{"tab_id": id}, &err)

	current, err := s.Get(id)
	if err != nil {
		return err
	}
	if err = s.store.Collaborator().DeleteTab(ctx, id); err != nil {
		return fmt.Errorf("deleting tab: %w", err)
	}
	return s.store.ReloadTabs(ctx, current.ObjectID)
}

type sheetService struct {
	store    *entitystore.Store
	observer UseCaseObserver
}

func NewSheetService(store *entitystore.Store, observers ...UseCaseObserver) SheetService {
	return &sheetService{store: store, observer: useCaseObserverOrNoop(observers)}
}

func (s *sheetService) List(objectID string) []*domain.Sheet {
	return s.store.Sheets(objectID)
}

func (s *sheetService) Create(ctx context.Context, objectID, name string) (created *domain.Sheet, err error) {
	defer track(ctx, s.observer, "create-sheet", time.Now().UTC(), map[string]any{"object_id": objectID}, &err)

	if _, ok := s.store.Object(objectID); !ok {
		return nil, domain.NotFound("object", objectID)
	}
	created, err = s.store.Collaborator().CreateSheet(ctx, domain.Sheet{
		ObjectID:   objectID,
		Name:       name,
		OrderIndex: len(s.store.Sheets(objectID)),
	})
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	if err = s.store.ReloadSheets(ctx, objectID); err != nil {
		return nil, err
	}
	return created, nil
}

// Delete drops the sheet and its column schema. Elements on it fall back to
// the object-level schema.
func (s *sheetService) Delete(ctx context.Context, id string) (err error) {
	defer track(ctx, s.observer, "delete-sheet", time.Now().UTC(), map[string]any{"sheet_id": id}, &err)

	objectID, ok := s.owner(id)
	if !ok {
		return domain.NotFound("sheet", id)
	}
	if err = s.store.Collaborator().DeleteSheet(ctx, id); err != nil {
		return fmt.Errorf("deleting sheet: %w", err)
	}
	if err = s.store.ReloadSheets(ctx, objectID); err != nil {
		return err
	}
	if err = s.store.ReloadColumns(ctx, domain.ColumnScope{ObjectID: objectID, SheetID: domain.StrPtr(id)}); err != nil {
		return err
	}
	return s.store.ReloadElements(ctx)
}

func (s *sheetService) owner(sheetID string) (string, bool) {
	for _, o := range s.store.Objects() {
		for _, sh := range s.store.Sheets(o.ID) {
			if sh.ID == sheetID {
				return o.ID, true
			}
		}
	}
	return "", false
}
