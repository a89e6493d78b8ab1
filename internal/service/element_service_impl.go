package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/edgegraph"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

type elementService struct {
	store    *entitystore.Store
	graph    *edgegraph.Graph
	observer UseCaseObserver
}

func NewElementService(store *entitystore.Store, graph *edgegraph.Graph, observers ...UseCaseObserver) ElementService {
	return &elementService{
		store:    store,
		graph:    graph,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *elementService) Create(ctx context.Context, e domain.Element) (created *domain.Element, err error) {
	fields := map[string]any{"object_id": e.ObjectID, "title": e.Title}
	defer track(ctx, s.observer, "create-element", time.Now().UTC(), fields, &err)

	if _, ok := s.store.Object(e.ObjectID); !ok {
		return nil, domain.NotFound("object", e.ObjectID)
	}
	if e.StartDate != nil {
		e.StartDate = domain.DayPtr(*e.StartDate)
	}
	if e.DueDate != nil {
		e.DueDate = domain.DayPtr(*e.DueDate)
	}
	created, err = s.store.Collaborator().CreateElement(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("creating element: %w", err)
	}
	fields["element_id"] = created.ID
	if err = s.store.ReloadElements(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *elementService) Get(id string) (*domain.Element, error) {
	e, ok := s.store.Element(id)
	if !ok {
		return nil, domain.NotFound("element", id)
	}
	return e, nil
}

func (s *elementService) ListByObject(objectID string) []*domain.Element {
	return s.store.ElementsByObject(objectID)
}

func (s *elementService) Update(ctx context.Context, id string, patch domain.ElementPatch) (updated *domain.Element, err error) {
	defer track(ctx, s.observer, "update-element", time.Now().UTC(), map[string]any{"element_id": id}, &err)

	if err = patch.Validate(); err != nil {
		return nil, err
	}
	if !s.store.HasElement(id) {
		return nil, domain.NotFound("element", id)
	}
	if patch.IsEmpty() {
		return s.Get(id)
	}
	updated, err = s.store.Collaborator().UpdateElement(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating element: %w", err)
	}
	if err = s.store.ReloadElements(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the element. Its edges and column values cascade, so both
// are re-fetched along with the elements.
func (s *elementService) Delete(ctx context.Context, id string) (err error) {
	defer track(ctx, s.observer, "delete-element", time.Now().UTC(), map[string]any{"element_id": id}, &err)

	el, ok := s.store.Element(id)
	if !ok {
		return domain.NotFound("element", id)
	}
	if err = s.store.Collaborator().DeleteElement(ctx, id); err != nil {
		return fmt.Errorf("deleting element: %w", err)
	}
	if err = s.store.ReloadElements(ctx); err != nil {
		return err
	}
	if err = s.store.ReloadEdges(ctx); err != nil {
		return err
	}
	return reloadObjectColumns(ctx, s.store, el.ObjectID)
}

func (s *elementService) AddSubelement(ctx context.Context, elementID, title string) (sub *domain.Subelement, err error) {
	defer track(ctx, s.observer, "add-subelement", time.Now().UTC(), map[string]any{"element_id": elementID}, &err)

	if title == "" {
		return nil, domain.Invalid("title", "must not be empty")
	}
	if !s.store.HasElement(elementID) {
		return nil, domain.NotFound("element", elementID)
	}
	sub, err = s.store.Collaborator().CreateSubelement(ctx, domain.SubelementPatch{ElementID: elementID, Title: title})
	if err != nil {
		return nil, fmt.Errorf("creating subelement: %w", err)
	}
	if err = s.store.ReloadElements(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *elementService) ToggleSubelement(ctx context.Context, elementID, subelementID string) (sub *domain.Subelement, err error) {
	fields := map[string]any{"element_id": elementID, "subelement_id": subelementID}
	defer track(ctx, s.observer, "toggle-subelement", time.Now().UTC(), fields, &err)

	el, ok := s.store.Element(elementID)
	if !ok {
		return nil, domain.NotFound("element", elementID)
	}
	var current *domain.Subelement
	for i := range el.Subelements {
		if el.Subelements[i].ID == subelementID {
			current = &el.Subelements[i]
			break
		}
	}
	if current == nil {
		return nil, domain.NotFound("subelement", subelementID)
	}
	sub, err = s.store.Collaborator().ToggleSubelementComplete(ctx, subelementID, !current.IsCompleted)
	if err != nil {
		return nil, fmt.Errorf("toggling subelement: %w", err)
	}
	fields["completed"] = sub.IsCompleted
	if err = s.store.ReloadElements(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *elementService) Blockers(id string) []*domain.Element {
	edges := s.graph.Blockers(id, func(e *domain.Element) bool { return e.Status.IsTerminal() })
	out := make([]*domain.Element, 0, len(edges))
	for _, e := range edges {
		if el, ok := s.store.Element(e.FromID); ok {
			out = append(out, el)
		}
	}
	return out
}

// reloadObjectColumns re-fetches the object-level schema and every sheet
// schema of objectID.
func reloadObjectColumns(ctx context.Context, store *entitystore.Store, objectID string) error {
	if err := store.ReloadColumns(ctx, domain.ColumnScope{ObjectID: objectID}); err != nil {
		return err
	}
	for _, sh := range store.Sheets(objectID) {
		if err := store.ReloadColumns(ctx, domain.ColumnScope{ObjectID: objectID, SheetID: domain.StrPtr(sh.ID)}); err != nil {
			return err
		}
	}
	return nil
}
