package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/hierarchy"
)

type objectService struct {
	store    *entitystore.Store
	builder  hierarchy.Builder
	observer UseCaseObserver
}

func NewObjectService(store *entitystore.Store, builder hierarchy.Builder, observers ...UseCaseObserver) ObjectService {
	return &objectService{
		store:    store,
		builder:  builder,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *objectService) Create(ctx context.Context, o domain.Object) (created *domain.Object, err error) {
	defer track(ctx, s.observer, "create-object", time.Now().UTC(), map[string]any{"name": o.Name}, &err)

	if o.Name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if !o.IsRoot() {
		if _, ok := s.store.Object(*o.ParentID); !ok {
			return nil, domain.NotFound("object", *o.ParentID)
		}
	}
	created, err = s.store.Collaborator().CreateObject(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}
	if err = s.store.ReloadObjects(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *objectService) Get(id string) (*domain.Object, error) {
	o, ok := s.store.Object(id)
	if !ok {
		return nil, domain.NotFound("object", id)
	}
	return o, nil
}

func (s *objectService) Tree() []*domain.Object {
	tree := s.builder.BuildTree(s.store.Objects())
	hierarchy.AttachElements(tree, s.store.Elements())
	return tree
}

func (s *objectService) Breadcrumb(id string) []*domain.Object {
	o, ok := s.store.Object(id)
	if !ok {
		return nil
	}
	return append(hierarchy.Ancestors(s.store.Objects(), id), o)
}

func (s *objectService) Subtree(id string) ([]*domain.Object, error) {
	if _, ok := s.store.Object(id); !ok {
		return nil, domain.NotFound("object", id)
	}
	for _, root := range hierarchy.Flatten(s.builder.BuildTree(s.store.Objects())) {
		if root.ID == id {
			return hierarchy.Flatten([]*domain.Object{root}), nil
		}
	}
	// Dropped by the builder (cyclic or too deep): only the node itself.
	o, _ := s.store.Object(id)
	return []*domain.Object{o}, nil
}

func (s *objectService) Update(ctx context.Context, id string, patch domain.ObjectPatch) (updated *domain.Object, err error) {
	fields := map[string]any{"object_id": id}
	defer track(ctx, s.observer, "update-object", time.Now().UTC(), fields, &err)

	if patch.ParentID != nil && *patch.ParentID != "" {
		if *patch.ParentID == id {
			return nil, domain.Invalid("parent_id", "object cannot be its own parent")
		}
		if _, ok := s.store.Object(*patch.ParentID); !ok {
			return nil, domain.NotFound("object", *patch.ParentID)
		}
		fields["parent_id"] = *patch.ParentID
	}
	updated, err = s.store.Collaborator().UpdateObject(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating object: %w", err)
	}
	if err = s.store.ReloadObjects(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete cascades in the store, so every cached slice may be stale
// afterwards and the whole workspace is re-fetched.
func (s *objectService) Delete(ctx context.Context, id string) (err error) {
	fields := map[string]any{"object_id": id}
	defer track(ctx, s.observer, "delete-object", time.Now().UTC(), fields, &err)

	subtree, err := s.Subtree(id)
	if err != nil {
		return err
	}
	fields["cascade_objects"] = len(subtree)
	if err = s.store.Collaborator().DeleteObject(ctx, id); err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return s.store.Load(ctx)
}
