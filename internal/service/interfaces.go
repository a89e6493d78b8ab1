package service

import (
	"context"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/importer"
)

type ObjectService interface {
	Create(ctx context.Context, o domain.Object) (*domain.Object, error)
	Get(id string) (*domain.Object, error)
	// Tree returns the object forest with elements attached.
	Tree() []*domain.Object
	// Breadcrumb returns the chain from the root down to and including id.
	Breadcrumb(id string) []*domain.Object
	Update(ctx context.Context, id string, patch domain.ObjectPatch) (*domain.Object, error)
	// Delete removes the object and its whole subtree.
	Delete(ctx context.Context, id string) error
	// Subtree returns id and all of its descendants, in pre-order.
	Subtree(id string) ([]*domain.Object, error)
}

type ElementService interface {
	Create(ctx context.Context, e domain.Element) (*domain.Element, error)
	Get(id string) (*domain.Element, error)
	ListByObject(objectID string) []*domain.Element
	Update(ctx context.Context, id string, patch domain.ElementPatch) (*domain.Element, error)
	Delete(ctx context.Context, id string) error
	AddSubelement(ctx context.Context, elementID, title string) (*domain.Subelement, error)
	ToggleSubelement(ctx context.Context, elementID, subelementID string) (*domain.Subelement, error)
	// Blockers returns the unfinished elements id depends on directly.
	Blockers(id string) []*domain.Element
}

type SheetService interface {
	List(objectID string) []*domain.Sheet
	Create(ctx context.Context, objectID, name string) (*domain.Sheet, error)
	Delete(ctx context.Context, id string) error
}

type TabService interface {
	List(objectID string) []*domain.Tab
	Get(id string) (*domain.Tab, error)
	Create(ctx context.Context, t domain.Tab) (*domain.Tab, error)
	Update(ctx context.Context, id string, patch domain.TabPatch) (*domain.Tab, error)
	Delete(ctx context.Context, id string) error
}

type ImportService interface {
	ImportWorkspace(ctx context.Context, filePath string) (*ImportResult, error)
	ImportWorkspaceFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}

// ImportResult summarises a committed workspace import.
type ImportResult struct {
	RootObjects  []*domain.Object
	ObjectCount  int
	ElementCount int
	ColumnCount  int
	EdgeCount    int
	TabCount     int
}
