package repository

import (
	"context"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// Every mutation returns the persisted row with store-assigned ids and
// timestamps. Lookups of missing ids fail with *domain.NotFoundError and
// backend failures with *domain.StoreError.

type ObjectRepo interface {
	FetchObjects(ctx context.Context) ([]*domain.Object, error)
	GetObject(ctx context.Context, id string) (*domain.Object, error)
	CreateObject(ctx context.Context, o domain.Object) (*domain.Object, error)
	UpdateObject(ctx context.Context, id string, patch domain.ObjectPatch) (*domain.Object, error)
	DeleteObject(ctx context.Context, id string) error
}

type SheetRepo interface {
	FetchSheets(ctx context.Context, objectID string) ([]*domain.Sheet, error)
	CreateSheet(ctx context.Context, s domain.Sheet) (*domain.Sheet, error)
	DeleteSheet(ctx context.Context, id string) error
}

type ElementRepo interface {
	// FetchElements returns every element, or only those of one object.
	FetchElements(ctx context.Context, objectID *string) ([]*domain.Element, error)
	GetElement(ctx context.Context, id string) (*domain.Element, error)
	CreateElement(ctx context.Context, e domain.Element) (*domain.Element, error)
	UpdateElement(ctx context.Context, id string, patch domain.ElementPatch) (*domain.Element, error)
	DeleteElement(ctx context.Context, id string) error
	CreateSubelement(ctx context.Context, patch domain.SubelementPatch) (*domain.Subelement, error)
	ToggleSubelementComplete(ctx context.Context, id string, completed bool) (*domain.Subelement, error)
}

type ColumnRepo interface {
	// FetchCustomColumns returns the columns of exactly one scope, values
	// included. Built-in override rows are returned too.
	FetchCustomColumns(ctx context.Context, scope domain.ColumnScope) ([]*domain.CustomColumn, error)
	CreateCustomColumn(ctx context.Context, c domain.CustomColumn) (*domain.CustomColumn, error)
	UpdateCustomColumn(ctx context.Context, id string, patch domain.ColumnPatch) (*domain.CustomColumn, error)
	DeleteCustomColumn(ctx context.Context, id string) error
	// SetCustomColumnValue stores an already-coerced value; nil unsets it.
	SetCustomColumnValue(ctx context.Context, columnID, elementID string, value any) (*domain.ColumnValue, error)
}

type EdgeRepo interface {
	FetchEdges(ctx context.Context) ([]domain.Edge, error)
	CreateEdge(ctx context.Context, patch domain.EdgePatch) (*domain.Edge, error)
	DeleteEdge(ctx context.Context, id string) error
	GetEdgesForElement(ctx context.Context, elementID string) ([]domain.Edge, error)
	// GetIntersections returns matrix-cell edges with from in rowIDs and to
	// in colIDs.
	GetIntersections(ctx context.Context, rowIDs, colIDs []string) ([]domain.Edge, error)
	// UpsertIntersection merges patch into the cell edge's attributes,
	// creating the edge when the pair has none, and stamps updatedAt.
	UpsertIntersection(ctx context.Context, rowID, colID string, patch map[string]any) (*domain.Edge, error)
}

type TabRepo interface {
	FetchTabs(ctx context.Context, objectID string) ([]*domain.Tab, error)
	GetTab(ctx context.Context, id string) (*domain.Tab, error)
	CreateTab(ctx context.Context, t domain.Tab) (*domain.Tab, error)
	UpdateTab(ctx context.Context, id string, patch domain.TabPatch) (*domain.Tab, error)
	DeleteTab(ctx context.Context, id string) error
}

// Collaborator is the object store consumed by the engines. The engines
// never talk to SQL directly; tests substitute spies and fault injectors.
type Collaborator interface {
	ObjectRepo
	SheetRepo
	ElementRepo
	ColumnRepo
	EdgeRepo
	TabRepo
}
