package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/repository"
)

// ErrInjected is the default failure returned by SpyCollaborator.FailOn.
var ErrInjected = errors.New("injected store failure")

// SpyCollaborator wraps a Collaborator, counting calls per operation and
// optionally failing chosen operations with a *domain.StoreError.
//
// Mutations are numbered starting at 1 across all operations; FailOnNth
// fails exactly that mutation. Reads never count toward it.
type SpyCollaborator struct {
	Inner repository.Collaborator

	mu        sync.Mutex
	calls     map[string]int
	failures  map[string]error
	mutations int
	failNth   int
	failErr   error
}

var _ repository.Collaborator = (*SpyCollaborator)(nil)

// NewSpyCollaborator wraps inner.
func NewSpyCollaborator(inner repository.Collaborator) *SpyCollaborator {
	return &SpyCollaborator{Inner: inner, calls: map[string]int{}, failures: map[string]error{}}
}

// NewFailingCollaborator wraps inner and fails every call of op.
func NewFailingCollaborator(inner repository.Collaborator, op string) *SpyCollaborator {
	s := NewSpyCollaborator(inner)
	s.FailOn(op, ErrInjected)
	return s
}

// FailOn makes every call of op fail with err wrapped in a StoreError.
func (s *SpyCollaborator) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// FailOnNth makes the nth mutation fail with err wrapped in a StoreError.
func (s *SpyCollaborator) FailOnNth(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNth, s.failErr = n, err
}

// Calls returns how many times op was invoked, including failed calls.
func (s *SpyCollaborator) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Mutations returns the number of mutating calls seen so far.
func (s *SpyCollaborator) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

// Reset clears call counters; injected failures stay.
func (s *SpyCollaborator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
	s.mutations = 0
}

func (s *SpyCollaborator) record(op string, mutation bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if mutation {
		s.mutations++
		if s.failNth > 0 && s.mutations == s.failNth {
			return &domain.StoreError{Op: op, Err: s.failErr}
		}
	}
	if err, ok := s.failures[op]; ok {
		return &domain.StoreError{Op: op, Err: err}
	}
	return nil
}

func (s *SpyCollaborator) FetchObjects(ctx context.Context) ([]*domain.Object, error) {
	if err := s.record("FetchObjects", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchObjects(ctx)
}

func (s *SpyCollaborator) GetObject(ctx context.Context, id string) (*domain.Object, error) {
	if err := s.record("GetObject", false); err != nil {
		return nil, err
	}
	return s.Inner.GetObject(ctx, id)
}

func (s *SpyCollaborator) CreateObject(ctx context.Context, o domain.Object) (*domain.Object, error) {
	if err := s.record("CreateObject", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateObject(ctx, o)
}

func (s *SpyCollaborator) UpdateObject(ctx context.Context, id string, patch domain.ObjectPatch) (*domain.Object, error) {
	if err := s.record("UpdateObject", true); err != nil {
		return nil, err
	}
	return s.Inner.UpdateObject(ctx, id, patch)
}

func (s *SpyCollaborator) DeleteObject(ctx context.Context, id string) error {
	if err := s.record("DeleteObject", true); err != nil {
		return err
	}
	return s.Inner.DeleteObject(ctx, id)
}

func (s *SpyCollaborator) FetchSheets(ctx context.Context, objectID string) ([]*domain.Sheet, error) {
	if err := s.record("FetchSheets", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchSheets(ctx, objectID)
}

func (s *SpyCollaborator) CreateSheet(ctx context.Context, sh domain.Sheet) (*domain.Sheet, error) {
	if err := s.record("CreateSheet", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateSheet(ctx, sh)
}

func (s *SpyCollaborator) DeleteSheet(ctx context.Context, id string) error {
	if err := s.record("DeleteSheet", true); err != nil {
		return err
	}
	return s.Inner.DeleteSheet(ctx, id)
}

func (s *SpyCollaborator) FetchElements(ctx context.Context, objectID *string) ([]*domain.Element, error) {
	if err := s.record("FetchElements", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchElements(ctx, objectID)
}

func (s *SpyCollaborator) GetElement(ctx context.Context, id string) (*domain.Element, error) {
	if err := s.record("GetElement", false); err != nil {
		return nil, err
	}
	return s.Inner.GetElement(ctx, id)
}

func (s *SpyCollaborator) CreateElement(ctx context.Context, e domain.Element) (*domain.Element, error) {
	if err := s.record("CreateElement", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateElement(ctx, e)
}

func (s *SpyCollaborator) UpdateElement(ctx context.Context, id string, patch domain.ElementPatch) (*domain.Element, error) {
	if err := s.record("UpdateElement", true); err != nil {
		return nil, err
	}
	return s.Inner.UpdateElement(ctx, id, patch)
}

func (s *SpyCollaborator) DeleteElement(ctx context.Context, id string) error {
	if err := s.record("DeleteElement", true); err != nil {
		return err
	}
	return s.Inner.DeleteElement(ctx, id)
}

func (s *SpyCollaborator) CreateSubelement(ctx context.Context, patch domain.SubelementPatch) (*domain.Subelement, error) {
	if err := s.record("CreateSubelement", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateSubelement(ctx, patch)
}

func (s *SpyCollaborator) ToggleSubelementComplete(ctx context.Context, id string, completed bool) (*domain.Subelement, error) {
	if err := s.record("ToggleSubelementComplete", true); err != nil {
		return nil, err
	}
	return s.Inner.ToggleSubelementComplete(ctx, id, completed)
}

func (s *SpyCollaborator) FetchCustomColumns(ctx context.Context, scope domain.ColumnScope) ([]*domain.CustomColumn, error) {
	if err := s.record("FetchCustomColumns", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchCustomColumns(ctx, scope)
}

func (s *SpyCollaborator) CreateCustomColumn(ctx context.Context, c domain.CustomColumn) (*domain.CustomColumn, error) {
	if err := s.record("CreateCustomColumn", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateCustomColumn(ctx, c)
}

func (s *SpyCollaborator) UpdateCustomColumn(ctx context.Context, id string, patch domain.ColumnPatch) (*domain.CustomColumn, error) {
	if err := s.record("UpdateCustomColumn", true); err != nil {
		return nil, err
	}
	return s.Inner.UpdateCustomColumn(ctx, id, patch)
}

func (s *SpyCollaborator) DeleteCustomColumn(ctx context.Context, id string) error {
	if err := s.record("DeleteCustomColumn", true); err != nil {
		return err
	}
	return s.Inner.DeleteCustomColumn(ctx, id)
}

func (s *SpyCollaborator) SetCustomColumnValue(ctx context.Context, columnID, elementID string, value any) (*domain.ColumnValue, error) {
	if err := s.record("SetCustomColumnValue", true); err != nil {
		return nil, err
	}
	return s.Inner.SetCustomColumnValue(ctx, columnID, elementID, value)
}

func (s *SpyCollaborator) FetchEdges(ctx context.Context) ([]domain.Edge, error) {
	if err := s.record("FetchEdges", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchEdges(ctx)
}

func (s *SpyCollaborator) CreateEdge(ctx context.Context, patch domain.EdgePatch) (*domain.Edge, error) {
	if err := s.record("CreateEdge", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateEdge(ctx, patch)
}

func (s *SpyCollaborator) DeleteEdge(ctx context.Context, id string) error {
	if err := s.record("DeleteEdge", true); err != nil {
		return err
	}
	return s.Inner.DeleteEdge(ctx, id)
}

func (s *SpyCollaborator) GetEdgesForElement(ctx context.Context, elementID string) ([]domain.Edge, error) {
	if err := s.record("GetEdgesForElement", false); err != nil {
		return nil, err
	}
	return s.Inner.GetEdgesForElement(ctx, elementID)
}

func (s *SpyCollaborator) GetIntersections(ctx context.Context, rowIDs, colIDs []string) ([]domain.Edge, error) {
	if err := s.record("GetIntersections", false); err != nil {
		return nil, err
	}
	return s.Inner.GetIntersections(ctx, rowIDs, colIDs)
}

func (s *SpyCollaborator) UpsertIntersection(ctx context.Context, rowID, colID string, patch map[string]any) (*domain.Edge, error) {
	if err := s.record("UpsertIntersection", true); err != nil {
		return nil, err
	}
	return s.Inner.UpsertIntersection(ctx, rowID, colID, patch)
}

func (s *SpyCollaborator) FetchTabs(ctx context.Context, objectID string) ([]*domain.Tab, error) {
	if err := s.record("FetchTabs", false); err != nil {
		return nil, err
	}
	return s.Inner.FetchTabs(ctx, objectID)
}

func (s *SpyCollaborator) GetTab(ctx context.Context, id string) (*domain.Tab, error) {
	if err := s.record("GetTab", false); err != nil {
		return nil, err
	}
	return s.Inner.GetTab(ctx, id)
}

func (s *SpyCollaborator) CreateTab(ctx context.Context, t domain.Tab) (*domain.Tab, error) {
	if err := s.record("CreateTab", true); err != nil {
		return nil, err
	}
	return s.Inner.CreateTab(ctx, t)
}

func (s *SpyCollaborator) UpdateTab(ctx context.Context, id string, patch domain.TabPatch) (*domain.Tab, error) {
	if err := s.record("UpdateTab", true); err != nil {
		return nil, err
	}
	return s.Inner.UpdateTab(ctx, id, patch)
}

func (s *SpyCollaborator) DeleteTab(ctx context.Context, id string) error {
	if err := s.record("DeleteTab", true); err != nil {
		return err
	}
	return s.Inner.DeleteTab(ctx, id)
}
