package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/repository"
	"github.com/google/uuid"
)

// Day parses a YYYY-MM-DD literal and panics on bad input. Test-only.
func Day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayPtr is Day returning a pointer.
func DayPtr(s string) *time.Time {
	d := Day(s)
	return &d
}

// Object options
type ObjectOption func(*domain.Object)

func WithParent(id string) ObjectOption {
	return func(o *domain.Object) {
		o.ParentID = &id
	}
}

func WithOrderIndex(i int) ObjectOption {
	return func(o *domain.Object) {
		o.OrderIndex = &i
	}
}

func WithColor(c string) ObjectOption {
	return func(o *domain.Object) {
		o.Color = c
	}
}

func WithObjectID(id string) ObjectOption {
	return func(o *domain.Object) {
		o.ID = id
	}
}

func NewTestObject(name string, opts ...ObjectOption) *domain.Object {
	now := time.Now().UTC()
	o := &domain.Object{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     "#60A5FA",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Element options
type ElementOption func(*domain.Element)

func WithStatus(s domain.ElementStatus) ElementOption {
	return func(e *domain.Element) {
		e.Status = s
	}
}

func WithPriority(p domain.Priority) ElementOption {
	return func(e *domain.Element) {
		e.Priority = p
	}
}

func WithStart(day string) ElementOption {
	return func(e *domain.Element) {
		e.StartDate = DayPtr(day)
	}
}

func WithDue(day string) ElementOption {
	return func(e *domain.Element) {
		e.DueDate = DayPtr(day)
	}
}

// WithDates sets both dates; an empty string leaves that date unset.
func WithDates(start, due string) ElementOption {
	return func(e *domain.Element) {
		if start != "" {
			e.StartDate = DayPtr(start)
		}
		if due != "" {
			e.DueDate = DayPtr(due)
		}
	}
}

func WithSection(s string) ElementOption {
	return func(e *domain.Element) {
		e.Section = &s
	}
}

func WithSheet(id string) ElementOption {
	return func(e *domain.Element) {
		e.SheetID = &id
	}
}

func WithAssignees(workerIDs ...string) ElementOption {
	return func(e *domain.Element) {
		for _, w := range workerIDs {
			e.Assignees = append(e.Assignees, domain.Assignee{WorkerID: w, Role: "owner"})
		}
	}
}

func WithSubelements(titles ...string) ElementOption {
	return func(e *domain.Element) {
		for i, title := range titles {
			e.Subelements = append(e.Subelements, domain.Subelement{Title: title, OrderIndex: i})
		}
	}
}

func WithElementID(id string) ElementOption {
	return func(e *domain.Element) {
		e.ID = id
	}
}

func NewTestElement(objectID, title string, opts ...ElementOption) *domain.Element {
	now := time.Now().UTC()
	e := &domain.Element{
		ID:        uuid.New().String(),
		ObjectID:  objectID,
		Title:     title,
		Status:    domain.StatusTodo,
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MustCreateObject persists a test object through the collaborator.
func MustCreateObject(t *testing.T, store repository.Collaborator, name string, opts ...ObjectOption) *domain.Object {
	t.Helper()
	o, err := store.CreateObject(context.Background(), *NewTestObject(name, opts...))
	if err != nil {
		t.Fatalf("creating object %q: %v", name, err)
	}
	return o
}

// MustCreateElement persists a test element through the collaborator.
func MustCreateElement(t *testing.T, store repository.Collaborator, objectID, title string, opts ...ElementOption) *domain.Element {
	t.Helper()
	e, err := store.CreateElement(context.Background(), *NewTestElement(objectID, title, opts...))
	if err != nil {
		t.Fatalf("creating element %q: %v", title, err)
	}
	return e
}
