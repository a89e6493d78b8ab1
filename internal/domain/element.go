package domain

import "time"

type Element struct {
	ID          string
	ObjectID    string
	SheetID     *string
	Title       string
	Description string
	Status      ElementStatus
	Priority    Priority
	Section     *string

	// Schedule, normalized to calendar days.
	StartDate *time.Time
	DueDate   *time.Time

	Subelements []Subelement
	Assignees   []Assignee

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subelement is a checklist item owned by exactly one element.
type Subelement struct {
	ID          string
	ElementID   string
	Title       string
	IsCompleted bool
	OrderIndex  int
}

// Assignee references a worker with a role on an element.
type Assignee struct {
	WorkerID string
	Role     string
}

// HasSchedule reports whether at least one of start or due is set.
func (e *Element) HasSchedule() bool {
	return e.StartDate != nil || e.DueDate != nil
}

// CompletedSubelements returns the number of completed checklist items.
func (e *Element) CompletedSubelements() int {
	n := 0
	for _, s := range e.Subelements {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	c := *e
	c.SheetID = cloneStr(e.SheetID)
	c.Section = cloneStr(e.Section)
	c.StartDate = cloneTime(e.StartDate)
	c.DueDate = cloneTime(e.DueDate)
	c.Subelements = append([]Subelement(nil), e.Subelements...)
	c.Assignees = append([]Assignee(nil), e.Assignees...)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
