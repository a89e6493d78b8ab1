package domain

import "time"

// DatePatch distinguishes "leave as is" (Set=false) from "clear"
// (Set=true, Value=nil).
type DatePatch struct {
	Set   bool
	Value *time.Time
}

// SetDate returns a patch assigning d (normalized to a calendar day).
func SetDate(d time.Time) DatePatch {
	return DatePatch{Set: true, Value: DayPtr(d)}
}

// ClearDate returns a patch that unsets the date.
func ClearDate() DatePatch {
	return DatePatch{Set: true}
}

// ElementPatch is a partial element update; nil fields are left untouched.
type ElementPatch struct {
	Title       *string
	Description *string
	Status      *ElementStatus
	Priority    *Priority
	Section     *string
	SheetID     *string
	StartDate   DatePatch
	DueDate     DatePatch
	Assignees   *[]Assignee
}

// IsEmpty reports whether the patch changes nothing.
func (p ElementPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Section == nil && p.SheetID == nil &&
		!p.StartDate.Set && !p.DueDate.Set && p.Assignees == nil
}

// Apply copies the patched fields onto e.
func (p ElementPatch) Apply(e *Element) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Section != nil {
		if *p.Section == "" {
			e.Section = nil
		} else {
			e.Section = cloneStr(p.Section)
		}
	}
	if p.SheetID != nil {
		if *p.SheetID == "" {
			e.SheetID = nil
		} else {
			e.SheetID = cloneStr(p.SheetID)
		}
	}
	if p.StartDate.Set {
		e.StartDate = cloneTime(p.StartDate.Value)
	}
	if p.DueDate.Set {
		e.DueDate = cloneTime(p.DueDate.Value)
	}
	if p.Assignees != nil {
		e.Assignees = append([]Assignee(nil), (*p.Assignees)...)
	}
}

// Validate checks enum fields and the title.
func (p ElementPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return Invalid("title", "must not be empty")
	}
	if p.Status != nil && !ValidElementStatuses[string(*p.Status)] {
		return Invalid("status", "unknown status %q", *p.Status)
	}
	if p.Priority != nil && !ValidPriorities[string(*p.Priority)] {
		return Invalid("priority", "unknown priority %q", *p.Priority)
	}
	if p.Assignees != nil {
		for _, a := range *p.Assignees {
			if a.WorkerID == "" {
				return Invalid("assignees", "worker id must not be empty")
			}
		}
	}
	return nil
}

// ObjectPatch is a partial object update. ParentID set to "" moves the
// object to the root level.
type ObjectPatch struct {
	Name       *string
	Color      *string
	ParentID   *string
	OrderIndex *int
}

// ColumnPatch is a partial column update.
type ColumnPatch struct {
	Name      *string
	Type      *ColumnType
	Options   *[]ColumnOption
	IsVisible *bool
	Position  *int
}

// TabPatch is a partial tab update. Config replaces the stored config as a
// whole; callers merge before patching.
type TabPatch struct {
	Name       *string
	Kind       *TabKind
	OrderIndex *int
	Config     map[string]any
}

// SubelementPatch creates a checklist item.
type SubelementPatch struct {
	ElementID  string
	Title      string
	OrderIndex *int
}

// EdgePatch creates an edge.
type EdgePatch struct {
	FromID     string
	ToID       string
	Type       EdgeType
	Attributes map[string]any
}
