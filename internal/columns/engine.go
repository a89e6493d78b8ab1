// Package columns implements the per-scope column schema: built-in
// pseudo-columns backed by element fields merged with user-defined typed
// columns, value coercion, and option list editing.
package columns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

const builtInIDPrefix = "builtin:"

// Engine reads schemas from the entity store and writes through its
// collaborator, re-fetching the touched scope afterwards.
type Engine struct {
	store    *entitystore.Store
	keywords StatusKeywords
}

type Option func(*Engine)

// WithStatusKeywords overrides the keyword set used by StatusBucket.
func WithStatusKeywords(k StatusKeywords) Option {
	return func(e *Engine) {
		e.keywords = k
	}
}

func New(store *entitystore.Store, opts ...Option) *Engine {
	e := &Engine{store: store, keywords: DefaultStatusKeywords()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuiltInID is the id a built-in column is addressed by until a
// visibility/position override row exists for it.
func BuiltInID(scope domain.ColumnScope, b domain.BuiltInType) string {
	return builtInIDPrefix + string(b) + "@" + scope.Key()
}

func parseBuiltInID(id string) (domain.ColumnScope, domain.BuiltInType, bool) {
	rest, ok := strings.CutPrefix(id, builtInIDPrefix)
	if !ok {
		return domain.ColumnScope{}, "", false
	}
	name, key, ok := strings.Cut(rest, "@")
	if !ok {
		return domain.ColumnScope{}, "", false
	}
	b, ok := domain.ParseBuiltInType(name)
	if !ok {
		return domain.ColumnScope{}, "", false
	}
	scope := domain.ColumnScope{ObjectID: key}
	if obj, sheet, found := strings.Cut(key, "/"); found {
		scope = domain.ColumnScope{ObjectID: obj, SheetID: domain.StrPtr(sheet)}
	}
	return scope, b, scope.ObjectID != ""
}

// ListColumns returns the visible columns of scope in display order.
func (e *Engine) ListColumns(scope domain.ColumnScope) []*domain.CustomColumn {
	all := e.AllColumns(scope)
	out := all[:0]
	for _, c := range all {
		if c.IsVisible {
			out = append(out, c)
		}
	}
	return out
}

// AllColumns is ListColumns including hidden columns.
func (e *Engine) AllColumns(scope domain.ColumnScope) []*domain.CustomColumn {
	rows := e.store.Columns(scope)
	overrides := map[domain.BuiltInType]*domain.CustomColumn{}
	var out []*domain.CustomColumn
	for _, c := range rows {
		if c.IsBuiltIn() {
			if _, seen := overrides[*c.BuiltIn]; !seen {
				overrides[*c.BuiltIn] = c
			}
			continue
		}
		out = append(out, c)
	}
	for i, b := range domain.BuiltInOrder {
		c, ok := overrides[b]
		if !ok {
			c = syntheticBuiltIn(scope, b, i)
		}
		c.Options = builtInOptions(b)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.IsBuiltIn() != b.IsBuiltIn() {
			return a.IsBuiltIn()
		}
		if a.IsBuiltIn() {
			return builtInRank(*a.BuiltIn) < builtInRank(*b.BuiltIn)
		}
		return false
	})
	return out
}

func syntheticBuiltIn(scope domain.ColumnScope, b domain.BuiltInType, position int) *domain.CustomColumn {
	bt := b
	return &domain.CustomColumn{
		ID:        BuiltInID(scope, b),
		Scope:     scope,
		Name:      b.DisplayName(),
		Type:      b.ColumnType(),
		IsVisible: true,
		Position:  position,
		BuiltIn:   &bt,
		Values:    map[string]any{},
	}
}

func builtInOptions(b domain.BuiltInType) []domain.ColumnOption {
	switch b {
	case domain.BuiltInStatus:
		return domain.StatusOptions()
	case domain.BuiltInPriority:
		return domain.PriorityOptions()
	}
	return nil
}

func builtInRank(b domain.BuiltInType) int {
	for i, x := range domain.BuiltInOrder {
		if x == b {
			return i
		}
	}
	return len(domain.BuiltInOrder)
}

// Column resolves a column id, synthetic built-in ids included.
func (e *Engine) Column(id string) (*domain.CustomColumn, error) {
	if scope, b, ok := parseBuiltInID(id); ok {
		for _, c := range e.AllColumns(scope) {
			if c.IsBuiltIn() && *c.BuiltIn == b {
				return c, nil
			}
		}
	}
	c, ok := e.store.Column(id)
	if !ok {
		return nil, domain.NotFound("column", id)
	}
	if c.IsBuiltIn() {
		c.Options = builtInOptions(*c.BuiltIn)
	}
	return c, nil
}

// GetValue returns the cell value and whether it is set. Built-in columns
// read the element's own field.
func (e *Engine) GetValue(columnID, elementID string) (any, bool) {
	c, err := e.Column(columnID)
	if err != nil {
		return nil, false
	}
	if !c.IsBuiltIn() {
		v, ok := c.Values[elementID]
		return v, ok && v != nil
	}
	el, ok := e.store.Element(elementID)
	if !ok {
		return nil, false
	}
	return builtInValue(*c.BuiltIn, el)
}

func builtInValue(b domain.BuiltInType, el *domain.Element) (any, bool) {
	switch b {
	case domain.BuiltInStatus:
		return string(el.Status), el.Status != ""
	case domain.BuiltInPriority:
		return string(el.Priority), el.Priority != ""
	case domain.BuiltInDueDate:
		if el.DueDate == nil {
			return nil, false
		}
		return domain.FormatDay(*el.DueDate), true
	case domain.BuiltInAssignees:
		if len(el.Assignees) == 0 {
			return nil, false
		}
		ids := make([]string, len(el.Assignees))
		for i, a := range el.Assignees {
			ids[i] = a.WorkerID
		}
		return ids, true
	}
	return nil, false
}

// SetResult is the stored value after coercion. OutOfSet lists select
// values that are not in the option list; they are stored anyway.
type SetResult struct {
	ColumnID  string
	ElementID string
	Value     any
	OutOfSet  []string
}

// SetValue coerces raw to the column's type and stores it. All validation
// happens before the collaborator is called.
func (e *Engine) SetValue(ctx context.Context, columnID, elementID string, raw any) (SetResult, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return SetResult{}, err
	}
	if !e.store.HasElement(elementID) {
		return SetResult{}, domain.NotFound("element", elementID)
	}
	coerced, err := c.Type.Coerce(raw, c.Options)
	if err != nil {
		return SetResult{}, err
	}
	res := SetResult{ColumnID: c.ID, ElementID: elementID, Value: coerced.Value, OutOfSet: coerced.OutOfSet}

	if c.IsBuiltIn() {
		el, _ := e.store.Element(elementID)
		patch, err := builtInPatch(*c.BuiltIn, coerced, el)
		if err != nil {
			return SetResult{}, err
		}
		if _, err := e.store.Collaborator().UpdateElement(ctx, elementID, patch); err != nil {
			return SetResult{}, fmt.Errorf("set %s: %w", *c.BuiltIn, err)
		}
		return res, e.store.ReloadElements(ctx)
	}

	for _, v := range coerced.OutOfSet {
		e.store.Warn(domain.Warning{
			Kind:    domain.WarnOptionOutOfSet,
			Subject: c.ID,
			Detail:  fmt.Sprintf("value %q on element %s is not an option of %q", v, elementID, c.Name),
		})
	}
	if _, err := e.store.Collaborator().SetCustomColumnValue(ctx, c.ID, elementID, coerced.Value); err != nil {
		return SetResult{}, fmt.Errorf("set value of %s: %w", c.ID, err)
	}
	return res, e.store.ReloadColumns(ctx, c.Scope)
}

func builtInPatch(b domain.BuiltInType, coerced domain.Coerced, el *domain.Element) (domain.ElementPatch, error) {
	var patch domain.ElementPatch
	switch b {
	case domain.BuiltInStatus:
		s, _ := coerced.Value.(string)
		if !domain.ValidElementStatuses[s] {
			return patch, domain.Invalid("status", "unknown status %q", s)
		}
		status := domain.ElementStatus(s)
		patch.Status = &status
	case domain.BuiltInPriority:
		s, _ := coerced.Value.(string)
		if !domain.ValidPriorities[s] {
			return patch, domain.Invalid("priority", "unknown priority %q", s)
		}
		p := domain.Priority(s)
		patch.Priority = &p
	case domain.BuiltInDueDate:
		s, _ := coerced.Value.(string)
		if s == "" {
			patch.DueDate = domain.ClearDate()
			break
		}
		d, err := domain.ParseDay(s)
		if err != nil {
			return patch, domain.Invalid("due_date", "%v", err)
		}
		patch.DueDate = domain.SetDate(d)
	case domain.BuiltInAssignees:
		ids, _ := coerced.Value.([]string)
		roles := map[string]string{}
		for _, a := range el.Assignees {
			roles[a.WorkerID] = a.Role
		}
		assignees := make([]domain.Assignee, 0, len(ids))
		for _, id := range ids {
			assignees = append(assignees, domain.Assignee{WorkerID: id, Role: domain.CoalesceStr(roles[id], "owner")})
		}
		patch.Assignees = &assignees
	}
	return patch, patch.Validate()
}

// ToggleCheckbox flips a checkbox cell; an unset cell becomes true.
func (e *Engine) ToggleCheckbox(ctx context.Context, columnID, elementID string) (SetResult, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return SetResult{}, err
	}
	if c.Type != domain.ColumnCheckbox {
		return SetResult{}, domain.Invalid("column", "%q is a %s column, not a checkbox", c.Name, c.Type)
	}
	current, _ := e.GetValue(columnID, elementID)
	return e.SetValue(ctx, columnID, elementID, domain.Toggle(current))
}
