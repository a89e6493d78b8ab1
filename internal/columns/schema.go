package columns

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// NewColumn describes a user-defined column to create.
type NewColumn struct {
	Scope   domain.ColumnScope
	Name    string
	Type    domain.ColumnType
	Options []domain.ColumnOption
}

// CreateColumn appends a user-defined column after every existing one.
func (e *Engine) CreateColumn(ctx context.Context, nc NewColumn) (*domain.CustomColumn, error) {
	name := strings.TrimSpace(nc.Name)
	if name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if !domain.ValidColumnTypes[string(nc.Type)] {
		return nil, domain.Invalid("column_type", "unknown column type %q", nc.Type)
	}
	if _, ok := e.store.Object(nc.Scope.ObjectID); !ok {
		return nil, domain.NotFound("object", nc.Scope.ObjectID)
	}
	var options []domain.ColumnOption
	if nc.Type.HasOptions() {
		var err error
		if options, err = normalizeOptions(nc.Options); err != nil {
			return nil, err
		}
	}

	position := 0
	for _, c := range e.AllColumns(nc.Scope) {
		if c.Position >= position {
			position = c.Position + 1
		}
	}
	created, err := e.store.Collaborator().CreateCustomColumn(ctx, domain.CustomColumn{
		Scope:     nc.Scope,
		Name:      name,
		Type:      nc.Type,
		Options:   options,
		IsVisible: true,
		Position:  position,
	})
	if err != nil {
		return nil, fmt.Errorf("create column %q: %w", name, err)
	}
	if err := e.store.ReloadColumns(ctx, nc.Scope); err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Engine) RenameColumn(ctx context.Context, columnID, name string) (*domain.CustomColumn, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	return e.updateColumn(ctx, columnID, domain.ColumnPatch{Name: &name})
}

// ChangeType switches a user column's type. Stored values are kept as-is;
// they are re-coerced only when next written.
func (e *Engine) ChangeType(ctx context.Context, columnID string, t domain.ColumnType) (*domain.CustomColumn, error) {
	if !domain.ValidColumnTypes[string(t)] {
		return nil, domain.Invalid("column_type", "unknown column type %q", t)
	}
	return e.updateColumn(ctx, columnID, domain.ColumnPatch{Type: &t})
}

// DeleteColumn removes a user column with its values. Built-in columns
// cannot be removed; they are hidden instead.
func (e *Engine) DeleteColumn(ctx context.Context, columnID string) error {
	c, err := e.Column(columnID)
	if err != nil {
		return err
	}
	if c.IsBuiltIn() {
		hidden := false
		_, err := e.updateColumn(ctx, columnID, domain.ColumnPatch{IsVisible: &hidden})
		return err
	}
	if err := e.store.Collaborator().DeleteCustomColumn(ctx, c.ID); err != nil {
		return fmt.Errorf("delete column %s: %w", c.ID, err)
	}
	return e.store.ReloadColumns(ctx, c.Scope)
}

// SetVisible shows or hides any column.
func (e *Engine) SetVisible(ctx context.Context, columnID string, visible bool) (*domain.CustomColumn, error) {
	return e.updateColumn(ctx, columnID, domain.ColumnPatch{IsVisible: &visible})
}

// RestoreBuiltIn re-shows a hidden built-in column. Its data lives on the
// elements, so nothing is recreated. Restoring a visible column is a no-op.
func (e *Engine) RestoreBuiltIn(ctx context.Context, scope domain.ColumnScope, b domain.BuiltInType) (*domain.CustomColumn, error) {
	for _, c := range e.AllColumns(scope) {
		if !c.IsBuiltIn() || *c.BuiltIn != b {
			continue
		}
		if c.IsVisible {
			return c, nil
		}
		visible := true
		return e.updateColumn(ctx, c.ID, domain.ColumnPatch{IsVisible: &visible})
	}
	return nil, domain.Invalid("builtin", "unknown built-in column %q", b)
}

// MoveColumn sets the display position of a column.
func (e *Engine) MoveColumn(ctx context.Context, columnID string, position int) (*domain.CustomColumn, error) {
	if position < 0 {
		return nil, domain.Invalid("position", "must not be negative")
	}
	return e.updateColumn(ctx, columnID, domain.ColumnPatch{Position: &position})
}

// updateColumn patches a column row. A built-in without an override row
// gets one created with the patch applied.
func (e *Engine) updateColumn(ctx context.Context, columnID string, patch domain.ColumnPatch) (*domain.CustomColumn, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return nil, err
	}
	if c.IsBuiltIn() && (patch.Type != nil || patch.Options != nil) {
		return nil, domain.Invalid("column", "built-in column %s has a fixed type and options", *c.BuiltIn)
	}

	var updated *domain.CustomColumn
	if c.IsBuiltIn() && c.ID == BuiltInID(c.Scope, *c.BuiltIn) {
		row := *c
		row.ID = ""
		row.Options = nil
		row.Values = nil
		if patch.Name != nil {
			row.Name = *patch.Name
		}
		if patch.IsVisible != nil {
			row.IsVisible = *patch.IsVisible
		}
		if patch.Position != nil {
			row.Position = *patch.Position
		}
		updated, err = e.store.Collaborator().CreateCustomColumn(ctx, row)
	} else {
		updated, err = e.store.Collaborator().UpdateCustomColumn(ctx, c.ID, patch)
	}
	if err != nil {
		return nil, fmt.Errorf("update column %s: %w", columnID, err)
	}
	if err := e.store.ReloadColumns(ctx, c.Scope); err != nil {
		return nil, err
	}
	return updated, nil
}
