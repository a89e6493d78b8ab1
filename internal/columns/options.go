package columns

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// AddOption appends an option. An empty color picks the next palette color.
func (e *Engine) AddOption(ctx context.Context, columnID, value, color string) (*domain.CustomColumn, error) {
	c, err := e.optionColumn(columnID)
	if err != nil {
		return nil, err
	}
	value = domain.NormalizeOptionValue(value)
	if value == "" {
		return nil, domain.Invalid("option", "value must not be empty")
	}
	if c.OptionIndex(value) >= 0 {
		return nil, domain.Invalid("option", "%q already exists in %q", value, c.Name)
	}
	opts := append(c.Options, domain.ColumnOption{
		Value: value,
		Color: domain.CoalesceStr(color, domain.PaletteColor(len(c.Options))),
	})
	return e.updateColumn(ctx, c.ID, domain.ColumnPatch{Options: &opts})
}

// RenameOption renames an option in place, keeping its color and position.
// Stored values that used the old name are not rewritten; they render as
// orphaned until edited.
func (e *Engine) RenameOption(ctx context.Context, columnID, oldValue, newValue string) (*domain.CustomColumn, error) {
	c, err := e.optionColumn(columnID)
	if err != nil {
		return nil, err
	}
	i := c.OptionIndex(oldValue)
	if i < 0 {
		return nil, domain.NotFound("option", oldValue)
	}
	newValue = domain.NormalizeOptionValue(newValue)
	if newValue == "" {
		return nil, domain.Invalid("option", "value must not be empty")
	}
	if newValue == oldValue {
		return c, nil
	}
	if c.OptionIndex(newValue) >= 0 {
		return nil, domain.Invalid("option", "%q already exists in %q", newValue, c.Name)
	}
	opts := append([]domain.ColumnOption(nil), c.Options...)
	opts[i].Value = newValue
	return e.updateColumn(ctx, c.ID, domain.ColumnPatch{Options: &opts})
}

// RecolorOption changes an option's color.
func (e *Engine) RecolorOption(ctx context.Context, columnID, value, color string) (*domain.CustomColumn, error) {
	c, err := e.optionColumn(columnID)
	if err != nil {
		return nil, err
	}
	i := c.OptionIndex(value)
	if i < 0 {
		return nil, domain.NotFound("option", value)
	}
	opts := append([]domain.ColumnOption(nil), c.Options...)
	opts[i].Color = color
	return e.updateColumn(ctx, c.ID, domain.ColumnPatch{Options: &opts})
}

// DeleteOption removes an option. Values referencing it stay stored.
func (e *Engine) DeleteOption(ctx context.Context, columnID, value string) (*domain.CustomColumn, error) {
	c, err := e.optionColumn(columnID)
	if err != nil {
		return nil, err
	}
	i := c.OptionIndex(value)
	if i < 0 {
		return nil, domain.NotFound("option", value)
	}
	opts := append(append([]domain.ColumnOption{}, c.Options[:i]...), c.Options[i+1:]...)
	return e.updateColumn(ctx, c.ID, domain.ColumnPatch{Options: &opts})
}

func (e *Engine) optionColumn(columnID string) (*domain.CustomColumn, error) {
	c, err := e.Column(columnID)
	if err != nil {
		return nil, err
	}
	if c.IsBuiltIn() {
		return nil, domain.Invalid("column", "options of built-in column %s are fixed", *c.BuiltIn)
	}
	if !c.Type.HasOptions() {
		return nil, domain.Invalid("column", "%s columns have no options", c.Type)
	}
	return c, nil
}

// OptionColor returns the color to render value with. Values that match no
// option fall back to the neutral color and are reported as orphaned.
func (e *Engine) OptionColor(c *domain.CustomColumn, value string) string {
	if o, ok := c.Option(value); ok && o.Color != "" {
		return o.Color
	}
	if _, ok := c.Option(value); !ok {
		e.store.Warn(domain.Warning{
			Kind:    domain.WarnOrphanedValue,
			Subject: c.ID,
			Detail:  fmt.Sprintf("value %q is not an option of %q", value, c.Name),
		})
	}
	return domain.NeutralOptionColor
}

func normalizeOptions(in []domain.ColumnOption) ([]domain.ColumnOption, error) {
	out := make([]domain.ColumnOption, 0, len(in))
	seen := map[string]bool{}
	for i, o := range in {
		v := domain.NormalizeOptionValue(o.Value)
		if v == "" {
			return nil, domain.Invalid("options", "option value must not be empty")
		}
		if seen[v] {
			return nil, domain.Invalid("options", "duplicate option value %q", v)
		}
		seen[v] = true
		out = append(out, domain.ColumnOption{Value: v, Color: domain.CoalesceStr(o.Color, domain.PaletteColor(i))})
	}
	return out, nil
}
