package domain

import (
	"strings"
	"time"
)

type ColumnType string

const (
	ColumnText        ColumnType = "text"
	ColumnNumber      ColumnType = "number"
	ColumnSelect      ColumnType = "select"
	ColumnMultiSelect ColumnType = "multi_select"
	ColumnStatus      ColumnType = "status"
	ColumnDate        ColumnType = "date"
	ColumnPerson      ColumnType = "person"
	ColumnCheckbox    ColumnType = "checkbox"
	ColumnURL         ColumnType = "url"
	ColumnEmail       ColumnType = "email"
	ColumnPhone       ColumnType = "phone"
	ColumnFiles       ColumnType = "files"
	ColumnRelation    ColumnType = "relation"
	ColumnRollup      ColumnType = "rollup"
	ColumnFormula     ColumnType = "formula"
	ColumnProgress    ColumnType = "progress"
	ColumnBudget      ColumnType = "budget"
)

// ValidColumnTypes is the canonical set of accepted column type strings.
var ValidColumnTypes = map[string]bool{
	"text": true, "number": true, "select": true, "multi_select": true,
	"status": true, "date": true, "person": true, "checkbox": true,
	"url": true, "email": true, "phone": true, "files": true,
	"relation": true, "rollup": true, "formula": true, "progress": true,
	"budget": true,
}

// HasOptions reports whether the type carries an option list.
func (t ColumnType) HasOptions() bool {
	return t == ColumnSelect || t == ColumnMultiSelect || t == ColumnStatus
}

// IsComputed reports whether values are derived and cannot be set directly.
func (t ColumnType) IsComputed() bool {
	return t == ColumnRollup || t == ColumnFormula
}

// BuiltInType names a pseudo-column backed by a native element field.
type BuiltInType string

const (
	BuiltInAssignees BuiltInType = "assignees"
	BuiltInPriority  BuiltInType = "priority"
	BuiltInStatus    BuiltInType = "status"
	BuiltInDueDate   BuiltInType = "due_date"
)

// BuiltInOrder is the fixed default order of built-in columns.
var BuiltInOrder = []BuiltInType{BuiltInAssignees, BuiltInPriority, BuiltInStatus, BuiltInDueDate}

// ParseBuiltInType validates a built-in column name.
func ParseBuiltInType(s string) (BuiltInType, bool) {
	for _, b := range BuiltInOrder {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// ColumnType returns the value type a built-in column renders as.
func (b BuiltInType) ColumnType() ColumnType {
	switch b {
	case BuiltInAssignees:
		return ColumnPerson
	case BuiltInPriority:
		return ColumnSelect
	case BuiltInStatus:
		return ColumnStatus
	default:
		return ColumnDate
	}
}

// DisplayName is the default header of a built-in column.
func (b BuiltInType) DisplayName() string {
	switch b {
	case BuiltInAssignees:
		return "Assignees"
	case BuiltInPriority:
		return "Priority"
	case BuiltInStatus:
		return "Status"
	default:
		return "Due Date"
	}
}

// ColumnOption is one entry of a select-like column. Values are unique
// within a column.
type ColumnOption struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

// ColumnScope identifies where a column schema lives: an object, or one of
// its sheets.
type ColumnScope struct {
	ObjectID string
	SheetID  *string
}

// Key returns a stable map key for the scope.
func (s ColumnScope) Key() string {
	if s.SheetID == nil || *s.SheetID == "" {
		return s.ObjectID
	}
	return s.ObjectID + "/" + *s.SheetID
}

// CustomColumn is a schema entry. BuiltIn is nil for user-defined columns;
// for built-ins the row only carries visibility and position, and Values is
// always empty because the data lives on the element.
type CustomColumn struct {
	ID        string
	Scope     ColumnScope
	Name      string
	Type      ColumnType
	Options   []ColumnOption
	IsVisible bool
	Position  int
	BuiltIn   *BuiltInType
	Values    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBuiltIn reports whether the column is a built-in pseudo-column.
func (c *CustomColumn) IsBuiltIn() bool {
	return c.BuiltIn != nil
}

// Option looks up an option by value.
func (c *CustomColumn) Option(value string) (ColumnOption, bool) {
	for _, o := range c.Options {
		if o.Value == value {
			return o, true
		}
	}
	return ColumnOption{}, false
}

// OptionIndex returns the index of the option with the given value, or -1.
func (c *CustomColumn) OptionIndex(value string) int {
	for i, o := range c.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Clone returns a copy with its own option slice and value map.
func (c *CustomColumn) Clone() *CustomColumn {
	out := *c
	out.Options = append([]ColumnOption(nil), c.Options...)
	if c.Values != nil {
		out.Values = make(map[string]any, len(c.Values))
		for k, v := range c.Values {
			out.Values[k] = v
		}
	}
	if c.BuiltIn != nil {
		b := *c.BuiltIn
		out.BuiltIn = &b
	}
	return &out
}

// NeutralOptionColor is used for values that no longer match any option.
const NeutralOptionColor = "#9CA3AF"

// defaultPalette is cycled through when an option is added without a color.
var defaultPalette = []string{
	"#60A5FA", "#34D399", "#FBBF24", "#F87171", "#A78BFA", "#F472B6", "#2DD4BF", "#FB923C",
}

// PaletteColor returns the i-th default option color.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return defaultPalette[i%len(defaultPalette)]
}

// StatusOptions returns the element status enum as column options.
func StatusOptions() []ColumnOption {
	return []ColumnOption{
		{Value: string(StatusBacklog), Color: "#9CA3AF"},
		{Value: string(StatusTodo), Color: "#60A5FA"},
		{Value: string(StatusInProgress), Color: "#FBBF24"},
		{Value: string(StatusReview), Color: "#A78BFA"},
		{Value: string(StatusDone), Color: "#34D399"},
		{Value: string(StatusBlocked), Color: "#F87171"},
		{Value: string(StatusCancelled), Color: "#6B7280"},
	}
}

// PriorityOptions returns the priority enum as column options.
func PriorityOptions() []ColumnOption {
	return []ColumnOption{
		{Value: string(PriorityLow), Color: "#9CA3AF"},
		{Value: string(PriorityMedium), Color: "#60A5FA"},
		{Value: string(PriorityHigh), Color: "#FB923C"},
		{Value: string(PriorityUrgent), Color: "#F87171"},
	}
}

// NormalizeOptionValue trims surrounding whitespace from an option value.
func NormalizeOptionValue(v string) string {
	return strings.TrimSpace(v)
}

// ColumnValue is one persisted cell of a custom column.
type ColumnValue struct {
	ColumnID  string
	ElementID string
	Value     any
	UpdatedAt time.Time
}
