package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ImportSchema is the top-level structure of a workspace seed file. Entities
// refer to each other by file-local refs; real ids are assigned on import.
type ImportSchema struct {
	Objects  []ObjectImport  `json:"objects" toml:"objects"`
	Columns  []ColumnImport  `json:"columns,omitempty" toml:"columns,omitempty"`
	Elements []ElementImport `json:"elements" toml:"elements"`
	Edges    []EdgeImport    `json:"edges,omitempty" toml:"edges,omitempty"`
	Tabs     []TabImport     `json:"tabs,omitempty" toml:"tabs,omitempty"`
}

// ObjectImport defines an object. Parents may be declared after children.
type ObjectImport struct {
	Ref       string   `json:"ref" toml:"ref"`
	ParentRef *string  `json:"parent_ref,omitempty" toml:"parent_ref,omitempty"`
	Name      string   `json:"name" toml:"name"`
	Color     string   `json:"color,omitempty" toml:"color,omitempty"`
	Order     *int     `json:"order,omitempty" toml:"order,omitempty"`
	Sheets    []string `json:"sheets,omitempty" toml:"sheets,omitempty"`
}

// ColumnImport defines a custom column on an object, or on one of its
// sheets when Sheet names one.
type ColumnImport struct {
	Ref       string         `json:"ref" toml:"ref"`
	ObjectRef string         `json:"object_ref" toml:"object_ref"`
	Sheet     string         `json:"sheet,omitempty" toml:"sheet,omitempty"`
	Name      string         `json:"name" toml:"name"`
	Type      string         `json:"type" toml:"type"`
	Options   []OptionImport `json:"options,omitempty" toml:"options,omitempty"`
}

type OptionImport struct {
	Value string `json:"value" toml:"value"`
	Color string `json:"color,omitempty" toml:"color,omitempty"`
}

// ElementImport defines an element. Values maps column refs to raw values
// that are coerced by the column type.
type ElementImport struct {
	Ref         string         `json:"ref" toml:"ref"`
	ObjectRef   string         `json:"object_ref" toml:"object_ref"`
	Sheet       string         `json:"sheet,omitempty" toml:"sheet,omitempty"`
	Title       string         `json:"title" toml:"title"`
	Description string         `json:"description,omitempty" toml:"description,omitempty"`
	Status      string         `json:"status,omitempty" toml:"status,omitempty"`
	Priority    string         `json:"priority,omitempty" toml:"priority,omitempty"`
	Section     string         `json:"section,omitempty" toml:"section,omitempty"`
	StartDate   *string        `json:"start_date,omitempty" toml:"start_date,omitempty"`
	DueDate     *string        `json:"due_date,omitempty" toml:"due_date,omitempty"`
	Assignees   []string       `json:"assignees,omitempty" toml:"assignees,omitempty"`
	Subelements []string       `json:"subelements,omitempty" toml:"subelements,omitempty"`
	Values      map[string]any `json:"values,omitempty" toml:"values,omitempty"`
}

// EdgeImport defines an edge between two element refs. Cycles are allowed.
type EdgeImport struct {
	FromRef    string         `json:"from_ref" toml:"from_ref"`
	ToRef      string         `json:"to_ref" toml:"to_ref"`
	Type       string         `json:"type" toml:"type"`
	Attributes map[string]any `json:"attributes,omitempty" toml:"attributes,omitempty"`
}

// TabImport defines a tab. SourceRef configures a matrix tab's column
// source object.
type TabImport struct {
	ObjectRef string `json:"object_ref" toml:"object_ref"`
	Name      string `json:"name" toml:"name"`
	Kind      string `json:"kind" toml:"kind"`
	SourceRef string `json:"source_ref,omitempty" toml:"source_ref,omitempty"`
}

// Format is the encoding of a seed file.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from the file extension; anything that is
// not .toml is read as JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// LoadImportSchema reads and parses a workspace seed file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, FormatFor(path))
}

// ParseImportSchema decodes a seed document in the given format.
func ParseImportSchema(data []byte, format Format) (*ImportSchema, error) {
	var schema ImportSchema
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}
