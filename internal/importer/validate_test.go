package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrStr(s string) *string { return &s }
func ptrInt(i int) *int       { return &i }

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Objects: []ObjectImport{
			{Ref: "o1", Name: "Launch"},
		},
		Elements: []ElementImport{
			{Ref: "e1", ObjectRef: "o1", Title: "Write brief"},
		},
	}
}

func validFullSchema() *ImportSchema {
	return &ImportSchema{
		Objects: []ObjectImport{
			// Child declared before its parent on purpose.
			{Ref: "design", ParentRef: ptrStr("launch"), Name: "Design", Order: ptrInt(1)},
			{Ref: "launch", Name: "Launch", Color: "#60A5FA", Sheets: []string{"Backlog"}},
			{Ref: "team", Name: "Team"},
		},
		Columns: []ColumnImport{
			{Ref: "stage", ObjectRef: "launch", Name: "Stage", Type: "select", Options: []OptionImport{
				{Value: "Draft", Color: "#F59E0B"}, {Value: "Final"},
			}},
			{Ref: "budget", ObjectRef: "launch", Name: "Budget", Type: "budget"},
			{Ref: "triage", ObjectRef: "launch", Sheet: "Backlog", Name: "Triage", Type: "checkbox"},
		},
		Elements: []ElementImport{
			{
				Ref: "brief", ObjectRef: "launch", Title: "Write brief",
				Status: "in_progress", Priority: "high",
				StartDate: ptrStr("2024-01-10"), DueDate: ptrStr("2024-01-15"),
				Assignees: []string{"ana"}, Subelements: []string{"outline", "draft"},
				Values: map[string]any{"stage": "Draft", "budget": 1200.0},
			},
			{Ref: "review", ObjectRef: "launch", Sheet: "Backlog", Title: "Review", Values: map[string]any{"triage": true}},
			{Ref: "mock", ObjectRef: "design", Title: "Mockups", DueDate: ptrStr("2024-01-20")},
			{Ref: "ana", ObjectRef: "team", Title: "Ana"},
		},
		Edges: []EdgeImport{
			{FromRef: "brief", ToRef: "mock", Type: "depends_on"},
			{FromRef: "mock", ToRef: "brief", Type: "depends_on"},
			{FromRef: "brief", ToRef: "ana", Type: "references", Attributes: map[string]any{"hours": 4.0}},
		},
		Tabs: []TabImport{
			{ObjectRef: "launch", Name: "Timeline", Kind: "gantt"},
			{ObjectRef: "launch", Name: "Staffing", Kind: "matrix", SourceRef: "team"},
		},
	}
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	errs := ValidateImportSchema(validMinimalSchema())
	assert.Empty(t, errs)
}

func TestValidateImportSchema_ValidFull(t *testing.T) {
	errs := ValidateImportSchema(validFullSchema())
	assert.Empty(t, errs, "edge cycles are allowed and parents may follow children")
}

func TestValidateImportSchema_MissingRequiredFields(t *testing.T) {
	schema := &ImportSchema{
		Objects:  []ObjectImport{{}},
		Elements: []ElementImport{{}},
	}
	errs := ValidateImportSchema(schema)

	msgs := joinErrors(errs)
	assert.Contains(t, msgs, "objects[0].ref is required")
	assert.Contains(t, msgs, "objects[0].name is required")
	assert.Contains(t, msgs, "elements[0].ref is required")
	assert.Contains(t, msgs, "elements[0].title is required")
	assert.Contains(t, msgs, "elements[0].object_ref is required")
}

func TestValidateImportSchema_DuplicateRefs(t *testing.T) {
	schema := validMinimalSchema()
	schema.Objects = append(schema.Objects, ObjectImport{Ref: "o1", Name: "Again"})
	schema.Elements = append(schema.Elements, ElementImport{Ref: "e1", ObjectRef: "o1", Title: "Again"})

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, `objects[1].ref: duplicate ref "o1"`)
	assert.Contains(t, msgs, `elements[1].ref: duplicate ref "e1"`)
}

func TestValidateImportSchema_ParentCycleRejected(t *testing.T) {
	schema := &ImportSchema{
		Objects: []ObjectImport{
			{Ref: "a", ParentRef: ptrStr("c"), Name: "A"},
			{Ref: "b", ParentRef: ptrStr("a"), Name: "B"},
			{Ref: "c", ParentRef: ptrStr("b"), Name: "C"},
			{Ref: "root", Name: "Root"},
			{Ref: "leaf", ParentRef: ptrStr("root"), Name: "Leaf"},
		},
	}
	errs := ValidateImportSchema(schema)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "circular parent chain")
}

func TestValidateImportSchema_SelfParentRejected(t *testing.T) {
	schema := &ImportSchema{
		Objects: []ObjectImport{{Ref: "a", ParentRef: ptrStr("a"), Name: "A"}},
	}
	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, "cannot be its own parent")
	assert.NotContains(t, msgs, "circular", "a self parent is reported once")
}

func TestValidateImportSchema_UnknownParent(t *testing.T) {
	schema := validMinimalSchema()
	schema.Objects[0].ParentRef = ptrStr("ghost")

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, `objects[0].parent_ref: ref "ghost" not found`)
}

func TestValidateImportSchema_InvalidEnumsAndDates(t *testing.T) {
	schema := validMinimalSchema()
	schema.Elements[0].Status = "started"
	schema.Elements[0].Priority = "asap"
	schema.Elements[0].StartDate = ptrStr("10/01/2024")

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, `elements[0].status: invalid value "started"`)
	assert.Contains(t, msgs, `elements[0].priority: invalid value "asap"`)
	assert.Contains(t, msgs, "elements[0].start_date")
}

func TestValidateImportSchema_Columns(t *testing.T) {
	tests := []struct {
		name    string
		column  ColumnImport
		wantErr string
	}{
		{"unknown type", ColumnImport{Ref: "c", ObjectRef: "o1", Name: "C", Type: "money"}, `type: invalid value "money"`},
		{"options on text", ColumnImport{Ref: "c", ObjectRef: "o1", Name: "C", Type: "text", Options: []OptionImport{{Value: "x"}}}, "text columns have no options"},
		{"duplicate option", ColumnImport{Ref: "c", ObjectRef: "o1", Name: "C", Type: "select", Options: []OptionImport{{Value: "x"}, {Value: " x "}}}, `duplicate option "x"`},
		{"empty option", ColumnImport{Ref: "c", ObjectRef: "o1", Name: "C", Type: "select", Options: []OptionImport{{Value: " "}}}, "options[0].value is required"},
		{"unknown sheet", ColumnImport{Ref: "c", ObjectRef: "o1", Sheet: "Nope", Name: "C", Type: "text"}, `has no sheet "Nope"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			schema := validMinimalSchema()
			schema.Columns = []ColumnImport{tc.column}
			assert.Contains(t, joinErrors(ValidateImportSchema(schema)), tc.wantErr)
		})
	}
}

func TestValidateImportSchema_Values(t *testing.T) {
	schema := validFullSchema()
	schema.Elements[0].Values = map[string]any{
		"budget": "lots",
		"ghost":  1.0,
		"triage": true,
	}

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, "elements[0].values.budget")
	assert.Contains(t, msgs, `column ref "ghost" not found`)
	assert.Contains(t, msgs, `column "triage" is not in the element's scope`)
}

func TestValidateImportSchema_OutOfSetSelectAccepted(t *testing.T) {
	schema := validFullSchema()
	schema.Elements[0].Values = map[string]any{"stage": "Someday"}

	assert.Empty(t, ValidateImportSchema(schema), "out-of-set options are stored, not rejected")
}

func TestValidateImportSchema_Edges(t *testing.T) {
	schema := validFullSchema()
	schema.Edges = []EdgeImport{
		{FromRef: "brief", ToRef: "brief"},
		{FromRef: "brief", ToRef: "ghost"},
		{FromRef: "brief", ToRef: "mock", Type: "blocks"},
		{FromRef: "brief", ToRef: "mock"},
		{FromRef: "brief", ToRef: "mock", Type: "depends_on"},
	}

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, "edges[0]: self-edge")
	assert.Contains(t, msgs, `edges[1].to_ref: ref "ghost" not found`)
	assert.Contains(t, msgs, `edges[2].type: invalid value "blocks"`)
	assert.Contains(t, msgs, "edges[4]: duplicate depends_on edge", "an empty type defaults to depends_on")
}

func TestValidateImportSchema_Tabs(t *testing.T) {
	schema := validFullSchema()
	schema.Tabs = []TabImport{
		{ObjectRef: "launch", Name: "Board", Kind: "kanban"},
		{ObjectRef: "launch", Name: "Plan", Kind: "gantt", SourceRef: "team"},
		{ObjectRef: "launch", Name: "Grid", Kind: "matrix", SourceRef: "ghost"},
	}

	msgs := joinErrors(ValidateImportSchema(schema))
	assert.Contains(t, msgs, `tabs[0].kind: invalid value "kanban"`)
	assert.Contains(t, msgs, "tabs[1].source_ref: only matrix tabs take a source")
	assert.Contains(t, msgs, `tabs[2].source_ref: ref "ghost" not found`)
}

func joinErrors(errs []error) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return b.String()
}
