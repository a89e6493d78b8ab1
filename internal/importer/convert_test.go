package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Minimal(t *testing.T) {
	ws, err := Convert(validMinimalSchema())
	require.NoError(t, err)

	require.Len(t, ws.Objects, 1)
	assert.NotEmpty(t, ws.Objects[0].ID)
	assert.Equal(t, "Launch", ws.Objects[0].Name)
	assert.Nil(t, ws.Objects[0].ParentID)

	require.Len(t, ws.Elements, 1)
	e := ws.Elements[0]
	assert.Equal(t, ws.Objects[0].ID, e.ObjectID)
	assert.Equal(t, domain.StatusTodo, e.Status, "status defaults to todo")
	assert.Equal(t, domain.PriorityMedium, e.Priority, "priority defaults to medium")
	assert.Nil(t, e.StartDate)
	assert.Nil(t, e.Section)

	assert.Empty(t, ws.Edges)
	assert.Empty(t, ws.Tabs)
}

func TestConvert_ParentsPrecedeChildren(t *testing.T) {
	ws, err := Convert(validFullSchema())
	require.NoError(t, err)

	pos := map[string]int{}
	for i, o := range ws.Objects {
		pos[o.ID] = i
	}
	for _, o := range ws.Objects {
		if o.ParentID != nil {
			assert.Less(t, pos[*o.ParentID], pos[o.ID], "%s must come after its parent", o.Name)
		}
	}
	assert.Equal(t, []string{"Launch", "Design", "Team"}, objectNames(ws.Objects))
	require.Len(t, ws.Roots(), 2)
}

func TestConvert_FullWorkspace(t *testing.T) {
	ws, err := Convert(validFullSchema())
	require.NoError(t, err)

	byName := map[string]*domain.Object{}
	for _, o := range ws.Objects {
		byName[o.Name] = o
	}
	launch, design, team := byName["Launch"], byName["Design"], byName["Team"]
	require.NotNil(t, design.ParentID)
	assert.Equal(t, launch.ID, *design.ParentID)
	assert.Equal(t, 1, *design.OrderIndex)

	require.Len(t, ws.Sheets, 1)
	assert.Equal(t, launch.ID, ws.Sheets[0].ObjectID)

	require.Len(t, ws.Columns, 3)
	stage := ws.Columns[0]
	assert.Equal(t, domain.ColumnSelect, stage.Type)
	assert.Equal(t, domain.ColumnScope{ObjectID: launch.ID}, stage.Scope)
	assert.Equal(t, "#F59E0B", stage.Options[0].Color)
	assert.NotEmpty(t, stage.Options[1].Color, "missing option colors come from the palette")
	triage := ws.Columns[2]
	require.NotNil(t, triage.Scope.SheetID)
	assert.Equal(t, ws.Sheets[0].ID, *triage.Scope.SheetID)

	brief := ws.Elements[0]
	assert.Equal(t, domain.StatusInProgress, brief.Status)
	assert.Equal(t, domain.PriorityHigh, brief.Priority)
	assert.Equal(t, "2024-01-10", domain.FormatDay(*brief.StartDate))
	assert.Equal(t, "2024-01-15", domain.FormatDay(*brief.DueDate))
	assert.Equal(t, []domain.Assignee{{WorkerID: "ana", Role: "owner"}}, brief.Assignees)
	require.Len(t, brief.Subelements, 2)
	assert.Equal(t, "draft", brief.Subelements[1].Title)

	review := ws.Elements[1]
	require.NotNil(t, review.SheetID)
	assert.Equal(t, ws.Sheets[0].ID, *review.SheetID)

	require.Len(t, ws.Values, 3)
	values := map[string]any{}
	for _, v := range ws.Values {
		values[v.ColumnID+"/"+v.ElementID] = v.Value
	}
	assert.Equal(t, 1200.0, values[ws.Columns[1].ID+"/"+brief.ID])
	assert.Equal(t, "Draft", values[stage.ID+"/"+brief.ID])
	assert.Equal(t, true, values[triage.ID+"/"+review.ID])

	require.Len(t, ws.Edges, 3)
	assert.Equal(t, brief.ID, ws.Edges[0].FromID)
	assert.Equal(t, domain.EdgeDependsOn, ws.Edges[1].Type)
	assert.Equal(t, domain.EdgeReferences, ws.Edges[2].Type)
	assert.Equal(t, 4.0, ws.Edges[2].Attributes["hours"])

	require.Len(t, ws.Tabs, 2)
	assert.Equal(t, 0, ws.Tabs[0].OrderIndex)
	assert.Equal(t, 1, ws.Tabs[1].OrderIndex)
	assert.Equal(t, team.ID, ws.Tabs[1].Config[matrix.ConfigKeySource])
	assert.Empty(t, ws.Tabs[0].Config)
}

func TestConvert_EmptyEdgeTypeDefaultsToDependsOn(t *testing.T) {
	schema := validFullSchema()
	schema.Edges = []EdgeImport{{FromRef: "brief", ToRef: "mock"}}

	ws, err := Convert(schema)
	require.NoError(t, err)
	require.Len(t, ws.Edges, 1)
	assert.Equal(t, domain.EdgeDependsOn, ws.Edges[0].Type)
}

func TestConvert_UniqueIDs(t *testing.T) {
	ws, err := Convert(validFullSchema())
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, e := range ws.Elements {
		assert.False(t, seen[e.ID], "duplicate element id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestParseImportSchema_TOMLMatchesJSON(t *testing.T) {
	jsonDoc := []byte(`{
  "objects": [{"ref": "o1", "name": "Launch"}],
  "columns": [{"ref": "due", "object_ref": "o1", "name": "Review", "type": "date"},
              {"ref": "pts", "object_ref": "o1", "name": "Points", "type": "number"}],
  "elements": [{"ref": "e1", "object_ref": "o1", "title": "Brief",
                "start_date": "2024-01-10",
                "values": {"due": "2024-02-01", "pts": 3}}]
}`)
	tomlDoc := []byte(`
[[objects]]
ref = "o1"
name = "Launch"

[[columns]]
ref = "due"
object_ref = "o1"
name = "Review"
type = "date"

[[columns]]
ref = "pts"
object_ref = "o1"
name = "Points"
type = "number"

[[elements]]
ref = "e1"
object_ref = "o1"
title = "Brief"
start_date = "2024-01-10"

[elements.values]
due = 2024-02-01
pts = 3
`)

	fromJSON, err := ParseImportSchema(jsonDoc, FormatJSON)
	require.NoError(t, err)
	fromTOML, err := ParseImportSchema(tomlDoc, FormatTOML)
	require.NoError(t, err)

	require.Empty(t, ValidateImportSchema(fromJSON))
	require.Empty(t, ValidateImportSchema(fromTOML))

	wsJSON, err := Convert(fromJSON)
	require.NoError(t, err)
	wsTOML, err := Convert(fromTOML)
	require.NoError(t, err)

	require.Len(t, wsTOML.Values, 2)
	assert.Equal(t, valuesByColumnName(wsJSON), valuesByColumnName(wsTOML))
	assert.Equal(t, "2024-02-01", valuesByColumnName(wsTOML)["Review"])
	assert.Equal(t, 3.0, valuesByColumnName(wsTOML)["Points"])
}

func TestLoadImportSchema_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[objects]]\nref = \"o1\"\nname = \"Launch\"\n"), 0o644))

	schema, err := LoadImportSchema(path)
	require.NoError(t, err)
	require.Len(t, schema.Objects, 1)
	assert.Equal(t, "Launch", schema.Objects[0].Name)

	assert.Equal(t, FormatJSON, FormatFor("seed.json"))
	assert.Equal(t, FormatTOML, FormatFor("SEED.TOML"))
}

func TestLoadImportSchema_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadImportSchema(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing import file")
}

func objectNames(objects []*domain.Object) []string {
	out := make([]string, len(objects))
	for i, o := range objects {
		out[i] = o.Name
	}
	return out
}

func valuesByColumnName(ws *Workspace) map[string]any {
	names := map[string]string{}
	for _, c := range ws.Columns {
		names[c.ID] = c.Name
	}
	out := map[string]any{}
	for _, v := range ws.Values {
		out[names[v.ColumnID]] = v.Value
	}
	return out
}
