package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/workgrid/internal/cli/formatter"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/repository"
	"github.com/alexanderramin/workgrid/internal/service"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testApp returns an App over a fresh in-memory workspace, pinned to
// 2024-01-10.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	session := service.NewSession(repository.NewSQLiteStore(database), service.SessionOptions{
		UnitOfWork: testutil.NewTestUoW(database),
	})
	require.NoError(t, session.Load(context.Background()))

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	return &App{Session: session, Now: func() time.Time { return now }}
}

// seedLaunch creates a "Launch" object holding a scheduled "Brief" element.
func seedLaunch(t *testing.T, app *App) (*domain.Object, *domain.Element) {
	t.Helper()
	ctx := context.Background()
	o, err := app.Session.Objects.Create(ctx, domain.Object{Name: "Launch"})
	require.NoError(t, err)
	e, err := app.Session.Elements.Create(ctx, domain.Element{
		ObjectID:  o.ID,
		Title:     "Brief",
		StartDate: testutil.DayPtr("2024-01-08"),
		DueDate:   testutil.DayPtr("2024-01-12"),
	})
	require.NoError(t, err)
	return o, e
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

// --- objects ---

func TestObjectCmd_AddListShow(t *testing.T) {
	app := testApp(t)

	out := mustExecute(t, app, "object", "add", "Launch", "--color", "#3B82F6")
	assert.Contains(t, out, "Created object Launch")
	out = mustExecute(t, app, "obj", "add", "Design", "--parent", "launch")
	assert.Contains(t, out, "Created object Design")

	design, err := resolveObject(app, "Design")
	require.NoError(t, err)
	require.NotNil(t, design.ParentID)

	out = mustExecute(t, app, "object", "list")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Design")

	out = mustExecute(t, app, "object", "show", "Design")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "SHEETS")
	assert.Contains(t, out, "No elements")
}

func TestObjectCmd_RenameAndMove(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "object", "add", "Launch")
	mustExecute(t, app, "object", "add", "Design", "--parent", "Launch")

	out := mustExecute(t, app, "object", "rename", "Design", "UX")
	assert.Contains(t, out, "to UX")

	out = mustExecute(t, app, "object", "move", "UX", "--root")
	assert.Contains(t, out, "UX")
	ux, err := resolveObject(app, "UX")
	require.NoError(t, err)
	assert.Nil(t, ux.ParentID)

	out = mustExecute(t, app, "object", "move", "UX", "--parent", "Launch")
	assert.Contains(t, stripANSI(out), "Launch › UX")

	_, err = executeCmd(t, app, "object", "move", "UX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to do")
}

func TestObjectCmd_DeleteNeedsConfirmation(t *testing.T) {
	app := testApp(t)
	o, _ := seedLaunch(t, app)
	mustExecute(t, app, "object", "add", "Design", "--parent", "Launch")

	_, err := executeCmd(t, app, "object", "delete", "Launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	_, ok := app.Session.Store.Object(o.ID)
	assert.True(t, ok, "nothing deleted without confirmation")

	out := mustExecute(t, app, "object", "delete", "Launch", "--yes")
	assert.Contains(t, out, "Deleted object Launch (2 objects, 1 elements)")
	assert.Empty(t, app.Session.Store.Objects())
	assert.Empty(t, app.Session.Store.Elements())
}

func TestObjectCmd_UnknownObject(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "object", "show", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object not found: "nope"`)
}

// --- elements ---

func TestElementCmd_AddAndList(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "object", "add", "Launch")

	out := mustExecute(t, app, "element", "add", "Launch", "Brief",
		"--priority", "high", "--start", "2024-01-08", "--due", "2024-01-12", "--assignee", "ana:owner")
	assert.Contains(t, out, "Created element Brief")
	assert.Contains(t, out, "in Launch")

	e, err := resolveElement(app, "Brief")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, e.Status)
	assert.Equal(t, domain.PriorityHigh, e.Priority)
	require.Len(t, e.Assignees, 1)
	assert.Equal(t, "owner", e.Assignees[0].Role)

	out = mustExecute(t, app, "el", "list", "Launch")
	assert.Contains(t, out, "Brief")

	out = mustExecute(t, app, "element", "list", "Launch", "--status", "done")
	assert.NotContains(t, out, "Brief")
}

func TestElementCmd_RejectsBadDate(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "object", "add", "Launch")

	_, err := executeCmd(t, app, "element", "add", "Launch", "Brief", "--due", "next week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --due")
	assert.Empty(t, app.Session.Store.Elements())
}

func TestElementCmd_Update(t *testing.T) {
	app := testApp(t)
	_, e := seedLaunch(t, app)

	out := mustExecute(t, app, "element", "update", "Brief", "--status", "in_progress", "--due", "none")
	assert.Contains(t, out, "Updated element Brief")

	got, ok := app.Session.Store.Element(e.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Nil(t, got.DueDate)
	require.NotNil(t, got.StartDate, "untouched fields stay")

	_, err := executeCmd(t, app, "element", "update", "Brief")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestElementCmd_ShowWithChecklistAndBlockers(t *testing.T) {
	t.Setenv(formatter.EnvMarkdownStyle, "notty")
	app := testApp(t)
	o, _ := seedLaunch(t, app)
	_, err := app.Session.Elements.Create(context.Background(), domain.Element{ObjectID: o.ID, Title: "Research"})
	require.NoError(t, err)

	mustExecute(t, app, "element", "update", "Brief", "-d", "# Goals\n\nShip it.")
	out := mustExecute(t, app, "element", "sub", "add", "Brief", "outline")
	assert.Contains(t, out, `Added "outline"`)
	out = mustExecute(t, app, "element", "sub", "toggle", "Brief", "outline")
	assert.Contains(t, out, "☑ outline")

	mustExecute(t, app, "edge", "add", "Research", "Brief")

	out = mustExecute(t, app, "element", "show", "Brief")
	assert.Contains(t, out, "Goals")
	assert.Contains(t, out, "☑ outline")
	assert.Contains(t, out, "Blocked by 1 open dependency")
}

func TestElementCmd_Delete(t *testing.T) {
	app := testApp(t)
	_, e := seedLaunch(t, app)

	out := mustExecute(t, app, "element", "delete", "Brief", "-y")
	assert.Contains(t, out, "Deleted element Brief")
	assert.False(t, app.Session.Store.HasElement(e.ID))
}

// --- columns ---

func TestColumnCmd_SelectValues(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)

	out := mustExecute(t, app, "column", "add", "Launch", "Stage", "--type", "select",
		"--option", "Draft=#F59E0B", "--option", "Final")
	assert.Contains(t, out, "Created select column Stage")

	out = mustExecute(t, app, "column", "set", "Brief", "Stage", "Draft")
	assert.Contains(t, out, "Brief · Stage = ")
	assert.Contains(t, out, "Draft")
	assert.NotContains(t, out, "not in the option list")

	out = mustExecute(t, app, "column", "set", "Brief", "Stage", "Shelved")
	assert.Contains(t, out, "not in the option list: Shelved")

	out = mustExecute(t, app, "column", "grid", "Launch")
	assert.Contains(t, out, "Stage")
	assert.Contains(t, out, "Shelved")
}

func TestColumnCmd_CheckboxToggle(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)
	mustExecute(t, app, "col", "add", "Launch", "Signed off", "--type", "checkbox")

	out := mustExecute(t, app, "column", "toggle", "Brief", "Signed off")
	assert.Contains(t, out, "☑")
	out = mustExecute(t, app, "column", "toggle", "Brief", "Signed off")
	assert.Contains(t, out, "☐")
}

func TestColumnCmd_HideAndShow(t *testing.T) {
	app := testApp(t)
	o, _ := seedLaunch(t, app)
	mustExecute(t, app, "column", "add", "Launch", "Notes", "--type", "text")

	scope := domain.ColumnScope{ObjectID: o.ID}
	var notes *domain.CustomColumn
	for _, c := range app.Session.Columns.AllColumns(scope) {
		if c.Name == "Notes" {
			notes = c
		}
	}
	require.NotNil(t, notes)

	out := mustExecute(t, app, "column", "hide", notes.ID)
	assert.Contains(t, out, "Column Notes is hidden")
	for _, c := range app.Session.Columns.ListColumns(scope) {
		assert.NotEqual(t, notes.ID, c.ID, "hidden columns are not listed")
	}

	out = mustExecute(t, app, "column", "list", "Launch", "--all")
	assert.Contains(t, out, "Notes")
	assert.Contains(t, out, "hidden")

	out = mustExecute(t, app, "column", "show", notes.ID)
	assert.Contains(t, out, "Column Notes is visible")
}

func TestColumnCmd_Options(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)
	mustExecute(t, app, "column", "add", "Launch", "Stage", "--type", "select", "--option", "Draft")
	mustExecute(t, app, "column", "set", "Brief", "Stage", "Draft")

	o, err := resolveObject(app, "Launch")
	require.NoError(t, err)
	scope := domain.ColumnScope{ObjectID: o.ID}
	stage, err := resolveColumn(app, "Stage", &scope)
	require.NoError(t, err)

	out := mustExecute(t, app, "column", "option", "add", stage.ID, "Final", "--color", "#10B981")
	assert.Contains(t, out, "Final")

	out = mustExecute(t, app, "column", "option", "rename", stage.ID, "Draft", "Sketch")
	assert.Contains(t, out, "Sketch")
	assert.NotContains(t, out, "Draft")

	e, err := resolveElement(app, "Brief")
	require.NoError(t, err)
	v, ok := app.Session.Columns.GetValue(stage.ID, e.ID)
	require.True(t, ok)
	assert.Equal(t, "Draft", v, "stored values keep the old option name")
}

func TestColumnCmd_AddRequiresType(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)

	_, err := executeCmd(t, app, "column", "add", "Launch", "Stage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

// --- edges ---

func TestEdgeCmd_AddListDelete(t *testing.T) {
	app := testApp(t)
	o, _ := seedLaunch(t, app)
	_, err := app.Session.Elements.Create(context.Background(), domain.Element{ObjectID: o.ID, Title: "Research"})
	require.NoError(t, err)

	out := mustExecute(t, app, "edge", "add", "Research", "Brief", "--attr", "lag=2")
	assert.Contains(t, out, "Linked Research depends_on Brief")

	edges := app.Session.Store.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, float64(2), edges[0].Attributes["lag"])

	out = mustExecute(t, app, "link", "list", "Brief")
	assert.Contains(t, out, "Research")

	out = mustExecute(t, app, "edge", "delete", edges[0].ID)
	assert.Contains(t, out, "Removed link Research depends_on Brief")
	assert.Empty(t, app.Session.Store.Edges())
}

func TestEdgeCmd_CycleIsReported(t *testing.T) {
	app := testApp(t)
	o, _ := seedLaunch(t, app)
	_, err := app.Session.Elements.Create(context.Background(), domain.Element{ObjectID: o.ID, Title: "Research"})
	require.NoError(t, err)

	mustExecute(t, app, "edge", "add", "Research", "Brief")
	out := mustExecute(t, app, "edge", "add", "Brief", "Research")
	assert.Contains(t, out, "form a cycle")

	out = mustExecute(t, app, "doctor")
	assert.Contains(t, out, "depends_on links form a cycle")
}

func TestParseAttrs(t *testing.T) {
	attrs, err := parseAttrs([]string{"hours=4", "billable=true", "role=lead", "note="})
	require.NoError(t, err)
	assert.Equal(t, float64(4), attrs["hours"])
	assert.Equal(t, true, attrs["billable"])
	assert.Equal(t, "lead", attrs["role"])
	v, ok := attrs["note"]
	assert.True(t, ok)
	assert.Nil(t, v)

	_, err = parseAttrs([]string{"nokey"})
	assert.Error(t, err)
}

// --- sheets and tabs ---

func TestSheetAndTabCmds(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)

	out := mustExecute(t, app, "sheet", "add", "Launch", "Backlog")
	assert.Contains(t, out, "Created sheet Backlog")
	out = mustExecute(t, app, "sheet", "list", "Launch")
	assert.Contains(t, out, "Backlog")

	out = mustExecute(t, app, "tab", "add", "Launch", "Board")
	assert.Contains(t, out, "Created elements tab Board")
	out = mustExecute(t, app, "tab", "add", "Launch", "Plan", "--kind", "gantt")
	assert.Contains(t, out, "Created gantt tab Plan")

	out = mustExecute(t, app, "tab", "rename", "Plan", "Timeline")
	assert.Contains(t, out, "Renamed tab Plan to Timeline")

	out = mustExecute(t, app, "tab", "list", "Launch")
	assert.Contains(t, out, "Board")
	assert.Contains(t, out, "Timeline")

	_, err := executeCmd(t, app, "sheet", "delete", "Backlog")
	require.Error(t, err)
	out = mustExecute(t, app, "sheet", "delete", "Backlog", "--yes")
	assert.Contains(t, out, "Deleted sheet Backlog")
}

// --- matrix ---

func TestMatrixCmd_ConfigureAndSet(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)
	ctx := context.Background()
	team, err := app.Session.Objects.Create(ctx, domain.Object{Name: "Team"})
	require.NoError(t, err)
	_, err = app.Session.Elements.Create(ctx, domain.Element{ObjectID: team.ID, Title: "Ana"})
	require.NoError(t, err)

	mustExecute(t, app, "tab", "add", "Launch", "Staffing", "--kind", "matrix")

	out := mustExecute(t, app, "matrix", "configure", "Staffing", "Team")
	assert.Contains(t, out, "Matrix Staffing now crosses with Team")

	out = mustExecute(t, app, "matrix", "set", "Brief", "Ana", "hours=4")
	assert.Contains(t, out, "hours=4")

	out = mustExecute(t, app, "matrix", "show", "Staffing")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "Brief")
	assert.Contains(t, out, "hours=4")
}

// --- gantt ---

func TestGanttCmd_ShowAndShift(t *testing.T) {
	app := testApp(t)
	_, e := seedLaunch(t, app)

	out := mustExecute(t, app, "gantt", "show", "Launch")
	assert.Contains(t, out, "Brief")

	out = mustExecute(t, app, "gantt", "shift", "Brief", "--days", "2")
	assert.Contains(t, out, "Brief: Saved 2024-01-10 → 2024-01-14")

	got, ok := app.Session.Store.Element(e.ID)
	require.True(t, ok)
	assert.Equal(t, "2024-01-10", domain.FormatDay(*got.StartDate))
	assert.Equal(t, "2024-01-14", domain.FormatDay(*got.DueDate))

	out = mustExecute(t, app, "timeline", "shift", "Brief", "--days", "0")
	assert.Contains(t, out, "No change.")
}

func TestGanttCmd_TUINeedsTerminal(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)

	_, err := executeCmd(t, app, "gantt", "tui", "Launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}

// --- import and doctor ---

func TestImportCmd(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "objects": [{"ref": "launch", "name": "Launch", "sheets": ["Backlog"]}],
  "elements": [
    {"ref": "brief", "object_ref": "launch", "title": "Brief", "start_date": "2024-01-08", "due_date": "2024-01-12"},
    {"ref": "research", "object_ref": "launch", "title": "Research"}
  ],
  "edges": [{"from_ref": "research", "to_ref": "brief", "type": "depends_on"}]
}`), 0o644))

	out := mustExecute(t, app, "import", path)
	assert.Contains(t, out, "Imported workspace")
	assert.Contains(t, out, "roots: Launch")
	assert.Contains(t, out, "1 objects · 2 elements · 0 columns · 1 edges · 0 tabs")

	out = mustExecute(t, app, "object", "list", "-e")
	assert.Contains(t, out, "Research")
}

func TestImportCmd_InvalidFileWritesNothing(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"elements": [{"ref": "x", "object_ref": "missing", "title": "Orphan"}]}`), 0o644))

	_, err := executeCmd(t, app, "import", path)
	require.Error(t, err)
	assert.Empty(t, app.Session.Store.Elements())
}

func TestDoctorCmd_Clean(t *testing.T) {
	app := testApp(t)
	seedLaunch(t, app)

	out := mustExecute(t, app, "doctor")
	assert.Contains(t, out, "No consistency warnings")
	assert.Contains(t, out, "No dependency cycles.")
}

func TestElementCmd_UpdateClearsSheetAndSection(t *testing.T) {
	app := testApp(t)
	_, e := seedLaunch(t, app)
	mustExecute(t, app, "sheet", "add", "Launch", "Backlog")

	mustExecute(t, app, "element", "update", "Brief", "--sheet", "Backlog", "--section", "Q1")
	got, ok := app.Session.Store.Element(e.ID)
	require.True(t, ok)
	require.NotNil(t, got.SheetID)
	require.NotNil(t, got.Section)

	mustExecute(t, app, "element", "update", "Brief", "--sheet", "none", "--section", "")
	got, ok = app.Session.Store.Element(e.ID)
	require.True(t, ok)
	assert.Nil(t, got.SheetID)
	assert.Nil(t, got.Section)
}
