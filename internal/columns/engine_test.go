package columns_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/workgrid/internal/columns"
	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	spy     *testutil.SpyCollaborator
	store   *entitystore.Store
	engine  *columns.Engine
	warns   *domain.WarningRecorder
	scope   domain.ColumnScope
	element *domain.Element
}

func setup(t *testing.T) *fixture {
	t.Helper()
	spy := testutil.NewSpyCollaborator(testutil.NewTestStore(t))
	obj := testutil.MustCreateObject(t, spy, "Launch")
	el := testutil.MustCreateElement(t, spy, obj.ID, "Write copy", testutil.WithStatus(domain.StatusTodo))

	warns := &domain.WarningRecorder{}
	store := entitystore.New(spy, warns)
	require.NoError(t, store.Load(context.Background()))
	spy.Reset()
	return &fixture{
		spy:     spy,
		store:   store,
		engine:  columns.New(store),
		warns:   warns,
		scope:   domain.ColumnScope{ObjectID: obj.ID},
		element: el,
	}
}

func (f *fixture) create(t *testing.T, name string, ct domain.ColumnType, options ...string) *domain.CustomColumn {
	t.Helper()
	var opts []domain.ColumnOption
	for _, o := range options {
		opts = append(opts, domain.ColumnOption{Value: o})
	}
	c, err := f.engine.CreateColumn(context.Background(), columns.NewColumn{Scope: f.scope, Name: name, Type: ct, Options: opts})
	require.NoError(t, err)
	return c
}

func names(cols []*domain.CustomColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestListColumns_BuiltInsInDefaultOrder(t *testing.T) {
	f := setup(t)

	cols := f.engine.ListColumns(f.scope)

	assert.Equal(t, []string{"Assignees", "Priority", "Status", "Due Date"}, names(cols))
	for _, c := range cols {
		assert.True(t, c.IsBuiltIn())
		assert.True(t, c.IsVisible)
	}
}

func TestListColumns_CustomAfterBuiltIns(t *testing.T) {
	f := setup(t)
	f.create(t, "Estimate", domain.ColumnNumber)
	f.create(t, "Notes", domain.ColumnText)

	assert.Equal(t, []string{"Assignees", "Priority", "Status", "Due Date", "Estimate", "Notes"},
		names(f.engine.ListColumns(f.scope)))
}

func TestMoveColumn_BuiltInCreatesOverride(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	est := f.create(t, "Estimate", domain.ColumnNumber)

	_, err := f.engine.MoveColumn(ctx, columns.BuiltInID(f.scope, domain.BuiltInAssignees), est.Position+1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Priority", "Status", "Due Date", "Estimate", "Assignees"},
		names(f.engine.ListColumns(f.scope)))
	assert.Equal(t, 2, f.spy.Calls("CreateCustomColumn"), "Estimate plus one override row")
}

func TestDeleteColumn_BuiltInHidesAndRestoreShows(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	statusID := columns.BuiltInID(f.scope, domain.BuiltInStatus)

	require.NoError(t, f.engine.DeleteColumn(ctx, statusID))

	assert.NotContains(t, names(f.engine.ListColumns(f.scope)), "Status")
	assert.Contains(t, names(f.engine.AllColumns(f.scope)), "Status")

	restored, err := f.engine.RestoreBuiltIn(ctx, f.scope, domain.BuiltInStatus)
	require.NoError(t, err)
	assert.True(t, restored.IsVisible)
	assert.Equal(t, []string{"Assignees", "Priority", "Status", "Due Date"}, names(f.engine.ListColumns(f.scope)))

	// Data lives on the element and survived the hide/restore cycle.
	v, ok := f.engine.GetValue(statusID, f.element.ID)
	require.True(t, ok)
	assert.Equal(t, "todo", v)
	assert.Equal(t, 0, f.spy.Calls("UpdateElement"))
}

func TestRestoreBuiltIn_VisibleIsNoop(t *testing.T) {
	f := setup(t)
	_, err := f.engine.RestoreBuiltIn(context.Background(), f.scope, domain.BuiltInDueDate)
	require.NoError(t, err)
	assert.Equal(t, 0, f.spy.Mutations())
}

func TestDeleteColumn_CustomRemovesIt(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Estimate", domain.ColumnNumber)

	require.NoError(t, f.engine.DeleteColumn(context.Background(), c.ID))

	assert.NotContains(t, names(f.engine.AllColumns(f.scope)), "Estimate")
	_, err := f.engine.Column(c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetValue_NumberRoundTrip(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Estimate", domain.ColumnNumber)
	ctx := context.Background()

	for raw, want := range map[any]any{"12": 12.0, 3: 3.0, 4.5: 4.5} {
		res, err := f.engine.SetValue(ctx, c.ID, f.element.ID, raw)
		require.NoError(t, err)
		assert.Equal(t, want, res.Value)
		got, ok := f.engine.GetValue(c.ID, f.element.ID)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, err := f.engine.SetValue(ctx, c.ID, f.element.ID, "")
	require.NoError(t, err)
	_, ok := f.engine.GetValue(c.ID, f.element.ID)
	assert.False(t, ok)
}

func TestSetValue_InvalidRejectedBeforeStore(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Estimate", domain.ColumnNumber)
	f.spy.Reset()

	_, err := f.engine.SetValue(context.Background(), c.ID, f.element.ID, "twelve")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.spy.Mutations())
}

func TestSetValue_SelectOutOfSetStoredAndFlagged(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Channel", domain.ColumnSelect, "email", "social")

	res, err := f.engine.SetValue(context.Background(), c.ID, f.element.ID, "billboard")

	require.NoError(t, err)
	assert.Equal(t, []string{"billboard"}, res.OutOfSet)
	got, ok := f.engine.GetValue(c.ID, f.element.ID)
	require.True(t, ok)
	assert.Equal(t, "billboard", got)
	assert.True(t, f.warns.Has(domain.WarnOptionOutOfSet))
}

func TestToggleCheckbox(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Approved", domain.ColumnCheckbox)
	ctx := context.Background()

	res, err := f.engine.ToggleCheckbox(ctx, c.ID, f.element.ID)
	require.NoError(t, err)
	assert.Equal(t, true, res.Value)

	res, err = f.engine.ToggleCheckbox(ctx, c.ID, f.element.ID)
	require.NoError(t, err)
	assert.Equal(t, false, res.Value)

	text := f.create(t, "Notes", domain.ColumnText)
	_, err = f.engine.ToggleCheckbox(ctx, text.ID, f.element.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetValue_ComputedColumnReadOnly(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Total", domain.ColumnFormula)
	_, err := f.engine.SetValue(context.Background(), c.ID, f.element.ID, "1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetValue_UnknownElement(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Notes", domain.ColumnText)
	_, err := f.engine.SetValue(context.Background(), c.ID, "nope", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetValue_BuiltInWritesElement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.SetValue(ctx, columns.BuiltInID(f.scope, domain.BuiltInStatus), f.element.ID, "in_progress")
	require.NoError(t, err)
	_, err = f.engine.SetValue(ctx, columns.BuiltInID(f.scope, domain.BuiltInDueDate), f.element.ID, "2024-06-30")
	require.NoError(t, err)
	_, err = f.engine.SetValue(ctx, columns.BuiltInID(f.scope, domain.BuiltInAssignees), f.element.ID, "ana, bo")
	require.NoError(t, err)

	el, ok := f.store.Element(f.element.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, el.Status)
	assert.Equal(t, "2024-06-30", domain.FormatDay(*el.DueDate))
	require.Len(t, el.Assignees, 2)
	assert.Equal(t, "ana", el.Assignees[0].WorkerID)
	assert.Equal(t, 3, f.spy.Calls("UpdateElement"))
	assert.Equal(t, 0, f.spy.Calls("SetCustomColumnValue"))
}

func TestSetValue_BuiltInEnumValidated(t *testing.T) {
	f := setup(t)
	_, err := f.engine.SetValue(context.Background(), columns.BuiltInID(f.scope, domain.BuiltInPriority), f.element.ID, "critical")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.spy.Mutations())
}

func TestSetValue_StoreFailureSurfaces(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Notes", domain.ColumnText)
	f.spy.FailOn("SetCustomColumnValue", testutil.ErrInjected)

	_, err := f.engine.SetValue(context.Background(), c.ID, f.element.ID, "hello")

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, testutil.ErrInjected)
}

func TestCreateColumn_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.CreateColumn(ctx, columns.NewColumn{Scope: f.scope, Name: " ", Type: domain.ColumnText})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.engine.CreateColumn(ctx, columns.NewColumn{Scope: f.scope, Name: "X", Type: "sparkline"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.engine.CreateColumn(ctx, columns.NewColumn{Scope: f.scope, Name: "X", Type: domain.ColumnSelect,
		Options: []domain.ColumnOption{{Value: "a"}, {Value: "a"}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.engine.CreateColumn(ctx, columns.NewColumn{Scope: domain.ColumnScope{ObjectID: "ghost"}, Name: "X", Type: domain.ColumnText})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.spy.Mutations())
}

func TestRenameColumn(t *testing.T) {
	f := setup(t)
	c := f.create(t, "Estimate", domain.ColumnNumber)

	renamed, err := f.engine.RenameColumn(context.Background(), c.ID, "Points")

	require.NoError(t, err)
	assert.Equal(t, "Points", renamed.Name)
	assert.Contains(t, names(f.engine.ListColumns(f.scope)), "Points")
}
