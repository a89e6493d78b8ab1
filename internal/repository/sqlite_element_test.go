package repository_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementRepo_CreateWithChildren(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")

	e := testutil.MustCreateElement(t, store, obj.ID, "Write docs",
		testutil.WithDates("2024-01-10", "2024-01-15"),
		testutil.WithPriority(domain.PriorityHigh),
		testutil.WithSection("Docs"),
		testutil.WithAssignees("w-1", "w-2"),
		testutil.WithSubelements("outline", "draft"),
	)

	got, err := store.GetElement(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", got.Title)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, domain.StatusTodo, got.Status)
	assert.Equal(t, "2024-01-10", domain.FormatDay(*got.StartDate))
	assert.Equal(t, "2024-01-15", domain.FormatDay(*got.DueDate))
	assert.Equal(t, "Docs", domain.StrOrEmpty(got.Section))
	require.Len(t, got.Subelements, 2)
	assert.Equal(t, "outline", got.Subelements[0].Title)
	assert.Equal(t, "draft", got.Subelements[1].Title)
	require.Len(t, got.Assignees, 2)
	assert.Equal(t, "w-1", got.Assignees[0].WorkerID)
}

func TestElementRepo_CreateValidates(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")

	_, err := store.CreateElement(ctx, *testutil.NewTestElement(obj.ID, ""))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.CreateElement(ctx, *testutil.NewTestElement(obj.ID, "x", testutil.WithStatus("archived")))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.CreateElement(ctx, *testutil.NewTestElement("missing", "x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElementRepo_FetchByObject(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	a := testutil.MustCreateObject(t, store, "A")
	b := testutil.MustCreateObject(t, store, "B")
	testutil.MustCreateElement(t, store, a.ID, "a1")
	testutil.MustCreateElement(t, store, a.ID, "a2")
	testutil.MustCreateElement(t, store, b.ID, "b1")

	onlyA, err := store.FetchElements(ctx, &a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "a1", onlyA[0].Title)

	all, err := store.FetchElements(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestElementRepo_UpdateDatesLeaveVersusClear(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")
	e := testutil.MustCreateElement(t, store, obj.ID, "Ship", testutil.WithDates("2024-01-10", "2024-01-15"))

	title := "Ship it"
	got, err := store.UpdateElement(ctx, e.ID, domain.ElementPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Ship it", got.Title)
	require.NotNil(t, got.StartDate, "unset date patch leaves the date alone")
	require.NotNil(t, got.DueDate)

	got, err = store.UpdateElement(ctx, e.ID, domain.ElementPatch{
		StartDate: domain.ClearDate(),
		DueDate:   domain.SetDate(testutil.Day("2024-02-01")),
	})
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Equal(t, "2024-02-01", domain.FormatDay(*got.DueDate))
}

func TestElementRepo_UpdateReplacesAssignees(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")
	e := testutil.MustCreateElement(t, store, obj.ID, "Ship", testutil.WithAssignees("w-1"))

	assignees := []domain.Assignee{{WorkerID: "w-2", Role: "reviewer"}, {WorkerID: "w-3"}}
	got, err := store.UpdateElement(ctx, e.ID, domain.ElementPatch{Assignees: &assignees})
	require.NoError(t, err)
	require.Len(t, got.Assignees, 2)
	assert.Equal(t, "w-2", got.Assignees[0].WorkerID)
	assert.Equal(t, "reviewer", got.Assignees[0].Role)
	assert.Equal(t, "owner", got.Assignees[1].Role)
}

func TestElementRepo_UpdateUnknownElement(t *testing.T) {
	store := testutil.NewTestStore(t)
	title := "x"
	_, err := store.UpdateElement(context.Background(), "missing", domain.ElementPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElementRepo_Subelements(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")
	e := testutil.MustCreateElement(t, store, obj.ID, "Ship", testutil.WithSubelements("one"))

	s, err := store.CreateSubelement(ctx, domain.SubelementPatch{ElementID: e.ID, Title: "two"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.OrderIndex, "appended after existing items")

	toggled, err := store.ToggleSubelementComplete(ctx, s.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	got, err := store.GetElement(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CompletedSubelements())

	_, err = store.ToggleSubelementComplete(ctx, "missing", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.CreateSubelement(ctx, domain.SubelementPatch{ElementID: "missing", Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElementRepo_DeleteSheetKeepsElements(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()
	obj := testutil.MustCreateObject(t, store, "Launch")
	sheet, err := store.CreateSheet(ctx, domain.Sheet{ObjectID: obj.ID, Name: "Q1"})
	require.NoError(t, err)
	e := testutil.MustCreateElement(t, store, obj.ID, "Ship", testutil.WithSheet(sheet.ID))
	require.Equal(t, sheet.ID, domain.StrOrEmpty(e.SheetID))

	require.NoError(t, store.DeleteSheet(ctx, sheet.ID))

	got, err := store.GetElement(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SheetID)
}
