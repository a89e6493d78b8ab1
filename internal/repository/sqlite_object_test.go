package repository_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectRepo_CreateAndFetch(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	root := testutil.MustCreateObject(t, store, "Engineering", testutil.WithColor("#FF0000"))
	child := testutil.MustCreateObject(t, store, "Platform", testutil.WithParent(root.ID), testutil.WithOrderIndex(2))

	got, err := store.GetObject(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)
	require.NotNil(t, got.OrderIndex)
	assert.Equal(t, 2, *got.OrderIndex)
	assert.False(t, got.CreatedAt.IsZero())

	all, err := store.FetchObjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, root.ID, all[0].ID, "objects come back in insertion order")
	assert.Equal(t, "#FF0000", all[0].Color)
	assert.Nil(t, all[0].OrderIndex)
}

func TestObjectRepo_CreateRejectsMissingParent(t *testing.T) {
	store := testutil.NewTestStore(t)

	_, err := store.CreateObject(context.Background(), *testutil.NewTestObject("Orphan", testutil.WithParent("nope")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestObjectRepo_ReparentIntoOwnSubtreeRejected(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	a := testutil.MustCreateObject(t, store, "A")
	b := testutil.MustCreateObject(t, store, "B", testutil.WithParent(a.ID))
	c := testutil.MustCreateObject(t, store, "C", testutil.WithParent(b.ID))

	_, err := store.UpdateObject(ctx, a.ID, domain.ObjectPatch{ParentID: &c.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.UpdateObject(ctx, a.ID, domain.ObjectPatch{ParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	empty := ""
	moved, err := store.UpdateObject(ctx, c.ID, domain.ObjectPatch{ParentID: &empty})
	require.NoError(t, err)
	assert.True(t, moved.IsRoot())
}

func TestObjectRepo_DeleteCascades(t *testing.T) {
	store := testutil.NewTestStore(t)
	ctx := context.Background()

	root := testutil.MustCreateObject(t, store, "Root")
	child := testutil.MustCreateObject(t, store, "Child", testutil.WithParent(root.ID))
	e1 := testutil.MustCreateElement(t, store, child.ID, "Task", testutil.WithSubelements("step"))
	e2 := testutil.MustCreateElement(t, store, root.ID, "Other")
	_, err := store.CreateEdge(ctx, domain.EdgePatch{FromID: e1.ID, ToID: e2.ID, Type: domain.EdgeDependsOn})
	require.NoError(t, err)

	require.NoError(t, store.DeleteObject(ctx, root.ID))

	_, err = store.GetObject(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "child object should be cascade-deleted")
	_, err = store.GetElement(ctx, e1.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "elements should be cascade-deleted")
	edges, err := store.FetchEdges(ctx)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestObjectRepo_DeleteUnknown(t *testing.T) {
	store := testutil.NewTestStore(t)

	err := store.DeleteObject(context.Background(), "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "object", nf.Kind)
}
