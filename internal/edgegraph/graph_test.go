package edgegraph_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/edgegraph"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, titles ...string) (*edgegraph.Graph, *testutil.SpyCollaborator, *entitystore.Store, []*domain.Element) {
	t.Helper()
	spy := testutil.NewSpyCollaborator(testutil.NewTestStore(t))
	obj := testutil.MustCreateObject(t, spy, "Platform")
	var elems []*domain.Element
	for _, title := range titles {
		elems = append(elems, testutil.MustCreateElement(t, spy, obj.ID, title))
	}
	store := entitystore.New(spy, nil)
	require.NoError(t, store.Load(context.Background()))
	spy.Reset()
	return edgegraph.New(store), spy, store, elems
}

func TestCreateEdge_IndexedBothWays(t *testing.T) {
	g, _, _, el := setup(t, "A", "B")
	ctx := context.Background()

	e, err := g.CreateEdge(ctx, el[0].ID, el[1].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)

	out := g.EdgesFor(el[0].ID)
	in := g.EdgesFor(el[1].ID)
	require.Len(t, out.Outgoing, 1)
	require.Len(t, in.Incoming, 1)
	assert.Equal(t, e.ID, out.Outgoing[0].ID)
	assert.Equal(t, e.ID, in.Incoming[0].ID)
	assert.Empty(t, out.Incoming)
	assert.Empty(t, in.Outgoing)

	require.NoError(t, g.DeleteEdge(ctx, e.ID))
	assert.Empty(t, g.EdgesFor(el[0].ID).Outgoing)
	assert.Empty(t, g.EdgesFor(el[1].ID).Incoming)
}

func TestCreateEdge_SelfLoopRejected(t *testing.T) {
	g, spy, _, el := setup(t, "A")
	_, err := g.CreateEdge(context.Background(), el[0].ID, el[0].ID, domain.EdgeDependsOn, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, spy.Mutations())
}

func TestCreateEdge_UnknownType(t *testing.T) {
	g, spy, _, el := setup(t, "A", "B")
	_, err := g.CreateEdge(context.Background(), el[0].ID, el[1].ID, "blocks", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, spy.Mutations())
}

func TestCreateEdge_MissingElement(t *testing.T) {
	g, spy, _, el := setup(t, "A")
	_, err := g.CreateEdge(context.Background(), el[0].ID, "ghost", domain.EdgeSpawns, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, spy.Mutations())
}

func TestCreateEdge_Duplicate(t *testing.T) {
	g, spy, _, el := setup(t, "A", "B")
	ctx := context.Background()
	_, err := g.CreateEdge(ctx, el[0].ID, el[1].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)

	_, err = g.CreateEdge(ctx, el[0].ID, el[1].ID, domain.EdgeDependsOn, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, spy.Calls("CreateEdge"))

	_, err = g.CreateEdge(ctx, el[0].ID, el[1].ID, domain.EdgeSpawns, nil)
	assert.NoError(t, err, "another type on the same pair is allowed")
}

func TestDeleteEdge_Unknown(t *testing.T) {
	g, spy, _, _ := setup(t)
	err := g.DeleteEdge(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, spy.Calls("DeleteEdge"))
}

func TestCreateEdge_StoreFailure(t *testing.T) {
	g, spy, _, el := setup(t, "A", "B")
	spy.FailOn("CreateEdge", testutil.ErrInjected)

	_, err := g.CreateEdge(context.Background(), el[0].ID, el[1].ID, domain.EdgeDependsOn, nil)

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Empty(t, g.EdgesFor(el[0].ID).Outgoing)
}

func TestIndexRebuiltOnExternalReload(t *testing.T) {
	g, spy, store, el := setup(t, "A", "B")
	ctx := context.Background()
	assert.Empty(t, g.EdgesFor(el[0].ID).Outgoing)

	// Another session writes directly to the collaborator.
	_, err := spy.CreateEdge(ctx, domain.EdgePatch{FromID: el[0].ID, ToID: el[1].ID, Type: domain.EdgeReferences})
	require.NoError(t, err)
	assert.Empty(t, g.EdgesFor(el[0].ID).Outgoing)

	require.NoError(t, store.ReloadEdges(ctx))
	assert.Len(t, g.EdgesFor(el[0].ID).Outgoing, 1)
}

func TestBlockers(t *testing.T) {
	g, _, store, el := setup(t, "Design", "Review", "Build")
	ctx := context.Background()
	_, err := g.CreateEdge(ctx, el[0].ID, el[2].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)
	_, err = g.CreateEdge(ctx, el[1].ID, el[2].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)
	done := domain.StatusDone
	_, err = store.Collaborator().UpdateElement(ctx, el[0].ID, domain.ElementPatch{Status: &done})
	require.NoError(t, err)
	require.NoError(t, store.ReloadElements(ctx))

	blockers := g.Blockers(el[2].ID, func(e *domain.Element) bool { return e.Status.IsTerminal() })

	require.Len(t, blockers, 1)
	assert.Equal(t, el[1].ID, blockers[0].FromID)
}

func TestUpstream_ToleratesCycles(t *testing.T) {
	g, _, _, el := setup(t, "A", "B", "C")
	ctx := context.Background()
	for _, pair := range [][2]int{{0, 1}, {1, 2}, {2, 0}} {
		_, err := g.CreateEdge(ctx, el[pair[0]].ID, el[pair[1]].ID, domain.EdgeDependsOn, nil)
		require.NoError(t, err)
	}

	up := g.Upstream(el[2].ID, domain.EdgeDependsOn)

	assert.Equal(t, []string{el[1].ID, el[0].ID}, up)
	start, cyclic := g.HasCycle(domain.EdgeDependsOn)
	assert.True(t, cyclic)
	assert.NotEmpty(t, start)
}

func TestHasCycle_Acyclic(t *testing.T) {
	g, _, _, el := setup(t, "A", "B", "C")
	ctx := context.Background()
	_, err := g.CreateEdge(ctx, el[0].ID, el[1].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)
	_, err = g.CreateEdge(ctx, el[1].ID, el[2].ID, domain.EdgeDependsOn, nil)
	require.NoError(t, err)
	_, err = g.CreateEdge(ctx, el[2].ID, el[0].ID, domain.EdgeReferences, nil)
	require.NoError(t, err)

	_, cyclic := g.HasCycle(domain.EdgeDependsOn)
	assert.False(t, cyclic)
}
