package gantt_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
	"github.com/alexanderramin/workgrid/internal/gantt"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	spy    *testutil.SpyCollaborator
	store  *entitystore.Store
	engine *gantt.Engine
	object *domain.Object
	a, b   *domain.Element
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	spy := testutil.NewSpyCollaborator(testutil.NewTestStore(t))
	obj := testutil.MustCreateObject(t, spy, "Release")
	a := testutil.MustCreateElement(t, spy, obj.ID, "Design", testutil.WithDates("2024-01-10", "2024-01-15"))
	b := testutil.MustCreateElement(t, spy, obj.ID, "Build", testutil.WithDates("2024-01-16", "2024-01-20"))
	testutil.MustCreateElement(t, spy, obj.ID, "Someday")
	_, err := spy.CreateEdge(ctx, domain.EdgePatch{FromID: a.ID, ToID: b.ID, Type: domain.EdgeDependsOn})
	require.NoError(t, err)

	store := entitystore.New(spy, nil)
	require.NoError(t, store.Load(ctx))
	spy.Reset()
	return &fixture{spy: spy, store: store, engine: gantt.New(store, gantt.DefaultConfig()), object: obj, a: a, b: b}
}

func TestChart_LaysOutRowsAndArrows(t *testing.T) {
	f := setup(t)

	chart := f.engine.Chart(f.object.ID, testutil.Day("2024-01-12"))

	require.Len(t, chart.Rows, 3)
	assert.Equal(t, "Design", chart.Rows[0].Element.Title)
	assert.Equal(t, "Build", chart.Rows[1].Element.Title)
	assert.False(t, chart.Rows[2].HasBar)
	assert.Equal(t, "2024-01-03", domain.FormatDay(chart.Range.Start))
	assert.Equal(t, 200.0, chart.Rows[0].Geometry.Width)
	require.Len(t, chart.Arrows, 1)
	assert.Equal(t, chart.Rows[0].Geometry.Right(), chart.Arrows[0].From.X)
	assert.Equal(t, chart.Rows[1].Geometry.Left, chart.Arrows[0].To.X)
}

func TestRelease_CommitsOnlyChangedFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.engine.PointerDown(gantt.DragResizeEnd, f.a.ID, 300))
	f.engine.PointerMove(340)

	drop, err := f.engine.Release(ctx, 380)

	require.NoError(t, err)
	assert.True(t, drop.Changed())
	assert.False(t, drop.Patch.StartDate.Set)
	assert.Equal(t, 1, f.spy.Calls("UpdateElement"))
	el, _ := f.store.Element(f.a.ID)
	assert.Equal(t, "2024-01-17", domain.FormatDay(*el.DueDate))
	assert.Equal(t, "2024-01-10", domain.FormatDay(*el.StartDate))
}

func TestRelease_NoMutationWhenUnchanged(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.engine.PointerDown(gantt.DragMove, f.a.ID, 300))
	f.engine.PointerMove(500)

	drop, err := f.engine.Release(context.Background(), 310)

	require.NoError(t, err)
	assert.False(t, drop.Changed())
	assert.Equal(t, 0, f.spy.Mutations())
}

func TestRelease_FailureKeepsOptimisticDates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.spy.FailOn("UpdateElement", testutil.ErrInjected)
	require.NoError(t, f.engine.PointerDown(gantt.DragMove, f.a.ID, 0))

	_, err := f.engine.Release(ctx, 80)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.False(t, f.engine.Dragging())
	start, end, ok := f.engine.Preview(f.a.ID)
	require.True(t, ok)
	assert.Equal(t, "2024-01-12", domain.FormatDay(start))
	assert.Equal(t, "2024-01-17", domain.FormatDay(end))

	chart := f.engine.Chart(f.object.ID, testutil.Day("2024-01-12"))
	assert.Equal(t, "2024-01-12", domain.FormatDay(*chart.Rows[0].Element.StartDate))

	require.NoError(t, f.engine.Refresh(ctx))
	_, _, ok = f.engine.Preview(f.a.ID)
	assert.False(t, ok)
}

func TestRelease_WithoutDrag(t *testing.T) {
	f := setup(t)
	_, err := f.engine.Release(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPointerDown_UnknownElement(t *testing.T) {
	f := setup(t)
	assert.ErrorIs(t, f.engine.PointerDown(gantt.DragMove, "ghost", 0), domain.ErrNotFound)
}

func TestShift_MovesByDays(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.engine.SetZoom(gantt.ZoomWeek))

	drop, err := f.engine.Shift(context.Background(), f.b.ID, gantt.DragMove, -3)

	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", domain.FormatDay(drop.Start))
	assert.Equal(t, "2024-01-17", domain.FormatDay(drop.End))
}

func TestSetZoom_RefusedWhileDragging(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.engine.PointerDown(gantt.DragMove, f.a.ID, 0))
	assert.ErrorIs(t, f.engine.SetZoom(gantt.ZoomMonth), domain.ErrValidation)
	assert.Equal(t, gantt.ZoomDay, f.engine.Zoom())
}
