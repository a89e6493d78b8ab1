package gantt

import (
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDateRange_Empty(t *testing.T) {
	r := ComputeDateRange(nil, testutil.Day("2024-06-01"), DefaultPaddingDays)

	assert.Equal(t, "2024-05-25", domain.FormatDay(r.Start))
	assert.Equal(t, "2024-07-08", domain.FormatDay(r.End))
}

func TestComputeDateRange_ExtendsToElements(t *testing.T) {
	elements := []*domain.Element{
		testutil.NewTestElement("o", "early", testutil.WithStart("2024-05-01")),
		testutil.NewTestElement("o", "late", testutil.WithDue("2024-09-15")),
		testutil.NewTestElement("o", "undated"),
	}

	r := ComputeDateRange(elements, testutil.Day("2024-06-01"), 7)

	assert.Equal(t, "2024-04-24", domain.FormatDay(r.Start))
	assert.Equal(t, "2024-09-22", domain.FormatDay(r.End))
}

func TestComputeDateRange_AlwaysContainsToday(t *testing.T) {
	elements := []*domain.Element{
		testutil.NewTestElement("o", "past", testutil.WithDates("2023-01-01", "2023-01-05")),
	}
	today := testutil.Day("2024-06-01")

	r := ComputeDateRange(elements, today, 0)

	assert.False(t, r.Start.After(today))
	assert.Equal(t, "2024-07-01", domain.FormatDay(r.End))
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 40.0, ColumnWidth(ZoomDay))
	assert.Equal(t, 80.0, ColumnWidth(ZoomWeek))
	assert.Equal(t, 120.0, ColumnWidth(ZoomMonth))
	assert.Equal(t, 40.0, ColumnWidth("fortnight"))
}

func TestParseZoom(t *testing.T) {
	z, err := ParseZoom(" Week ")
	require.NoError(t, err)
	assert.Equal(t, ZoomWeek, z)

	_, err = ParseZoom("year")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBarGeometry_Scenario(t *testing.T) {
	el := testutil.NewTestElement("o", "bar", testutil.WithDates("2024-01-10", "2024-01-15"))
	r := DateRange{Start: testutil.Day("2024-01-01"), End: testutil.Day("2024-02-01")}

	g, ok := BarGeometry(el, r, ColumnWidth(ZoomDay))

	require.True(t, ok)
	assert.Equal(t, 200.0, g.Width)
	assert.Equal(t, 9*40.0, g.Left)
	assert.Equal(t, 560.0, g.Right())
}

func TestBarGeometry_NoDates(t *testing.T) {
	_, ok := BarGeometry(testutil.NewTestElement("o", "none"), DateRange{}, 40)
	assert.False(t, ok)
}

func TestBarGeometry_OneDateIsOneDayBar(t *testing.T) {
	r := DateRange{Start: testutil.Day("2024-01-01"), End: testutil.Day("2024-02-01")}
	for _, opt := range []testutil.ElementOption{testutil.WithStart("2024-01-05"), testutil.WithDue("2024-01-05")} {
		g, ok := BarGeometry(testutil.NewTestElement("o", "x", opt), r, 40)
		require.True(t, ok)
		assert.Equal(t, 40.0, g.Width)
		assert.Equal(t, 160.0, g.Left)
	}
}

func TestBarGeometry_DueBeforeStart(t *testing.T) {
	r := DateRange{Start: testutil.Day("2024-01-01"), End: testutil.Day("2024-02-01")}
	el := testutil.NewTestElement("o", "inverted", testutil.WithDates("2024-01-10", "2024-01-03"))

	g, ok := BarGeometry(el, r, 80)

	require.True(t, ok)
	assert.Equal(t, 80.0, g.Width)
	assert.Equal(t, 9*80.0, g.Left)
}

// Non-nil geometry is never narrower than one column.
func TestBarGeometry_MinimumWidth(t *testing.T) {
	r := DateRange{Start: testutil.Day("2024-01-01"), End: testutil.Day("2024-03-01")}
	days := []string{"", "2024-01-01", "2024-01-02", "2024-01-20", "2024-02-10"}
	for _, zoom := range []Zoom{ZoomDay, ZoomWeek, ZoomMonth} {
		cw := ColumnWidth(zoom)
		for _, s := range days {
			for _, d := range days {
				el := testutil.NewTestElement("o", "x", testutil.WithDates(s, d))
				g, ok := BarGeometry(el, r, cw)
				assert.Equal(t, s != "" || d != "", ok, "start=%q due=%q", s, d)
				if ok {
					assert.GreaterOrEqual(t, g.Width, cw, "start=%q due=%q", s, d)
				}
			}
		}
	}
}

func TestSortRows(t *testing.T) {
	a := testutil.NewTestElement("o", "A", testutil.WithElementID("a"), testutil.WithStart("2024-01-05"))
	b := testutil.NewTestElement("o", "B", testutil.WithElementID("b"), testutil.WithStart("2024-01-02"))
	c := testutil.NewTestElement("o", "C", testutil.WithElementID("c"))
	d := testutil.NewTestElement("o", "D", testutil.WithElementID("d"), testutil.WithStart("2024-01-05"), testutil.WithPriority(domain.PriorityUrgent))
	e := testutil.NewTestElement("o", "E", testutil.WithElementID("e"), testutil.WithDue("2024-01-02"))
	rows := []*domain.Element{c, a, d, b, e}

	SortRows(rows)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.ID
	}
	assert.Equal(t, []string{"e", "b", "d", "a", "c"}, got)
}
