package gantt

import (
	"testing"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var riskToday = testutil.Day("2025-03-15")

func TestRisk_NoDueDate(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithStart("2025-03-01"))
	assert.Equal(t, domain.RiskOnTrack, Risk(el, riskToday).Level)
}

func TestRisk_DoneIsOnTrack(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithDue("2025-03-01"), testutil.WithStatus(domain.StatusDone))
	assert.Equal(t, domain.RiskOnTrack, Risk(el, riskToday).Level)
}

func TestRisk_Overdue(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithDue("2025-03-14"))
	res := Risk(el, riskToday)
	assert.Equal(t, domain.RiskCritical, res.Level)
	require.NotNil(t, res.DaysLeft)
	assert.Equal(t, -1, *res.DaysLeft)
}

func TestRisk_DueTodayUnfinished(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithDue("2025-03-15"), testutil.WithStatus(domain.StatusInProgress))
	assert.Equal(t, domain.RiskCritical, Risk(el, riskToday).Level)
}

func TestRisk_ProgressTrailsElapsed(t *testing.T) {
	el := testutil.NewTestElement("o", "x",
		testutil.WithDates("2025-03-01", "2025-03-31"),
		testutil.WithStatus(domain.StatusInProgress),
		testutil.WithSubelements("a", "b", "c", "d"))

	res := Risk(el, riskToday)

	assert.Equal(t, domain.RiskAtRisk, res.Level)
	assert.Equal(t, 0.0, res.ProgressPct)
	assert.InDelta(t, 46.7, res.ElapsedPct, 0.1)
}

func TestRisk_OnPace(t *testing.T) {
	el := testutil.NewTestElement("o", "x",
		testutil.WithDates("2025-03-01", "2025-03-31"),
		testutil.WithStatus(domain.StatusInProgress))

	assert.Equal(t, domain.RiskOnTrack, Risk(el, riskToday).Level)
}

func TestRisk_SoonAndNotStarted(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithDue("2025-03-17"))
	assert.Equal(t, domain.RiskAtRisk, Risk(el, riskToday).Level)
}

func TestRisk_Blocked(t *testing.T) {
	el := testutil.NewTestElement("o", "x", testutil.WithDue("2025-04-30"), testutil.WithStatus(domain.StatusBlocked))
	assert.Equal(t, domain.RiskAtRisk, Risk(el, riskToday).Level)
}

func TestRiskPriority(t *testing.T) {
	assert.Less(t, RiskPriority(domain.RiskCritical), RiskPriority(domain.RiskAtRisk))
	assert.Less(t, RiskPriority(domain.RiskAtRisk), RiskPriority(domain.RiskOnTrack))
}
