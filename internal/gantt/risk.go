package gantt

import (
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// RiskResult explains a bar's risk coloring.
type RiskResult struct {
	Level       domain.RiskLevel
	DaysLeft    *int
	ProgressPct float64
	ElapsedPct  float64
}

// Risk classifies an element's schedule as of today. Closed or undated
// work is on track; overdue work is critical; work whose progress trails
// the elapsed share of its window is at risk.
func Risk(e *domain.Element, today time.Time) RiskResult {
	progress := progressPct(e)
	if e.Status.IsTerminal() || e.DueDate == nil {
		return RiskResult{Level: domain.RiskOnTrack, ProgressPct: progress}
	}

	today = domain.CalendarDay(today)
	daysLeft := domain.DaysBetween(today, *e.DueDate)
	result := RiskResult{DaysLeft: &daysLeft, ProgressPct: progress}

	if e.StartDate != nil {
		if span := domain.DaysBetween(*e.StartDate, *e.DueDate); span > 0 {
			elapsed := float64(domain.DaysBetween(*e.StartDate, today)) / float64(span) * 100
			result.ElapsedPct = clampPct(elapsed)
		}
	}

	switch {
	case daysLeft < 0:
		result.Level = domain.RiskCritical
	case daysLeft == 0 && progress < 100:
		result.Level = domain.RiskCritical
	case e.Status == domain.StatusBlocked:
		result.Level = domain.RiskAtRisk
	case result.ElapsedPct > 0 && result.ElapsedPct-progress > 25:
		result.Level = domain.RiskAtRisk
	case daysLeft <= 3 && !started(e.Status):
		result.Level = domain.RiskAtRisk
	default:
		result.Level = domain.RiskOnTrack
	}
	return result
}

// RiskPriority returns a sort priority (lower = more urgent).
func RiskPriority(r domain.RiskLevel) int {
	switch r {
	case domain.RiskCritical:
		return 0
	case domain.RiskAtRisk:
		return 1
	default:
		return 2
	}
}

// progressPct uses the checklist when there is one, otherwise the status.
func progressPct(e *domain.Element) float64 {
	if n := len(e.Subelements); n > 0 {
		return float64(e.CompletedSubelements()) / float64(n) * 100
	}
	switch e.Status {
	case domain.StatusDone:
		return 100
	case domain.StatusReview:
		return 75
	case domain.StatusInProgress:
		return 50
	}
	return 0
}

func started(s domain.ElementStatus) bool {
	return s == domain.StatusInProgress || s == domain.StatusReview
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
