package domain

type ElementStatus string

const (
	StatusBacklog    ElementStatus = "backlog"
	StatusTodo       ElementStatus = "todo"
	StatusInProgress ElementStatus = "in_progress"
	StatusReview     ElementStatus = "review"
	StatusDone       ElementStatus = "done"
	StatusBlocked    ElementStatus = "blocked"
	StatusCancelled  ElementStatus = "cancelled"
)

// ValidElementStatuses is the canonical set of accepted element status strings.
var ValidElementStatuses = map[string]bool{
	"backlog": true, "todo": true, "in_progress": true, "review": true,
	"done": true, "blocked": true, "cancelled": true,
}

// IsTerminal reports whether the status closes the element.
func (s ElementStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"low": true, "medium": true, "high": true, "urgent": true,
}

// Rank orders priorities from most to least urgent (lower = more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type EdgeType string

const (
	EdgeDependsOn  EdgeType = "depends_on"
	EdgeSpawns     EdgeType = "spawns"
	EdgeReferences EdgeType = "references"
	EdgeMergesInto EdgeType = "merges_into"
	EdgeSplitsTo   EdgeType = "splits_to"
	EdgeCancels    EdgeType = "cancels"
)

// ValidEdgeTypes is the canonical set of accepted edge type strings.
var ValidEdgeTypes = map[string]bool{
	"depends_on": true, "spawns": true, "references": true,
	"merges_into": true, "splits_to": true, "cancels": true,
}

// MatrixEdgeType is the edge type that carries matrix cell payloads.
const MatrixEdgeType = EdgeReferences

type TabKind string

const (
	TabSummary  TabKind = "summary"
	TabElements TabKind = "elements"
	TabNote     TabKind = "note"
	TabGantt    TabKind = "gantt"
	TabCalendar TabKind = "calendar"
	TabWorkers  TabKind = "workers"
	TabMatrix   TabKind = "matrix"
)

// ValidTabKinds is the canonical set of accepted tab kind strings.
var ValidTabKinds = map[string]bool{
	"summary": true, "elements": true, "note": true, "gantt": true,
	"calendar": true, "workers": true, "matrix": true,
}

type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)
