package domain

import (
	"fmt"
	"sync"
)

type WarningKind string

const (
	WarnCyclicHierarchy WarningKind = "cyclic_hierarchy"
	WarnDepthExceeded   WarningKind = "depth_exceeded"
	WarnOrphanParent    WarningKind = "orphan_parent"
	WarnOrphanedValue   WarningKind = "orphaned_value"
	WarnOptionOutOfSet  WarningKind = "option_out_of_set"
	WarnUnresolvedEdge  WarningKind = "unresolved_edge"
	WarnDependencyCycle WarningKind = "dependency_cycle"
)

// Warning is a non-fatal consistency condition. Engines degrade gracefully
// and report it instead of failing.
type Warning struct {
	Kind    WarningKind
	Subject string
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Subject, w.Detail)
}

// WarningSink receives consistency warnings.
type WarningSink interface {
	Warn(w Warning)
}

// NoopWarningSink discards every warning.
type NoopWarningSink struct{}

func (NoopWarningSink) Warn(Warning) {}

// WarningRecorder keeps warnings in memory. Safe for concurrent use.
type WarningRecorder struct {
	mu       sync.Mutex
	warnings []Warning
}

func (r *WarningRecorder) Warn(w Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

// Warnings returns a copy of everything recorded so far.
func (r *WarningRecorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Has reports whether a warning of the given kind was recorded.
func (r *WarningRecorder) Has(kind WarningKind) bool {
	for _, w := range r.Warnings() {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// WarningSinkOrNoop returns s, or a NoopWarningSink when s is nil.
func WarningSinkOrNoop(s WarningSink) WarningSink {
	if s == nil {
		return NoopWarningSink{}
	}
	return s
}
