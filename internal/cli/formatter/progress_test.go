package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		width int
		want  string
	}{
		{"empty", 0, 4, "[░░░░]   0%"},
		{"half", 0.5, 4, "[██░░]  50%"},
		{"full", 1, 4, "[████] 100%"},
		{"clamps over", 1.5, 4, "[████] 100%"},
		{"clamps under", -1, 4, "[░░░░]   0%"},
		{"min width", 0.5, 1, "[█░]  50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripANSI(RenderProgress(tt.pct, tt.width)))
		})
	}
}

func TestChecklistProgress(t *testing.T) {
	assert.Empty(t, ChecklistProgress(0, 0))
	assert.Equal(t, "1/4 [██░░░░░░]  25%", stripANSI(ChecklistProgress(1, 4)))
}
