package gantt

import (
	"sort"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// SortRows orders timeline rows deterministically:
// 1. Start date: earliest first (undated last)
// 2. Due date: earliest first (nil last)
// 3. Priority: most urgent first
// 4. Title: lexical ascending
// 5. Element ID: lexical ascending
func SortRows(elements []*domain.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]

		// 1. Effective start
		startA, _, okA := EffectiveDates(a)
		startB, _, okB := EffectiveDates(b)
		if okA != okB {
			return okA
		}
		if okA && !startA.Equal(startB) {
			return startA.Before(startB)
		}

		// 2. Due date
		if c := compareOptional(a.DueDate, b.DueDate); c != 0 {
			return c < 0
		}

		// 3. Priority
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}

		// 4. Title
		if a.Title != b.Title {
			return a.Title < b.Title
		}

		// 5. ID
		return a.ID < b.ID
	})
}

// compareOptional orders nil after any date.
func compareOptional(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	}
	return 0
}
