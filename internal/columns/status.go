package columns

import (
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
)

type Bucket string

const (
	BucketTodo       Bucket = "todo"
	BucketInProgress Bucket = "in_progress"
	BucketComplete   Bucket = "complete"
)

// StatusKeywords are matched as case-insensitive substrings in the order
// complete, to-do, in-progress. A value matching none of them is to-do.
type StatusKeywords struct {
	Todo       []string `mapstructure:"todo"`
	InProgress []string `mapstructure:"in_progress"`
	Complete   []string `mapstructure:"complete"`
}

func DefaultStatusKeywords() StatusKeywords {
	return StatusKeywords{
		Todo:       []string{"todo", "to do", "backlog", "not started", "open"},
		InProgress: []string{"progress", "doing", "review", "active", "blocked"},
		Complete:   []string{"done", "complete", "finished", "closed", "cancel"},
	}
}

// StatusBucket classifies a status option value for display grouping.
func StatusBucket(value string, k StatusKeywords) Bucket {
	v := strings.ToLower(value)
	switch {
	case containsAny(v, k.Complete):
		return BucketComplete
	case containsAny(v, k.Todo):
		return BucketTodo
	case containsAny(v, k.InProgress):
		return BucketInProgress
	}
	return BucketTodo
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// StatusGroups holds a status column's options per bucket, each in option
// order.
type StatusGroups struct {
	Todo       []domain.ColumnOption
	InProgress []domain.ColumnOption
	Complete   []domain.ColumnOption
}

func (e *Engine) GroupStatusOptions(c *domain.CustomColumn) StatusGroups {
	var g StatusGroups
	if c.Type != domain.ColumnStatus {
		return g
	}
	for _, o := range c.Options {
		switch StatusBucket(o.Value, e.keywords) {
		case BucketComplete:
			g.Complete = append(g.Complete, o)
		case BucketInProgress:
			g.InProgress = append(g.InProgress, o)
		default:
			g.Todo = append(g.Todo, o)
		}
	}
	return g
}

// Bucket classifies value with the engine's keyword set.
func (e *Engine) Bucket(value string) Bucket {
	return StatusBucket(value, e.keywords)
}
