package domain

import "time"

// Edge is a directed, typed relation between two elements. Attributes is an
// open JSON bag; the matrix engine reads it as cell payload.
type Edge struct {
	ID         string
	FromID     string
	ToID       string
	Type       EdgeType
	Attributes map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a copy of the edge with its own attribute map.
func (e Edge) Clone() Edge {
	e.Attributes = CloneJSONMap(e.Attributes)
	return e
}

// CloneJSONMap shallow-copies a JSON object map. A nil input yields nil.
func CloneJSONMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
