package domain

import "time"

// Tab is a named view over an object. Config holds view-specific settings
// and is opaque to everything except the view that owns it.
type Tab struct {
	ID         string
	ObjectID   string
	Name       string
	Kind       TabKind
	OrderIndex int
	Config     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
