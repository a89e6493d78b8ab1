package domain

import "time"

// Object is an organizational node. Children and Elements are populated by
// the hierarchy builder; they are not persisted on the row.
type Object struct {
	ID         string
	Name       string
	Color      string
	ParentID   *string
	OrderIndex *int
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Children []*Object
	Elements []*Element
}

// IsRoot reports whether the object has no parent.
func (o *Object) IsRoot() bool {
	return o.ParentID == nil || *o.ParentID == ""
}

// ShallowCopy returns a copy of o without children or elements.
func (o *Object) ShallowCopy() *Object {
	c := *o
	c.Children = nil
	c.Elements = nil
	return &c
}

// Sheet is a named, ordered partition of an object's elements.
type Sheet struct {
	ID         string
	ObjectID   string
	Name       string
	OrderIndex int
	CreatedAt  time.Time
}
