// Package hierarchy turns the flat object list into a parent/child forest.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// DefaultMaxDepth bounds materialization. Real workspaces are a handful of
// levels deep; anything past this is treated as corrupt data.
const DefaultMaxDepth = 64

// Builder materializes trees. The zero value uses DefaultMaxDepth and drops
// warnings.
type Builder struct {
	MaxDepth int
	Sink     domain.WarningSink
}

// node is an arena slot: the cloned object plus its input position.
type node struct {
	obj *domain.Object
	seq int
}

// BuildTree returns the roots of the forest with Children populated
// recursively. Inputs are copied, never mutated.
//
// A parent id that names a missing object promotes the node to a root. Nodes
// on a parent cycle, and subtrees deeper than MaxDepth, are left out and
// reported to the sink.
func (b Builder) BuildTree(objects []*domain.Object) []*domain.Object {
	sink := domain.WarningSinkOrNoop(b.Sink)
	maxDepth := b.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	arena := make([]node, 0, len(objects))
	index := make(map[string]int, len(objects))
	for _, o := range objects {
		if o == nil {
			continue
		}
		if _, dup := index[o.ID]; dup {
			continue
		}
		index[o.ID] = len(arena)
		arena = append(arena, node{obj: o.ShallowCopy(), seq: len(arena)})
	}

	// Single pass: parent id -> child arena slots.
	children := make(map[string][]int, len(arena))
	var roots []int
	for i, n := range arena {
		if n.obj.IsRoot() {
			roots = append(roots, i)
			continue
		}
		parentID := *n.obj.ParentID
		if _, ok := index[parentID]; !ok {
			sink.Warn(domain.Warning{
				Kind:    domain.WarnOrphanParent,
				Subject: n.obj.ID,
				Detail:  fmt.Sprintf("parent %s does not exist; shown at root", parentID),
			})
			roots = append(roots, i)
			continue
		}
		children[parentID] = append(children[parentID], i)
	}

	placed := make([]bool, len(arena))
	var attach func(i, depth int) *domain.Object
	attach = func(i, depth int) *domain.Object {
		n := arena[i]
		placed[i] = true
		kids := orderSlots(arena, children[n.obj.ID])
		if len(kids) > 0 && depth >= maxDepth {
			sink.Warn(domain.Warning{
				Kind:    domain.WarnDepthExceeded,
				Subject: n.obj.ID,
				Detail:  fmt.Sprintf("children below depth %d omitted", maxDepth),
			})
			markSubtree(arena, children, kids, placed)
			return n.obj
		}
		for _, k := range kids {
			if placed[k] {
				continue
			}
			n.obj.Children = append(n.obj.Children, attach(k, depth+1))
		}
		return n.obj
	}

	out := make([]*domain.Object, 0, len(roots))
	for _, r := range orderSlots(arena, roots) {
		out = append(out, attach(r, 1))
	}

	// Whatever was never reached hangs off a parent cycle.
	for i, n := range arena {
		if !placed[i] {
			sink.Warn(domain.Warning{
				Kind:    domain.WarnCyclicHierarchy,
				Subject: n.obj.ID,
				Detail:  "parent chain never reaches a root",
			})
		}
	}
	return out
}

// markSubtree flags every slot below kids as handled without attaching it.
func markSubtree(arena []node, children map[string][]int, kids []int, placed []bool) {
	stack := append([]int(nil), kids...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if placed[i] {
			continue
		}
		placed[i] = true
		stack = append(stack, children[arena[i].obj.ID]...)
	}
}

// orderSlots sorts siblings: explicit order index first (ascending), then
// the rest in insertion order.
func orderSlots(arena []node, slots []int) []int {
	out := append([]int(nil), slots...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := arena[out[i]], arena[out[j]]
		ao, bo := a.obj.OrderIndex, b.obj.OrderIndex
		if (ao == nil) != (bo == nil) {
			return ao != nil
		}
		if ao != nil && *ao != *bo {
			return *ao < *bo
		}
		return a.seq < b.seq
	})
	return out
}

// BuildTree builds with default settings.
func BuildTree(objects []*domain.Object, sink domain.WarningSink) []*domain.Object {
	return Builder{Sink: sink}.BuildTree(objects)
}

// Flatten returns every node in pre-order, parent before children.
func Flatten(tree []*domain.Object) []*domain.Object {
	var out []*domain.Object
	var walk func([]*domain.Object)
	walk = func(nodes []*domain.Object) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(tree)
	return out
}

// CountAll counts every node including nested children.
func CountAll(tree []*domain.Object) int {
	n := 0
	for _, o := range tree {
		n += 1 + CountAll(o.Children)
	}
	return n
}

// Depths maps each node id to its depth, roots at 0.
func Depths(tree []*domain.Object) map[string]int {
	out := map[string]int{}
	var walk func([]*domain.Object, int)
	walk = func(nodes []*domain.Object, d int) {
		for _, n := range nodes {
			out[n.ID] = d
			walk(n.Children, d+1)
		}
	}
	walk(tree, 0)
	return out
}

// AttachElements fills Object.Elements on every node of tree. Elements of
// objects outside the tree are ignored.
func AttachElements(tree []*domain.Object, elements []*domain.Element) {
	byObject := make(map[string][]*domain.Element)
	for _, e := range elements {
		byObject[e.ObjectID] = append(byObject[e.ObjectID], e)
	}
	for _, o := range Flatten(tree) {
		o.Elements = byObject[o.ID]
	}
}

// Ancestors returns the breadcrumb from the root down to, but excluding, id.
// A cyclic chain stops at the first repeated node.
func Ancestors(objects []*domain.Object, id string) []*domain.Object {
	byID := make(map[string]*domain.Object, len(objects))
	for _, o := range objects {
		byID[o.ID] = o
	}
	cur, ok := byID[id]
	if !ok {
		return nil
	}
	seen := map[string]bool{id: true}
	var chain []*domain.Object
	for !cur.IsRoot() {
		parent, ok := byID[*cur.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		chain = append(chain, parent.ShallowCopy())
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
