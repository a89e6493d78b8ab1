package importer

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/matrix"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// Workspace is a converted seed file: domain values with real ids, ordered
// so that inserting them front to back never violates a reference.
type Workspace struct {
	Objects  []*domain.Object
	Sheets   []*domain.Sheet
	Columns  []*domain.CustomColumn
	Elements []*domain.Element
	Values   []domain.ColumnValue
	Edges    []domain.EdgePatch
	Tabs     []*domain.Tab
}

// Roots returns the imported objects that have no parent.
func (w *Workspace) Roots() []*domain.Object {
	var out []*domain.Object
	for _, o := range w.Objects {
		if o.IsRoot() {
			out = append(out, o)
		}
	}
	return out
}

// Convert transforms a validated ImportSchema into domain values ready for
// persistence. Call ValidateImportSchema first; Convert assumes the schema
// is valid.
func Convert(schema *ImportSchema) (*Workspace, error) {
	ws := &Workspace{}

	objectIDs := make(map[string]string, len(schema.Objects)) // ref -> UUID
	for _, o := range schema.Objects {
		objectIDs[o.Ref] = uuid.New().String()
	}
	sheetIDs := make(map[string]string) // objectRef/sheet -> UUID

	ordered, err := parentsFirst(schema.Objects)
	if err != nil {
		return nil, err
	}
	for _, o := range ordered {
		obj := &domain.Object{
			ID:         objectIDs[o.Ref],
			Name:       o.Name,
			Color:      o.Color,
			OrderIndex: o.Order,
		}
		if o.ParentRef != nil && *o.ParentRef != "" {
			pid := objectIDs[*o.ParentRef]
			obj.ParentID = &pid
		}
		ws.Objects = append(ws.Objects, obj)

		for i, name := range o.Sheets {
			id := uuid.New().String()
			sheetIDs[sheetKey(o.Ref, name)] = id
			ws.Sheets = append(ws.Sheets, &domain.Sheet{ID: id, ObjectID: obj.ID, Name: name, OrderIndex: i})
		}
	}

	columns := make(map[string]*domain.CustomColumn, len(schema.Columns))
	for i := range schema.Columns {
		c := &schema.Columns[i]
		col := &domain.CustomColumn{
			ID:        uuid.New().String(),
			Scope:     scopeFor(objectIDs, sheetIDs, c.ObjectRef, c.Sheet),
			Name:      c.Name,
			Type:      domain.ColumnType(c.Type),
			Options:   optionsOf(c),
			IsVisible: true,
			Position:  i,
		}
		columns[c.Ref] = col
		ws.Columns = append(ws.Columns, col)
	}

	elementIDs := make(map[string]string, len(schema.Elements))
	for _, el := range schema.Elements {
		objectID, ok := objectIDs[el.ObjectRef]
		if !ok {
			return nil, fmt.Errorf("object_ref %q not found for element %q", el.ObjectRef, el.Ref)
		}
		e := &domain.Element{
			ID:          uuid.New().String(),
			ObjectID:    objectID,
			Title:       el.Title,
			Description: el.Description,
			Status:      domain.ElementStatus(domain.CoalesceStr(el.Status, string(domain.StatusTodo))),
			Priority:    domain.Priority(domain.CoalesceStr(el.Priority, string(domain.PriorityMedium))),
			Section:     domain.StrPtr(el.Section),
		}
		if el.Sheet != "" {
			e.SheetID = domain.StrPtr(sheetIDs[sheetKey(el.ObjectRef, el.Sheet)])
		}
		if e.StartDate, err = parseOptionalDay(el.StartDate); err != nil {
			return nil, fmt.Errorf("element %q start_date: %w", el.Ref, err)
		}
		if e.DueDate, err = parseOptionalDay(el.DueDate); err != nil {
			return nil, fmt.Errorf("element %q due_date: %w", el.Ref, err)
		}
		for _, w := range el.Assignees {
			e.Assignees = append(e.Assignees, domain.Assignee{WorkerID: w, Role: "owner"})
		}
		for i, title := range el.Subelements {
			e.Subelements = append(e.Subelements, domain.Subelement{Title: title, OrderIndex: i})
		}
		elementIDs[el.Ref] = e.ID
		ws.Elements = append(ws.Elements, e)

		// Map iteration order is random; keep the output deterministic.
		colRefs := make([]string, 0, len(el.Values))
		for ref := range el.Values {
			colRefs = append(colRefs, ref)
		}
		sort.Strings(colRefs)
		for _, ref := range colRefs {
			col, ok := columns[ref]
			if !ok {
				return nil, fmt.Errorf("column ref %q not found for element %q", ref, el.Ref)
			}
			coerced, err := col.Type.Coerce(normalizeValue(el.Values[ref]), col.Options)
			if err != nil {
				return nil, fmt.Errorf("element %q value %q: %w", el.Ref, ref, err)
			}
			if coerced.Value == nil {
				continue
			}
			ws.Values = append(ws.Values, domain.ColumnValue{ColumnID: col.ID, ElementID: e.ID, Value: coerced.Value})
		}
	}

	for _, e := range schema.Edges {
		from, ok := elementIDs[e.FromRef]
		if !ok {
			return nil, fmt.Errorf("from_ref %q not found", e.FromRef)
		}
		to, ok := elementIDs[e.ToRef]
		if !ok {
			return nil, fmt.Errorf("to_ref %q not found", e.ToRef)
		}
		ws.Edges = append(ws.Edges, domain.EdgePatch{
			FromID:     from,
			ToID:       to,
			Type:       domain.EdgeType(domain.CoalesceStr(e.Type, string(domain.EdgeDependsOn))),
			Attributes: normalizeMap(e.Attributes),
		})
	}

	orderByObject := map[string]int{}
	for _, t := range schema.Tabs {
		objectID := objectIDs[t.ObjectRef]
		tab := &domain.Tab{
			ID:         uuid.New().String(),
			ObjectID:   objectID,
			Name:       t.Name,
			Kind:       domain.TabKind(t.Kind),
			OrderIndex: orderByObject[objectID],
			Config:     map[string]any{},
		}
		orderByObject[objectID]++
		if t.SourceRef != "" {
			tab.Config[matrix.ConfigKeySource] = objectIDs[t.SourceRef]
		}
		ws.Tabs = append(ws.Tabs, tab)
	}

	return ws, nil
}

// parentsFirst orders objects so every parent precedes its children. Order
// among siblings follows the file.
func parentsFirst(objects []ObjectImport) ([]ObjectImport, error) {
	byRef := make(map[string]ObjectImport, len(objects))
	for _, o := range objects {
		byRef[o.Ref] = o
	}
	placed := make(map[string]bool, len(objects))
	out := make([]ObjectImport, 0, len(objects))

	var place func(o ObjectImport, depth int) error
	place = func(o ObjectImport, depth int) error {
		if placed[o.Ref] {
			return nil
		}
		if depth > len(objects) {
			return fmt.Errorf("circular parent chain involving %q", o.Ref)
		}
		if o.ParentRef != nil && *o.ParentRef != "" {
			parent, ok := byRef[*o.ParentRef]
			if !ok {
				return fmt.Errorf("parent_ref %q not found for object %q", *o.ParentRef, o.Ref)
			}
			if err := place(parent, depth+1); err != nil {
				return err
			}
		}
		placed[o.Ref] = true
		out = append(out, o)
		return nil
	}

	for _, o := range objects {
		if err := place(o, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sheetKey(objectRef, sheet string) string {
	return objectRef + "/" + sheet
}

func scopeFor(objectIDs, sheetIDs map[string]string, objectRef, sheet string) domain.ColumnScope {
	scope := domain.ColumnScope{ObjectID: objectIDs[objectRef]}
	if sheet != "" {
		scope.SheetID = domain.StrPtr(sheetIDs[sheetKey(objectRef, sheet)])
	}
	return scope
}

func parseOptionalDay(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	return domain.ParseOptionalDay(*s)
}

// normalizeValue turns TOML date values into the strings JSON files carry,
// so both formats coerce identically.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case toml.LocalDate:
		return x.String()
	case toml.LocalDateTime:
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMap(x)
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}
