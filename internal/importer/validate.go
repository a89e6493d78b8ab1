package importer

import (
	"fmt"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// ValidateImportSchema checks the seed file for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	objects := make(map[string]*ObjectImport)
	errs = append(errs, validateObjects(schema.Objects, objects)...)

	columns := make(map[string]*ColumnImport)
	errs = append(errs, validateColumns(schema.Columns, objects, columns)...)

	elementRefs := make(map[string]bool)
	errs = append(errs, validateElements(schema.Elements, objects, columns, elementRefs)...)

	errs = append(errs, validateEdges(schema.Edges, elementRefs)...)
	errs = append(errs, validateTabs(schema.Tabs, objects)...)

	return errs
}

func validateObjects(objects []ObjectImport, refs map[string]*ObjectImport) []error {
	var errs []error

	for i := range objects {
		o := &objects[i]
		prefix := fmt.Sprintf("objects[%d]", i)

		if o.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[o.Ref] != nil {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, o.Ref))
		} else {
			refs[o.Ref] = o
		}
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		sheets := make(map[string]bool, len(o.Sheets))
		for j, name := range o.Sheets {
			if name == "" {
				errs = append(errs, fmt.Errorf("%s.sheets[%d] must not be empty", prefix, j))
			} else if sheets[name] {
				errs = append(errs, fmt.Errorf("%s.sheets[%d]: duplicate sheet %q", prefix, j, name))
			}
			sheets[name] = true
		}
	}

	// Parents may be declared in any order, so they are resolved after
	// every ref is known.
	for i, o := range objects {
		if o.ParentRef == nil || *o.ParentRef == "" {
			continue
		}
		if *o.ParentRef == o.Ref {
			errs = append(errs, fmt.Errorf("objects[%d].parent_ref: object %q cannot be its own parent", i, o.Ref))
		} else if refs[*o.ParentRef] == nil {
			errs = append(errs, fmt.Errorf("objects[%d].parent_ref: ref %q not found in objects", i, *o.ParentRef))
		}
	}

	errs = append(errs, detectParentCycles(objects, refs)...)
	return errs
}

// detectParentCycles reports every parent chain that loops, so the imported
// objects always form a forest.
func detectParentCycles(objects []ObjectImport, refs map[string]*ObjectImport) []error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current chain
		black = 2 // fully processed
	)

	color := make(map[string]int, len(objects))
	var errs []error

	for _, start := range objects {
		if start.Ref == "" || color[start.Ref] != white {
			continue
		}
		var chain []string
		cur := start.Ref
		for {
			if color[cur] == gray {
				errs = append(errs, fmt.Errorf("circular parent chain detected involving %q", cur))
				break
			}
			if color[cur] == black {
				break
			}
			color[cur] = gray
			chain = append(chain, cur)
			o := refs[cur]
			if o == nil || o.ParentRef == nil || *o.ParentRef == "" || *o.ParentRef == cur || refs[*o.ParentRef] == nil {
				break
			}
			cur = *o.ParentRef
		}
		for _, ref := range chain {
			color[ref] = black
		}
	}

	return errs
}

func validateColumns(columns []ColumnImport, objects map[string]*ObjectImport, refs map[string]*ColumnImport) []error {
	var errs []error

	for i := range columns {
		c := &columns[i]
		prefix := fmt.Sprintf("columns[%d]", i)

		if c.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[c.Ref] != nil {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, c.Ref))
		} else {
			refs[c.Ref] = c
		}
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if c.Type == "" {
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		} else if !domain.ValidColumnTypes[c.Type] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, c.Type))
		} else if len(c.Options) > 0 && !domain.ColumnType(c.Type).HasOptions() {
			errs = append(errs, fmt.Errorf("%s.options: %s columns have no options", prefix, c.Type))
		}

		errs = append(errs, validateScope(prefix, c.ObjectRef, c.Sheet, objects)...)

		seen := make(map[string]bool, len(c.Options))
		for j, opt := range c.Options {
			v := domain.NormalizeOptionValue(opt.Value)
			if v == "" {
				errs = append(errs, fmt.Errorf("%s.options[%d].value is required", prefix, j))
			} else if seen[v] {
				errs = append(errs, fmt.Errorf("%s.options[%d]: duplicate option %q", prefix, j, v))
			}
			seen[v] = true
		}
	}

	return errs
}

func validateScope(prefix, objectRef, sheet string, objects map[string]*ObjectImport) []error {
	if objectRef == "" {
		return []error{fmt.Errorf("%s.object_ref is required", prefix)}
	}
	o := objects[objectRef]
	if o == nil {
		return []error{fmt.Errorf("%s.object_ref: ref %q not found in objects", prefix, objectRef)}
	}
	if sheet == "" {
		return nil
	}
	for _, name := range o.Sheets {
		if name == sheet {
			return nil
		}
	}
	return []error{fmt.Errorf("%s.sheet: object %q has no sheet %q", prefix, objectRef, sheet)}
}

func validateElements(elements []ElementImport, objects map[string]*ObjectImport, columns map[string]*ColumnImport, refs map[string]bool) []error {
	var errs []error

	for i, el := range elements {
		prefix := fmt.Sprintf("elements[%d]", i)

		if el.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[el.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, el.Ref))
		} else {
			refs[el.Ref] = true
		}
		if el.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		errs = append(errs, validateScope(prefix, el.ObjectRef, el.Sheet, objects)...)

		if el.Status != "" && !domain.ValidElementStatuses[el.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, el.Status))
		}
		if el.Priority != "" && !domain.ValidPriorities[el.Priority] {
			errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", prefix, el.Priority))
		}
		errs = append(errs, validateOptionalDate(prefix+".start_date", el.StartDate)...)
		errs = append(errs, validateOptionalDate(prefix+".due_date", el.DueDate)...)

		for j, w := range el.Assignees {
			if w == "" {
				errs = append(errs, fmt.Errorf("%s.assignees[%d] must not be empty", prefix, j))
			}
		}
		for j, title := range el.Subelements {
			if title == "" {
				errs = append(errs, fmt.Errorf("%s.subelements[%d] must not be empty", prefix, j))
			}
		}

		for colRef, raw := range el.Values {
			c := columns[colRef]
			if c == nil {
				errs = append(errs, fmt.Errorf("%s.values: column ref %q not found in columns", prefix, colRef))
				continue
			}
			if c.ObjectRef != el.ObjectRef || (c.Sheet != "" && c.Sheet != el.Sheet) {
				errs = append(errs, fmt.Errorf("%s.values: column %q is not in the element's scope", prefix, colRef))
				continue
			}
			if !domain.ValidColumnTypes[c.Type] {
				continue
			}
			if _, err := domain.ColumnType(c.Type).Coerce(normalizeValue(raw), optionsOf(c)); err != nil {
				errs = append(errs, fmt.Errorf("%s.values.%s: %w", prefix, colRef, err))
			}
		}
	}

	return errs
}

func validateEdges(edges []EdgeImport, elementRefs map[string]bool) []error {
	var errs []error
	seen := make(map[string]bool, len(edges))

	for i, e := range edges {
		prefix := fmt.Sprintf("edges[%d]", i)

		if e.FromRef == "" {
			errs = append(errs, fmt.Errorf("%s.from_ref is required", prefix))
		} else if !elementRefs[e.FromRef] {
			errs = append(errs, fmt.Errorf("%s.from_ref: ref %q not found in elements", prefix, e.FromRef))
		}
		if e.ToRef == "" {
			errs = append(errs, fmt.Errorf("%s.to_ref is required", prefix))
		} else if !elementRefs[e.ToRef] {
			errs = append(errs, fmt.Errorf("%s.to_ref: ref %q not found in elements", prefix, e.ToRef))
		}
		if e.FromRef != "" && e.FromRef == e.ToRef {
			errs = append(errs, fmt.Errorf("%s: self-edge (from_ref == to_ref == %q)", prefix, e.FromRef))
		}

		edgeType := domain.CoalesceStr(e.Type, string(domain.EdgeDependsOn))
		if !domain.ValidEdgeTypes[edgeType] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, e.Type))
			continue
		}
		key := e.FromRef + "\x00" + e.ToRef + "\x00" + edgeType
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate %s edge %q -> %q", prefix, edgeType, e.FromRef, e.ToRef))
		}
		seen[key] = true
	}

	return errs
}

func validateTabs(tabs []TabImport, objects map[string]*ObjectImport) []error {
	var errs []error

	for i, t := range tabs {
		prefix := fmt.Sprintf("tabs[%d]", i)

		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if t.Kind == "" {
			errs = append(errs, fmt.Errorf("%s.kind is required", prefix))
		} else if !domain.ValidTabKinds[t.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, t.Kind))
		}
		errs = append(errs, validateScope(prefix, t.ObjectRef, "", objects)...)

		if t.SourceRef != "" {
			if domain.TabKind(t.Kind) != domain.TabMatrix {
				errs = append(errs, fmt.Errorf("%s.source_ref: only matrix tabs take a source", prefix))
			} else if objects[t.SourceRef] == nil {
				errs = append(errs, fmt.Errorf("%s.source_ref: ref %q not found in objects", prefix, t.SourceRef))
			}
		}
	}

	return errs
}

func validateOptionalDate(field string, dateStr *string) []error {
	if dateStr == nil || *dateStr == "" {
		return nil
	}
	if _, err := domain.ParseDay(*dateStr); err != nil {
		return []error{fmt.Errorf("%s: %w", field, err)}
	}
	return nil
}

func optionsOf(c *ColumnImport) []domain.ColumnOption {
	out := make([]domain.ColumnOption, 0, len(c.Options))
	for i, o := range c.Options {
		out = append(out, domain.ColumnOption{
			Value: domain.NormalizeOptionValue(o.Value),
			Color: domain.CoalesceStr(o.Color, domain.PaletteColor(i)),
		})
	}
	return out
}
