package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/workgrid/internal/domain"
)

// candidate is something a command argument can name, by id or by name.
type candidate struct {
	id   string
	name string
}

// resolveID matches input against candidates, in order:
//  1. exact id
//  2. exact name (case-insensitive), when unique
//  3. id prefix, when unique
func resolveID(kind, input string, cands []candidate) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}

	for _, c := range cands {
		if c.id == input {
			return c.id, nil
		}
	}

	var named []string
	for _, c := range cands {
		if c.name != "" && strings.EqualFold(c.name, input) {
			named = append(named, c.id)
		}
	}
	if len(named) == 1 {
		return named[0], nil
	}

	var matches []string
	for _, c := range cands {
		if strings.HasPrefix(c.id, input) {
			matches = append(matches, c.id)
		}
	}

	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(named) > 1:
		return "", fmt.Errorf("%s name %q is ambiguous (%d matches), use the ID", kind, input, len(named))
	case len(matches) > 1:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	default:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	}
}

func resolveObject(app *App, input string) (*domain.Object, error) {
	objects := app.Session.Store.Objects()
	cands := make([]candidate, len(objects))
	for i, o := range objects {
		cands[i] = candidate{id: o.ID, name: o.Name}
	}
	id, err := resolveID("object", input, cands)
	if err != nil {
		return nil, err
	}
	return app.Session.Objects.Get(id)
}

func resolveElement(app *App, input string) (*domain.Element, error) {
	elements := app.Session.Store.Elements()
	cands := make([]candidate, len(elements))
	for i, e := range elements {
		cands[i] = candidate{id: e.ID, name: e.Title}
	}
	id, err := resolveID("element", input, cands)
	if err != nil {
		return nil, err
	}
	return app.Session.Elements.Get(id)
}

func resolveSheet(app *App, input string) (*domain.Sheet, error) {
	var sheets []*domain.Sheet
	for _, o := range app.Session.Store.Objects() {
		sheets = append(sheets, app.Session.Sheets.List(o.ID)...)
	}
	cands := make([]candidate, len(sheets))
	for i, s := range sheets {
		cands[i] = candidate{id: s.ID, name: s.Name}
	}
	id, err := resolveID("sheet", input, cands)
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.NotFound("sheet", id)
}

// resolveSheetOf resolves a sheet that must belong to objectID.
func resolveSheetOf(app *App, objectID, input string) (*domain.Sheet, error) {
	sheets := app.Session.Sheets.List(objectID)
	cands := make([]candidate, len(sheets))
	for i, s := range sheets {
		cands[i] = candidate{id: s.ID, name: s.Name}
	}
	id, err := resolveID("sheet", input, cands)
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.NotFound("sheet", id)
}

func resolveTab(app *App, input string) (*domain.Tab, error) {
	var cands []candidate
	for _, o := range app.Session.Store.Objects() {
		for _, t := range app.Session.Tabs.List(o.ID) {
			cands = append(cands, candidate{id: t.ID, name: t.Name})
		}
	}
	id, err := resolveID("tab", input, cands)
	if err != nil {
		return nil, err
	}
	return app.Session.Tabs.Get(id)
}

func resolveEdge(app *App, input string) (domain.Edge, error) {
	edges := app.Session.Store.Edges()
	cands := make([]candidate, len(edges))
	for i, e := range edges {
		cands[i] = candidate{id: e.ID}
	}
	id, err := resolveID("edge", input, cands)
	if err != nil {
		return domain.Edge{}, err
	}
	e, ok := app.Session.Edges.Edge(id)
	if !ok {
		return domain.Edge{}, domain.NotFound("edge", id)
	}
	return e, nil
}

// columnScopes lists every scope a column can live in: each object and
// each of its sheets.
func columnScopes(app *App) []domain.ColumnScope {
	var scopes []domain.ColumnScope
	for _, o := range app.Session.Store.Objects() {
		scopes = append(scopes, domain.ColumnScope{ObjectID: o.ID})
		for _, s := range app.Session.Sheets.List(o.ID) {
			scopes = append(scopes, domain.ColumnScope{ObjectID: o.ID, SheetID: domain.StrPtr(s.ID)})
		}
	}
	return scopes
}

// resolveColumn resolves a column by id or name. With a scope only that
// scope's columns (built-ins included) are candidates; names are only
// accepted scoped, since every object has a "Status" column.
func resolveColumn(app *App, input string, scope *domain.ColumnScope) (*domain.CustomColumn, error) {
	scopes := columnScopes(app)
	if scope != nil {
		scopes = []domain.ColumnScope{*scope}
	}
	var cands []candidate
	for _, sc := range scopes {
		for _, c := range app.Session.Columns.AllColumns(sc) {
			cand := candidate{id: c.ID}
			if scope != nil {
				cand.name = c.Name
			}
			cands = append(cands, cand)
		}
	}
	id, err := resolveID("column", input, cands)
	if err != nil {
		return nil, err
	}
	return app.Session.Columns.Column(id)
}

func resolveSubelement(e *domain.Element, input string) (*domain.Subelement, error) {
	cands := make([]candidate, len(e.Subelements))
	for i, s := range e.Subelements {
		cands[i] = candidate{id: s.ID, name: s.Title}
	}
	id, err := resolveID("subelement", input, cands)
	if err != nil {
		return nil, err
	}
	for i := range e.Subelements {
		if e.Subelements[i].ID == id {
			return &e.Subelements[i], nil
		}
	}
	return nil, domain.NotFound("subelement", id)
}

// scopeFor builds the column scope of an object, narrowed to a sheet when
// sheetInput is set.
func scopeFor(app *App, obj *domain.Object, sheetInput string) (domain.ColumnScope, error) {
	scope := domain.ColumnScope{ObjectID: obj.ID}
	if sheetInput == "" {
		return scope, nil
	}
	sheet, err := resolveSheetOf(app, obj.ID, sheetInput)
	if err != nil {
		return scope, err
	}
	scope.SheetID = domain.StrPtr(sheet.ID)
	return scope, nil
}
