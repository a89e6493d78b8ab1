package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

// elementColumns is the canonical SELECT column list for elements.
const elementColumns = `id, object_id, sheet_id, title, description, status, priority,
		section, start_date, due_date, created_at, updated_at`

// SQLiteElementRepo implements ElementRepo. Multi-table writes (an element
// with its assignees) run inside a unit of work.
type SQLiteElementRepo struct {
	db  db.DBTX
	uow db.UnitOfWork
}

// NewSQLiteElementRepo creates a new SQLiteElementRepo. A nil uow runs
// writes directly on conn, which is what tx-scoped repos want.
func NewSQLiteElementRepo(conn db.DBTX, uow db.UnitOfWork) *SQLiteElementRepo {
	return &SQLiteElementRepo{db: conn, uow: uow}
}

func (r *SQLiteElementRepo) withinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return withinTx(ctx, r.db, r.uow, fn)
}

func (r *SQLiteElementRepo) FetchElements(ctx context.Context, objectID *string) ([]*domain.Element, error) {
	query := `SELECT ` + elementColumns + ` FROM elements`
	var args []any
	if objectID != nil {
		query += ` WHERE object_id = ?`
		args = append(args, *objectID)
	}
	query += ` ORDER BY rowid`

	elements, err := queryElements(ctx, r.db, query, args...)
	if err != nil {
		return nil, storeErr("fetch elements", err)
	}
	if err := r.attachChildren(ctx, elements); err != nil {
		return nil, storeErr("fetch elements", err)
	}
	return elements, nil
}

func (r *SQLiteElementRepo) GetElement(ctx context.Context, id string) (*domain.Element, error) {
	elements, err := queryElements(ctx, r.db, `SELECT `+elementColumns+` FROM elements WHERE id = ?`, id)
	if err != nil {
		return nil, storeErr("get element", err)
	}
	if len(elements) == 0 {
		return nil, domain.NotFound("element", id)
	}
	if err := r.attachChildren(ctx, elements); err != nil {
		return nil, storeErr("get element", err)
	}
	return elements[0], nil
}

// CreateElement inserts e together with its subelements and assignees.
// Zero-valued status and priority default to todo and medium.
func (r *SQLiteElementRepo) CreateElement(ctx context.Context, e domain.Element) (*domain.Element, error) {
	if e.Title == "" {
		return nil, domain.Invalid("title", "must not be empty")
	}
	if e.Status == "" {
		e.Status = domain.StatusTodo
	}
	if e.Priority == "" {
		e.Priority = domain.PriorityMedium
	}
	if !domain.ValidElementStatuses[string(e.Status)] {
		return nil, domain.Invalid("status", "unknown status %q", e.Status)
	}
	if !domain.ValidPriorities[string(e.Priority)] {
		return nil, domain.Invalid("priority", "unknown priority %q", e.Priority)
	}
	if e.ID == "" {
		e.ID = newID()
	}
	now := nowUTC()
	e.CreatedAt, e.UpdatedAt = now, now

	err := r.withinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := requireRow(ctx, tx, "objects", "object", e.ObjectID); err != nil {
			return err
		}
		if e.SheetID != nil && *e.SheetID != "" {
			if err := requireRow(ctx, tx, "sheets", "sheet", *e.SheetID); err != nil {
				return err
			}
		}
		query := `INSERT INTO elements (` + elementColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query,
			e.ID, e.ObjectID,
			nullableStrToValue(e.SheetID),
			e.Title, e.Description,
			string(e.Status), string(e.Priority),
			nullableStrToValue(e.Section),
			nullableTimeToString(e.StartDate, dateLayout),
			nullableTimeToString(e.DueDate, dateLayout),
			formatTS(e.CreatedAt), formatTS(e.UpdatedAt),
		); err != nil {
			return fmt.Errorf("inserting element: %w", err)
		}
		for i, s := range e.Subelements {
			if s.ID == "" {
				s.ID = newID()
			}
			order := s.OrderIndex
			if order == 0 {
				order = i
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subelements (id, element_id, title, is_completed, order_index) VALUES (?, ?, ?, ?, ?)`,
				s.ID, e.ID, s.Title, boolToInt(s.IsCompleted), order,
			); err != nil {
				return fmt.Errorf("inserting subelement: %w", err)
			}
		}
		return replaceAssignees(ctx, tx, e.ID, e.Assignees)
	})
	if err != nil {
		return nil, storeErr("create element", err)
	}
	return r.GetElement(ctx, e.ID)
}

// UpdateElement applies the non-nil fields of patch.
func (r *SQLiteElementRepo) UpdateElement(ctx context.Context, id string, patch domain.ElementPatch) (*domain.Element, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	e, err := r.GetElement(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(e)

	err = r.withinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if patch.SheetID != nil && *patch.SheetID != "" {
			if err := requireRow(ctx, tx, "sheets", "sheet", *patch.SheetID); err != nil {
				return err
			}
		}
		query := `UPDATE elements SET sheet_id = ?, title = ?, description = ?, status = ?,
			priority = ?, section = ?, start_date = ?, due_date = ?, updated_at = ?
			WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query,
			nullableStrToValue(e.SheetID),
			e.Title, e.Description,
			string(e.Status), string(e.Priority),
			nullableStrToValue(e.Section),
			nullableTimeToString(e.StartDate, dateLayout),
			nullableTimeToString(e.DueDate, dateLayout),
			formatTS(nowUTC()), id,
		); err != nil {
			return fmt.Errorf("updating element: %w", err)
		}
		if patch.Assignees != nil {
			return replaceAssignees(ctx, tx, id, *patch.Assignees)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("update element", err)
	}
	return r.GetElement(ctx, id)
}

// DeleteElement removes the element; subelements, assignees, column values
// and edges touching it cascade.
func (r *SQLiteElementRepo) DeleteElement(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM elements WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete element", fmt.Errorf("deleting element: %w", err))
	}
	return requireAffected(res, "element", id)
}

// CreateSubelement appends a checklist item. Without an explicit order it
// goes to the end of the list.
func (r *SQLiteElementRepo) CreateSubelement(ctx context.Context, patch domain.SubelementPatch) (*domain.Subelement, error) {
	if patch.Title == "" {
		return nil, domain.Invalid("title", "must not be empty")
	}
	if err := requireRow(ctx, r.db, "elements", "element", patch.ElementID); err != nil {
		return nil, storeErr("create subelement", err)
	}
	s := domain.Subelement{ID: newID(), ElementID: patch.ElementID, Title: patch.Title}
	if patch.OrderIndex != nil {
		s.OrderIndex = *patch.OrderIndex
	} else {
		err := r.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(order_index), -1) + 1 FROM subelements WHERE element_id = ?`,
			patch.ElementID).Scan(&s.OrderIndex)
		if err != nil {
			return nil, storeErr("create subelement", err)
		}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subelements (id, element_id, title, is_completed, order_index) VALUES (?, ?, ?, 0, ?)`,
		s.ID, s.ElementID, s.Title, s.OrderIndex)
	if err != nil {
		return nil, storeErr("create subelement", fmt.Errorf("inserting subelement: %w", err))
	}
	return &s, nil
}

func (r *SQLiteElementRepo) ToggleSubelementComplete(ctx context.Context, id string, completed bool) (*domain.Subelement, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE subelements SET is_completed = ? WHERE id = ?`, boolToInt(completed), id)
	if err != nil {
		return nil, storeErr("toggle subelement", err)
	}
	if err := requireAffected(res, "subelement", id); err != nil {
		return nil, err
	}
	var s domain.Subelement
	var done int
	err = r.db.QueryRowContext(ctx,
		`SELECT id, element_id, title, is_completed, order_index FROM subelements WHERE id = ?`, id,
	).Scan(&s.ID, &s.ElementID, &s.Title, &done, &s.OrderIndex)
	if err != nil {
		return nil, storeErr("toggle subelement", err)
	}
	s.IsCompleted = intToBool(done)
	return &s, nil
}

// attachChildren loads subelements and assignees for the given elements.
// Rows are fully drained before the next query runs.
func (r *SQLiteElementRepo) attachChildren(ctx context.Context, elements []*domain.Element) error {
	if len(elements) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Element, len(elements))
	ids := make([]string, 0, len(elements))
	for _, e := range elements {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	for _, chunk := range chunkIDs(ids, 500) {
		subs, err := r.db.QueryContext(ctx,
			`SELECT id, element_id, title, is_completed, order_index FROM subelements
			WHERE element_id IN (`+placeholders(len(chunk))+`) ORDER BY order_index, rowid`,
			stringArgs(chunk)...)
		if err != nil {
			return fmt.Errorf("listing subelements: %w", err)
		}
		for subs.Next() {
			var s domain.Subelement
			var done int
			if err := subs.Scan(&s.ID, &s.ElementID, &s.Title, &done, &s.OrderIndex); err != nil {
				subs.Close()
				return fmt.Errorf("scanning subelement: %w", err)
			}
			s.IsCompleted = intToBool(done)
			byID[s.ElementID].Subelements = append(byID[s.ElementID].Subelements, s)
		}
		subs.Close()
		if err := subs.Err(); err != nil {
			return fmt.Errorf("iterating subelements: %w", err)
		}

		assignees, err := r.db.QueryContext(ctx,
			`SELECT element_id, worker_id, role FROM element_assignees
			WHERE element_id IN (`+placeholders(len(chunk))+`) ORDER BY position`,
			stringArgs(chunk)...)
		if err != nil {
			return fmt.Errorf("listing assignees: %w", err)
		}
		for assignees.Next() {
			var elementID string
			var a domain.Assignee
			if err := assignees.Scan(&elementID, &a.WorkerID, &a.Role); err != nil {
				assignees.Close()
				return fmt.Errorf("scanning assignee: %w", err)
			}
			byID[elementID].Assignees = append(byID[elementID].Assignees, a)
		}
		assignees.Close()
		if err := assignees.Err(); err != nil {
			return fmt.Errorf("iterating assignees: %w", err)
		}
	}
	return nil
}

func queryElements(ctx context.Context, conn db.DBTX, query string, args ...any) ([]*domain.Element, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing elements: %w", err)
	}
	defer rows.Close()

	var out []*domain.Element
	for rows.Next() {
		var e domain.Element
		var status, priority, createdAt, updatedAt string
		var sheetID, section, start, due sql.NullString
		if err := rows.Scan(&e.ID, &e.ObjectID, &sheetID, &e.Title, &e.Description, &status, &priority,
			&section, &start, &due, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning element row: %w", err)
		}
		e.Status = domain.ElementStatus(status)
		e.Priority = domain.Priority(priority)
		e.SheetID = nullString(sheetID)
		e.Section = nullString(section)
		e.StartDate = parseNullableDay(start)
		e.DueDate = parseNullableDay(due)
		if e.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTS(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating elements: %w", err)
	}
	return out, nil
}

func replaceAssignees(ctx context.Context, tx db.DBTX, elementID string, assignees []domain.Assignee) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM element_assignees WHERE element_id = ?`, elementID); err != nil {
		return fmt.Errorf("clearing assignees: %w", err)
	}
	for i, a := range assignees {
		role := domain.CoalesceStr(a.Role, "owner")
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO element_assignees (element_id, worker_id, role, position) VALUES (?, ?, ?, ?)
			ON CONFLICT(element_id, worker_id) DO UPDATE SET role = excluded.role`,
			elementID, a.WorkerID, role, i,
		); err != nil {
			return fmt.Errorf("inserting assignee: %w", err)
		}
	}
	return nil
}

// requireRow returns a NotFoundError when table has no row with id.
func requireRow(ctx context.Context, conn db.DBTX, table, kind, id string) error {
	var one int
	err := conn.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", kind, err)
	}
	return nil
}

func chunkIDs(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// withinTx runs fn in a transaction when a unit of work is available and
// directly on conn otherwise.
func withinTx(ctx context.Context, conn db.DBTX, uow db.UnitOfWork, fn func(ctx context.Context, tx db.DBTX) error) error {
	if uow == nil {
		return fn(ctx, conn)
	}
	return uow.WithinTx(ctx, fn)
}
