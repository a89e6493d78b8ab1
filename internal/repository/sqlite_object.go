package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

const objectColumns = `id, name, color, parent_id, order_index, created_at, updated_at`

// SQLiteObjectRepo implements ObjectRepo using a SQLite database.
type SQLiteObjectRepo struct {
	db db.DBTX
}

// NewSQLiteObjectRepo creates a new SQLiteObjectRepo.
func NewSQLiteObjectRepo(conn db.DBTX) *SQLiteObjectRepo {
	return &SQLiteObjectRepo{db: conn}
}

// FetchObjects returns every object in insertion order.
func (r *SQLiteObjectRepo) FetchObjects(ctx context.Context) ([]*domain.Object, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+objectColumns+` FROM objects ORDER BY rowid`)
	if err != nil {
		return nil, storeErr("fetch objects", err)
	}
	defer rows.Close()

	var out []*domain.Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, storeErr("fetch objects", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch objects", fmt.Errorf("iterating objects: %w", err))
	}
	return out, nil
}

func (r *SQLiteObjectRepo) GetObject(ctx context.Context, id string) (*domain.Object, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+objectColumns+` FROM objects WHERE id = ?`, id)
	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("object", id)
	}
	if err != nil {
		return nil, storeErr("get object", err)
	}
	return o, nil
}

func (r *SQLiteObjectRepo) CreateObject(ctx context.Context, o domain.Object) (*domain.Object, error) {
	if o.Name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if !o.IsRoot() {
		if _, err := r.GetObject(ctx, *o.ParentID); err != nil {
			return nil, err
		}
	}
	if o.ID == "" {
		o.ID = newID()
	}
	now := nowUTC()
	o.CreatedAt, o.UpdatedAt = now, now

	query := `INSERT INTO objects (` + objectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Name, o.Color,
		nullableStrToValue(o.ParentID),
		nullableIntToValue(o.OrderIndex),
		formatTS(o.CreatedAt), formatTS(o.UpdatedAt),
	)
	if err != nil {
		return nil, storeErr("create object", fmt.Errorf("inserting object: %w", err))
	}
	return r.GetObject(ctx, o.ID)
}

// UpdateObject applies patch. Reparenting under the object itself or one of
// its descendants is rejected so the parent graph stays a forest.
func (r *SQLiteObjectRepo) UpdateObject(ctx context.Context, id string, patch domain.ObjectPatch) (*domain.Object, error) {
	o, err := r.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, domain.Invalid("name", "must not be empty")
		}
		o.Name = *patch.Name
	}
	if patch.Color != nil {
		o.Color = *patch.Color
	}
	if patch.OrderIndex != nil {
		o.OrderIndex = domain.IntPtr(*patch.OrderIndex)
	}
	if patch.ParentID != nil {
		if *patch.ParentID == "" {
			o.ParentID = nil
		} else {
			if err := r.checkReparent(ctx, id, *patch.ParentID); err != nil {
				return nil, err
			}
			o.ParentID = domain.StrPtr(*patch.ParentID)
		}
	}

	query := `UPDATE objects SET name = ?, color = ?, parent_id = ?, order_index = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		o.Name, o.Color,
		nullableStrToValue(o.ParentID),
		nullableIntToValue(o.OrderIndex),
		formatTS(nowUTC()), id,
	)
	if err != nil {
		return nil, storeErr("update object", fmt.Errorf("updating object: %w", err))
	}
	return r.GetObject(ctx, id)
}

func (r *SQLiteObjectRepo) checkReparent(ctx context.Context, id, parentID string) error {
	seen := map[string]bool{}
	cur := parentID
	for cur != "" {
		if cur == id {
			return domain.Invalid("parent_id", "object %s cannot be moved under its own subtree", id)
		}
		if seen[cur] {
			return nil
		}
		seen[cur] = true
		p, err := r.GetObject(ctx, cur)
		if err != nil {
			return err
		}
		cur = domain.StrOrEmpty(p.ParentID)
	}
	return nil
}

// DeleteObject removes the object; children, elements, sheets, columns and
// tabs cascade.
func (r *SQLiteObjectRepo) DeleteObject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete object", fmt.Errorf("deleting object: %w", err))
	}
	return requireAffected(res, "object", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (*domain.Object, error) {
	var o domain.Object
	var parentID sql.NullString
	var orderIndex sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&o.ID, &o.Name, &o.Color, &parentID, &orderIndex, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	o.ParentID = nullString(parentID)
	o.OrderIndex = nullInt(orderIndex)
	var err error
	if o.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// requireAffected turns a zero-row delete or update into a NotFoundError.
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return domain.NotFound(kind, id)
	}
	return nil
}
