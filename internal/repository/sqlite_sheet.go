package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

// SQLiteSheetRepo implements SheetRepo using a SQLite database.
type SQLiteSheetRepo struct {
	db db.DBTX
}

// NewSQLiteSheetRepo creates a new SQLiteSheetRepo.
func NewSQLiteSheetRepo(conn db.DBTX) *SQLiteSheetRepo {
	return &SQLiteSheetRepo{db: conn}
}

func (r *SQLiteSheetRepo) FetchSheets(ctx context.Context, objectID string) ([]*domain.Sheet, error) {
	query := `SELECT id, object_id, name, order_index, created_at FROM sheets
		WHERE object_id = ? ORDER BY order_index, rowid`
	rows, err := r.db.QueryContext(ctx, query, objectID)
	if err != nil {
		return nil, storeErr("fetch sheets", err)
	}
	defer rows.Close()

	var out []*domain.Sheet
	for rows.Next() {
		var s domain.Sheet
		var createdAt string
		if err := rows.Scan(&s.ID, &s.ObjectID, &s.Name, &s.OrderIndex, &createdAt); err != nil {
			return nil, storeErr("fetch sheets", fmt.Errorf("scanning sheet: %w", err))
		}
		if s.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, storeErr("fetch sheets", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch sheets", err)
	}
	return out, nil
}

func (r *SQLiteSheetRepo) CreateSheet(ctx context.Context, s domain.Sheet) (*domain.Sheet, error) {
	if s.Name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM objects WHERE id = ?`, s.ObjectID).Scan(&exists); err != nil {
		return nil, storeErr("create sheet", err)
	}
	if exists == 0 {
		return nil, domain.NotFound("object", s.ObjectID)
	}
	if s.ID == "" {
		s.ID = newID()
	}
	s.CreatedAt = nowUTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sheets (id, object_id, name, order_index, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.ObjectID, s.Name, s.OrderIndex, formatTS(s.CreatedAt))
	if err != nil {
		return nil, storeErr("create sheet", fmt.Errorf("inserting sheet: %w", err))
	}
	return &s, nil
}

// DeleteSheet removes the sheet and its column schema. Elements stay on the
// object with their sheet cleared.
func (r *SQLiteSheetRepo) DeleteSheet(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sheets WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete sheet", fmt.Errorf("deleting sheet: %w", err))
	}
	return requireAffected(res, "sheet", id)
}
