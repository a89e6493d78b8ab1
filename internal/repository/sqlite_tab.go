package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

const tabColumns = `id, object_id, name, kind, order_index, config, created_at, updated_at`

// SQLiteTabRepo implements TabRepo using a SQLite database.
type SQLiteTabRepo struct {
	db db.DBTX
}

// NewSQLiteTabRepo creates a new SQLiteTabRepo.
func NewSQLiteTabRepo(conn db.DBTX) *SQLiteTabRepo {
	return &SQLiteTabRepo{db: conn}
}

func (r *SQLiteTabRepo) FetchTabs(ctx context.Context, objectID string) ([]*domain.Tab, error) {
	tabs, err := r.query(ctx, `SELECT `+tabColumns+` FROM tabs WHERE object_id = ? ORDER BY order_index, rowid`, objectID)
	if err != nil {
		return nil, storeErr("fetch tabs", err)
	}
	return tabs, nil
}

func (r *SQLiteTabRepo) GetTab(ctx context.Context, id string) (*domain.Tab, error) {
	tabs, err := r.query(ctx, `SELECT `+tabColumns+` FROM tabs WHERE id = ?`, id)
	if err != nil {
		return nil, storeErr("get tab", err)
	}
	if len(tabs) == 0 {
		return nil, domain.NotFound("tab", id)
	}
	return tabs[0], nil
}

func (r *SQLiteTabRepo) CreateTab(ctx context.Context, t domain.Tab) (*domain.Tab, error) {
	if t.Name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if !domain.ValidTabKinds[string(t.Kind)] {
		return nil, domain.Invalid("kind", "unknown tab kind %q", t.Kind)
	}
	if err := requireRow(ctx, r.db, "objects", "object", t.ObjectID); err != nil {
		return nil, storeErr("create tab", err)
	}
	cfg, err := encodeJSONMap(t.Config)
	if err != nil {
		return nil, domain.Invalid("config", "%v", err)
	}
	if t.ID == "" {
		t.ID = newID()
	}
	now := formatTS(nowUTC())
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tabs (`+tabColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ObjectID, t.Name, string(t.Kind), t.OrderIndex, cfg, now, now)
	if err != nil {
		return nil, storeErr("create tab", fmt.Errorf("inserting tab: %w", err))
	}
	return r.GetTab(ctx, t.ID)
}

// UpdateTab applies patch. A non-nil Config replaces the stored config.
func (r *SQLiteTabRepo) UpdateTab(ctx context.Context, id string, patch domain.TabPatch) (*domain.Tab, error) {
	t, err := r.GetTab(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, domain.Invalid("name", "must not be empty")
		}
		t.Name = *patch.Name
	}
	if patch.Kind != nil {
		if !domain.ValidTabKinds[string(*patch.Kind)] {
			return nil, domain.Invalid("kind", "unknown tab kind %q", *patch.Kind)
		}
		t.Kind = *patch.Kind
	}
	if patch.OrderIndex != nil {
		t.OrderIndex = *patch.OrderIndex
	}
	if patch.Config != nil {
		t.Config = patch.Config
	}
	cfg, err := encodeJSONMap(t.Config)
	if err != nil {
		return nil, domain.Invalid("config", "%v", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE tabs SET name = ?, kind = ?, order_index = ?, config = ?, updated_at = ? WHERE id = ?`,
		t.Name, string(t.Kind), t.OrderIndex, cfg, formatTS(nowUTC()), id)
	if err != nil {
		return nil, storeErr("update tab", fmt.Errorf("updating tab: %w", err))
	}
	return r.GetTab(ctx, id)
}

func (r *SQLiteTabRepo) DeleteTab(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tabs WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete tab", fmt.Errorf("deleting tab: %w", err))
	}
	return requireAffected(res, "tab", id)
}

func (r *SQLiteTabRepo) query(ctx context.Context, query string, args ...any) ([]*domain.Tab, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	defer rows.Close()

	var out []*domain.Tab
	for rows.Next() {
		var t domain.Tab
		var kind, cfg, createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.ObjectID, &t.Name, &kind, &t.OrderIndex, &cfg, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning tab: %w", err)
		}
		t.Kind = domain.TabKind(kind)
		if t.Config, err = decodeJSONMap(cfg); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, err
		}
		if t.UpdatedAt, err = parseTS(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tabs: %w", err)
	}
	return out, nil
}
