package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/domain"
)

const customColumnColumns = `id, object_id, sheet_id, name, column_type, builtin, options,
		is_visible, position, created_at, updated_at`

// SQLiteColumnRepo implements ColumnRepo using a SQLite database. Built-in
// columns live in the same table as override rows carrying only visibility
// and position.
type SQLiteColumnRepo struct {
	db db.DBTX
}

// NewSQLiteColumnRepo creates a new SQLiteColumnRepo.
func NewSQLiteColumnRepo(conn db.DBTX) *SQLiteColumnRepo {
	return &SQLiteColumnRepo{db: conn}
}

func (r *SQLiteColumnRepo) FetchCustomColumns(ctx context.Context, scope domain.ColumnScope) ([]*domain.CustomColumn, error) {
	query := `SELECT ` + customColumnColumns + ` FROM custom_columns
		WHERE object_id = ? AND sheet_id IS ? ORDER BY position, rowid`
	rows, err := r.db.QueryContext(ctx, query, scope.ObjectID, nullableStrToValue(scope.SheetID))
	if err != nil {
		return nil, storeErr("fetch columns", err)
	}
	var cols []*domain.CustomColumn
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			rows.Close()
			return nil, storeErr("fetch columns", err)
		}
		cols = append(cols, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("fetch columns", err)
	}
	if err := r.attachValues(ctx, cols); err != nil {
		return nil, storeErr("fetch columns", err)
	}
	return cols, nil
}

func (r *SQLiteColumnRepo) getColumn(ctx context.Context, id string) (*domain.CustomColumn, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customColumnColumns+` FROM custom_columns WHERE id = ?`, id)
	c, err := scanColumn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("column", id)
	}
	if err != nil {
		return nil, storeErr("get column", err)
	}
	if err := r.attachValues(ctx, []*domain.CustomColumn{c}); err != nil {
		return nil, storeErr("get column", err)
	}
	return c, nil
}

func (r *SQLiteColumnRepo) CreateCustomColumn(ctx context.Context, c domain.CustomColumn) (*domain.CustomColumn, error) {
	if c.BuiltIn != nil {
		c.Type = c.BuiltIn.ColumnType()
		c.Name = domain.CoalesceStr(c.Name, c.BuiltIn.DisplayName())
		c.Options = nil
	}
	if c.Name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if !domain.ValidColumnTypes[string(c.Type)] {
		return nil, domain.Invalid("column_type", "unknown column type %q", c.Type)
	}
	if err := validateOptions(c.Options); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "objects", "object", c.Scope.ObjectID); err != nil {
		return nil, storeErr("create column", err)
	}
	if sheetID := domain.StrOrEmpty(c.Scope.SheetID); sheetID != "" {
		if err := requireRow(ctx, r.db, "sheets", "sheet", sheetID); err != nil {
			return nil, storeErr("create column", err)
		}
	}
	options, err := json.Marshal(optionsOrEmpty(c.Options))
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := formatTS(nowUTC())
	var builtin any
	if c.BuiltIn != nil {
		builtin = string(*c.BuiltIn)
	}

	query := `INSERT INTO custom_columns (` + customColumnColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Scope.ObjectID, nullableStrToValue(c.Scope.SheetID),
		c.Name, string(c.Type), builtin, string(options),
		boolToInt(c.IsVisible), c.Position, now, now,
	)
	if isUniqueViolation(err) {
		return nil, domain.Invalid("builtin", "scope already has an override for %s", builtin)
	}
	if err != nil {
		return nil, storeErr("create column", fmt.Errorf("inserting column: %w", err))
	}
	return r.getColumn(ctx, c.ID)
}

// UpdateCustomColumn applies patch. Changing the type keeps stored values;
// they are decoded as-is until rewritten.
func (r *SQLiteColumnRepo) UpdateCustomColumn(ctx context.Context, id string, patch domain.ColumnPatch) (*domain.CustomColumn, error) {
	c, err := r.getColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, domain.Invalid("name", "must not be empty")
		}
		c.Name = *patch.Name
	}
	if patch.Type != nil {
		if c.IsBuiltIn() {
			return nil, domain.Invalid("column_type", "built-in column types are fixed")
		}
		if !domain.ValidColumnTypes[string(*patch.Type)] {
			return nil, domain.Invalid("column_type", "unknown column type %q", *patch.Type)
		}
		c.Type = *patch.Type
	}
	if patch.Options != nil {
		if err := validateOptions(*patch.Options); err != nil {
			return nil, err
		}
		c.Options = *patch.Options
	}
	if patch.IsVisible != nil {
		c.IsVisible = *patch.IsVisible
	}
	if patch.Position != nil {
		c.Position = *patch.Position
	}
	options, err := json.Marshal(optionsOrEmpty(c.Options))
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}

	query := `UPDATE custom_columns SET name = ?, column_type = ?, options = ?, is_visible = ?,
		position = ?, updated_at = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		c.Name, string(c.Type), string(options), boolToInt(c.IsVisible), c.Position,
		formatTS(nowUTC()), id,
	)
	if err != nil {
		return nil, storeErr("update column", fmt.Errorf("updating column: %w", err))
	}
	return r.getColumn(ctx, id)
}

func (r *SQLiteColumnRepo) DeleteCustomColumn(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_columns WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete column", fmt.Errorf("deleting column: %w", err))
	}
	return requireAffected(res, "column", id)
}

// SetCustomColumnValue persists value as JSON. A nil value deletes the cell
// so that absence keeps meaning "unset".
func (r *SQLiteColumnRepo) SetCustomColumnValue(ctx context.Context, columnID, elementID string, value any) (*domain.ColumnValue, error) {
	c, err := r.getColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if c.IsBuiltIn() {
		return nil, domain.Invalid("column", "built-in column %s stores its value on the element", *c.BuiltIn)
	}
	if err := requireRow(ctx, r.db, "elements", "element", elementID); err != nil {
		return nil, storeErr("set column value", err)
	}
	now := nowUTC()
	if value == nil {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM column_values WHERE column_id = ? AND element_id = ?`, columnID, elementID); err != nil {
			return nil, storeErr("set column value", fmt.Errorf("clearing value: %w", err))
		}
		return &domain.ColumnValue{ColumnID: columnID, ElementID: elementID, UpdatedAt: now}, nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, domain.Invalid("value", "not JSON-encodable: %v", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO column_values (column_id, element_id, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(column_id, element_id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		columnID, elementID, string(payload), formatTS(now))
	if err != nil {
		return nil, storeErr("set column value", fmt.Errorf("upserting value: %w", err))
	}
	decoded, err := c.Type.Decode(payload)
	if err != nil {
		return nil, storeErr("set column value", err)
	}
	return &domain.ColumnValue{ColumnID: columnID, ElementID: elementID, Value: decoded, UpdatedAt: now}, nil
}

func (r *SQLiteColumnRepo) attachValues(ctx context.Context, cols []*domain.CustomColumn) error {
	byID := make(map[string]*domain.CustomColumn, len(cols))
	ids := make([]string, 0, len(cols))
	for _, c := range cols {
		c.Values = map[string]any{}
		if c.IsBuiltIn() {
			continue
		}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_id, element_id, value FROM column_values WHERE column_id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("listing column values: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var columnID, elementID, payload string
		if err := rows.Scan(&columnID, &elementID, &payload); err != nil {
			return fmt.Errorf("scanning column value: %w", err)
		}
		c := byID[columnID]
		v, err := c.Type.Decode([]byte(payload))
		if err != nil {
			return err
		}
		c.Values[elementID] = v
	}
	return rows.Err()
}

func scanColumn(row rowScanner) (*domain.CustomColumn, error) {
	var c domain.CustomColumn
	var sheetID, builtin sql.NullString
	var colType, options, createdAt, updatedAt string
	var visible int
	if err := row.Scan(&c.ID, &c.Scope.ObjectID, &sheetID, &c.Name, &colType, &builtin, &options,
		&visible, &c.Position, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Scope.SheetID = nullString(sheetID)
	c.Type = domain.ColumnType(colType)
	c.IsVisible = intToBool(visible)
	if builtin.Valid {
		b := domain.BuiltInType(builtin.String)
		c.BuiltIn = &b
	}
	if err := json.Unmarshal([]byte(options), &c.Options); err != nil {
		return nil, fmt.Errorf("decoding options of column %s: %w", c.ID, err)
	}
	var err error
	if c.CreatedAt, err = parseTS(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateOptions(opts []domain.ColumnOption) error {
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if o.Value == "" {
			return domain.Invalid("options", "option value must not be empty")
		}
		if seen[o.Value] {
			return domain.Invalid("options", "duplicate option value %q", o.Value)
		}
		seen[o.Value] = true
	}
	return nil
}

func optionsOrEmpty(opts []domain.ColumnOption) []domain.ColumnOption {
	if opts == nil {
		return []domain.ColumnOption{}
	}
	return opts
}
