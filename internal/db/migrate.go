package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillTabConfig(db); err != nil {
		return fmt.Errorf("backfilling tab config: %w", err)
	}
	return nil
}

// migrateBackfillTabConfig replaces NULL tab configs left by databases that
// predate the config column with an empty JSON object.
func migrateBackfillTabConfig(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `UPDATE tabs SET config = '{}' WHERE config IS NULL OR config = ''`); err != nil {
		return fmt.Errorf("updating tabs: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS objects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		parent_id   TEXT REFERENCES objects(id) ON DELETE CASCADE,
		order_index INTEGER,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent_id)`,

	`CREATE TABLE IF NOT EXISTS sheets (
		id          TEXT PRIMARY KEY,
		object_id   TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sheets_object ON sheets(object_id)`,

	`CREATE TABLE IF NOT EXISTS elements (
		id          TEXT PRIMARY KEY,
		object_id   TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
		sheet_id    TEXT REFERENCES sheets(id) ON DELETE SET NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'todo'
		            CHECK(status IN ('backlog','todo','in_progress','review','done','blocked','cancelled')),
		priority    TEXT NOT NULL DEFAULT 'medium'
		            CHECK(priority IN ('low','medium','high','urgent')),
		start_date  TEXT,
		due_date    TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_elements_object ON elements(object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_elements_sheet ON elements(sheet_id)`,

	// Section grouping was added after the first release.
	`ALTER TABLE elements ADD COLUMN section TEXT`,

	`CREATE TABLE IF NOT EXISTS subelements (
		id           TEXT PRIMARY KEY,
		element_id   TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		order_index  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subelements_element ON subelements(element_id)`,

	`CREATE TABLE IF NOT EXISTS element_assignees (
		element_id TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		worker_id  TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'owner',
		position   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (element_id, worker_id)
	)`,

	`CREATE TABLE IF NOT EXISTS custom_columns (
		id          TEXT PRIMARY KEY,
		object_id   TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
		sheet_id    TEXT REFERENCES sheets(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		column_type TEXT NOT NULL,
		builtin     TEXT CHECK(builtin IS NULL OR builtin IN ('assignees','priority','status','due_date')),
		options     TEXT NOT NULL DEFAULT '[]',
		is_visible  INTEGER NOT NULL DEFAULT 1,
		position    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_columns_scope ON custom_columns(object_id, sheet_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_custom_columns_builtin
		ON custom_columns(object_id, COALESCE(sheet_id, ''), builtin)
		WHERE builtin IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS column_values (
		column_id  TEXT NOT NULL REFERENCES custom_columns(id) ON DELETE CASCADE,
		element_id TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (column_id, element_id)
	)`,

	`CREATE TABLE IF NOT EXISTS edges (
		id         TEXT PRIMARY KEY,
		from_id    TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		to_id      TEXT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		edge_type  TEXT NOT NULL
		           CHECK(edge_type IN ('depends_on','spawns','references','merges_into','splits_to','cancels')),
		attributes TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(from_id != to_id),
		UNIQUE(from_id, to_id, edge_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id)`,

	`CREATE TABLE IF NOT EXISTS tabs (
		id          TEXT PRIMARY KEY,
		object_id   TEXT NOT NULL REFERENCES objects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL
		            CHECK(kind IN ('summary','elements','note','gantt','calendar','workers','matrix')),
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tabs_object ON tabs(object_id)`,

	// View configuration arrived with the matrix tab.
	`ALTER TABLE tabs ADD COLUMN config TEXT NOT NULL DEFAULT '{}'`,
}
