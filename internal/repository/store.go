package repository

import (
	"database/sql"

	"github.com/alexanderramin/workgrid/internal/db"
)

// SQLiteStore is the SQLite-backed Collaborator: one repo per table,
// sharing a connection and a unit of work for multi-statement writes.
type SQLiteStore struct {
	*SQLiteObjectRepo
	*SQLiteSheetRepo
	*SQLiteElementRepo
	*SQLiteColumnRepo
	*SQLiteEdgeRepo
	*SQLiteTabRepo
}

var _ Collaborator = (*SQLiteStore)(nil)

// NewSQLiteStore wires every table repo onto database.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	uow := db.NewSQLiteUnitOfWork(database)
	return &SQLiteStore{
		SQLiteObjectRepo:  NewSQLiteObjectRepo(database),
		SQLiteSheetRepo:   NewSQLiteSheetRepo(database),
		SQLiteElementRepo: NewSQLiteElementRepo(database, uow),
		SQLiteColumnRepo:  NewSQLiteColumnRepo(database),
		SQLiteEdgeRepo:    NewSQLiteEdgeRepo(database),
		SQLiteTabRepo:     NewSQLiteTabRepo(database),
	}
}

// NewTxStore builds a store whose repos all run on an open transaction,
// for use inside db.UnitOfWork.WithinTx.
func NewTxStore(tx db.DBTX) *SQLiteStore {
	return &SQLiteStore{
		SQLiteObjectRepo:  NewSQLiteObjectRepo(tx),
		SQLiteSheetRepo:   NewSQLiteSheetRepo(tx),
		SQLiteElementRepo: NewSQLiteElementRepo(tx, nil),
		SQLiteColumnRepo:  NewSQLiteColumnRepo(tx),
		SQLiteEdgeRepo:    NewSQLiteEdgeRepo(tx),
		SQLiteTabRepo:     NewSQLiteTabRepo(tx),
	}
}
