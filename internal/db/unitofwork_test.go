package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stamp = "2024-01-08T00:00:00Z"

func openUnitOfWork(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertObject(ctx context.Context, tx db.DBTX, id, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO objects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`, id, name, stamp, stamp)
	return err
}

func insertElement(ctx context.Context, tx db.DBTX, id, objectID, title string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO elements (id, object_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, objectID, title, stamp, stamp)
	return err
}

func countRows(t *testing.T, uow *db.SQLiteUnitOfWork, table string) int {
	t.Helper()
	var n int
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	}))
	return n
}

func TestWithinTx_CommitsObjectWithElements(t *testing.T) {
	uow := openUnitOfWork(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertObject(ctx, tx, "o1", "Launch"); err != nil {
			return err
		}
		if err := insertElement(ctx, tx, "e1", "o1", "Brief"); err != nil {
			return err
		}
		return insertElement(ctx, tx, "e2", "o1", "Mockups")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, uow, "objects"))
	assert.Equal(t, 2, countRows(t, uow, "elements"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openUnitOfWork(t)
	errStop := errors.New("element write refused")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertObject(ctx, tx, "o1", "Launch"); err != nil {
			return err
		}
		if err := insertElement(ctx, tx, "e1", "o1", "Brief"); err != nil {
			return err
		}
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	assert.Zero(t, countRows(t, uow, "objects"), "the object goes with the failed batch")
	assert.Zero(t, countRows(t, uow, "elements"))
}

func TestWithinTx_RollbackOnConstraintViolation(t *testing.T) {
	uow := openUnitOfWork(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertObject(ctx, tx, "o1", "Launch"); err != nil {
			return err
		}
		return insertElement(ctx, tx, "e1", "ghost", "Orphan")
	})
	require.Error(t, err, "elements must reference an existing object")

	assert.Zero(t, countRows(t, uow, "objects"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openUnitOfWork(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertObject(ctx, tx, "o1", "Launch")
			panic("boom")
		})
	})

	assert.Zero(t, countRows(t, uow, "objects"))
}
