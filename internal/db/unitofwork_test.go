package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/namkunwoo/workreport-front/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertUser(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, 'x', 'now')`, id, "user-"+id)
	return err
}

func countUsers(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	return n
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertUser(ctx, tx, "a"); err != nil {
			return err
		}
		return insertUser(ctx, tx, "b")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, countUsers(t, database))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openUoW(t)
	errDeliberate := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertUser(ctx, tx, "a"); err != nil {
			return err
		}
		return errDeliberate
	})
	require.ErrorIs(t, err, errDeliberate)
	assert.Equal(t, 0, countUsers(t, database), "first insert is rolled back")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertUser(ctx, tx, "a")
			panic("boom")
		})
	})
	assert.Equal(t, 0, countUsers(t, database))
}
