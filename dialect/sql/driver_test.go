package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/dialect"
)

func TestDryRunRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE "authors"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "books"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err = drv.DryRun(context.Background(), []string{
		`CREATE TABLE "authors" ("id" bigserial PRIMARY KEY);`,
		`CREATE TABLE "books" ("id" bigserial PRIMARY KEY);`,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDryRunReportsStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE "authors"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "books"`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()
	err = drv.DryRun(context.Background(), []string{
		`CREATE TABLE "authors" ("id" bigserial PRIMARY KEY);`,
		`CREATE TABLE "books" (oops);`,
	})
	var serr *StmtError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, serr.Index)
	assert.Contains(t, err.Error(), "syntax error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenScratch(t *testing.T) {
	drv, err := OpenScratch()
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	ctx := context.Background()
	require.NoError(t, drv.DryRun(ctx, []string{
		`CREATE TABLE "authors" ("id" integer PRIMARY KEY AUTOINCREMENT, "name" varchar(255) NOT NULL);`,
	}))
	// The dry run left nothing behind.
	require.NoError(t, drv.DryRun(ctx, []string{
		`CREATE TABLE "authors" ("id" integer PRIMARY KEY AUTOINCREMENT);`,
	}))
	assert.Error(t, drv.DryRun(ctx, []string{`CREATE TABLE "authors" (`}))
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
	_, err = Open(dialect.MySQL, "")
	assert.Error(t, err)
}
