package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/syssam/crudgen/dialect"
)

// driverNames maps dialect names to the database/sql driver names
// registered by the imported drivers.
var driverNames = map[string]string{
	dialect.Postgres: "postgres",
	dialect.SQLite:   "sqlite",
}

// ScratchSource is the data source of a private in-memory SQLite database.
const ScratchSource = "file:crudgen_scratch?mode=memory&cache=private&_pragma=foreign_keys(1)"

// Driver runs statements against a database.
type Driver struct {
	db      *sql.DB
	dialect string
	log     *slog.Logger
}

// Open opens a database of the given dialect.
func Open(name, source string) (*Driver, error) {
	name, err := dialect.Normalize(name)
	if err != nil {
		return nil, err
	}
	drv, ok := driverNames[name]
	if !ok {
		return nil, fmt.Errorf("dialect/sql: no driver registered for %s", name)
	}
	db, err := sql.Open(drv, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(name, db), nil
}

// OpenScratch opens an empty in-memory SQLite database.
func OpenScratch() (*Driver, error) {
	d, err := Open(dialect.SQLite, ScratchSource)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a new database.
	d.db.SetMaxOpenConns(1)
	return d, nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return &Driver{db: db, dialect: dialect, log: slog.Default()}
}

// WithLogger sets the logger statements are traced to.
func (d *Driver) WithLogger(l *slog.Logger) *Driver {
	if l != nil {
		d.log = l
	}
	return d
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect returns the dialect name.
func (d *Driver) Dialect() string { return d.dialect }

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.db.Close() }

// StmtError reports the statement that failed.
type StmtError struct {
	// Index is the position of the statement, starting at 1.
	Index int
	Stmt  string
	Err   error
}

// Error returns the error string.
func (e *StmtError) Error() string {
	return fmt.Sprintf("dialect/sql: statement %d (%s): %v", e.Index, abbrev(e.Stmt), e.Err)
}

// Unwrap returns the underlying error.
func (e *StmtError) Unwrap() error { return e.Err }

// DryRun executes stmts in one transaction and rolls it back. It returns
// the first failing statement as a *StmtError.
func (d *Driver) DryRun(ctx context.Context, stmts []string) (rerr error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			rerr = errors.Join(rerr, fmt.Errorf("dialect/sql: rollback: %w", err))
		}
	}()
	for i, stmt := range stmts {
		start := time.Now()
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &StmtError{Index: i + 1, Stmt: stmt, Err: err}
		}
		d.log.Debug("statement executed", "dialect", d.dialect, "duration", time.Since(start), "stmt", abbrev(stmt))
	}
	return nil
}

// abbrev returns the first line of a statement, shortened for messages.
func abbrev(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		stmt = stmt[:i] + " ..."
	}
	if len(stmt) > 80 {
		stmt = stmt[:77] + "..."
	}
	return stmt
}
