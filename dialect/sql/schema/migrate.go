package schema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"

	"github.com/syssam/crudgen/dialect/sql"
)

// SumFile is the name of the migration directory integrity file.
const SumFile = migrate.HashFileName

// UpdateSum rewrites the integrity file of the migration directory dir.
func UpdateSum(dir string) error {
	d, err := migrate.NewLocalDir(dir)
	if err != nil {
		return fmt.Errorf("schema: open migration dir: %w", err)
	}
	sum, err := d.Checksum()
	if err != nil {
		return fmt.Errorf("schema: compute checksum: %w", err)
	}
	if err := migrate.WriteSumFile(d, sum); err != nil {
		return fmt.Errorf("schema: write %s: %w", SumFile, err)
	}
	return nil
}

// ValidateDir reports whether the migration files of dir match its
// integrity file.
func ValidateDir(dir string) error {
	d, err := migrate.NewLocalDir(dir)
	if err != nil {
		return fmt.Errorf("schema: open migration dir: %w", err)
	}
	return migrate.Validate(d)
}

// Stmts splits a migration file into statements.
func Stmts(name string, src []byte) ([]string, error) {
	stmts, err := migrate.NewLocalFile(name, src).Stmts()
	if err != nil {
		return nil, fmt.Errorf("schema: split %s: %w", name, err)
	}
	return stmts, nil
}

// Verify applies a migration to an empty in-memory SQLite database inside
// a transaction that is rolled back.
func Verify(ctx context.Context, name string, src []byte) error {
	stmts, err := Stmts(name, src)
	if err != nil {
		return err
	}
	drv, err := sql.OpenScratch()
	if err != nil {
		return err
	}
	defer drv.Close()
	return drv.DryRun(ctx, stmts)
}
