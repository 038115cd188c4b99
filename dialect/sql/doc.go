// Package sql holds the SQL primitives shared by migration rendering and
// verification: identifier and literal quoting per dialect, and a thin
// driver running statements in a rolled-back transaction.
//
// # Dialect Support
//
//	sql.Quote(dialect.Postgres, "user")   // "user"
//	sql.Quote(dialect.MySQL, "user")      // `user`
//	sql.Value(dialect.Postgres, "'draft'") // 'draft'
//	sql.Value(dialect.Postgres, "0")      // 0
//
// # Verification
//
//	drv, err := sql.OpenScratch()
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	err = drv.DryRun(ctx, stmts)
package sql
