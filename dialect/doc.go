// Package dialect names the SQL databases migrations can be rendered for.
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Sub-packages:
//
//   - dialect/sql/schema: table DDL rendering, migration directory sums and verification
package dialect
