package dialect

import (
	"fmt"
	"slices"
	"strings"
)

// Supported dialects.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Dialects lists the supported dialect names.
var Dialects = []string{Postgres, MySQL, SQLite}

// Normalize returns the canonical dialect name, accepting common aliases.
func Normalize(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "postgresql", "pg", "pgsql":
		return Postgres, nil
	case "mariadb":
		return MySQL, nil
	case "sqlite3":
		return SQLite, nil
	default:
		if slices.Contains(Dialects, n) {
			return n, nil
		}
		return "", fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}
