package sql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/crudgen/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IsValidIdentifier checks if the string is a plain SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 63 && validIdentifierRe.MatchString(s)
}

// Quote quotes an identifier for the dialect. MySQL uses backticks, the
// others use standard double quotes.
func Quote(name, ident string) string {
	if name == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(ident)
}

// Literal quotes a string literal for the dialect.
func Literal(name, s string) string {
	if name == dialect.MySQL {
		return "'" + escapeStringValue(s) + "'"
	}
	// pq switches to the E'' form for backslashes, which SQLite does not
	// understand.
	if name == dialect.SQLite {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return pq.QuoteLiteral(s)
}

// escapeStringValue escapes a string value for safe use in MySQL.
// It escapes both single quotes (by doubling) and backslashes.
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// keywords are default values rendered bare.
var keywords = map[string]string{
	"null":              "NULL",
	"true":              "TRUE",
	"false":             "FALSE",
	"current_timestamp": "CURRENT_TIMESTAMP",
	"current_date":      "CURRENT_DATE",
	"current_time":      "CURRENT_TIME",
}

// Value renders a default(...) argument. Quoted arguments and bare words
// become string literals; numbers and a few keywords stay bare.
func Value(name, arg string) string {
	arg = strings.TrimSpace(arg)
	if len(arg) >= 2 {
		if q := arg[0]; (q == '\'' || q == '"') && arg[len(arg)-1] == q {
			return Literal(name, arg[1:len(arg)-1])
		}
	}
	if kw, ok := keywords[strings.ToLower(arg)]; ok {
		return kw
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return arg
	}
	return Literal(name, arg)
}
