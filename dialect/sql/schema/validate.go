package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/crudgen/dialect/sql"
)

// ValidationError is one finding about a table or one of its columns.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the findings of a validation. Errors make the
// rendered DDL fail; warnings are rendered DDL that probably does not do
// what the schema author meant.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports whether any error was found.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether any warning was found.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// String lists the findings, errors first.
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "No issues found"
	}
	var b strings.Builder
	section := func(title string, list []*ValidationError) {
		if len(list) == 0 {
			return
		}
		b.WriteString(title + ":\n")
		for _, e := range list {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	section("Errors", r.Errors)
	section("Warnings", r.Warnings)
	return b.String()
}

// Messages returns every finding as text, errors first.
func (r *ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	for _, w := range r.Warnings {
		msgs = append(msgs, w.Error())
	}
	return msgs
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// ValidateTable checks a single table: identifiers, column types and
// defaults, and that indexes and foreign keys name existing columns.
func ValidateTable(t *Table) *ValidationResult {
	r := &ValidationResult{}
	if !sql.IsValidIdentifier(t.Name) {
		r.warnf(t.Name, "", "table name is not a plain identifier and will be quoted")
	}
	if len(t.PrimaryKey) == 0 {
		r.warnf(t.Name, "", "table has no primary key")
	}
	columns := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if columns[c.Name] {
			r.errorf(t.Name, c.Name, "duplicate column name")
		}
		columns[c.Name] = true
		if !sql.IsValidIdentifier(c.Name) {
			r.warnf(t.Name, c.Name, "column name is not a plain identifier and will be quoted")
		}
		if c.Type != "" && !c.Type.Known() {
			r.warnf(t.Name, c.Name, "unknown column type %q is passed through as is", c.Type)
		}
		if def, ok := c.Default(); ok && !c.Nullable && strings.EqualFold(strings.TrimSpace(def), "null") {
			r.errorf(t.Name, c.Name, "NULL default on a NOT NULL column")
		}
	}
	indexes := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		if indexes[idx.Name] {
			r.errorf(t.Name, "", "duplicate index name: %s", idx.Name)
		}
		indexes[idx.Name] = true
		for _, c := range idx.Columns {
			if c != nil && !columns[c.Name] {
				r.errorf(t.Name, "", "index %q references non-existent column %q", idx.Name, c.Name)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if !columns[c.Name] {
				r.errorf(t.Name, "", "foreign key references non-existent column %q", c.Name)
			}
			if fk.OnDelete == SetNull && !c.Nullable {
				r.errorf(t.Name, c.Name, "ON DELETE SET NULL on a NOT NULL column")
			}
		}
	}
	return r
}

// ValidateSchema checks every table and the references between them.
// Tables are expected in creation order: a foreign key to a table created
// later is a warning.
func ValidateSchema(tables []*Table) *ValidationResult {
	r := &ValidationResult{}
	all := make(map[string]bool, len(tables))
	for _, t := range tables {
		if all[t.Name] {
			r.errorf(t.Name, "", "duplicate table name")
		}
		all[t.Name] = true
		tr := ValidateTable(t)
		r.Errors = append(r.Errors, tr.Errors...)
		r.Warnings = append(r.Warnings, tr.Warnings...)
	}
	created := make(map[string]bool, len(tables))
	for _, t := range tables {
		created[t.Name] = true
		for _, fk := range t.ForeignKeys {
			switch ref := fk.RefTable.Name; {
			case !all[ref]:
				r.warnf(t.Name, "", "foreign key references table %q that is not part of the schema", ref)
			case !created[ref]:
				r.warnf(t.Name, "", "foreign key references table %q that is created later", ref)
			}
		}
	}
	return r
}
