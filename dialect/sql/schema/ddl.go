package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/crudgen/dialect"
	"github.com/syssam/crudgen/dialect/sql"
	"github.com/syssam/crudgen/schema/field"
)

// Builder renders DDL statements for one dialect.
type Builder struct {
	dialect string
	indent  string
}

// NewBuilder returns a DDL builder for the dialect.
func NewBuilder(name string) (*Builder, error) {
	name, err := dialect.Normalize(name)
	if err != nil {
		return nil, err
	}
	return &Builder{dialect: name, indent: "  "}, nil
}

// Dialect returns the dialect name.
func (b *Builder) Dialect() string { return b.dialect }

// columnTypes maps base types to column types, per dialect.
var columnTypes = map[field.Type][3]string{
	//                  postgres            mysql              sqlite
	field.TypeString:     {"varchar(255)", "varchar(255)", "varchar(255)"},
	field.TypeEmail:      {"varchar(255)", "varchar(255)", "varchar(255)"},
	field.TypeImage:      {"varchar(255)", "varchar(255)", "varchar(255)"},
	field.TypeFile:       {"varchar(255)", "varchar(255)", "varchar(255)"},
	field.TypeText:       {"text", "text", "text"},
	field.TypeInteger:    {"integer", "int", "integer"},
	field.TypeBigInteger: {"bigint", "bigint", "integer"},
	field.TypeForeignID:  {"bigint", "bigint unsigned", "integer"},
	field.TypeBoolean:    {"boolean", "tinyint(1)", "boolean"},
	field.TypeDouble:     {"double precision", "double", "real"},
	field.TypeFloat:      {"real", "float", "real"},
	field.TypeDecimal:    {"numeric(10, 2)", "decimal(10, 2)", "numeric"},
	field.TypeDate:       {"date", "date", "date"},
	field.TypeDateTime:   {"timestamp", "datetime", "datetime"},
	field.TypeTimestamp:  {"timestamp", "timestamp", "timestamp"},
	field.TypeTime:       {"time", "time", "time"},
	field.TypeJSON:       {"jsonb", "json", "text"},
	field.TypeUUID:       {"uuid", "char(36)", "text"},
}

func (b *Builder) slot() int {
	switch b.dialect {
	case dialect.MySQL:
		return 1
	case dialect.SQLite:
		return 2
	default:
		return 0
	}
}

// Type returns the column type. Unknown base types pass through as declared.
func (b *Builder) Type(c *Column) string {
	if types, ok := columnTypes[c.Type]; ok {
		return types[b.slot()]
	}
	return string(c.Type)
}

// Quote quotes an identifier.
func (b *Builder) Quote(ident string) string { return sql.Quote(b.dialect, ident) }

// CreateTable renders the CREATE TABLE statement of t. Columns render in
// order; their modifier clauses render in declaration order. Foreign keys
// are inline column references, or table constraints on MySQL. Composite
// unique indexes become table constraints after the columns.
func (b *Builder) CreateTable(t *Table) string {
	defs := make([]string, 0, len(t.Columns)+len(t.Indexes))
	for _, c := range t.Columns {
		defs = append(defs, b.column(t, c))
	}
	if b.dialect == dialect.MySQL {
		for _, fk := range t.ForeignKeys {
			defs = append(defs, b.foreignKey(t, fk))
		}
	}
	for _, idx := range t.Indexes {
		if !idx.Unique {
			continue
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", b.Quote(idx.Name), b.columnList(idx.Columns)))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", b.Quote(t.Name))
	for i, def := range defs {
		sb.WriteString(b.indent)
		sb.WriteString(def)
		if i < len(defs)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(");\n")
	for _, idx := range t.Indexes {
		if idx.Unique {
			continue
		}
		fmt.Fprintf(&sb, "CREATE INDEX %s ON %s (%s);\n", b.Quote(idx.Name), b.Quote(t.Name), b.columnList(idx.Columns))
	}
	return sb.String()
}

// BareTable renders a table holding only the implicit columns.
func (b *Builder) BareTable(name string) string {
	t := NewTable(name).AddPrimary(&Column{Name: "id", Type: field.TypeBigInteger, Increment: true})
	for _, col := range []string{"created_at", "updated_at"} {
		t.AddColumn(&Column{Name: col, Type: field.TypeTimestamp, Nullable: true})
	}
	return b.CreateTable(t)
}

func (b *Builder) column(t *Table, c *Column) string {
	parts := []string{b.Quote(c.Name)}
	if c.PrimaryKey() && c.Increment {
		switch b.dialect {
		case dialect.MySQL:
			parts = append(parts, "bigint unsigned NOT NULL AUTO_INCREMENT PRIMARY KEY")
		case dialect.SQLite:
			parts = append(parts, "integer PRIMARY KEY AUTOINCREMENT")
		default:
			parts = append(parts, "bigserial PRIMARY KEY")
		}
		return strings.Join(parts, " ")
	}
	parts = append(parts, b.Type(c))
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	for _, m := range c.Attrs {
		switch m.Kind {
		case field.ModifierNullable:
			parts = append(parts, "NULL")
		case field.ModifierUnique:
			parts = append(parts, "UNIQUE")
		case field.ModifierDefault:
			parts = append(parts, "DEFAULT "+sql.Value(b.dialect, m.Arg))
		}
	}
	if c.PrimaryKey() && len(t.PrimaryKey) == 1 {
		parts = append(parts, "PRIMARY KEY")
	}
	if fk, ok := t.ForeignKeyOf(c); ok && b.dialect != dialect.MySQL {
		parts = append(parts, b.references(fk))
	}
	return strings.Join(parts, " ")
}

func (b *Builder) references(fk *ForeignKey) string {
	refs := fk.RefColumns
	if len(refs) == 0 {
		refs = []*Column{{Name: "id"}}
	}
	s := fmt.Sprintf("REFERENCES %s (%s)", b.Quote(fk.RefTable.Name), b.columnList(refs))
	if fk.OnDelete != "" {
		s += " ON DELETE " + string(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		s += " ON UPDATE " + string(fk.OnUpdate)
	}
	return s
}

func (b *Builder) foreignKey(t *Table, fk *ForeignKey) string {
	symbol := fk.Symbol
	if symbol == "" {
		names := make([]string, len(fk.Columns))
		for i, c := range fk.Columns {
			names[i] = c.Name
		}
		symbol = t.Name + "_" + strings.Join(names, "_") + "_foreign"
	}
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) %s", b.Quote(symbol), b.columnList(fk.Columns), b.references(fk))
}

func (b *Builder) columnList(cols []*Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = b.Quote(c.Name)
	}
	return strings.Join(names, ", ")
}
