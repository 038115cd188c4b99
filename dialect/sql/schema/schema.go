package schema

import (
	"github.com/syssam/crudgen/schema/field"
)

// Table schema definition for SQL dialects.
type Table struct {
	Name        string
	Columns     []*Column
	columns     map[string]*Column
	Indexes     []*Index
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	Comment     string
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{
		Name:    name,
		columns: make(map[string]*Column),
	}
}

// SetComment sets the table comment.
func (t *Table) SetComment(c string) *Table {
	t.Comment = c
	return t
}

// AddPrimary adds a new primary key to the table.
func (t *Table) AddPrimary(c *Column) *Table {
	c.Key = PrimaryKey
	t.AddColumn(c)
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddColumn adds a new column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	if t.columns == nil {
		t.columns = make(map[string]*Column)
	}
	t.columns[c.Name] = c
	t.Columns = append(t.Columns, c)
	return t
}

// HasColumn reports if the table contains a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column returns the column with the given name, if exists.
func (t *Table) Column(name string) (*Column, bool) {
	if c, ok := t.columns[name]; ok {
		return c, true
	}
	// Columns added directly to the slice.
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddForeignKey adds a foreign key to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// AddIndex creates and adds a new index to the table from the given options.
func (t *Table) AddIndex(name string, unique bool, columns []string) *Table {
	idx := &Index{Name: name, Unique: unique}
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			c = &Column{Name: name}
		}
		idx.Columns = append(idx.Columns, c)
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// Index returns a table index by its name.
func (t *Table) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// ForeignKeyOf returns the foreign key declared on the column, if any.
func (t *Table) ForeignKeyOf(c *Column) (*ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		for _, fc := range fk.Columns {
			if fc == c {
				return fk, true
			}
		}
	}
	return nil, false
}

// Key types of columns.
const (
	PrimaryKey = "PRI"
	UniqueKey  = "UNI"
)

// Column schema definition for SQL dialects.
type Column struct {
	Name string
	// Type is the base type of the column. Unknown types are rendered
	// with their declared name.
	Type field.Type
	// Attrs are the nullable, unique and default modifiers in declaration
	// order. Clauses render in this order.
	Attrs     []field.Modifier
	Nullable  bool
	Key       string
	Increment bool
}

// NewColumn creates a column from a parsed field spec.
func NewColumn(name string, d *field.Descriptor) *Column {
	c := &Column{Name: name, Type: d.Type, Nullable: d.Nullable()}
	for _, m := range d.Modifiers {
		if m.Kind == field.ModifierOther {
			continue
		}
		c.Attrs = append(c.Attrs, m)
	}
	if d.Unique() {
		c.Key = UniqueKey
	}
	return c
}

// UniqueKey returns boolean indicates if this column is a unique key.
func (c *Column) UniqueKey() bool { return c.Key == UniqueKey }

// PrimaryKey returns boolean indicates if this column is on of the primary key columns.
func (c *Column) PrimaryKey() bool { return c.Key == PrimaryKey }

// Default returns the default argument of the column, if declared.
func (c *Column) Default() (string, bool) {
	for _, m := range c.Attrs {
		if m.Kind == field.ModifierDefault {
			return m.Arg, true
		}
	}
	return "", false
}

// ReferenceOption for constraint actions.
type ReferenceOption string

// Reference options (actions) specified by ON UPDATE and ON DELETE
// subclauses of the FOREIGN KEY clause.
const (
	NoAction   ReferenceOption = "NO ACTION"
	Restrict   ReferenceOption = "RESTRICT"
	Cascade    ReferenceOption = "CASCADE"
	SetNull    ReferenceOption = "SET NULL"
	SetDefault ReferenceOption = "SET DEFAULT"
)

// ForeignKey definition for creation.
type ForeignKey struct {
	Symbol     string          // foreign-key name. Generated if empty.
	Columns    []*Column       // table column
	RefTable   *Table          // referenced table.
	RefColumns []*Column       // referenced columns.
	OnUpdate   ReferenceOption // action on update.
	OnDelete   ReferenceOption // action on delete.
}

// Index definition for table index.
type Index struct {
	Name    string    // index name.
	Unique  bool      // uniqueness.
	Columns []*Column // actual table columns.
}
