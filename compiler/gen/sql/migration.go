package sql

import (
	"fmt"
	"strings"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/dialect/sql/schema"
	"github.com/syssam/crudgen/schema/field"
)

// Table builds the table of t: the implicit id, one column per field in
// declaration order, foreignId references with cascading delete and the
// composite unique constraints.
func Table(t *gen.Type) *schema.Table {
	tbl := schema.NewTable(t.Table()).
		SetComment(t.Name).
		AddPrimary(&schema.Column{Name: "id", Type: field.TypeBigInteger, Increment: true})
	for _, f := range t.Fields {
		c := schema.NewColumn(f.Name, f.Spec)
		tbl.AddColumn(c)
		if f.IsForeignKey() {
			tbl.AddForeignKey(&schema.ForeignKey{
				Columns:  []*schema.Column{c},
				RefTable: schema.NewTable(f.Ref()),
				OnDelete: schema.Cascade,
			})
		}
	}
	for _, idx := range t.Indexes {
		tbl.AddIndex(idx.Name(t.Table()), idx.Unique, idx.Fields)
	}
	return tbl
}

// migration renders the create_table fragment and the bare table fallback.
func migration(b *schema.Builder, t *gen.Type) gen.Fragments {
	header := fmt.Sprintf("-- Generated by crudgen %s for %s.\n", crudgen.Version, t.ModelName())
	return gen.Fragments{
		"create_table":        strings.TrimSuffix(b.CreateTable(Table(t)), "\n"),
		gen.FallbackMigration: header + b.BareTable(t.Table()),
	}
}
