// Package index describes composite table indexes declared by entity schemas.
package index

import (
	"errors"
	"strings"
)

// Builder for indexes.
type Builder struct {
	desc *Descriptor
}

// Fields creates an index on the given columns, in order.
//
//	index.Fields("author_id", "slug").Unique()
func Fields(fields ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: fields}}
}

// Unique makes the index a unique constraint.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// StorageKey sets the constraint name. Without it a name is derived from
// the table and the columns.
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Descriptor returns the index descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Descriptor holds the index configuration.
type Descriptor struct {
	Unique     bool     // unique index.
	Fields     []string // indexed columns.
	StorageKey string   // custom constraint name.
}

// Name returns the constraint name of the index on table.
func (d *Descriptor) Name(table string) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	suffix := "index"
	if d.Unique {
		suffix = "unique"
	}
	return table + "_" + strings.Join(d.Fields, "_") + "_" + suffix
}

// Validate checks that the index has at least one column and no duplicates.
func (d *Descriptor) Validate() error {
	if len(d.Fields) == 0 {
		return errors.New("index: no fields")
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f == "" {
			return errors.New("index: empty field name")
		}
		if seen[f] {
			return errors.New("index: duplicate field " + f)
		}
		seen[f] = true
	}
	return nil
}
