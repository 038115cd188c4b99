package mixin

import (
	"github.com/syssam/crudgen/schema/field"
)

// Mixin is a reusable set of columns added to every table that uses it.
type Mixin interface {
	Fields() []Field
}

// Field is a column contributed by a mixin.
type Field struct {
	Name string
	Spec *field.Descriptor
	// Tag is an extra gorm tag option for the model field.
	Tag string
}

// Schema is the default implementation for the Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []Field { return nil }

var _ Mixin = (*Schema)(nil)

// Time adds created_at and updated_at timestamp columns. Both are nullable
// in the database and maintained by gorm.
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []Field {
	return []Field{
		{Name: "created_at", Spec: field.MustParse("timestamp:nullable"), Tag: "autoCreateTime"},
		{Name: "updated_at", Spec: field.MustParse("timestamp:nullable"), Tag: "autoUpdateTime"},
	}
}

// Default returns the mixins applied to entities that do not opt out.
func Default() []Mixin {
	return []Mixin{Time{}}
}
