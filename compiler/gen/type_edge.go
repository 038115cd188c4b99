package gen

import (
	"slices"
	"strings"

	"github.com/syssam/crudgen/schema/edge"
)

// Relation is a resolved relation of a type.
type Relation struct {
	*edge.Descriptor
	// Owner is the type declaring the relation.
	Owner *Type
	// Type is the related type. Nil when the target entity is not declared
	// in the schema; such relations are still rendered on the model.
	Type *Type
}

// StructField returns the model struct field name of the relation.
func (r Relation) StructField() string { return pascal(r.Name) }

// Key returns the payload and JSON key of the relation.
func (r Relation) Key() string { return r.Name }

// TargetModel returns the model struct name of the related entity.
func (r Relation) TargetModel() string {
	if r.Type != nil {
		return r.Type.ModelName()
	}
	return pascal(r.Target)
}

// TargetTable returns the table of the related entity.
func (r Relation) TargetTable() string {
	if r.Type != nil {
		return r.Type.Table()
	}
	return snake(rules.Pluralize(r.Target))
}

// ForeignKey returns the column linking the two tables. For belongsTo it
// lives in the owner table; for hasOne and hasMany in the related table.
// belongsToMany relations have no foreign key column.
func (r Relation) ForeignKey() string {
	switch r.Kind {
	case edge.BelongsTo:
		for _, f := range r.Owner.Fields {
			if f.IsForeignKey() && f.Ref() == r.TargetTable() {
				return f.Name
			}
		}
		return snake(r.Name) + "_id"
	case edge.HasOne, edge.HasMany:
		if r.Type != nil {
			for _, f := range r.Type.Fields {
				if f.IsForeignKey() && f.Ref() == r.Owner.Table() {
					return f.Name
				}
			}
		}
		return r.Owner.Label() + "_id"
	}
	return ""
}

// ForeignKeyField returns the struct field name of the foreign key column.
func (r Relation) ForeignKeyField() string { return pascal(r.ForeignKey()) }

// JoinTable returns the pivot table of a belongsToMany relation. The two
// singular labels are joined in alphabetical order.
func (r Relation) JoinTable() string {
	if r.Kind != edge.BelongsToMany {
		return ""
	}
	names := []string{r.Owner.Label(), snake(r.TargetModel())}
	slices.Sort(names)
	return strings.Join(names, "_")
}

// JoinForeignKey returns the pivot column referencing the owner.
func (r Relation) JoinForeignKey() string { return r.Owner.Label() + "_id" }

// JoinReferences returns the pivot column referencing the related entity.
func (r Relation) JoinReferences() string { return snake(r.TargetModel()) + "_id" }

// GoType returns the model field type of the relation.
func (r Relation) GoType() string {
	if r.Kind.IsMany() {
		return "[]" + r.TargetModel()
	}
	return "*" + r.TargetModel()
}

// Nested is a node of the nested relation tree: a relation written inline
// with its parent, and the relations written inline with it.
type Nested struct {
	*Relation
	Children []*Nested
}

// Depth returns the depth of the subtree rooted at n, counting n.
func (n *Nested) Depth() int {
	depth := 0
	for _, c := range n.Children {
		depth = max(depth, c.Depth())
	}
	return depth + 1
}

// BackReference reports whether a column of the related type holds the
// reference to the parent. Such columns are filled by the service and
// never come from the payload.
func (n *Nested) BackReference(f *Field) bool {
	return n.Kind != edge.BelongsToMany && f.Name == n.ForeignKey()
}

// PayloadFields returns the related columns accepted in the nested payload.
func (n *Nested) PayloadFields() []*Field {
	if n.Type == nil {
		return nil
	}
	var fields []*Field
	for _, f := range n.Type.Declared() {
		if !n.BackReference(f) {
			fields = append(fields, f)
		}
	}
	return fields
}
