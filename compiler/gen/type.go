package gen

import (
	"fmt"
	"path"
	"strings"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/field"
	"github.com/syssam/crudgen/schema/index"
	"github.com/syssam/crudgen/schema/mixin"
)

// The following types and their exported methods are used by the
// synthesizers to generate the artifacts.
type (
	// Type is the model configuration of one entity: its name variants,
	// columns, relations and the nested relation tree written inline
	// with it.
	Type struct {
		*Config
		def *load.Entity
		// Name holds the entity name as declared.
		Name string
		// Fields holds the declared columns followed by mixin columns.
		Fields []*Field
		fields map[string]*Field
		// Relations in declaration order.
		Relations []*Relation
		relations map[string]*Relation
		// Nested is the resolved tree of relations written with the entity.
		Nested []*Nested
		// Indexes are the composite unique constraints.
		Indexes []*index.Descriptor
		// With lists the relation paths loaded with every query.
		With []string
		artifacts map[Artifact]bool
		migration string
	}

	// Field is one column of a type.
	Field struct {
		typ *Type
		// Name is the column name.
		Name string
		// Spec is the parsed type spec.
		Spec *field.Descriptor
		// Mixin reports a column contributed by a mixin rather than declared.
		Mixin bool
		// Tag is an extra gorm tag option.
		Tag  string
		line int
	}
)

// NewType creates a type from a loaded entity. Relations and nested
// trees are resolved later by the graph.
func NewType(c *Config, e *load.Entity) (*Type, error) {
	t := &Type{
		Config:    c,
		def:       e,
		Name:      e.Name,
		fields:    make(map[string]*Field),
		relations: make(map[string]*Relation),
		With:      e.With,
	}
	for _, f := range e.Fields {
		if strings.EqualFold(f.Name, "id") {
			return nil, NewSchemaError(e.Name, f.Name, "the id column is implicit and cannot be declared", nil)
		}
		spec, err := field.Parse(f.Spec)
		if err != nil {
			return nil, NewSchemaError(e.Name, f.Name, fmt.Sprintf("invalid type spec %q", f.Spec), err)
		}
		t.addField(&Field{typ: t, Name: f.Name, Spec: spec, line: f.Line})
	}
	if e.Timestamps {
		for _, m := range mixin.Default() {
			for _, mf := range m.Fields() {
				if _, ok := t.fields[mf.Name]; ok {
					continue
				}
				t.addField(&Field{typ: t, Name: mf.Name, Spec: mf.Spec, Mixin: true, Tag: mf.Tag})
			}
		}
	}
	for _, cols := range e.Unique {
		idx := index.Fields(cols...).Unique().Descriptor()
		if err := idx.Validate(); err != nil {
			return nil, NewSchemaError(e.Name, "", "invalid unique constraint", err)
		}
		for _, col := range cols {
			if _, ok := t.fields[col]; !ok {
				return nil, NewSchemaError(e.Name, col, "unique constraint references an unknown column", nil)
			}
		}
		t.Indexes = append(t.Indexes, idx)
	}
	if err := t.resolveArtifacts(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Type) addField(f *Field) {
	t.Fields = append(t.Fields, f)
	t.fields[f.Name] = f
}

// resolveArtifacts applies the generate and generate_except toggles.
func (t *Type) resolveArtifacts() error {
	t.artifacts = make(map[Artifact]bool)
	switch t.def.Generate.Mode {
	case load.GenerateAll:
		for _, s := range Artifacts {
			t.artifacts[s.Kind] = true
		}
	case load.GenerateOnly:
		kinds, err := ParseArtifacts(t.Name+".generate", t.def.Generate.Components...)
		if err != nil {
			return err
		}
		for _, k := range kinds {
			t.artifacts[k] = true
		}
	}
	except, err := ParseArtifacts(t.Name+".generate_except", t.def.GenerateExcept...)
	if err != nil {
		return err
	}
	for _, k := range except {
		delete(t.artifacts, k)
	}
	if t.SkipAuxiliary {
		for _, s := range Artifacts {
			if s.Auxiliary {
				delete(t.artifacts, s.Kind)
			}
		}
	}
	return nil
}

// Enabled reports whether the type generates the given artifact.
func (t Type) Enabled(kind Artifact) bool { return t.artifacts[kind] }

// Field returns the column with the given name.
func (t Type) Field(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Relation returns the relation with the given name.
func (t Type) Relation(name string) (*Relation, bool) {
	r, ok := t.relations[name]
	return r, ok
}

// Declared returns the columns declared in the schema, without mixin columns.
func (t Type) Declared() []*Field {
	fields := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if !f.Mixin {
			fields = append(fields, f)
		}
	}
	return fields
}

// Attachments returns the declared image and file columns.
func (t Type) Attachments() []*Field {
	var fields []*Field
	for _, f := range t.Declared() {
		if f.IsAttachment() {
			fields = append(fields, f)
		}
	}
	return fields
}

// HasAttachments reports whether the type has image or file columns.
func (t Type) HasAttachments() bool { return len(t.Attachments()) > 0 }

// Label returns the label name of the type (snake_case).
func (t Type) Label() string { return snake(t.Name) }

// Plural returns the plural form of the type name.
func (t Type) Plural() string { return pascal(rules.Pluralize(t.Name)) }

// Camel returns the type name in camelCase.
func (t Type) Camel() string { return camel(t.Name) }

// Title returns the human readable type name.
func (t Type) Title() string { return title(t.Name) }

// Receiver returns the receiver name of the type.
func (t Type) Receiver() string { return receiver(t.Name) }

// Table returns the SQL table name of the type.
func (t Type) Table() string {
	if t.def != nil && t.def.Table != "" {
		return t.def.Table
	}
	return snake(rules.Pluralize(t.Name))
}

// RoutePath returns the URL prefix the controller is mounted on.
func (t Type) RoutePath() string { return "/" + kebab(rules.Pluralize(t.Name)) }

// UploadFolder returns the storage folder attachments of this type are put in.
func (t Type) UploadFolder() string { return t.Table() }

// ModelName returns the struct name denoting the persistence model.
func (t Type) ModelName() string { return pascal(t.Name) }

// ServiceName returns the struct name denoting the CRUD service.
func (t Type) ServiceName() string { return t.ModelName() + "Service" }

// ControllerName returns the struct name denoting the HTTP controller.
func (t Type) ControllerName() string { return t.ModelName() + "Controller" }

// ResourceName returns the function name denoting the single record projection.
func (t Type) ResourceName() string { return t.ModelName() + "Resource" }

// CollectionName returns the function name denoting the record list projection.
func (t Type) CollectionName() string { return t.ModelName() + "Collection" }

// StoreRulesName returns the variable name denoting the create validation rules.
func (t Type) StoreRulesName() string { return "Store" + t.ModelName() + "Rules" }

// UpdateRulesName returns the variable name denoting the update validation rules.
func (t Type) UpdateRulesName() string { return "Update" + t.ModelName() + "Rules" }

// SeederName returns the function name denoting the sample data seeder.
func (t Type) SeederName() string { return "Seed" + t.Plural() }

// Path returns the project relative path of an artifact of this type.
func (t Type) Path(kind Artifact) string {
	if kind == ArtifactMigration {
		return t.migration
	}
	s := specOf(kind)
	return path.Join(t.Dir(kind), t.Label()+s.Suffix)
}

// MigrationGlob returns the pattern matching an existing migration of the type.
func (t Type) MigrationGlob() string {
	return path.Join(t.Dir(ArtifactMigration), "*"+t.migrationSuffix())
}

func (t Type) migrationSuffix() string {
	return "_create_" + t.Table() + "_table.sql"
}

// Package returns the Go package name of an artifact kind.
func (t Type) Package(kind Artifact) string { return path.Base(t.Dir(kind)) }

// Placeholders returns the name variants every stub can reference.
func (t Type) Placeholders() map[string]string {
	p := map[string]string{
		"module":            t.Module,
		"entity":            t.ModelName(),
		"entity_camel":      t.Camel(),
		"entity_plural":     t.Plural(),
		"entity_snake":      t.Label(),
		"entity_title":      t.Title(),
		"table":             t.Table(),
		"route":             t.RoutePath(),
		"model":             t.ModelName(),
		"service":           t.ServiceName(),
		"controller":        t.ControllerName(),
		"resource":          t.ResourceName(),
		"collection":        t.CollectionName(),
		"store_rules":       t.StoreRulesName(),
		"update_rules":      t.UpdateRulesName(),
		"seeder":            t.SeederName(),
		"dialect":           t.Dialect,
		"generator_version": crudgen.Version,
	}
	for _, s := range Artifacts {
		if s.Stub == "" {
			continue
		}
		p[string(s.Kind)+"_pkg"] = t.Package(s.Kind)
		p[string(s.Kind)+"_import"] = t.ImportPath(s.Kind)
	}
	return p
}

// String returns the type name.
func (t Type) String() string { return t.Name }

// StructField returns the model struct field name of the column.
func (f Field) StructField() string { return pascal(f.Name) }

// Title returns the human readable column name.
func (f Field) Title() string { return title(f.Name) }

// Type returns the base column type.
func (f Field) Type() field.Type { return f.Spec.Type }

// Nullable reports whether the column accepts NULL.
func (f Field) Nullable() bool { return f.Spec.Nullable() }

// Unique reports whether the column is unique.
func (f Field) Unique() bool { return f.Spec.Unique() }

// IsAttachment reports whether the column stores an uploaded file reference.
func (f Field) IsAttachment() bool { return f.Spec.IsAttachment() }

// IsForeignKey reports whether the column references another table.
func (f Field) IsForeignKey() bool { return f.Spec.IsForeignKey() }

// Ref returns the referenced table of a foreignId column.
func (f Field) Ref() string { return f.Spec.Ref }

// Default returns the declared default value.
func (f Field) Default() (string, bool) { return f.Spec.Default() }

// Owner returns the type the column belongs to.
func (f Field) Owner() *Type { return f.typ }
