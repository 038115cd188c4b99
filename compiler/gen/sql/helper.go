package sql

import (
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/edge"
	"github.com/syssam/crudgen/schema/field"
)

// Import paths of the packages generated code depends on.
const (
	gormPkg = "gorm.io/gorm"
	chiPkg  = "github.com/go-chi/chi/v5"
	jsonPkg = "encoding/json"
	timePkg = "time"
)

// storagePkg returns the import path of the attachment store of the target project.
func storagePkg(t *gen.Type) string { return path.Join(t.Module, "internal/storage") }

// validationPkg returns the import path of the request validator of the target project.
func validationPkg(t *gen.Type) string { return path.Join(t.Module, "internal/validation") }

// modelPkg returns the import path of the models package.
func modelPkg(t *gen.Type) string { return t.ImportPath(gen.ArtifactModel) }

// newFile returns a file of the package kind is written to. Fragments are
// rendered in its context, so identifiers of that package are unqualified
// and imported packages use the names the stubs import them with.
func newFile(t *gen.Type, kind gen.Artifact) *jen.File {
	f := jen.NewFilePathName(t.ImportPath(kind), t.Package(kind))
	f.ImportName(gormPkg, "gorm")
	f.ImportName(chiPkg, "chi")
	f.ImportName(storagePkg(t), "storage")
	f.ImportName(validationPkg(t), "validation")
	for _, s := range gen.Artifacts {
		if s.Stub != "" {
			f.ImportName(t.ImportPath(s.Kind), t.Package(s.Kind))
		}
	}
	return f
}

// render renders declarations in the context of f, separated by blank lines.
func render(f *jen.File, decls ...jen.Code) (string, error) {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if err := jen.Add(d).RenderWithFile(&b, f); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// fragments renders one declaration list per placeholder.
func fragments(f *jen.File, decls map[string][]jen.Code) (gen.Fragments, error) {
	frags := make(gen.Fragments, len(decls))
	for name, code := range decls {
		src, err := render(f, code...)
		if err != nil {
			return nil, err
		}
		frags[name] = src
	}
	return frags, nil
}

// model returns the qualified model struct of t.
func model(t *gen.Type) *jen.Statement {
	return jen.Qual(modelPkg(t), t.ModelName())
}

// goType returns the model struct field type of a column. Nullable
// columns are pointers, except JSON documents.
func goType(f *gen.Field) *jen.Statement {
	var typ *jen.Statement
	switch f.Type() {
	case field.TypeInteger:
		typ = jen.Int()
	case field.TypeBigInteger:
		typ = jen.Int64()
	case field.TypeForeignID:
		typ = jen.Uint64()
	case field.TypeBoolean:
		typ = jen.Bool()
	case field.TypeDouble, field.TypeDecimal:
		typ = jen.Float64()
	case field.TypeFloat:
		typ = jen.Float32()
	case field.TypeDateTime, field.TypeTimestamp:
		typ = jen.Qual(timePkg, "Time")
	case field.TypeJSON:
		return jen.Qual(jsonPkg, "RawMessage")
	default:
		typ = jen.String()
	}
	if f.Nullable() {
		return jen.Op("*").Add(typ)
	}
	return typ
}

// pointer reports whether the model struct field of a column is a pointer.
func pointer(f *gen.Field) bool {
	return f.Nullable() && f.Type() != field.TypeJSON
}

// dependent is a hasOne or hasMany relation whose records the database
// deletes with their owner, through a cascading foreignId column. Only
// relations leading to attachments are kept.
type dependent struct {
	*gen.Relation
	Children []*dependent
}

// dependents returns the dependent tree of t. A type is not walked twice
// on the same path.
func dependents(t *gen.Type) []*dependent {
	return walkDependents(t, make(map[*gen.Type]bool))
}

func walkDependents(t *gen.Type, path map[*gen.Type]bool) []*dependent {
	path[t] = true
	defer delete(path, t)
	var deps []*dependent
	for _, r := range t.Relations {
		if r.Type == nil || path[r.Type] || (r.Kind != edge.HasOne && r.Kind != edge.HasMany) {
			continue
		}
		if f, ok := r.Type.Field(r.ForeignKey()); !ok || !f.IsForeignKey() {
			continue
		}
		d := &dependent{Relation: r, Children: walkDependents(r.Type, path)}
		if r.Type.HasAttachments() || len(d.Children) > 0 {
			deps = append(deps, d)
		}
	}
	return deps
}

// dependentPreloads returns the preload paths loading a dependent tree.
//
//	books, books.chapters => Books.Chapters
func dependentPreloads(deps []*dependent) []string {
	var paths []string
	for _, d := range deps {
		if len(d.Children) == 0 {
			paths = append(paths, d.StructField())
			continue
		}
		for _, p := range dependentPreloads(d.Children) {
			paths = append(paths, d.StructField()+"."+p)
		}
	}
	return paths
}

// reachable returns the types whose attachments a service of t stores or
// deletes: t, the types nested into it and the dependents of all of them.
func reachable(t *gen.Type) []*gen.Type {
	var (
		types []*gen.Type
		seen  = make(map[*gen.Type]bool)
	)
	var add func(*gen.Type)
	add = func(t *gen.Type) {
		if seen[t] {
			return
		}
		seen[t] = true
		types = append(types, t)
		var walk func([]*dependent)
		walk = func(deps []*dependent) {
			for _, d := range deps {
				add(d.Type)
				walk(d.Children)
			}
		}
		walk(dependents(t))
	}
	var nested func([]*gen.Nested)
	nested = func(tree []*gen.Nested) {
		for _, n := range tree {
			if n.Type == nil || n.Kind == edge.BelongsToMany {
				continue
			}
			add(n.Type)
			nested(n.Children)
		}
	}
	add(t)
	nested(t.Nested)
	return types
}

// attachments reports whether a service of t handles attachments.
func attachments(t *gen.Type) bool {
	for _, r := range reachable(t) {
		if r.HasAttachments() {
			return true
		}
	}
	return false
}

// nullableAttachments reports whether a service of t reads nullable
// attachments, through the ref helper.
func nullableAttachments(t *gen.Type) bool {
	for _, r := range reachable(t) {
		for _, f := range r.Attachments() {
			if pointer(f) {
				return true
			}
		}
	}
	return false
}

// preloads converts eager-load paths of relation names into gorm
// association paths of struct fields.
func preloads(t *gen.Type) []string {
	paths := make([]string, 0, len(t.With))
	for _, p := range t.With {
		var (
			cur  = t
			segs []string
		)
		for seg := range strings.SplitSeq(p, ".") {
			r, ok := cur.Relation(seg)
			if !ok {
				break
			}
			segs = append(segs, r.StructField())
			if cur = r.Type; cur == nil {
				break
			}
		}
		paths = append(paths, strings.Join(segs, "."))
	}
	return paths
}
