package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
)

// resourceFunc renders the projection of one record: the columns as they
// are, and the relations that were loaded.
func resourceFunc(t *gen.Type) jen.Code {
	dict := jen.Dict{jen.Lit("id"): jen.Id("m").Dot("ID")}
	for _, f := range t.Fields {
		dict[jen.Lit(f.Name)] = jen.Id("m").Dot(f.StructField())
	}
	return jen.Commentf("%s projects a %s record into its response representation.", t.ResourceName(), t.Title()).Line().
		Func().Id(t.ResourceName()).Params(jen.Id("m").Op("*").Add(model(t))).Map(jen.String()).Any().BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("m").Op("==").Nil()).Block(jen.Return(jen.Nil()))
		g.Id("out").Op(":=").Map(jen.String()).Any().Values(dict)
		for _, r := range t.Relations {
			fld := jen.Id("m").Dot(r.StructField())
			g.If(fld.Clone().Op("!=").Nil()).Block(
				jen.Id("out").Index(jen.Lit(r.Key())).Op("=").Add(relationProjection(r, fld.Clone())),
			)
		}
		g.Return(jen.Id("out"))
	})
}

// relationProjection projects a loaded relation with the resources of the
// related type when they are generated, or as the raw model otherwise.
func relationProjection(r *gen.Relation, v *jen.Statement) jen.Code {
	rt := r.Type
	switch {
	case rt == nil:
		return v
	case r.Kind.IsMany() && rt.Enabled(gen.ArtifactCollection) && rt.Enabled(gen.ArtifactResource):
		return jen.Qual(rt.ImportPath(gen.ArtifactCollection), rt.CollectionName()).Call(v)
	case !r.Kind.IsMany() && rt.Enabled(gen.ArtifactResource):
		return jen.Qual(rt.ImportPath(gen.ArtifactResource), rt.ResourceName()).Call(v)
	default:
		return v
	}
}

// collectionFunc renders the projection of a record list.
func collectionFunc(t *gen.Type) jen.Code {
	return jen.Commentf("%s projects a list of %s records.", t.CollectionName(), t.Title()).Line().
		Func().Id(t.CollectionName()).Params(jen.Id("items").Index().Add(model(t))).Index().Map(jen.String()).Any().Block(
		jen.Id("out").Op(":=").Make(jen.Index().Map(jen.String()).Any(), jen.Len(jen.Id("items"))),
		jen.For(jen.Id("i").Op(":=").Range().Id("items")).Block(
			jen.Id("out").Index(jen.Id("i")).Op("=").Id(t.ResourceName()).Call(jen.Op("&").Id("items").Index(jen.Id("i"))),
		),
		jen.Return(jen.Id("out")),
	)
}
