package sql

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/edge"
	"github.com/syssam/crudgen/schema/field"
)

// modelStruct renders the model struct: the implicit id, the columns and
// one field per relation.
func modelStruct(t *gen.Type) jen.Code {
	return jen.Commentf("%s is the model of the %s table.", t.ModelName(), t.Table()).Line().
		Type().Id(t.ModelName()).StructFunc(func(g *jen.Group) {
		g.Id("ID").Uint64().Tag(map[string]string{"gorm": "primaryKey", "json": "id"})
		for _, f := range t.Fields {
			g.Id(f.StructField()).Add(goType(f)).Tag(map[string]string{"gorm": gormTag(f), "json": f.Name})
		}
		for _, r := range t.Relations {
			g.Id(r.StructField()).Add(relationType(r)).Tag(map[string]string{"gorm": relationTag(r), "json": r.Key() + ",omitempty"})
		}
	})
}

func gormTag(f *gen.Field) string {
	opts := []string{"column:" + f.Name}
	if !f.Nullable() {
		opts = append(opts, "not null")
	}
	if f.Unique() {
		opts = append(opts, "unique")
	}
	if v, ok := f.Default(); ok && !strings.EqualFold(v, "null") {
		opts = append(opts, "default:"+field.Unquote(v))
	}
	if f.Tag != "" {
		opts = append(opts, f.Tag)
	}
	return strings.Join(opts, ";")
}

func relationType(r *gen.Relation) *jen.Statement {
	if r.Kind.IsMany() {
		return jen.Index().Id(r.TargetModel())
	}
	return jen.Op("*").Id(r.TargetModel())
}

func relationTag(r *gen.Relation) string {
	if r.Kind == edge.BelongsToMany {
		return fmt.Sprintf("many2many:%s;joinForeignKey:%s;joinReferences:%s",
			r.JoinTable(), gen.Pascal(r.JoinForeignKey()), gen.Pascal(r.JoinReferences()))
	}
	return "foreignKey:" + r.ForeignKeyField()
}

// modelFillable renders the columns a payload may assign.
func modelFillable(t *gen.Type) jen.Code {
	return jen.Commentf("%sFillable lists the columns assignable from a request payload.", t.ModelName()).Line().
		Var().Id(t.ModelName() + "Fillable").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, f := range t.Declared() {
			g.Lit(f.Name)
		}
	})
}

// modelMethods renders the table name, payload filling and the relation
// accessors.
func modelMethods(t *gen.Type) []jen.Code {
	recv := t.Receiver()
	methods := []jen.Code{
		jen.Comment("TableName returns the table of the model.").Line().
			Func().Params(jen.Id(t.ModelName())).Id("TableName").Params().String().Block(
			jen.Return(jen.Lit(t.Table())),
		),
		jen.Comment("Fill assigns the fillable columns present in values.").Line().
			Func().Params(jen.Id(recv).Op("*").Id(t.ModelName())).Id("Fill").Params(jen.Id("values").Map(jen.String()).Any()).Error().Block(
			jen.Id("fill").Op(":=").Make(jen.Map(jen.String()).Any(), jen.Len(jen.Id(t.ModelName()+"Fillable"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("k")).Op(":=").Range().Id(t.ModelName()+"Fillable")).Block(
				jen.If(jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Id("values").Index(jen.Id("k")), jen.Id("ok")).Block(
					jen.Id("fill").Index(jen.Id("k")).Op("=").Id("v"),
				),
			),
			jen.List(jen.Id("data"), jen.Err()).Op(":=").Qual(jsonPkg, "Marshal").Call(jen.Id("fill")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Return(jen.Qual(jsonPkg, "Unmarshal").Call(jen.Id("data"), jen.Id(recv))),
		),
	}
	for _, r := range t.Relations {
		methods = append(methods,
			jen.Commentf("%sAssociation returns the %s %s relation of the model.", r.StructField(), r.Kind, r.Name).Line().
				Func().Params(jen.Id(recv).Op("*").Id(t.ModelName())).Id(r.StructField()+"Association").
				Params(jen.Id("db").Op("*").Qual(gormPkg, "DB")).Op("*").Qual(gormPkg, "Association").Block(
				jen.Return(jen.Id("db").Dot("Model").Call(jen.Id(recv)).Dot("Association").Call(jen.Lit(r.StructField()))),
			),
		)
	}
	return methods
}
