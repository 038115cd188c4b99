package sql

import (
	"encoding/json"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/field"
)

// seederFunc renders the function inserting n sample records. Nullable
// columns are left unset; unique columns are numbered per record.
func seederFunc(t *gen.Type) jen.Code {
	var (
		numbered bool
		dict     = jen.Dict{}
	)
	for _, f := range t.Declared() {
		if pointer(f) {
			continue
		}
		code, seq := sampleCode(f)
		dict[jen.Id(f.StructField())] = code
		numbered = numbered || seq
	}
	loop := jen.Range().Id("n")
	if numbered {
		loop = jen.Id("i").Op(":=").Range().Id("n")
	}
	return jen.Commentf("%s inserts n sample %s records.", t.SeederName(), t.Title()).Line().
		Func().Id(t.SeederName()).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("db").Op("*").Qual(gormPkg, "DB"),
		jen.Id("n").Int(),
	).Error().Block(
		jen.For(loop).Block(
			jen.Id("m").Op(":=").Add(model(t)).Values(dict),
			jen.If(jen.Err().Op(":=").Id("db").Dot("WithContext").Call(jen.Id("ctx")).Dot("Create").Call(jen.Op("&").Id("m")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("seed "+t.Table()+": %w"), jen.Err())),
			),
		),
		jen.Return(jen.Nil()),
	)
}

// sampleCode returns the Go expression of the sample value of a column,
// and whether it depends on the loop index.
func sampleCode(f *gen.Field) (jen.Code, bool) {
	v := Sample(f)
	switch f.Type() {
	case field.TypeDateTime, field.TypeTimestamp:
		return jen.Qual(timePkg, "Date").Call(
			jen.Lit(sampleTime.Year()), jen.Qual(timePkg, sampleTime.Month().String()), jen.Lit(sampleTime.Day()),
			jen.Lit(sampleTime.Hour()), jen.Lit(sampleTime.Minute()), jen.Lit(0), jen.Lit(0), jen.Qual(timePkg, "UTC"),
		), false
	case field.TypeJSON:
		data, _ := json.Marshal(v)
		return jen.Qual(jsonPkg, "RawMessage").Call(jen.Lit(string(data))), false
	}
	s, ok := v.(string)
	if !ok {
		return jen.Lit(v), false
	}
	if !f.Unique() {
		return jen.Lit(s), false
	}
	format := s + " %d"
	if at := strings.IndexByte(s, '@'); at >= 0 {
		format = s[:at] + "%d" + s[at:]
	}
	return jen.Qual("fmt", "Sprintf").Call(jen.Lit(format), jen.Id("i").Op("+").Lit(1)), true
}
