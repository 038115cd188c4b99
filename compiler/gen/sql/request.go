package sql

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/edge"
	"github.com/syssam/crudgen/schema/field"
)

// Rule is the validation rule of one dotted payload path.
type Rule struct {
	Path string
	Expr string
}

// RecordID stands for the id of the updated record in update rules. The
// generated rules function of each request replaces it.
const RecordID = "{id}"

// StoreRules returns the rules applied to a create payload of t. Nested
// relations get rules for depth levels; zero omits them.
func StoreRules(t *gen.Type, depth int) []Rule {
	rs := &ruleSet{depth: depth}
	rs.fields("", t.Declared(), scope{})
	rs.nested("", "", t.Nested, 1)
	return rs.rules
}

// UpdateRules returns the rules applied to an update payload of t. Columns
// of the record and of its hasOne relations may be omitted, nested items
// carrying the id of an existing record only need the columns they change,
// and unique columns ignore the record they belong to.
func UpdateRules(t *gen.Type, depth int) []Rule {
	rs := &ruleSet{depth: depth, update: true}
	rs.fields("", t.Declared(), scope{sometimes: true, except: RecordID})
	rs.nested("", RecordID, t.Nested, 1)
	return rs.rules
}

type ruleSet struct {
	rules  []Rule
	depth  int
	update bool
}

// scope describes the record holding a group of columns.
type scope struct {
	// sometimes allows omitting the columns.
	sometimes bool
	// itemID is the path of the id of an existing nested item; columns are
	// required without it only.
	itemID string
	// except identifies the record unique rules ignore, matched against
	// column, the id when empty.
	except, column string
}

func (rs *ruleSet) add(path string, parts ...string) {
	rs.rules = append(rs.rules, Rule{Path: path, Expr: strings.Join(parts, "|")})
}

func (rs *ruleSet) fields(prefix string, fields []*gen.Field, sc scope) {
	for _, f := range fields {
		rs.add(prefix+f.Name, fieldRule(f, sc))
	}
}

// nested adds the rules of the relations written inline. level is the
// nesting level of tree, starting at 1; paths accumulate the prefix of
// their parents. parent references the id of the record owning tree in
// update rules, empty when unknown.
func (rs *ruleSet) nested(prefix, parent string, tree []*gen.Nested, level int) {
	if level > rs.depth {
		return
	}
	for _, n := range tree {
		p := prefix + n.Key()
		switch n.Kind {
		case edge.HasMany:
			rs.add(p, "nullable", "array")
			rs.add(p+".*", "required", "array")
			sc, item := scope{}, ""
			if rs.update {
				id := p + ".*.id"
				rs.add(id, "sometimes", "integer", "exists:"+n.TargetTable()+",id")
				item = "{" + id + "}"
				sc = scope{itemID: id, except: item}
			}
			rs.fields(p+".*.", n.PayloadFields(), sc)
			rs.nested(p+".*.", item, n.Children, level+1)
		case edge.HasOne:
			rs.add(p, "nullable", "array")
			sc := scope{}
			if rs.update {
				sc = scope{sometimes: true}
				if parent != "" {
					sc.except, sc.column = parent, n.ForeignKey()
				}
			}
			rs.fields(p+".", n.PayloadFields(), sc)
			rs.nested(p+".", "", n.Children, level+1)
		case edge.BelongsToMany:
			rs.add(p, "nullable", "array")
			rs.add(p+".*", "integer", "exists:"+n.TargetTable()+",id")
		}
	}
}

// fieldRule returns the rule of one column: the presence rule, the type
// rules and the uniqueness rule.
//
//	unique:<table>,<column>[,<except>[,<except column>]]
func fieldRule(f *gen.Field, sc scope) string {
	var parts []string
	if sc.sometimes {
		parts = append(parts, "sometimes")
	}
	switch {
	case f.Nullable():
		parts = append(parts, "nullable")
	case sc.itemID != "":
		parts = append(parts, "required_without:"+sc.itemID)
	default:
		parts = append(parts, "required")
	}
	parts = append(parts, typeRules(f)...)
	if f.Unique() {
		unique := "unique:" + f.Owner().Table() + "," + f.Name
		if sc.except != "" {
			unique += "," + sc.except
			if sc.column != "" {
				unique += "," + sc.column
			}
		}
		parts = append(parts, unique)
	}
	return strings.Join(parts, "|")
}

func typeRules(f *gen.Field) []string {
	switch f.Type() {
	case field.TypeEmail:
		return []string{"string", "email"}
	case field.TypeInteger, field.TypeBigInteger:
		return []string{"integer"}
	case field.TypeDouble, field.TypeFloat, field.TypeDecimal:
		return []string{"numeric"}
	case field.TypeBoolean:
		return []string{"boolean"}
	case field.TypeDate, field.TypeDateTime, field.TypeTimestamp:
		return []string{"date"}
	case field.TypeJSON:
		return []string{"array"}
	case field.TypeImage:
		return []string{"image"}
	case field.TypeFile:
		return []string{"file"}
	case field.TypeForeignID:
		return []string{"integer", "exists:" + f.Ref() + ",id"}
	default:
		return []string{"string"}
	}
}

// rulesVar renders a rule map variable.
func rulesVar(name, doc string, rules []Rule) jen.Code {
	dict := make(jen.Dict, len(rules))
	for _, r := range rules {
		dict[jen.Lit(r.Path)] = jen.Lit(r.Expr)
	}
	return jen.Commentf("%s holds the validation rules %s.", name, doc).Line().
		Var().Id(name).Op("=").Map(jen.String()).String().Values(dict)
}

// rulesFunc renders the function returning the update rules of the record
// id, RecordID replaced.
func rulesFunc(t *gen.Type) jen.Code {
	name := t.UpdateRulesName()
	return jen.Commentf("%sFor returns %s for the record id.", name, name).Line().
		Func().Id(name+"For").Params(jen.Id("id").Uint64()).Map(jen.String()).String().Block(
		jen.Id("rules").Op(":=").Make(jen.Map(jen.String()).String(), jen.Len(jen.Id(name))),
		jen.Id("ref").Op(":=").Qual("strconv", "FormatUint").Call(jen.Id("id"), jen.Lit(10)),
		jen.For(jen.List(jen.Id("path"), jen.Id("rule")).Op(":=").Range().Id(name)).Block(
			jen.Id("rules").Index(jen.Id("path")).Op("=").Qual("strings", "ReplaceAll").Call(jen.Id("rule"), jen.Lit(RecordID), jen.Id("ref")),
		),
		jen.Return(jen.Id("rules")),
	)
}
