package sql

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/edge"
)

// serviceStruct renders the service struct and its constructor.
func serviceStruct(t *gen.Type) []jen.Code {
	name := t.ServiceName()
	return []jen.Code{
		jen.Commentf("%s stores %s records and the relations written with them.", name, t.Title()).Line().
			Type().Id(name).Struct(
			jen.Id("db").Op("*").Qual(gormPkg, "DB"),
			jen.Id("files").Qual(storagePkg(t), "Store"),
		),
		jen.Commentf("New%s returns a service using db and the attachment store files.", name).Line().
			Func().Id("New"+name).Params(
			jen.Id("db").Op("*").Qual(gormPkg, "DB"),
			jen.Id("files").Qual(storagePkg(t), "Store"),
		).Op("*").Id(name).Block(
			jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
				jen.Id("db"):    jen.Id("db"),
				jen.Id("files"): jen.Id("files"),
			})),
		),
	}
}

// service synthesizes the methods of one CRUD service. Nested relations
// are written inside the transaction of their root record, recursively:
// each written record becomes the parent of its own nested relations.
type service struct {
	t *gen.Type
	// files reports attachments anywhere in the nested tree.
	files bool
	// refs reports nullable attachments, read through the ref helper.
	refs bool
}

func newService(t *gen.Type) *service {
	return &service{t: t, files: attachments(t), refs: nullableAttachments(t)}
}

func (s *service) recv() *jen.Statement {
	return jen.Id("s").Op("*").Id(s.t.ServiceName())
}

func (s *service) methods() []jen.Code {
	methods := []jen.Code{s.query(), s.list(), s.get(), s.store(), s.update(), s.destroy()}
	if s.files {
		methods = append(methods, s.attach(), s.discard())
	}
	if s.refs {
		methods = append(methods, s.ref())
	}
	return methods
}

// query renders the base query, with the eager-loaded relations.
func (s *service) query() jen.Code {
	q := preload(jen.Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")), preloads(s.t))
	return jen.Func().Params(s.recv()).Id("query").Params(jen.Id("ctx").Qual("context", "Context")).Op("*").Qual(gormPkg, "DB").Block(
		jen.Return(q),
	)
}

func (s *service) list() jen.Code {
	return jen.Commentf("List returns every %s record.", s.t.Title()).Line().
		Func().Params(s.recv()).Id("List").Params(jen.Id("ctx").Qual("context", "Context")).Params(jen.Index().Add(model(s.t)), jen.Error()).Block(
		jen.Var().Id("items").Index().Add(model(s.t)),
		jen.If(jen.Err().Op(":=").Id("s").Dot("query").Call(jen.Id("ctx")).Dot("Find").Call(jen.Op("&").Id("items")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("items"), jen.Nil()),
	)
}

func (s *service) get() jen.Code {
	return jen.Commentf("Get returns the %s record with the given id.", s.t.Title()).Line().
		Func().Params(s.recv()).Id("Get").Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Uint64()).Params(jen.Op("*").Add(model(s.t)), jen.Error()).Block(
		jen.Var().Id("m").Add(model(s.t)),
		jen.If(jen.Err().Op(":=").Id("s").Dot("query").Call(jen.Id("ctx")).Dot("First").Call(jen.Op("&").Id("m"), jen.Id("id")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Op("&").Id("m"), jen.Nil()),
	)
}

// store renders Store: top-level attachments are uploaded first, then the
// record and its nested relations are created in one transaction. Uploads
// are discarded when the transaction fails.
func (s *service) store() jen.Code {
	t := s.t
	return jen.Commentf("Store creates a %s record and the nested records of payload in one transaction.", t.Title()).Line().
		Func().Params(s.recv()).Id("Store").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("payload").Map(jen.String()).Any(),
	).Params(jen.Op("*").Add(model(t)), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("payload").Op("=").Qual("maps", "Clone").Call(jen.Id("payload"))
		s.extract(g, "payload", "", t.Nested, false)
		if s.files {
			g.Var().Id("uploaded").Index().String()
		}
		for _, f := range t.Attachments() {
			g.If(
				jen.Err().Op(":=").Add(s.attachCall(t, "payload", f.Name, jen.Lit(""), false)),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("uploaded")),
				jen.Return(jen.Nil(), jen.Err()),
			)
		}
		g.Var().Id("m").Add(model(t))
		g.Err().Op(":=").Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")).Dot("Transaction").Call(
			jen.Func().Params(jen.Id("tx").Op("*").Qual(gormPkg, "DB")).Error().BlockFunc(func(g *jen.Group) {
				g.If(jen.Err().Op(":=").Id("m").Dot("Fill").Call(jen.Id("payload")), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
				g.If(jen.Err().Op(":=").Id("tx").Dot("Create").Call(jen.Op("&").Id("m")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
				s.storeNested(g, "m", "", t.Nested)
				g.Return(jen.Nil())
			}),
		)
		g.If(jen.Err().Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
			if s.files {
				g.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("uploaded"))
			}
			g.Return(jen.Nil(), jen.Err())
		})
		g.Return(jen.Id("s").Dot("Get").Call(jen.Id("ctx"), jen.Id("m").Dot("ID")))
	})
}

// update renders Update. Nested collections present in the payload are
// reconciled: listed items are created or updated, the others deleted.
// Replaced and deleted attachments are removed after commit.
func (s *service) update() jen.Code {
	t := s.t
	return jen.Commentf("Update updates a %s record and reconciles the nested records of payload in one transaction.", t.Title()).Line().
		Func().Params(s.recv()).Id("Update").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Uint64(),
		jen.Id("payload").Map(jen.String()).Any(),
	).Params(jen.Op("*").Add(model(t)), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("m").Add(model(t))
		g.If(jen.Err().Op(":=").Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")).Dot("First").Call(jen.Op("&").Id("m"), jen.Id("id")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Id("payload").Op("=").Qual("maps", "Clone").Call(jen.Id("payload"))
		s.extract(g, "payload", "", t.Nested, true)
		if s.files {
			g.Var().List(jen.Id("uploaded"), jen.Id("stale")).Index().String()
		}
		for _, f := range t.Attachments() {
			g.If(
				jen.Err().Op(":=").Add(s.attachCall(t, "payload", f.Name, s.refOf("m", f), true)),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("uploaded")),
				jen.Return(jen.Nil(), jen.Err()),
			)
		}
		g.Err().Op(":=").Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")).Dot("Transaction").Call(
			jen.Func().Params(jen.Id("tx").Op("*").Qual(gormPkg, "DB")).Error().BlockFunc(func(g *jen.Group) {
				g.If(jen.Err().Op(":=").Id("m").Dot("Fill").Call(jen.Id("payload")), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
				g.If(jen.Err().Op(":=").Id("tx").Dot("Save").Call(jen.Op("&").Id("m")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
				s.updateNested(g, "m", "", t.Nested)
				g.Return(jen.Nil())
			}),
		)
		g.If(jen.Err().Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
			if s.files {
				g.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("uploaded"))
			}
			g.Return(jen.Nil(), jen.Err())
		})
		if s.files {
			g.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("stale"))
		}
		g.Return(jen.Id("s").Dot("Get").Call(jen.Id("ctx"), jen.Id("m").Dot("ID")))
	})
}

func (s *service) destroy() jen.Code {
	t := s.t
	return jen.Commentf("Destroy deletes the %s record with the given id.", t.Title()).Line().
		Func().Params(s.recv()).Id("Destroy").Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Uint64()).Error().BlockFunc(func(g *jen.Group) {
		deps := dependents(t)
		g.Var().Id("m").Add(model(t))
		g.If(jen.Err().Op(":=").Add(preload(jen.Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")), dependentPreloads(deps))).Dot("First").Call(jen.Op("&").Id("m"), jen.Id("id")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		)
		g.If(jen.Err().Op(":=").Id("s").Dot("db").Dot("WithContext").Call(jen.Id("ctx")).Dot("Delete").Call(jen.Op("&").Id("m")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		)
		if t.HasAttachments() || len(deps) > 0 {
			g.Var().Id("stale").Index().String()
			s.collect(g, "m", t, deps, 1)
			g.Id("s").Dot("discard").Call(jen.Id("ctx"), jen.Id("stale"))
		}
		g.Return(jen.Nil())
	})
}

// attach renders the helper storing an upload and replacing it in the
// payload with the stored reference.
func (s *service) attach() jen.Code {
	return jen.Comment("attach stores the upload held in values[key] under folder and replaces it").Line().
		Comment("with the stored reference. Values that are not uploads are left as is. Once").Line().
		Comment("replaced, the previous reference old is queued in stale.").Line().
		Func().Params(s.recv()).Id("attach").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("folder").String(),
		jen.Id("values").Map(jen.String()).Any(),
		jen.List(jen.Id("key"), jen.Id("old")).String(),
		jen.List(jen.Id("uploaded"), jen.Id("stale")).Op("*").Index().String(),
	).Error().Block(
		jen.List(jen.Id("ref"), jen.Id("ok"), jen.Err()).Op(":=").Id("s").Dot("files").Dot("Put").Call(jen.Id("ctx"), jen.Id("folder"), jen.Id("values").Index(jen.Id("key"))),
		jen.If(jen.Err().Op("!=").Nil().Op("||").Op("!").Id("ok")).Block(jen.Return(jen.Err())),
		jen.Id("values").Index(jen.Id("key")).Op("=").Id("ref"),
		jen.Op("*").Id("uploaded").Op("=").Append(jen.Op("*").Id("uploaded"), jen.Id("ref")),
		jen.If(jen.Id("old").Op("!=").Lit("").Op("&&").Id("stale").Op("!=").Nil()).Block(
			jen.Op("*").Id("stale").Op("=").Append(jen.Op("*").Id("stale"), jen.Id("old")),
		),
		jen.Return(jen.Nil()),
	)
}

func (s *service) discard() jen.Code {
	return jen.Comment("discard deletes stored attachments. Failures leave orphaned files only.").Line().
		Func().Params(s.recv()).Id("discard").Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("refs").Index().String()).Block(
		jen.For(jen.List(jen.Id("_"), jen.Id("ref")).Op(":=").Range().Id("refs")).Block(
			jen.If(jen.Id("ref").Op("!=").Lit("")).Block(
				jen.Id("_").Op("=").Id("s").Dot("files").Dot("Delete").Call(jen.Id("ctx"), jen.Id("ref")),
			),
		),
	)
}

func (s *service) ref() jen.Code {
	return jen.Func().Params(jen.Op("*").Id(s.t.ServiceName())).Id("ref").Params(jen.Id("p").Op("*").String()).String().Block(
		jen.If(jen.Id("p").Op("==").Nil()).Block(jen.Return(jen.Lit(""))),
		jen.Return(jen.Op("*").Id("p")),
	)
}

// attachCall renders a call of the attach helper for one attachment of typ.
func (s *service) attachCall(typ *gen.Type, values, key string, old jen.Code, update bool) *jen.Statement {
	stale := jen.Nil()
	if update {
		stale = jen.Op("&").Id("stale")
	}
	return jen.Id("s").Dot("attach").Call(
		jen.Id("ctx"), jen.Lit(typ.UploadFolder()), jen.Id(values), jen.Lit(key), old,
		jen.Op("&").Id("uploaded"), stale,
	)
}

// refOf returns the stored reference of an attachment of record as a
// string value, read before the record is reassigned.
func (s *service) refOf(record string, f *gen.Field) *jen.Statement {
	if pointer(f) {
		return jen.Id("s").Dot("ref").Call(jen.Id(record).Dot(f.StructField()))
	}
	return jen.Id(record).Dot(f.StructField())
}

// extract moves the nested relation keys out of the payload map values.
// Update payloads also record whether each key was sent.
func (s *service) extract(g *jen.Group, values, prefix string, tree []*gen.Nested, update bool) {
	for _, n := range tree {
		v := nestedVar(prefix, n)
		if update {
			g.List(jen.Id(v+"Payload"), jen.Id(hasVar(v))).Op(":=").Id(values).Index(jen.Lit(n.Key()))
		} else {
			g.Id(v+"Payload").Op(":=").Id(values).Index(jen.Lit(n.Key()))
		}
		g.Delete(jen.Id(values), jen.Lit(n.Key()))
	}
}

// storeNested creates the nested records of tree under parent.
func (s *service) storeNested(g *jen.Group, parent, prefix string, tree []*gen.Nested) {
	for _, n := range tree {
		v := nestedVar(prefix, n)
		payload := v + "Payload"
		switch n.Kind {
		case edge.HasMany:
			items := v + "Items"
			g.List(jen.Id(items), jen.Id("ok")).Op(":=").Id(payload).Assert(jen.Index().Any())
			g.If(jen.Id(payload).Op("!=").Nil().Op("&&").Op("!").Id("ok")).Block(jen.Return(errorf(n.Key() + ": expected a list")))
			g.For(jen.List(jen.Id("_"), jen.Id("raw")).Op(":=").Range().Id(items)).BlockFunc(func(g *jen.Group) {
				s.decode(g, n, v, jen.Id("raw"), false)
				s.write(g, parent, n, v, false)
			})
		case edge.HasOne:
			g.If(jen.Id(payload).Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
				s.decode(g, n, v, jen.Id(payload), false)
				s.write(g, parent, n, v, false)
			})
		case edge.BelongsToMany:
			g.If(jen.Id(payload).Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
				s.sync(g, parent, n, v)
			})
		}
	}
}

// updateNested reconciles the nested records of tree under parent. Keys
// missing from the payload leave their records untouched.
func (s *service) updateNested(g *jen.Group, parent, prefix string, tree []*gen.Nested) {
	for _, n := range tree {
		v := nestedVar(prefix, n)
		payload, fk := v+"Payload", jen.Lit(n.ForeignKey()+" = ?")
		switch n.Kind {
		case edge.HasMany:
			g.If(jen.Id(hasVar(v))).BlockFunc(func(g *jen.Group) {
				items, keep, stale, query := v+"Items", v+"Keep", v+"Stale", v+"Query"
				g.List(jen.Id(items), jen.Id("ok")).Op(":=").Id(payload).Assert(jen.Index().Any())
				g.If(jen.Id(payload).Op("!=").Nil().Op("&&").Op("!").Id("ok")).Block(jen.Return(errorf(n.Key() + ": expected a list")))
				g.Id(keep).Op(":=").Make(jen.Index().Uint64(), jen.Lit(0), jen.Len(jen.Id(items)))
				g.For(jen.List(jen.Id("_"), jen.Id("raw")).Op(":=").Range().Id(items)).BlockFunc(func(g *jen.Group) {
					s.decode(g, n, v, jen.Id("raw"), true)
					g.If(
						jen.List(jen.Id("id"), jen.Id("ok")).Op(":=").Id(v+"Values").Index(jen.Lit("id")),
						jen.Id("ok").Op("&&").Id("id").Op("!=").Nil(),
					).Block(
						jen.If(
							jen.Err().Op(":=").Id("tx").Dot("Where").Call(fk, jen.Id(parent).Dot("ID")).Dot("First").Call(jen.Op("&").Id(v), jen.Id("id")).Dot("Error"),
							jen.Err().Op("!=").Nil(),
						).Block(jen.Return(jen.Err())),
					)
					s.write(g, parent, n, v, true)
					g.Id(keep).Op("=").Append(jen.Id(keep), jen.Id(v).Dot("ID"))
				})
				g.Var().Id(stale).Index().Add(model(n.Type))
				g.Id(query).Op(":=").Id("tx").Dot("Where").Call(fk, jen.Id(parent).Dot("ID"))
				g.If(jen.Len(jen.Id(keep)).Op(">").Lit(0)).Block(
					jen.Id(query).Op("=").Id(query).Dot("Where").Call(jen.Lit("id NOT IN ?"), jen.Id(keep)),
				)
				deps := dependents(n.Type)
				g.If(jen.Err().Op(":=").Add(preload(jen.Id(query), dependentPreloads(deps))).Dot("Find").Call(jen.Op("&").Id(stale)).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
				if n.Type.HasAttachments() || len(deps) > 0 {
					g.For(jen.List(jen.Id("_"), jen.Id("r")).Op(":=").Range().Id(stale)).BlockFunc(func(g *jen.Group) {
						s.collect(g, "r", n.Type, deps, 1)
					})
				}
				g.If(jen.Len(jen.Id(stale)).Op(">").Lit(0)).Block(
					jen.If(jen.Err().Op(":=").Id("tx").Dot("Delete").Call(jen.Op("&").Id(stale)).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
				)
			})
		case edge.HasOne:
			g.If(jen.Id(hasVar(v))).BlockFunc(func(g *jen.Group) {
				found := v + "Found"
				g.Var().Id(v).Add(model(n.Type))
				g.Err().Op(":=").Id("tx").Dot("Where").Call(fk, jen.Id(parent).Dot("ID")).Dot("First").Call(jen.Op("&").Id(v)).Dot("Error")
				g.If(jen.Err().Op("!=").Nil().Op("&&").Op("!").Qual("errors", "Is").Call(jen.Err(), jen.Qual(gormPkg, "ErrRecordNotFound"))).Block(jen.Return(jen.Err()))
				g.Id(found).Op(":=").Err().Op("==").Nil()
				g.If(jen.Id(payload).Op("==").Nil()).BlockFunc(func(g *jen.Group) {
					g.If(jen.Id(found)).BlockFunc(func(g *jen.Group) {
						deps := dependents(n.Type)
						if len(deps) > 0 {
							g.If(jen.Err().Op(":=").Add(preload(jen.Id("tx"), dependentPreloads(deps))).Dot("First").Call(jen.Op("&").Id(v), jen.Id(v).Dot("ID")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
						}
						if n.Type.HasAttachments() || len(deps) > 0 {
							s.collect(g, v, n.Type, deps, 1)
						}
						g.If(jen.Err().Op(":=").Id("tx").Dot("Delete").Call(jen.Op("&").Id(v)).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
					})
				}).Else().BlockFunc(func(g *jen.Group) {
					s.decode(g, n, v, jen.Id(payload), true)
					s.write(g, parent, n, v, true)
				})
			})
		case edge.BelongsToMany:
			g.If(jen.Id(hasVar(v))).BlockFunc(func(g *jen.Group) {
				s.sync(g, parent, n, v)
			})
		}
	}
}

// decode asserts one nested item to a payload map, clones it and moves its
// own nested keys out. hasOne records of updates are already declared.
func (s *service) decode(g *jen.Group, n *gen.Nested, v string, src jen.Code, update bool) {
	values := v + "Values"
	msg := n.Key() + ": expected an object"
	if n.Kind == edge.HasMany {
		msg = n.Key() + ": expected a list of objects"
	}
	g.List(jen.Id(values), jen.Id("ok")).Op(":=").Add(src).Assert(jen.Map(jen.String()).Any())
	g.If(jen.Op("!").Id("ok")).Block(jen.Return(errorf(msg)))
	g.Id(values).Op("=").Qual("maps", "Clone").Call(jen.Id(values))
	s.extract(g, values, v, n.Children, update)
	if n.Kind == edge.HasMany || !update {
		g.Var().Id(v).Add(model(n.Type))
	}
}

// write uploads the attachments of a nested record, fills it, links it to
// parent, saves it and writes its own nested relations.
func (s *service) write(g *jen.Group, parent string, n *gen.Nested, v string, update bool) {
	values := v + "Values"
	for _, f := range n.PayloadFields() {
		if !f.IsAttachment() {
			continue
		}
		old := jen.Code(jen.Lit(""))
		if update {
			old = s.refOf(v, f)
		}
		g.If(
			jen.Err().Op(":=").Add(s.attachCall(n.Type, values, f.Name, old, update)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err()))
	}
	g.If(jen.Err().Op(":=").Id(v).Dot("Fill").Call(jen.Id(values)), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	ref := jen.Id(parent).Dot("ID")
	if f, ok := n.Type.Field(n.ForeignKey()); ok && pointer(f) {
		ref = jen.Op("&").Add(ref)
	}
	g.Id(v).Dot(n.ForeignKeyField()).Op("=").Add(ref)
	save := "Create"
	if update {
		save = "Save"
	}
	g.If(jen.Err().Op(":=").Id("tx").Dot(save).Call(jen.Op("&").Id(v)).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	if update {
		s.updateNested(g, v, v, n.Children)
	} else {
		s.storeNested(g, v, v, n.Children)
	}
}

// sync replaces the belongsToMany associations of parent with the records
// whose ids are listed in the payload. A null payload clears them.
func (s *service) sync(g *jen.Group, parent string, n *gen.Nested, v string) {
	payload, ids, list := v+"Payload", v+"IDs", v+"List"
	g.List(jen.Id(ids), jen.Id("ok")).Op(":=").Id(payload).Assert(jen.Index().Any())
	g.If(jen.Id(payload).Op("!=").Nil().Op("&&").Op("!").Id("ok")).Block(jen.Return(errorf(n.Key() + ": expected a list of ids")))
	g.Var().Id(list).Index().Add(model(n.Type))
	g.If(jen.Len(jen.Id(ids)).Op(">").Lit(0)).Block(
		jen.If(jen.Err().Op(":=").Id("tx").Dot("Find").Call(jen.Op("&").Id(list), jen.Id(ids)).Dot("Error"), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
	)
	g.If(
		jen.Err().Op(":=").Id("tx").Dot("Model").Call(jen.Op("&").Id(parent)).Dot("Association").Call(jen.Lit(n.StructField())).Dot("Replace").Call(jen.Id(list)),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
}

// collect appends to stale the attachment references of record, a t
// record loaded with its dependents, and of the dependents themselves.
// depth numbers the loop variables.
func (s *service) collect(g *jen.Group, record string, t *gen.Type, deps []*dependent, depth int) {
	if files := t.Attachments(); len(files) > 0 {
		g.Id("stale").Op("=").Append(append([]jen.Code{jen.Id("stale")}, s.refList(record, files)...)...)
	}
	for _, d := range deps {
		v := fmt.Sprintf("r%d", depth)
		body := func(g *jen.Group) { s.collect(g, v, d.Type, d.Children, depth+1) }
		if d.Kind == edge.HasMany {
			g.For(jen.List(jen.Id("_"), jen.Id(v)).Op(":=").Range().Id(record).Dot(d.StructField())).BlockFunc(body)
		} else {
			g.If(jen.Id(v).Op(":=").Id(record).Dot(d.StructField()), jen.Id(v).Op("!=").Nil()).BlockFunc(body)
		}
	}
}

func (s *service) refList(record string, files []*gen.Field) []jen.Code {
	refs := make([]jen.Code, len(files))
	for i, f := range files {
		refs[i] = s.refOf(record, f)
	}
	return refs
}

// preload adds the preload calls of paths to q.
func preload(q *jen.Statement, paths []string) *jen.Statement {
	for _, p := range paths {
		q = q.Dot("Preload").Call(jen.Lit(p))
	}
	return q
}

func errorf(msg string) jen.Code {
	return jen.Qual("errors", "New").Call(jen.Lit(msg))
}

// reserved holds the identifiers used by generated services and the Go
// keywords; nested variables never take these names.
var reserved = map[string]bool{
	"ctx": true, "err": true, "id": true, "m": true, "ok": true, "payload": true,
	"r": true, "raw": true, "s": true, "stale": true, "tx": true, "uploaded": true,
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// nestedVar returns the variable of a nested record: the singular relation
// name, prefixed by the variables of its ancestors.
//
//	books          => book
//	books.chapters => bookChapter
func nestedVar(prefix string, n *gen.Nested) string {
	name := gen.Singularize(n.Name)
	if prefix != "" {
		return prefix + gen.Pascal(name)
	}
	if v := gen.Camel(name); !reserved[v] {
		return v
	}
	return gen.Camel(name) + "Rel"
}

func hasVar(v string) string { return "has" + gen.Pascal(v) }
