package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
)

// controllerStruct renders the controller struct and its constructor.
func controllerStruct(t *gen.Type) []jen.Code {
	name := t.ControllerName()
	return []jen.Code{
		jen.Commentf("%s serves the %s endpoints of %s records.", name, t.RoutePath(), t.Title()).Line().
			Type().Id(name).Struct(
			jen.Id("service").Op("*").Qual(t.ImportPath(gen.ArtifactService), t.ServiceName()),
		),
		jen.Commentf("New%s returns a controller backed by db and the attachment store files.", name).Line().
			Func().Id("New"+name).Params(
			jen.Id("db").Op("*").Qual(gormPkg, "DB"),
			jen.Id("files").Qual(storagePkg(t), "Store"),
		).Op("*").Id(name).Block(
			jen.Return(jen.Op("&").Id(name).Values(jen.Dict{
				jen.Id("service"): jen.Qual(t.ImportPath(gen.ArtifactService), "New"+t.ServiceName()).Call(jen.Id("db"), jen.Id("files")),
			})),
		),
	}
}

// controllerMethods renders the route table, the handlers and the
// response helpers.
func controllerMethods(t *gen.Type) []jen.Code {
	c := &controller{t: t}
	return []jen.Code{c.routes(), c.index(), c.show(), c.store(), c.update(), c.destroy(), c.id(), c.respond(), c.fail()}
}

type controller struct {
	t *gen.Type
}

func (c *controller) recv() *jen.Statement {
	return jen.Id("c").Op("*").Id(c.t.ControllerName())
}

func (c *controller) handler(name, doc string, body ...jen.Code) jen.Code {
	return jen.Comment(doc).Line().
		Func().Params(c.recv()).Id(name).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(body...)
}

func (c *controller) routes() jen.Code {
	return jen.Commentf("Routes mounts the handlers on r. It is mounted under %s.", c.t.RoutePath()).Line().
		Func().Params(c.recv()).Id("Routes").Params(jen.Id("r").Qual(chiPkg, "Router")).Block(
		jen.Id("r").Dot("Get").Call(jen.Lit("/"), jen.Id("c").Dot("Index")),
		jen.Id("r").Dot("Post").Call(jen.Lit("/"), jen.Id("c").Dot("Store")),
		jen.Id("r").Dot("Get").Call(jen.Lit("/{id}"), jen.Id("c").Dot("Show")),
		jen.Id("r").Dot("Put").Call(jen.Lit("/{id}"), jen.Id("c").Dot("Update")),
		jen.Id("r").Dot("Patch").Call(jen.Lit("/{id}"), jen.Id("c").Dot("Update")),
		jen.Id("r").Dot("Delete").Call(jen.Lit("/{id}"), jen.Id("c").Dot("Destroy")),
	)
}

func (c *controller) resource(v jen.Code) jen.Code {
	return jen.Qual(c.t.ImportPath(gen.ArtifactResource), c.t.ResourceName()).Call(v)
}

func (c *controller) parseID() []jen.Code {
	return []jen.Code{
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Id("c").Dot("id").Call(jen.Id("r")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Map(jen.String()).String().Values(jen.Dict{jen.Lit("message"): jen.Err().Dot("Error").Call()})),
			jen.Return(),
		),
	}
}

func (c *controller) validate(rules jen.Code) []jen.Code {
	return []jen.Code{
		jen.List(jen.Id("payload"), jen.Err()).Op(":=").Qual(validationPkg(c.t), "Payload").Call(jen.Id("r")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusBadRequest"), jen.Map(jen.String()).String().Values(jen.Dict{jen.Lit("message"): jen.Err().Dot("Error").Call()})),
			jen.Return(),
		),
		jen.If(jen.Err().Op(":=").Qual(validationPkg(c.t), "Validate").Call(jen.Id("payload"), rules), jen.Err().Op("!=").Nil()).Block(
			jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusUnprocessableEntity"), jen.Map(jen.String()).Any().Values(jen.Dict{jen.Lit("message"): jen.Lit("validation failed"), jen.Lit("errors"): jen.Err()})),
			jen.Return(),
		),
	}
}

func (c *controller) index() jen.Code {
	t := c.t
	return c.handler("Index", "Index lists the records.",
		jen.List(jen.Id("items"), jen.Err()).Op(":=").Id("c").Dot("service").Dot("List").Call(jen.Id("r").Dot("Context").Call()),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Err()), jen.Return()),
		jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"),
			jen.Qual(t.ImportPath(gen.ArtifactCollection), t.CollectionName()).Call(jen.Id("items"))),
	)
}

func (c *controller) show() jen.Code {
	body := c.parseID()
	body = append(body,
		jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("c").Dot("service").Dot("Get").Call(jen.Id("r").Dot("Context").Call(), jen.Id("id")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Err()), jen.Return()),
		jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), c.resource(jen.Id("m"))),
	)
	return c.handler("Show", "Show returns one record.", body...)
}

func (c *controller) store() jen.Code {
	body := c.validate(jen.Qual(c.t.ImportPath(gen.ArtifactRequest), c.t.StoreRulesName()))
	body = append(body,
		jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("c").Dot("service").Dot("Store").Call(jen.Id("r").Dot("Context").Call(), jen.Id("payload")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Err()), jen.Return()),
		jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusCreated"), c.resource(jen.Id("m"))),
	)
	return c.handler("Store", "Store creates a record and its nested records.", body...)
}

func (c *controller) update() jen.Code {
	body := c.parseID()
	body = append(body, c.validate(jen.Qual(c.t.ImportPath(gen.ArtifactRequest), c.t.UpdateRulesName()+"For").Call(jen.Id("id")))...)
	body = append(body,
		jen.List(jen.Id("m"), jen.Err()).Op(":=").Id("c").Dot("service").Dot("Update").Call(jen.Id("r").Dot("Context").Call(), jen.Id("id"), jen.Id("payload")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Err()), jen.Return()),
		jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Qual("net/http", "StatusOK"), c.resource(jen.Id("m"))),
	)
	return c.handler("Update", "Update updates a record and reconciles its nested records.", body...)
}

func (c *controller) destroy() jen.Code {
	body := c.parseID()
	body = append(body,
		jen.If(jen.Err().Op(":=").Id("c").Dot("service").Dot("Destroy").Call(jen.Id("r").Dot("Context").Call(), jen.Id("id")), jen.Err().Op("!=").Nil()).Block(
			jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Err()),
			jen.Return(),
		),
		jen.Id("w").Dot("WriteHeader").Call(jen.Qual("net/http", "StatusNoContent")),
	)
	return c.handler("Destroy", "Destroy deletes a record.", body...)
}

func (c *controller) id() jen.Code {
	return jen.Func().Params(c.recv()).Id("id").Params(jen.Id("r").Op("*").Qual("net/http", "Request")).Params(jen.Uint64(), jen.Error()).Block(
		jen.Return(jen.Qual("strconv", "ParseUint").Call(jen.Qual(chiPkg, "URLParam").Call(jen.Id("r"), jen.Lit("id")), jen.Lit(10), jen.Lit(64))),
	)
}

func (c *controller) respond() jen.Code {
	return jen.Func().Params(c.recv()).Id("respond").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("status").Int(),
		jen.Id("v").Any(),
	).Block(
		jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Id("status")),
		jen.Id("_").Op("=").Qual(jsonPkg, "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("v")),
	)
}

// fail maps missing records to 404 and every other error to 500.
func (c *controller) fail() jen.Code {
	return jen.Func().Params(c.recv()).Id("fail").Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Err().Error(),
	).Block(
		jen.Id("status").Op(":=").Qual("net/http", "StatusInternalServerError"),
		jen.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(gormPkg, "ErrRecordNotFound"))).Block(
			jen.Id("status").Op("=").Qual("net/http", "StatusNotFound"),
		),
		jen.Id("c").Dot("respond").Call(jen.Id("w"), jen.Id("status"), jen.Map(jen.String()).String().Values(jen.Dict{jen.Lit("message"): jen.Err().Dot("Error").Call()})),
	)
}
