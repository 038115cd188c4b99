// Package sql provides the synthesizers of gorm and chi based CRUD code and
// SQL migrations.
//
// The Dialect type implements gen.Synthesizer. Every method is a pure
// function of a gen.Type returning the fragments substituted into the
// artifact stubs; Go fragments are built with jennifer and rendered in the
// context of the package the artifact is written to.
//
// Usage:
//
//	import (
//	    "github.com/syssam/crudgen/compiler/gen"
//	    "github.com/syssam/crudgen/compiler/gen/sql"
//	)
//
//	generator := gen.NewGenerator(graph).WithSynthesizer(sql.NewDialect(graph))
//	report, err := generator.Generate(ctx)
//
// Generated code structure:
//
//	{root}/
//	├── migrations/
//	│   ├── {stamp}_create_{table}_table.sql
//	│   └── atlas.sum
//	├── internal/
//	│   ├── models/{label}.go                  # gorm model, fillable columns, associations
//	│   ├── requests/{label}_request.go        # store and update validation rules
//	│   ├── resources/{label}_resource.go      # record projection
//	│   ├── resources/{label}_collection.go    # list projection
//	│   ├── services/{label}_service.go        # transactional CRUD with nested writes
//	│   ├── controllers/{label}_controller.go  # chi handlers
//	│   ├── seeders/{label}_seeder.go          # sample data
//	│   └── routes/routes.go                   # controller registration
//	└── docs/examples/{label}.json             # example store payload
//
// Generated code depends on two packages of the target project:
// internal/storage, whose Store puts and deletes attachments, and
// internal/validation, which decodes request payloads and applies rule maps.
package sql
