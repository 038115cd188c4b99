package sql

import (
	"context"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/dialect"
	"github.com/syssam/crudgen/dialect/sql/schema"
)

// Generate is a convenience function generating the artifacts of every
// selected entity of the graph with the SQL synthesizers.
//
// Example:
//
//	import "github.com/syssam/crudgen/compiler/gen/sql"
//	report, err := sql.Generate(ctx, graph)
func Generate(ctx context.Context, g *gen.Graph) (*gen.Report, error) {
	if g.Config == nil || g.FS == nil {
		return nil, gen.NewConfigError("FS", nil, "missing target file system in config")
	}
	return gen.NewGenerator(g).WithSynthesizer(NewDialect(g)).Generate(ctx)
}

// Dialect implements gen.Synthesizer for gorm models, chi controllers and
// SQL migrations.
//
// Supported features:
//   - Migrations for PostgreSQL, MySQL and SQLite
//   - Store and update validation rules with nested relation paths
//   - Transactional CRUD services with nested hasOne, hasMany and
//     belongsToMany writes
//   - Attachment upload and cleanup
//   - Migration verification and the atlas.sum integrity file
type Dialect struct {
	graph *gen.Graph
}

// NewDialect creates the SQL synthesizers of a graph.
func NewDialect(g *gen.Graph) *Dialect {
	return &Dialect{graph: g}
}

// Name returns the synthesizer name.
func (d *Dialect) Name() string {
	return "sql"
}

// Route returns the line mounting the controller of t on the router.
//
//	r.Route("/authors", controllers.NewAuthorController(db, files).Routes)
func (d *Dialect) Route(t *gen.Type) string {
	return fmt.Sprintf("r.Route(%q, %s.New%s(db, files).Routes)", t.RoutePath(), t.Package(gen.ArtifactController), t.ControllerName())
}

// VerifyMigration applies a migration to an empty in-memory database.
// MySQL migrations are not verified.
func (d *Dialect) VerifyMigration(ctx context.Context, src []byte) error {
	if d.graph.Dialect == dialect.MySQL {
		if l := d.graph.Logger; l != nil {
			l.Debug("migration verification is not supported", "dialect", d.graph.Dialect)
		}
		return nil
	}
	return schema.Verify(ctx, "migration.sql", src)
}

// UpdateSum rewrites the atlas.sum file of the migration directory.
func (d *Dialect) UpdateSum(_ context.Context, dir string) error {
	return schema.UpdateSum(dir)
}

// CheckSchema validates the tables of types, given in creation order:
// column definitions, indexes and foreign keys to tables missing from the
// schema or created later.
func (d *Dialect) CheckSchema(types []*gen.Type) []string {
	tables := make([]*schema.Table, len(types))
	for i, t := range types {
		tables[i] = Table(t)
	}
	return schema.ValidateSchema(tables).Messages()
}

// Compile-time checks.
var (
	_ gen.Synthesizer       = (*Dialect)(nil)
	_ gen.MigrationVerifier = (*Dialect)(nil)
	_ gen.MigrationSummer   = (*Dialect)(nil)
	_ gen.SchemaChecker     = (*Dialect)(nil)
)

// =============================================================================
// Per-entity synthesis
// =============================================================================

// Model synthesizes the model struct, its fillable columns, the table name,
// payload filling and one association accessor per relation.
func (d *Dialect) Model(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactModel)
	return fragments(f, map[string][]jen.Code{
		"model_struct":   {modelStruct(t)},
		"model_fillable": {modelFillable(t)},
		"model_methods":  modelMethods(t),
	})
}

// Migration synthesizes the table creation statements. The bare table
// fragment is used when no migration stub is available.
func (d *Dialect) Migration(t *gen.Type) (gen.Fragments, error) {
	b, err := schema.NewBuilder(d.graph.Dialect)
	if err != nil {
		return nil, err
	}
	return migration(b, t), nil
}

// Request synthesizes the store and update validation rules.
func (d *Dialect) Request(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactRequest)
	return fragments(f, map[string][]jen.Code{
		"request_store_rules":  {rulesVar(t.StoreRulesName(), fmt.Sprintf("applied when creating a %s", t.Title()), StoreRules(t, t.RuleDepth))},
		"request_update_rules": {
			rulesVar(t.UpdateRulesName(), fmt.Sprintf("applied when updating a %s", t.Title()), UpdateRules(t, t.RuleDepth)),
			rulesFunc(t),
		},
	})
}

// Resource synthesizes the single record projection.
func (d *Dialect) Resource(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactResource)
	return fragments(f, map[string][]jen.Code{
		"resource_func": {resourceFunc(t)},
	})
}

// Collection synthesizes the record list projection.
func (d *Dialect) Collection(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactCollection)
	return fragments(f, map[string][]jen.Code{
		"collection_func": {collectionFunc(t)},
	})
}

// Service synthesizes the CRUD orchestration.
func (d *Dialect) Service(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactService)
	return fragments(f, map[string][]jen.Code{
		"service_struct":  serviceStruct(t),
		"service_methods": newService(t).methods(),
	})
}

// Controller synthesizes the HTTP handlers.
func (d *Dialect) Controller(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactController)
	return fragments(f, map[string][]jen.Code{
		"controller_struct":  controllerStruct(t),
		"controller_methods": controllerMethods(t),
	})
}

// Seeder synthesizes the sample data seeder.
func (d *Dialect) Seeder(t *gen.Type) (gen.Fragments, error) {
	f := newFile(t, gen.ArtifactSeeder)
	return fragments(f, map[string][]jen.Code{
		"seeder_func": {seederFunc(t)},
	})
}

// Example renders an example store payload of t.
func (d *Dialect) Example(t *gen.Type) ([]byte, error) {
	return Example(t)
}
