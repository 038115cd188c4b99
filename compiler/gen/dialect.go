package gen

import "context"

// Fragments maps stub placeholders to synthesized source text.
type Fragments map[string]string

// FallbackMigration is the fragment holding a bare table creation, written
// when the migration stub is unavailable.
const FallbackMigration = "bare_table"

// EntitySynthesizer synthesizes the per-entity artifacts.
// Each method is called once per entity for every enabled artifact and
// returns the fragments substituted into that artifact's stub.
type EntitySynthesizer interface {
	// Model synthesizes the persistence model (internal/models/{label}.go).
	Model(t *Type) (Fragments, error)
	// Migration synthesizes the table creation (migrations/{stamp}_create_{table}_table.sql).
	Migration(t *Type) (Fragments, error)
	// Request synthesizes the validation rules (internal/requests/{label}_request.go).
	Request(t *Type) (Fragments, error)
	// Resource synthesizes the record projection (internal/resources/{label}_resource.go).
	Resource(t *Type) (Fragments, error)
	// Collection synthesizes the list projection (internal/resources/{label}_collection.go).
	Collection(t *Type) (Fragments, error)
	// Service synthesizes CRUD orchestration (internal/services/{label}_service.go).
	Service(t *Type) (Fragments, error)
	// Controller synthesizes HTTP handlers (internal/controllers/{label}_controller.go).
	Controller(t *Type) (Fragments, error)
	// Seeder synthesizes sample data insertion (internal/seeders/{label}_seeder.go).
	Seeder(t *Type) (Fragments, error)
}

// SharedSynthesizer synthesizes the run-level artifacts.
type SharedSynthesizer interface {
	// Route returns the line registering the entity controller.
	Route(t *Type) string
}

// AuxiliarySynthesizer renders auxiliary artifacts that bypass stubs.
type AuxiliarySynthesizer interface {
	// Example renders an example request payload (docs/examples/{label}.json).
	Example(t *Type) ([]byte, error)
}

// Synthesizer is the full set of synthesizers a dialect provides.
//
// Synthesizers are pure: they read the type and return text. Placing the
// text into stubs, resolving conflicts, formatting and writing are done by
// the Generator.
//
//	generator := gen.NewGenerator(graph).
//	    WithSynthesizer(sql.NewDialect(graph))
type Synthesizer interface {
	// Name returns the synthesizer name (e.g., "sql").
	Name() string
	EntitySynthesizer
	SharedSynthesizer
	AuxiliarySynthesizer
}

// MigrationVerifier is implemented by synthesizers that can check a
// migration before it is written.
type MigrationVerifier interface {
	VerifyMigration(ctx context.Context, src []byte) error
}

// MigrationSummer is implemented by synthesizers that maintain an
// integrity file over the migration directory.
type MigrationSummer interface {
	// UpdateSum rewrites the integrity file of the migration directory dir,
	// given as an absolute path.
	UpdateSum(ctx context.Context, dir string) error
}

// SchemaChecker is implemented by synthesizers that can check the tables
// of the whole schema before a run writes anything. The returned messages
// are reported as warnings.
type SchemaChecker interface {
	CheckSchema(types []*Type) []string
}
