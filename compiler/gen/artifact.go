package gen

import (
	"fmt"
	"slices"
	"strings"
)

// Artifact names one kind of generated file.
type Artifact string

// Per-entity artifact kinds.
const (
	ArtifactMigration  Artifact = "migration"
	ArtifactModel      Artifact = "model"
	ArtifactRequest    Artifact = "request"
	ArtifactResource   Artifact = "resource"
	ArtifactCollection Artifact = "collection"
	ArtifactService    Artifact = "service"
	ArtifactController Artifact = "controller"
	ArtifactSeeder     Artifact = "seeder"
	ArtifactExample    Artifact = "example"
)

// Shared artifacts are written once per run rather than once per entity.
const (
	SharedRoutes       Artifact = "routes"
	SharedMigrationSum Artifact = "migration_sum"
)

// String returns the artifact name.
func (a Artifact) String() string { return string(a) }

// ArtifactSpec describes where an artifact kind is placed and which stub renders it.
type ArtifactSpec struct {
	Kind Artifact
	// Stub is the template file name. Empty when the artifact is rendered
	// directly without a stub.
	Stub string
	// Dir is the default output directory, relative to the project root.
	Dir string
	// Suffix is appended to the entity label to form the file name.
	Suffix string
	// Auxiliary artifacts consume the schema read-only and can be turned
	// off as a group.
	Auxiliary   bool
	Description string
}

// Artifacts lists every per-entity artifact in generation order.
var Artifacts = []ArtifactSpec{
	{
		Kind:        ArtifactMigration,
		Stub:        "migration.stub",
		Dir:         "migrations",
		Description: "SQL migration creating the entity table",
	},
	{
		Kind:        ArtifactModel,
		Stub:        "model.stub",
		Dir:         "internal/models",
		Suffix:      ".go",
		Description: "gorm model with relation accessors",
	},
	{
		Kind:        ArtifactRequest,
		Stub:        "request.stub",
		Dir:         "internal/requests",
		Suffix:      "_request.go",
		Description: "store and update validation rules",
	},
	{
		Kind:        ArtifactResource,
		Stub:        "resource.stub",
		Dir:         "internal/resources",
		Suffix:      "_resource.go",
		Description: "single record serialization",
	},
	{
		Kind:        ArtifactCollection,
		Stub:        "collection.stub",
		Dir:         "internal/resources",
		Suffix:      "_collection.go",
		Description: "record list serialization",
	},
	{
		Kind:        ArtifactService,
		Stub:        "service.stub",
		Dir:         "internal/services",
		Suffix:      "_service.go",
		Description: "transactional store, update and destroy with nested relations",
	},
	{
		Kind:        ArtifactController,
		Stub:        "controller.stub",
		Dir:         "internal/controllers",
		Suffix:      "_controller.go",
		Description: "HTTP handlers and routes",
	},
	{
		Kind:        ArtifactSeeder,
		Stub:        "seeder.stub",
		Dir:         "internal/seeders",
		Suffix:      "_seeder.go",
		Description: "sample data seeder",
	},
	{
		Kind:        ArtifactExample,
		Dir:         "docs/examples",
		Suffix:      ".json",
		Auxiliary:   true,
		Description: "example request payload",
	},
}

// sharedSpecs describes the shared artifacts.
var sharedSpecs = []ArtifactSpec{
	{
		Kind:        SharedRoutes,
		Stub:        "routes.stub",
		Dir:         "internal/routes",
		Suffix:      "routes.go",
		Description: "route registration file",
	},
	{
		Kind:        SharedMigrationSum,
		Dir:         "migrations",
		Suffix:      "atlas.sum",
		Description: "migration directory integrity file",
	},
}

// aliases maps accepted component spellings to artifact kinds.
var aliases = map[string]Artifact{
	"models":      ArtifactModel,
	"migrations":  ArtifactMigration,
	"requests":    ArtifactRequest,
	"rules":       ArtifactRequest,
	"resources":   ArtifactResource,
	"collections": ArtifactCollection,
	"services":    ArtifactService,
	"controllers": ArtifactController,
	"seeders":     ArtifactSeeder,
	"factory":     ArtifactSeeder,
	"examples":    ArtifactExample,
}

// LookupArtifact returns the spec of a per-entity artifact by component name.
// Names are matched case-insensitively and in plural form.
func LookupArtifact(name string) (ArtifactSpec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	kind := Artifact(name)
	if a, ok := aliases[name]; ok {
		kind = a
	}
	for _, s := range Artifacts {
		if s.Kind == kind {
			return s, true
		}
	}
	return ArtifactSpec{}, false
}

// specOf returns the spec of a per-entity or shared artifact.
func specOf(kind Artifact) ArtifactSpec {
	for _, s := range slices.Concat(Artifacts, sharedSpecs) {
		if s.Kind == kind {
			return s
		}
	}
	panic(fmt.Sprintf("gen: unknown artifact %q", kind))
}

// ParseArtifacts resolves a list of component names. option names the
// setting the list came from in errors.
func ParseArtifacts(option string, names ...string) ([]Artifact, error) {
	kinds := make([]Artifact, 0, len(names))
	for _, n := range names {
		s, ok := LookupArtifact(n)
		if !ok {
			return nil, NewConfigError(option, n, "unknown component; valid components are "+componentList())
		}
		kinds = append(kinds, s.Kind)
	}
	return kinds, nil
}

func componentList() string {
	names := make([]string, len(Artifacts))
	for i, s := range Artifacts {
		names[i] = string(s.Kind)
	}
	return strings.Join(names, ", ")
}
