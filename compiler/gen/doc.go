// Package gen turns a loaded schema into CRUD source code for a Go service.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Schema file (crudgen.yaml)
//	        ↓
//	   load.Schema (entities in declaration order)
//	        ↓
//	   Graph (types with relations, nested trees and migration paths)
//	        ↓
//	   Synthesizer (fragments per artifact)
//	        ↓
//	   Generator (backup, stubs, conflicts, writes, route registration)
//
// # Key Types
//
//   - Graph: Holds all Type definitions with their relations resolved
//   - Type: The model configuration of an entity, with every name variant
//   - Field: A column with its parsed type spec
//   - Relation: A resolved relation with its foreign key or pivot table
//   - Nested: A node of the tree of relations written inline with a record
//   - Config: Global configuration for code generation
//
// # Interface Hierarchy
//
//	Synthesizer
//	├── Name() string
//	├── EntitySynthesizer (one method per stub artifact)
//	│   ├── Model, Migration, Request, Resource
//	│   └── Collection, Service, Controller, Seeder
//	├── SharedSynthesizer
//	│   └── Route
//	└── AuxiliarySynthesizer
//	    └── Example
//
//	Optional, detected by the Generator:
//	├── MigrationVerifier (apply a migration to a scratch database)
//	└── MigrationSummer (maintain the migration directory checksum)
//
// # Error Handling
//
//   - SchemaError: Malformed entities and fields
//   - ConfigError: Invalid options and generation toggles
//   - RelationError: Relations that cannot be resolved
//   - GenerationError: A single artifact that failed to render
//   - StubError: A missing or unreadable stub
//
// Example error handling:
//
//	report, err := generator.Generate(ctx)
//	switch {
//	case errors.Is(err, crudgen.ErrAborted):
//	    // nothing was written
//	case gen.IsGenerationError(err), errors.Is(err, gen.ErrGenerationFailed):
//	    // some artifacts failed; report lists them
//	}
package gen
