// Package crudgen is a schema-driven source code generator.
//
// Given a YAML description of domain entities (fields, relations, nested requests),
// crudgen synthesizes a consistent set of artifacts for a gorm + chi project:
//
//	models/       persistence model with fillable fields and relation accessors
//	migrations/   CREATE TABLE migration and its atlas.sum integrity file
//	requests/     dotted-path validation rules for store and update payloads
//	resources/    resource and collection projections
//	services/     transactional create/update/delete with nested relations
//	controllers/  HTTP handlers, registered in the shared routes file
//	seeders/      sample rows
//
// Every run snapshots the files it may touch into a timestamped backup directory
// first, so a run can be rolled back with the backup package.
//
// The root package holds the error taxonomy and the Filesystem primitive shared by
// the generator (compiler/gen) and the backup manager (backup).
package crudgen

// Version is the generator version reported by the CLI.
const Version = "0.4.0"
