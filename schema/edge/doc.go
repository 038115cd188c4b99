// Package edge parses the relations block of an entity schema.
//
// Relations are grouped by kind, each group a comma separated list of
// "Target[:alias]" entries:
//
//	relations:
//	  belongsTo: Category
//	  hasMany: Book:books, Review
//	  belongsToMany: Tag
//
// Without an alias the relation name is derived from the target entity by a
// Namer; the generator pluralizes it for hasMany and belongsToMany.
package edge
