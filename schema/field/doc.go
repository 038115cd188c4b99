// Package field parses the compact field type grammar used by entity schemas.
//
// A field spec is a colon separated list whose first token is the base type:
//
//	string                          // VARCHAR column, required
//	string:unique                   // unique constraint
//	text:nullable                   // optional text column
//	integer:default(0)              // default value
//	foreignId:categories            // references categories.id, cascade on delete
//	foreignId:users:nullable:default(1)
//	image:nullable                  // uploaded file, stored as a path
//
// For foreignId the second token is always the referenced table. Modifiers keep
// the order they were declared in, and that order is the order in which their
// clauses are rendered in migrations. Unknown base types are passed through.
package field
