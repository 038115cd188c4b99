// Package schema holds the descriptors an entity schema is made of.
//
//   - [field]: the field type grammar ("foreignId:users:nullable")
//   - [edge]: relation kinds and "Target[:alias]" parsing
//   - [index]: composite unique constraints
//   - [mixin]: columns shared by every table (timestamps)
//
// A schema file maps entity names to their definitions:
//
//	Author:
//	  fields:
//	    name: string
//	    email: string:unique
//	    avatar: image:nullable
//	  relations:
//	    hasMany: Book:books
//	    belongsToMany: Tag
//	  nested_requests: [books, tags]
//	  with: [books]
//
//	Book:
//	  fields:
//	    title: string
//	    author_id: foreignId:authors
//	  relations:
//	    belongsTo: Author
//	  unique:
//	    - [author_id, title]
package schema
