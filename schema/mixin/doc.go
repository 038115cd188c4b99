// Package mixin provides columns shared by every generated table.
//
// Entities get the Time mixin (created_at, updated_at) unless their schema
// entry sets "timestamps: false". Mixin fields appear in migrations, models
// and resources, but never in validation rules or fillable lists.
package mixin
