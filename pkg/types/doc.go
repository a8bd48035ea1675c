// Package types defines the entities, patch types, validation rules and
// standard errors shared by the agenda storage core.
//
// Entities are plain structs. Repositories create and mutate them; the
// codec package maps them to the fallback record and relational row shapes.
package types
