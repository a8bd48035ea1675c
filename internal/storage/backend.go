// Package storage selects between the relational store and the fallback
// key-value store, and keeps the fallback store a full mirror of every
// write.
package storage

import (
	"context"

	"github.com/mesh-intelligence/agenda/internal/sqlite"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Backend is the entity-level view of one store. Reads return entities in
// collection order: categories and projects by name, tasks by order, notes
// by most recent modification. Records that fail to decode are left out.
type Backend interface {
	Categories(ctx context.Context) ([]types.Category, error)
	Projects(ctx context.Context) ([]types.Project, error)
	Tasks(ctx context.Context) ([]types.Task, error)
	TasksByProject(ctx context.Context, projectID string) ([]types.Task, error)
	Notes(ctx context.Context) ([]types.Note, error)

	// Put upserts entities by id.
	Put(ctx context.Context, entities ...any) error
	// Insert writes new entities. Stores may skip an entity whose id is
	// already present.
	Insert(ctx context.Context, entities ...any) error
	// Delete removes one entity. Deleting a project removes its tasks.
	Delete(ctx context.Context, collection, id string) error
}

var (
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*Fallback)(nil)
)
