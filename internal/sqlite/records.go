package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/codec"
	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// List queries. Ordering matches the fallback store so both backends return
// the same sequence.
const (
	selectCategories     = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, created_at`
	selectProjects       = `SELECT ` + projectColumns + ` FROM projects ORDER BY name, created_at`
	selectTasks          = `SELECT ` + taskColumns + ` FROM tasks ORDER BY "order", created_at`
	selectTasksByProject = `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY "order", created_at`
	selectNotes          = `SELECT id, title, COALESCE(content, '') AS content, protected, password_hash, created_at, modified_at
FROM notes ORDER BY modified_at DESC`
)

// Upsert statements.
const (
	upsertCategory = `INSERT OR REPLACE INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?)`
	upsertProject  = `INSERT OR REPLACE INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?)`
	upsertTask     = `INSERT OR REPLACE INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	upsertNote     = `INSERT OR REPLACE INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
)

// selectDecoded runs query and decodes each row, dropping rows that do not
// decode to a valid entity.
func selectDecoded[R any, E any](ctx context.Context, s *Store, collection, query string, decode func(R) (E, bool), args ...any) ([]E, error) {
	var rows []R
	err := s.withDB(func(db *sqlx.DB) error {
		return db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	out := make([]E, 0, len(rows))
	for _, r := range rows {
		e, ok := decode(r)
		if !ok {
			s.log.Debug("dropping undecodable row", zap.String("collection", collection))
			s.metrics.Drop(collection, metrics.BackendSQLite)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Categories returns every category sorted by name.
func (s *Store) Categories(ctx context.Context) ([]types.Category, error) {
	return selectDecoded(ctx, s, types.CollectionCategories, selectCategories, codec.CategoryFromRow)
}

// Projects returns every project sorted by name.
func (s *Store) Projects(ctx context.Context) ([]types.Project, error) {
	return selectDecoded(ctx, s, types.CollectionProjects, selectProjects, codec.ProjectFromRow)
}

// Tasks returns every task sorted by order.
func (s *Store) Tasks(ctx context.Context) ([]types.Task, error) {
	return selectDecoded(ctx, s, types.CollectionTasks, selectTasks, codec.TaskFromRow)
}

// TasksByProject returns the tasks of one project sorted by order.
func (s *Store) TasksByProject(ctx context.Context, projectID string) ([]types.Task, error) {
	return selectDecoded(ctx, s, types.CollectionTasks, selectTasksByProject, codec.TaskFromRow, projectID)
}

// Notes returns every note, most recently modified first.
func (s *Store) Notes(ctx context.Context) ([]types.Note, error) {
	return selectDecoded(ctx, s, types.CollectionNotes, selectNotes, codec.NoteFromRow)
}

// Put upserts each entity by id in one transaction. Entities must be
// types.Category, types.Project, types.Task or types.Note values.
func (s *Store) Put(ctx context.Context, entities ...any) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entities {
			if err := upsert(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.Write(metrics.BackendSQLite, metrics.OpPut, len(entities))
	return nil
}

// Insert writes new entities. The relational store replaces on id collision,
// so Insert behaves like Put.
func (s *Store) Insert(ctx context.Context, entities ...any) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, e := range entities {
			if err := upsert(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.Write(metrics.BackendSQLite, metrics.OpInsert, len(entities))
	return nil
}

func upsert(ctx context.Context, tx *sqlx.Tx, entity any) error {
	var (
		stmt string
		args []any
	)
	switch e := entity.(type) {
	case types.Category:
		stmt, args = upsertCategory, codec.CategoryToRow(e).Args()
	case types.Project:
		stmt, args = upsertProject, codec.ProjectToRow(e).Args()
	case types.Task:
		stmt, args = upsertTask, codec.TaskToRow(e).Args()
	case types.Note:
		stmt, args = upsertNote, codec.NoteToRow(e).Args()
	default:
		return fmt.Errorf("%w: unsupported entity %T", types.ErrInvalidData, entity)
	}
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("%w: writing %T: %v", types.ErrStorageUnavailable, entity, err)
	}
	return nil
}

// Delete removes the entity with id from collection. Deleting a project also
// deletes its tasks in the same transaction. Absent ids are not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	table, ok := tableFor(collection)
	if !ok {
		return fmt.Errorf("%w: unknown collection %q", types.ErrInvalidData, collection)
	}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if collection == types.CollectionProjects {
			if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
				return fmt.Errorf("%w: deleting project tasks: %v", types.ErrStorageUnavailable, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
			return fmt.Errorf("%w: deleting from %s: %v", types.ErrStorageUnavailable, table, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.Write(metrics.BackendSQLite, metrics.OpDelete, 1)
	return nil
}

// tableFor maps a collection name to its table. The names coincide; the
// lookup keeps arbitrary strings out of SQL.
func tableFor(collection string) (string, bool) {
	switch collection {
	case types.CollectionCategories, types.CollectionProjects, types.CollectionTasks, types.CollectionNotes:
		return collection, true
	}
	return "", false
}
