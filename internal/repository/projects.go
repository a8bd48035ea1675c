package repository

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Projects is the project repository.
type Projects struct {
	base
}

// NewProjects returns a project repository over sel.
func NewProjects(sel *storage.Selector, opts ...Option) *Projects {
	return &Projects{base: newBase(sel, opts)}
}

func projectID(p types.Project) string { return p.ID }

// GetAll returns every project sorted by name, one per id.
func (r *Projects) GetAll(ctx context.Context) ([]types.Project, error) {
	ps, err := r.sel.Reader().Projects(ctx)
	if err != nil {
		return nil, err
	}
	return dedupeByID(ps, projectID), nil
}

// GetByID returns the project with id or types.ErrNotFound.
func (r *Projects) GetByID(ctx context.Context, id string) (types.Project, error) {
	ps, err := r.GetAll(ctx)
	if err != nil {
		return types.Project{}, err
	}
	p, ok := findByID(ps, id, projectID)
	if !ok {
		return types.Project{}, notFound("project", id)
	}
	return p, nil
}

// GetByCategory returns the projects in one category.
func (r *Projects) GetByCategory(ctx context.Context, categoryID string) ([]types.Project, error) {
	ps, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := ps[:0]
	for _, p := range ps {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Exists reports whether a project with id exists.
func (r *Projects) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return existsResult(err)
}

// Create stores a new project.
func (r *Projects) Create(ctx context.Context, in types.ProjectInput) (types.Project, error) {
	p := types.Project{
		ID:          r.newID(),
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		CreatedAt:   r.timestamp(),
	}
	if err := p.Validate(); err != nil {
		return types.Project{}, err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error { return b.Insert(ctx, p) })
	if err != nil {
		return types.Project{}, fmt.Errorf("creating project: %w", err)
	}
	return p, nil
}

// Update merges patch onto the project with id.
func (r *Projects) Update(ctx context.Context, id string, patch types.ProjectPatch) (types.Project, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Project{}, err
	}
	patch.ApplyTo(&p)
	if err := p.Validate(); err != nil {
		return types.Project{}, err
	}
	err = r.sel.Write(ctx, func(b storage.Backend) error { return b.Put(ctx, p) })
	if err != nil {
		return types.Project{}, fmt.Errorf("updating project: %w", err)
	}
	return p, nil
}

// Delete removes the project with id and every task in it, in both stores.
func (r *Projects) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error {
		return b.Delete(ctx, types.CollectionProjects, id)
	})
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}
