package repository

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Categories is the category repository.
type Categories struct {
	base
}

// NewCategories returns a category repository over sel.
func NewCategories(sel *storage.Selector, opts ...Option) *Categories {
	return &Categories{base: newBase(sel, opts)}
}

func categoryID(c types.Category) string { return c.ID }

// GetAll returns every category sorted by name, one per id.
func (r *Categories) GetAll(ctx context.Context) ([]types.Category, error) {
	cs, err := r.sel.Reader().Categories(ctx)
	if err != nil {
		return nil, err
	}
	return dedupeByID(cs, categoryID), nil
}

// GetByID returns the category with id or types.ErrNotFound.
func (r *Categories) GetByID(ctx context.Context, id string) (types.Category, error) {
	cs, err := r.GetAll(ctx)
	if err != nil {
		return types.Category{}, err
	}
	c, ok := findByID(cs, id, categoryID)
	if !ok {
		return types.Category{}, notFound("category", id)
	}
	return c, nil
}

// Exists reports whether a category with id exists.
func (r *Categories) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return existsResult(err)
}

// Create stores a new category.
func (r *Categories) Create(ctx context.Context, in types.CategoryInput) (types.Category, error) {
	c := types.Category{
		ID:        r.newID(),
		Name:      in.Name,
		Color:     in.Color,
		Icon:      in.Icon,
		CreatedAt: r.timestamp(),
	}
	if err := c.Validate(); err != nil {
		return types.Category{}, err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error { return b.Insert(ctx, c) })
	if err != nil {
		return types.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return c, nil
}

// Update merges patch onto the category with id.
func (r *Categories) Update(ctx context.Context, id string, patch types.CategoryPatch) (types.Category, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Category{}, err
	}
	patch.ApplyTo(&c)
	if err := c.Validate(); err != nil {
		return types.Category{}, err
	}
	err = r.sel.Write(ctx, func(b storage.Backend) error { return b.Put(ctx, c) })
	if err != nil {
		return types.Category{}, fmt.Errorf("updating category: %w", err)
	}
	return c, nil
}

// Delete removes the category with id. It returns
// types.ErrReferentialConflict, and changes nothing, while any project
// references the category. The fallback store is checked since it holds
// every project regardless of the selected backend.
func (r *Categories) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	projects, err := r.sel.Fallback().Projects(ctx)
	if err != nil {
		return fmt.Errorf("checking category references: %w", err)
	}
	for _, p := range projects {
		if p.CategoryID == id {
			return fmt.Errorf("category %q used by project %q: %w", id, p.ID, types.ErrReferentialConflict)
		}
	}
	err = r.sel.Write(ctx, func(b storage.Backend) error {
		return b.Delete(ctx, types.CollectionCategories, id)
	})
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}
