package repository

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Notes is the note repository. Passwords are never stored; protected notes
// keep only a digest.
type Notes struct {
	base
}

// NewNotes returns a note repository over sel.
func NewNotes(sel *storage.Selector, opts ...Option) *Notes {
	return &Notes{base: newBase(sel, opts)}
}

func noteID(n types.Note) string { return n.ID }

// GetAll returns every note, most recently modified first.
func (r *Notes) GetAll(ctx context.Context) ([]types.Note, error) {
	return r.sel.Reader().Notes(ctx)
}

// GetByID returns the note with id or types.ErrNotFound.
func (r *Notes) GetByID(ctx context.Context, id string) (types.Note, error) {
	ns, err := r.GetAll(ctx)
	if err != nil {
		return types.Note{}, err
	}
	n, ok := findByID(ns, id, noteID)
	if !ok {
		return types.Note{}, notFound("note", id)
	}
	return n, nil
}

// Exists reports whether a note with id exists.
func (r *Notes) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return existsResult(err)
}

// HashPassword returns a digest of password using the repository cost.
func (r *Notes) HashPassword(password string) (string, error) {
	return HashPassword(password, r.bcryptCost)
}

// VerifyPassword reports whether password matches digest.
func (r *Notes) VerifyPassword(password, digest string) bool {
	return VerifyPassword(password, digest)
}

// protect sets or clears the note digest. An empty password clears it.
func (r *Notes) protect(n *types.Note, password string) error {
	if password == "" {
		n.Protected = false
		n.PasswordHash = ""
		return nil
	}
	digest, err := r.HashPassword(password)
	if err != nil {
		return err
	}
	n.Protected = true
	n.PasswordHash = digest
	return nil
}

// Create stores a new note. A non-empty password protects it.
func (r *Notes) Create(ctx context.Context, in types.NoteInput, password string) (types.Note, error) {
	now := r.timestamp()
	n := types.Note{
		ID:         r.newID(),
		Title:      in.Title,
		Content:    in.Content,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := r.protect(&n, password); err != nil {
		return types.Note{}, err
	}
	if err := n.Validate(); err != nil {
		return types.Note{}, err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error { return b.Insert(ctx, n) })
	if err != nil {
		return types.Note{}, fmt.Errorf("creating note: %w", err)
	}
	return n, nil
}

// Update merges patch onto the note with id and bumps ModifiedAt. A set
// Password re-protects the note, or unprotects it when empty.
func (r *Notes) Update(ctx context.Context, id string, patch types.NotePatch) (types.Note, error) {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Note{}, err
	}
	patch.Title.Apply(&n.Title)
	patch.Content.Apply(&n.Content)
	if patch.Password.Set {
		if err := r.protect(&n, patch.Password.Value); err != nil {
			return types.Note{}, err
		}
	}
	n.ModifiedAt = r.timestamp()
	if err := n.Validate(); err != nil {
		return types.Note{}, err
	}
	err = r.sel.Write(ctx, func(b storage.Backend) error { return b.Put(ctx, n) })
	if err != nil {
		return types.Note{}, fmt.Errorf("updating note: %w", err)
	}
	return n, nil
}

// Unlock returns the note when password opens it. A wrong password reports
// false with a nil error. Unprotected notes open with any password.
func (r *Notes) Unlock(ctx context.Context, id, password string) (types.Note, bool, error) {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Note{}, false, err
	}
	if !n.Protected {
		return n, true, nil
	}
	if !VerifyPassword(password, n.PasswordHash) {
		return types.Note{}, false, nil
	}
	return n, true, nil
}

// Delete removes the note with id.
func (r *Notes) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error {
		return b.Delete(ctx, types.CollectionNotes, id)
	})
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}
