// Package repository provides typed CRUD over the storage selector for
// categories, projects, tasks and notes, plus the settings store and
// first-run seeding.
//
// Reads go to the authoritative backend. Every mutation goes through
// storage.Selector.Write, which updates the relational store when selected
// and always the fallback store.
package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	now        func() time.Time
	newID      func() string
	log        *zap.Logger
	bcryptCost int
}

// WithClock replaces time.Now for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces UUID v7 generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithLogger sets the repository logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = logging.OrNop(l) }
}

// WithBcryptCost sets the cost of new note password digests.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

func newOptions(opts []Option) options {
	o := options{
		now:        time.Now,
		newID:      generateUUID,
		log:        zap.NewNop(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds what every repository shares.
type base struct {
	sel *storage.Selector
	options
}

func newBase(sel *storage.Selector, opts []Option) base {
	return base{sel: sel, options: newOptions(opts)}
}

// timestamp returns the current time in the form stored timestamps decode
// to, so created entities compare equal to what a later read returns.
func (b base) timestamp() time.Time {
	return normalizeTime(b.now())
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC()
}

func normalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := normalizeTime(*t)
	return &u
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, types.ErrNotFound)
}

func requireID(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return nil
}

// dedupeByID keeps the first entity for each id.
func dedupeByID[E any](items []E, id func(E) string) []E {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		k := id(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// findByID returns the first entity with id.
func findByID[E any](items []E, id string, idOf func(E) string) (E, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	var zero E
	return zero, false
}

// existsResult turns a GetByID error into an Exists result.
func existsResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, types.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
