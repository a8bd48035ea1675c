package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// InitializedKey is the fallback store flag set after first-run seeding.
const InitializedKey = "initialized"

//go:embed seed_categories.json
var seedCategoriesJSON []byte

// DefaultCategories returns the categories created on first run.
func DefaultCategories() ([]types.CategoryInput, error) {
	var raw []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := json.Unmarshal(seedCategoriesJSON, &raw); err != nil {
		return nil, fmt.Errorf("decoding default categories: %w", err)
	}
	out := make([]types.CategoryInput, len(raw))
	for i, c := range raw {
		out[i] = types.CategoryInput{Name: c.Name, Color: c.Color, Icon: c.Icon}
	}
	return out, nil
}

// Seeder prepares the stores at startup: default categories on first run,
// then a copy of the fallback store into the relational store.
type Seeder struct {
	sel        *storage.Selector
	categories *Categories
	settings   *Settings
	log        *zap.Logger
	skipSeed   bool
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithoutDefaultCategories skips creating the default categories.
func WithoutDefaultCategories() SeederOption {
	return func(s *Seeder) { s.skipSeed = true }
}

// WithSeederLogger sets the seeder logger.
func WithSeederLogger(l *zap.Logger) SeederOption {
	return func(s *Seeder) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSeeder returns a seeder. settings may be nil.
func NewSeeder(sel *storage.Selector, categories *Categories, settings *Settings, opts ...SeederOption) *Seeder {
	s := &Seeder{sel: sel, categories: categories, settings: settings, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize seeds and syncs the stores. Seeding and sync failures are
// logged and do not fail startup; only failing to record the initialized
// flag is returned.
func (s *Seeder) Initialize(ctx context.Context) error {
	kv := s.sel.Fallback().KV()

	var initialized bool
	found, err := kv.Get(InitializedKey, &initialized)
	if err != nil && !errors.Is(err, types.ErrMalformedRecord) {
		return fmt.Errorf("reading initialized flag: %w", err)
	}
	if found && initialized {
		s.sync(ctx)
		return nil
	}

	if !s.skipSeed {
		if err := s.seedCategories(ctx); err != nil {
			s.log.Warn("seeding default categories failed", zap.Error(err))
		}
	}
	s.sync(ctx)

	if err := kv.Set(InitializedKey, true); err != nil {
		return fmt.Errorf("writing initialized flag: %w", err)
	}
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	existing, err := s.categories.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	defaults, err := DefaultCategories()
	if err != nil {
		return err
	}
	for _, in := range defaults {
		if _, err := s.categories.Create(ctx, in); err != nil {
			return err
		}
	}
	s.log.Info("created default categories", zap.Int("count", len(defaults)))
	return nil
}

func (s *Seeder) sync(ctx context.Context) {
	if _, err := s.sel.SyncFromFallback(ctx); err != nil {
		s.log.Warn("syncing fallback store failed", zap.Error(err))
	}
}

// ResetAll deletes every record from both stores, clears settings and the
// initialized flag, then runs Initialize again.
func (s *Seeder) ResetAll(ctx context.Context) error {
	if s.sel.IsUsingPrimary() {
		if err := s.sel.Primary().Truncate(ctx); err != nil {
			return fmt.Errorf("clearing relational store: %w", err)
		}
	}
	if err := s.sel.Fallback().Clear(); err != nil {
		return fmt.Errorf("clearing fallback store: %w", err)
	}
	if s.settings != nil {
		s.settings.Reset()
	}
	return s.Initialize(ctx)
}
