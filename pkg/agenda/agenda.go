// Package agenda opens the task, project and note stores and exposes their
// repositories.
//
// Example:
//
//	app, err := agenda.Open(ctx, agenda.Options{DataDir: dir})
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//	cats, err := app.Categories.GetAll(ctx)
package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/kvstore"
	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/internal/paths"
	"github.com/mesh-intelligence/agenda/internal/repository"
	"github.com/mesh-intelligence/agenda/internal/sqlite"
	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.1.0"

// Options configures Open.
type Options struct {
	// DataDir holds both stores. Required.
	DataDir string
	// Backend is types.BackendSQLite (default) or types.BackendJSONL.
	Backend string
	// Probe overrides the relational engine capability check.
	Probe func() bool
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Registerer receives the storage counters. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	// BcryptCost sets the cost of new note password digests. Zero uses the
	// bcrypt default.
	BcryptCost int
	// SkipSeed disables creating default categories on first run.
	SkipSeed bool
	// Now overrides the clock used for timestamps.
	Now func() time.Time
}

// App is an open agenda.
type App struct {
	Categories *repository.Categories
	Projects   *repository.Projects
	Tasks      *repository.Tasks
	Notes      *repository.Notes
	Settings   *repository.Settings
	Metrics    *metrics.Metrics

	selector *storage.Selector
	seeder   *repository.Seeder
	log      *zap.Logger
}

// Open initializes the stores, seeds a fresh data directory and copies the
// fallback store into the relational store.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Backend == "" {
		opts.Backend = types.BackendSQLite
	}
	cfg := types.Config{Backend: opts.Backend, DataDir: opts.DataDir}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("invalid config: data dir must not be empty")
	}

	log := logging.OrNop(opts.Logger)
	m := metrics.New(opts.Registerer)

	fallback := storage.NewFallback(kvstore.New(paths.FallbackDir(cfg.DataDir)), log, m)
	primary := sqlite.New(sqlite.Options{
		Dir:     paths.RelationalDir(cfg.DataDir),
		Probe:   opts.Probe,
		Logger:  log,
		Metrics: m,
	})
	selOpts := []storage.Option{storage.WithLogger(log), storage.WithMetrics(m)}
	if !cfg.PrimaryEnabled() {
		selOpts = append(selOpts, storage.WithPrimaryDisabled())
	}
	sel := storage.NewSelector(primary, fallback, selOpts...)
	if err := sel.Initialize(ctx); err != nil {
		return nil, err
	}

	repoOpts := []repository.Option{repository.WithLogger(log)}
	if opts.BcryptCost > 0 {
		repoOpts = append(repoOpts, repository.WithBcryptCost(opts.BcryptCost))
	}
	if opts.Now != nil {
		repoOpts = append(repoOpts, repository.WithClock(opts.Now))
	}

	app := &App{
		Categories: repository.NewCategories(sel, repoOpts...),
		Projects:   repository.NewProjects(sel, repoOpts...),
		Tasks:      repository.NewTasks(sel, repoOpts...),
		Notes:      repository.NewNotes(sel, repoOpts...),
		Settings:   repository.NewSettings(fallback.KV(), repoOpts...),
		Metrics:    m,
		selector:   sel,
		log:        log,
	}
	seedOpts := []repository.SeederOption{repository.WithSeederLogger(log)}
	if opts.SkipSeed {
		seedOpts = append(seedOpts, repository.WithoutDefaultCategories())
	}
	app.seeder = repository.NewSeeder(sel, app.Categories, app.Settings, seedOpts...)

	if err := app.seeder.Initialize(ctx); err != nil {
		sel.Close()
		return nil, err
	}
	return app, nil
}

// IsUsingPrimary reports whether reads come from the relational store.
func (a *App) IsUsingPrimary() bool { return a.selector.IsUsingPrimary() }

// Sync copies the fallback store into the relational store and returns the
// number of records copied.
func (a *App) Sync(ctx context.Context) (int, error) {
	return a.selector.SyncFromFallback(ctx)
}

// ResetAll deletes all data and seeds the stores again.
func (a *App) ResetAll(ctx context.Context) error {
	return a.seeder.ResetAll(ctx)
}

// Close releases the stores.
func (a *App) Close() error {
	return a.selector.Close()
}
