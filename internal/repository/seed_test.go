package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/agenda/internal/kvstore"
	"github.com/mesh-intelligence/agenda/internal/sqlite"
	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

type seedEnv struct {
	sel        *storage.Selector
	categories *Categories
	projects   *Projects
	settings   *Settings
	seeder     *Seeder
}

func setupSeeder(t *testing.T, dir string) seedEnv {
	t.Helper()
	fb := storage.NewFallback(kvstore.New(filepath.Join(dir, "kv")), nil, nil)
	sel := storage.NewSelector(sqlite.New(sqlite.Options{Dir: filepath.Join(dir, "db")}), fb)
	require.NoError(t, sel.Initialize(context.Background()))
	t.Cleanup(func() { sel.Close() })

	cats := NewCategories(sel)
	settings := NewSettings(fb.KV())
	return seedEnv{
		sel:        sel,
		categories: cats,
		projects:   NewProjects(sel),
		settings:   settings,
		seeder:     NewSeeder(sel, cats, settings),
	}
}

func TestDefaultCategoriesAreValid(t *testing.T) {
	defaults, err := DefaultCategories()
	require.NoError(t, err)
	require.NotEmpty(t, defaults)
	for _, in := range defaults {
		c := types.Category{ID: "x", Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: epoch}
		assert.NoError(t, c.Validate(), in.Name)
	}
}

func TestSeederInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("first run seeds categories into both stores", func(t *testing.T) {
		e := setupSeeder(t, t.TempDir())
		require.NoError(t, e.seeder.Initialize(ctx))

		defaults, err := DefaultCategories()
		require.NoError(t, err)
		fromPrimary, err := e.sel.Primary().Categories(ctx)
		require.NoError(t, err)
		fromFallback, err := e.sel.Fallback().Categories(ctx)
		require.NoError(t, err)
		assert.Len(t, fromPrimary, len(defaults))
		assert.Equal(t, fromPrimary, fromFallback)

		var flag bool
		found, err := e.sel.Fallback().KV().Get(InitializedKey, &flag)
		require.NoError(t, err)
		assert.True(t, found && flag)
	})

	t.Run("second run does not seed again", func(t *testing.T) {
		e := setupSeeder(t, t.TempDir())
		require.NoError(t, e.seeder.Initialize(ctx))
		require.NoError(t, e.seeder.Initialize(ctx))

		defaults, err := DefaultCategories()
		require.NoError(t, err)
		all, err := e.categories.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(defaults))
	})

	t.Run("existing categories are kept", func(t *testing.T) {
		e := setupSeeder(t, t.TempDir())
		_, err := e.categories.Create(ctx, types.CategoryInput{Name: "Mine", Color: "#000", Icon: "star"})
		require.NoError(t, err)
		require.NoError(t, e.seeder.Initialize(ctx))

		all, err := e.categories.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Mine", all[0].Name)
	})

	t.Run("fallback data reaches a fresh relational store", func(t *testing.T) {
		dir := t.TempDir()
		fb := storage.NewFallback(kvstore.New(filepath.Join(dir, "kv")), nil, nil)
		offline := storage.NewSelector(nil, fb)
		require.NoError(t, offline.Initialize(ctx))
		_, err := NewCategories(offline).Create(ctx, types.CategoryInput{Name: "Offline", Color: "#000", Icon: "cloud"})
		require.NoError(t, err)
		require.NoError(t, fb.KV().Set(InitializedKey, true))

		e := setupSeeder(t, dir)
		require.NoError(t, e.seeder.Initialize(ctx))
		fromPrimary, err := e.sel.Primary().Categories(ctx)
		require.NoError(t, err)
		require.Len(t, fromPrimary, 1)
		assert.Equal(t, "Offline", fromPrimary[0].Name)
	})
}

func TestSeederResetAll(t *testing.T) {
	ctx := context.Background()
	e := setupSeeder(t, t.TempDir())
	require.NoError(t, e.seeder.Initialize(ctx))

	all, err := e.categories.GetAll(ctx)
	require.NoError(t, err)
	_, err = e.projects.Create(ctx, types.ProjectInput{Name: "Launch", CategoryID: all[0].ID})
	require.NoError(t, err)
	_, err = e.settings.Update(ctx, types.SettingsPatch{WeatherCity: types.Some("Porto")})
	require.NoError(t, err)

	require.NoError(t, e.seeder.ResetAll(ctx))

	projects, err := e.projects.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	fallbackProjects, err := e.sel.Fallback().Projects(ctx)
	require.NoError(t, err)
	assert.Empty(t, fallbackProjects)

	defaults, err := DefaultCategories()
	require.NoError(t, err)
	cats, err := e.categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(defaults))

	s, err := e.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), s)
}
