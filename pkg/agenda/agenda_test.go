package agenda

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/agenda/pkg/types"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad config", func(t *testing.T) {
		_, err := Open(ctx, Options{DataDir: t.TempDir(), Backend: "postgres"})
		assert.ErrorIs(t, err, types.ErrBackendUnknown)

		_, err = Open(ctx, Options{})
		assert.Error(t, err)
	})

	t.Run("relational session seeds and persists", func(t *testing.T) {
		dir := t.TempDir()
		app, err := Open(ctx, Options{DataDir: dir, BcryptCost: bcrypt.MinCost})
		require.NoError(t, err)
		assert.True(t, app.IsUsingPrimary())

		cats, err := app.Categories.GetAll(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, cats)
		p, err := app.Projects.Create(ctx, types.ProjectInput{Name: "Launch", CategoryID: cats[0].ID})
		require.NoError(t, err)
		require.NoError(t, app.Close())

		// Reopen with the relational store disabled: the fallback mirror has
		// everything.
		offline, err := Open(ctx, Options{DataDir: dir, Backend: types.BackendJSONL})
		require.NoError(t, err)
		defer offline.Close()
		assert.False(t, offline.IsUsingPrimary())
		got, err := offline.Projects.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got)
		again, err := offline.Categories.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, again, len(cats))
	})

	t.Run("unsupported platform degrades", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		app, err := Open(ctx, Options{
			DataDir:    t.TempDir(),
			Probe:      func() bool { return false },
			Registerer: reg,
			SkipSeed:   true,
		})
		require.NoError(t, err)
		defer app.Close()
		assert.False(t, app.IsUsingPrimary())
		assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Degraded))

		cats, err := app.Categories.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, cats)
	})

	t.Run("reset all", func(t *testing.T) {
		app, err := Open(ctx, Options{DataDir: t.TempDir(), SkipSeed: true})
		require.NoError(t, err)
		defer app.Close()
		_, err = app.Notes.Create(ctx, types.NoteInput{Title: "x"}, "")
		require.NoError(t, err)

		require.NoError(t, app.ResetAll(ctx))
		notes, err := app.Notes.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, notes)

		n, err := app.Sync(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
