package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

var (
	created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	due     = time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
)

func setupStore(t *testing.T) (*Store, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	s := New(Options{Dir: t.TempDir(), Metrics: m})
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s, m
}

func task(id, projectID string, order int) types.Task {
	return types.Task{
		ID:        id,
		Title:     "task " + id,
		DueDate:   due,
		ProjectID: projectID,
		Order:     order,
		CreatedAt: created.Add(time.Duration(order) * time.Second),
	}
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("creates database file and is idempotent", func(t *testing.T) {
		s := New(Options{Dir: filepath.Join(t.TempDir(), "db")})
		require.NoError(t, s.Initialize(ctx))
		defer s.Close()
		require.NoError(t, s.Initialize(ctx))
		assert.True(t, s.IsAvailable())
		assert.FileExists(t, s.Path())
	})

	t.Run("unsupported platform", func(t *testing.T) {
		s := New(Options{Dir: t.TempDir(), Probe: func() bool { return false }})
		err := s.Initialize(ctx)
		assert.ErrorIs(t, err, types.ErrUnsupported)
		assert.False(t, s.IsAvailable())
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		dir := t.TempDir()
		s := New(Options{Dir: dir})
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Put(ctx, types.Note{ID: "n", Title: "x", CreatedAt: created, ModifiedAt: created}))
		require.NoError(t, s.Close())

		s2 := New(Options{Dir: dir})
		require.NoError(t, s2.Initialize(ctx))
		defer s2.Close()
		notes, err := s2.Notes(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})
}

func TestMigrationAddsTaskColumns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	old, err := sqlx.Open(driverName, filepath.Join(dir, DBFile))
	require.NoError(t, err)
	_, err = old.Exec(`CREATE TABLE tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT NOT NULL,
    project_id TEXT NOT NULL,
    "order" INTEGER DEFAULT 0,
    completed INTEGER DEFAULT 0,
    created_at TEXT NOT NULL
)`)
	require.NoError(t, err)
	_, err = old.Exec(`INSERT INTO tasks (id, title, due_date, project_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		"legacy", "old task", "2024-03-10T18:00:00Z", "p", "2024-03-01T09:30:00Z")
	require.NoError(t, err)
	require.NoError(t, old.Close())

	s := New(Options{Dir: dir})
	require.NoError(t, s.Initialize(ctx))
	defer s.Close()

	cols, err := s.Query(ctx, `PRAGMA table_info(tasks)`)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, c := range cols {
		if name, ok := c["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{"start_time", "end_time", "notification_config", "image"} {
		assert.True(t, names[want], "missing column %s", want)
	}

	tasks, err := s.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "legacy", tasks[0].ID)
	assert.Nil(t, tasks[0].StartTime)

	// A second open finds the columns already present.
	require.NoError(t, s.Close())
	require.NoError(t, s.Initialize(ctx))
}

func TestUnavailableStore(t *testing.T) {
	ctx := context.Background()
	s := New(Options{Dir: t.TempDir()})

	rows, err := s.Query(ctx, `SELECT 1`)
	require.NoError(t, err)
	assert.Empty(t, rows)

	res, err := s.Execute(ctx, `DELETE FROM tasks`)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Tasks(ctx)
	assert.ErrorIs(t, err, types.ErrStorageUnavailable)
	assert.ErrorIs(t, s.Put(ctx, task("a", "p", 0)), types.ErrStorageUnavailable)
	assert.NoError(t, s.Close())
}

func TestRecords(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store, m *metrics.Metrics)
	}{
		{
			name: "categories round trip sorted by name",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				work := types.Category{ID: "c1", Name: "Work", Color: "#2196f3", Icon: "briefcase", CreatedAt: created}
				home := types.Category{ID: "c2", Name: "Home", Color: "#4caf50", Icon: "home", CreatedAt: created}
				require.NoError(t, s.Put(ctx, work, home))
				got, err := s.Categories(ctx)
				require.NoError(t, err)
				assert.Equal(t, []types.Category{home, work}, got)
				assert.Equal(t, 2.0, testutil.ToFloat64(m.Writes.WithLabelValues(metrics.BackendSQLite, metrics.OpPut)))
			},
		},
		{
			name: "put replaces by id",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				p := types.Project{ID: "p1", Name: "Launch", CategoryID: "c1", CreatedAt: created}
				require.NoError(t, s.Insert(ctx, p))
				p.Description = "v2"
				require.NoError(t, s.Put(ctx, p))
				got, err := s.Projects(ctx)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "v2", got[0].Description)
			},
		},
		{
			name: "tasks by project sorted by order",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				require.NoError(t, s.Put(ctx, task("b", "p1", 1), task("a", "p1", 0), task("x", "p2", 0)))
				got, err := s.TasksByProject(ctx, "p1")
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "a", got[0].ID)
				assert.Equal(t, "b", got[1].ID)
			},
		},
		{
			name: "task optional fields survive",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				start := due.Add(-2 * time.Hour)
				end := due.Add(-time.Hour)
				tk := task("a", "p1", 0)
				tk.StartTime, tk.EndTime = &start, &end
				tk.Notification = types.NotifyBefore(types.Notify1Day)
				tk.Image = "uri://img"
				tk.Completed = true
				require.NoError(t, s.Put(ctx, tk))
				got, err := s.Tasks(ctx)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, tk, got[0])
			},
		},
		{
			name: "notes sorted by modification descending",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				older := types.Note{ID: "n1", Title: "old", CreatedAt: created, ModifiedAt: created}
				newer := types.Note{ID: "n2", Title: "new", CreatedAt: created, ModifiedAt: created.Add(500 * time.Millisecond)}
				require.NoError(t, s.Put(ctx, older, newer))
				got, err := s.Notes(ctx)
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "n2", got[0].ID)
			},
		},
		{
			name: "deleting a project deletes its tasks",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				p := types.Project{ID: "p1", Name: "Launch", CategoryID: "c1", CreatedAt: created}
				require.NoError(t, s.Put(ctx, p, task("a", "p1", 0), task("b", "p2", 0)))
				require.NoError(t, s.Delete(ctx, types.CollectionProjects, "p1"))
				projects, err := s.Projects(ctx)
				require.NoError(t, err)
				assert.Empty(t, projects)
				tasks, err := s.Tasks(ctx)
				require.NoError(t, err)
				require.Len(t, tasks, 1)
				assert.Equal(t, "b", tasks[0].ID)
			},
		},
		{
			name: "delete of unknown collection fails",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				err := s.Delete(ctx, "users", "x")
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "undecodable rows are dropped",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				_, err := s.Execute(ctx, `INSERT INTO tasks (id, title, due_date, project_id, created_at) VALUES (?, ?, ?, ?, ?)`,
					"bad", "broken", "not a date", "p1", "2024-03-01T09:30:00Z")
				require.NoError(t, err)
				require.NoError(t, s.Put(ctx, task("good", "p1", 0)))
				got, err := s.Tasks(ctx)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "good", got[0].ID)
				assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped.WithLabelValues(types.CollectionTasks, metrics.BackendSQLite)))
			},
		},
		{
			name: "import and truncate",
			check: func(t *testing.T, s *Store, m *metrics.Metrics) {
				snap := Snapshot{
					Categories: []types.Category{{ID: "c1", Name: "Work", Color: "#fff", Icon: "i", CreatedAt: created}},
					Projects:   []types.Project{{ID: "p1", Name: "Launch", CategoryID: "c1", CreatedAt: created}},
					Tasks:      []types.Task{task("a", "p1", 0)},
					Notes:      []types.Note{{ID: "n1", Title: "x", CreatedAt: created, ModifiedAt: created}},
				}
				require.NoError(t, s.Import(ctx, snap))
				require.NoError(t, s.Import(ctx, snap))
				rows, err := s.Query(ctx, `SELECT COUNT(*) AS n FROM tasks`)
				require.NoError(t, err)
				assert.EqualValues(t, 1, rows[0]["n"])

				require.NoError(t, s.Truncate(ctx))
				for _, table := range types.StandardCollections {
					rows, err := s.Query(ctx, `SELECT COUNT(*) AS n FROM `+table)
					require.NoError(t, err)
					assert.EqualValues(t, 0, rows[0]["n"], table)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := setupStore(t)
			tt.check(t, s, m)
		})
	}
}
