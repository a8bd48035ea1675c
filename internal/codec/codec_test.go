package codec

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/mesh-intelligence/agenda/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	due     = time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
)

func sampleTask() types.Task {
	start := due.Add(-2 * time.Hour)
	end := due.Add(-time.Hour)
	at := due.Add(-3 * time.Hour)
	return types.Task{
		ID:           "task-1",
		Title:        "Write report",
		Description:  "quarterly",
		DueDate:      due,
		StartTime:    &start,
		EndTime:      &end,
		Notification: types.NotifyAt(at),
		Image:        "data:image/png;base64,AAAA",
		ProjectID:    "proj-1",
		Order:        3,
		Completed:    true,
		CreatedAt:    created,
	}
}

func TestFallbackRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "category",
			check: func(t *testing.T) {
				c := types.Category{ID: "cat-1", Name: "Work", Color: "#2196f3", Icon: "briefcase", CreatedAt: created}
				raw, err := Marshal(CategoryToRecord(c))
				require.NoError(t, err)
				got, ok := CategoryFromRecord(raw)
				require.True(t, ok)
				assert.Equal(t, c, got)
				assert.Equal(t, "cat-1", RecordID(raw))
			},
		},
		{
			name: "project without description",
			check: func(t *testing.T) {
				p := types.Project{ID: "proj-1", Name: "Launch", CategoryID: "cat-1", CreatedAt: created}
				raw, err := Marshal(ProjectToRecord(p))
				require.NoError(t, err)
				assert.NotContains(t, string(raw), "description")
				got, ok := ProjectFromRecord(raw)
				require.True(t, ok)
				assert.Equal(t, p, got)
			},
		},
		{
			name: "task with every optional field",
			check: func(t *testing.T) {
				task := sampleTask()
				raw, err := Marshal(TaskToRecord(task))
				require.NoError(t, err)
				got, ok := TaskFromRecord(raw)
				require.True(t, ok)
				assert.Equal(t, task, got)
			},
		},
		{
			name: "protected note",
			check: func(t *testing.T) {
				n := types.Note{
					ID: "note-1", Title: "Secret", Content: "body", Protected: true,
					PasswordHash: "hash", CreatedAt: created, ModifiedAt: created.Add(time.Minute),
				}
				raw, err := Marshal(NoteToRecord(n))
				require.NoError(t, err)
				got, ok := NoteFromRecord(raw)
				require.True(t, ok)
				assert.Equal(t, n, got)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestFallbackRecordUsesCamelCase(t *testing.T) {
	raw, err := Marshal(TaskToRecord(sampleTask()))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"dueDate", "startTime", "endTime", "projectId", "createdAt", "notification"} {
		assert.Contains(t, m, key)
	}
	n := m["notification"].(map[string]any)
	assert.Equal(t, "custom", n["kind"])
	assert.Contains(t, n, "customDateTime")
}

func TestFallbackRecordDecodeTolerance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{
			name: "integer completed flag",
			raw:  `{"id":"t","title":"x","description":"","dueDate":"2024-03-10T18:00:00Z","projectId":"p","order":0,"completed":1,"createdAt":"2024-03-01T09:30:00Z"}`,
			ok:   true,
		},
		{
			name: "legacy notification kind",
			raw:  `{"id":"t","title":"x","dueDate":"2024-03-10T18:00:00Z","projectId":"p","notification":{"kind":"1hora"},"createdAt":"2024-03-01T09:30:00Z"}`,
			ok:   true,
		},
		{
			name: "unknown notification kind",
			raw:  `{"id":"t","title":"x","dueDate":"2024-03-10T18:00:00Z","projectId":"p","notification":{"kind":"2weeks"},"createdAt":"2024-03-01T09:30:00Z"}`,
			ok:   false,
		},
		{
			name: "custom notification without date",
			raw:  `{"id":"t","title":"x","dueDate":"2024-03-10T18:00:00Z","projectId":"p","notification":{"kind":"custom"},"createdAt":"2024-03-01T09:30:00Z"}`,
			ok:   false,
		},
		{
			name: "missing due date",
			raw:  `{"id":"t","title":"x","projectId":"p","createdAt":"2024-03-01T09:30:00Z"}`,
			ok:   false,
		},
		{
			name: "not an object",
			raw:  `"task"`,
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TaskFromRecord(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLegacyNotificationKindNormalized(t *testing.T) {
	raw := `{"id":"t","title":"x","dueDate":"2024-03-10T18:00:00Z","projectId":"p","notification":{"kind":"1hora"},"createdAt":"2024-03-01T09:30:00Z"}`
	task, ok := TaskFromRecord(json.RawMessage(raw))
	require.True(t, ok)
	require.NotNil(t, task.Notification)
	assert.Equal(t, types.Notify1Hour, task.Notification.Kind)
}

func TestCategoryMissingIconDropped(t *testing.T) {
	raw := `{"id":"c","name":"Work","color":"#fff","createdAt":"2024-03-01T09:30:00Z"}`
	_, ok := CategoryFromRecord(json.RawMessage(raw))
	assert.False(t, ok)
}

func TestNoteProtectionMismatchDropped(t *testing.T) {
	raw := `{"id":"n","title":"x","content":"","protected":true,"createdAt":"2024-03-01T09:30:00Z","modifiedAt":"2024-03-01T09:30:00Z"}`
	_, ok := NoteFromRecord(json.RawMessage(raw))
	assert.False(t, ok)
}

func TestRelationalRowRoundTrip(t *testing.T) {
	t.Run("category", func(t *testing.T) {
		c := types.Category{ID: "cat-1", Name: "Work", Color: "#2196f3", Icon: "briefcase", CreatedAt: created}
		got, ok := CategoryFromRow(CategoryToRow(c))
		require.True(t, ok)
		assert.Equal(t, c, got)
	})
	t.Run("project", func(t *testing.T) {
		p := types.Project{ID: "proj-1", Name: "Launch", CategoryID: "cat-1", Description: "v1", CreatedAt: created}
		row := ProjectToRow(p)
		assert.True(t, row.Description.Valid)
		got, ok := ProjectFromRow(row)
		require.True(t, ok)
		assert.Equal(t, p, got)
	})
	t.Run("task", func(t *testing.T) {
		task := sampleTask()
		row := TaskToRow(task)
		assert.Equal(t, 1, row.Completed)
		assert.True(t, row.NotificationConfig.Valid)
		got, ok := TaskFromRow(row)
		require.True(t, ok)
		assert.Equal(t, task, got)
	})
	t.Run("task with only required fields", func(t *testing.T) {
		task := types.Task{ID: "t", Title: "x", DueDate: due, ProjectID: "p", CreatedAt: created}
		row := TaskToRow(task)
		assert.False(t, row.StartTime.Valid)
		assert.False(t, row.NotificationConfig.Valid)
		assert.False(t, row.Image.Valid)
		got, ok := TaskFromRow(row)
		require.True(t, ok)
		assert.Equal(t, task, got)
	})
	t.Run("note", func(t *testing.T) {
		n := types.Note{ID: "n", Title: "x", Content: "y", CreatedAt: created, ModifiedAt: created}
		row := NoteToRow(n)
		assert.Equal(t, 0, row.Protected)
		assert.False(t, row.PasswordHash.Valid)
		got, ok := NoteFromRow(row)
		require.True(t, ok)
		assert.Equal(t, n, got)
	})
}

func TestTaskRowBadNotificationDropped(t *testing.T) {
	row := TaskToRow(types.Task{ID: "t", Title: "x", DueDate: due, ProjectID: "p", CreatedAt: created})
	row.NotificationConfig = sql.NullString{String: "{not json", Valid: true}
	_, ok := TaskFromRow(row)
	assert.False(t, ok)
}

func TestParseTimeNormalizesToUTC(t *testing.T) {
	got, ok := ParseTime("2024-03-10T19:00:00+01:00")
	require.True(t, ok)
	assert.Equal(t, due, got)
	assert.Equal(t, time.UTC, got.Location())

	_, ok = ParseTime("yesterday")
	assert.False(t, ok)
}
