package codec

import (
	"database/sql"

	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Relational row structures. db tags name the SQLite columns; booleans are
// stored as 0/1 integers and the notification as JSON text.

// CategoryRow is a row of the categories table.
type CategoryRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	Icon      string `db:"icon"`
	CreatedAt string `db:"created_at"`
}

// ProjectRow is a row of the projects table.
type ProjectRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	CategoryID  string         `db:"category_id"`
	Description sql.NullString `db:"description"`
	CreatedAt   string         `db:"created_at"`
}

// TaskRow is a row of the tasks table.
type TaskRow struct {
	ID                 string         `db:"id"`
	Title              string         `db:"title"`
	Description        sql.NullString `db:"description"`
	DueDate            string         `db:"due_date"`
	StartTime          sql.NullString `db:"start_time"`
	EndTime            sql.NullString `db:"end_time"`
	NotificationConfig sql.NullString `db:"notification_config"`
	Image              sql.NullString `db:"image"`
	ProjectID          string         `db:"project_id"`
	Order              int            `db:"order"`
	Completed          int            `db:"completed"`
	CreatedAt          string         `db:"created_at"`
}

// NoteRow is a row of the notes table.
type NoteRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Content      string         `db:"content"`
	Protected    int            `db:"protected"`
	PasswordHash sql.NullString `db:"password_hash"`
	CreatedAt    string         `db:"created_at"`
	ModifiedAt   string         `db:"modified_at"`
}

// Args returns the row values in column order, for INSERT statements.
func (r CategoryRow) Args() []any {
	return []any{r.ID, r.Name, r.Color, r.Icon, r.CreatedAt}
}

// Args returns the row values in column order, for INSERT statements.
func (r ProjectRow) Args() []any {
	return []any{r.ID, r.Name, r.CategoryID, r.Description, r.CreatedAt}
}

// Args returns the row values in column order, for INSERT statements.
func (r TaskRow) Args() []any {
	return []any{
		r.ID, r.Title, r.Description, r.DueDate, r.StartTime, r.EndTime,
		r.NotificationConfig, r.Image, r.ProjectID, r.Order, r.Completed, r.CreatedAt,
	}
}

// Args returns the row values in column order, for INSERT statements.
func (r NoteRow) Args() []any {
	return []any{r.ID, r.Title, r.Content, r.Protected, r.PasswordHash, r.CreatedAt, r.ModifiedAt}
}

// CategoryToRow converts c to a categories row.
func CategoryToRow(c types.Category) CategoryRow {
	return CategoryRow{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: FormatTime(c.CreatedAt),
	}
}

// CategoryFromRow decodes a categories row. ok is false when the row is not
// a valid category.
func CategoryFromRow(r CategoryRow) (types.Category, bool) {
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Category{}, false
	}
	c := types.Category{ID: r.ID, Name: r.Name, Color: r.Color, Icon: r.Icon, CreatedAt: createdAt}
	if c.Validate() != nil {
		return types.Category{}, false
	}
	return c, true
}

// ProjectToRow converts p to a projects row.
func ProjectToRow(p types.Project) ProjectRow {
	return ProjectRow{
		ID:          p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Description: nullIfEmpty(p.Description),
		CreatedAt:   FormatTime(p.CreatedAt),
	}
}

// ProjectFromRow decodes a projects row. ok is false when the row is not a
// valid project.
func ProjectFromRow(r ProjectRow) (types.Project, bool) {
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Project{}, false
	}
	p := types.Project{
		ID:          r.ID,
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Description: r.Description.String,
		CreatedAt:   createdAt,
	}
	if p.Validate() != nil {
		return types.Project{}, false
	}
	return p, true
}

// TaskToRow converts t to a tasks row.
func TaskToRow(t types.Task) TaskRow {
	return TaskRow{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        sql.NullString{String: t.Description, Valid: true},
		DueDate:            FormatTime(t.DueDate),
		StartTime:          nullString(formatOptionalTime(t.StartTime)),
		EndTime:            nullString(formatOptionalTime(t.EndTime)),
		NotificationConfig: nullString(encodeNotification(t.Notification)),
		Image:              nullIfEmpty(t.Image),
		ProjectID:          t.ProjectID,
		Order:              t.Order,
		Completed:          boolToInt(t.Completed),
		CreatedAt:          FormatTime(t.CreatedAt),
	}
}

// TaskFromRow decodes a tasks row. ok is false when the row is not a valid
// task.
func TaskFromRow(r TaskRow) (types.Task, bool) {
	due, ok := ParseTime(r.DueDate)
	if !ok {
		return types.Task{}, false
	}
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Task{}, false
	}
	start, ok := parseOptionalTime(stringPtr(r.StartTime))
	if !ok {
		return types.Task{}, false
	}
	end, ok := parseOptionalTime(stringPtr(r.EndTime))
	if !ok {
		return types.Task{}, false
	}
	n, ok := decodeNotification(stringPtr(r.NotificationConfig))
	if !ok {
		return types.Task{}, false
	}
	t := types.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description.String,
		DueDate:      due,
		StartTime:    start,
		EndTime:      end,
		Notification: n,
		Image:        r.Image.String,
		ProjectID:    r.ProjectID,
		Order:        r.Order,
		Completed:    r.Completed != 0,
		CreatedAt:    createdAt,
	}
	if t.Validate() != nil {
		return types.Task{}, false
	}
	return t, true
}

// NoteToRow converts n to a notes row.
func NoteToRow(n types.Note) NoteRow {
	return NoteRow{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		Protected:    boolToInt(n.Protected),
		PasswordHash: nullIfEmpty(n.PasswordHash),
		CreatedAt:    FormatTime(n.CreatedAt),
		ModifiedAt:   FormatTime(n.ModifiedAt),
	}
}

// NoteFromRow decodes a notes row. ok is false when the row is not a valid
// note.
func NoteFromRow(r NoteRow) (types.Note, bool) {
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Note{}, false
	}
	modifiedAt, ok := ParseTime(r.ModifiedAt)
	if !ok {
		return types.Note{}, false
	}
	n := types.Note{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		Protected:    r.Protected != 0,
		PasswordHash: r.PasswordHash.String,
		CreatedAt:    createdAt,
		ModifiedAt:   modifiedAt,
	}
	if n.Validate() != nil {
		return types.Note{}, false
	}
	return n, true
}
