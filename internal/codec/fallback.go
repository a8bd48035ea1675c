package codec

import (
	"encoding/json"

	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Fallback record structures. Field names match the entity field names in
// camelCase; timestamps are ISO-8601 strings.

// CategoryRecord is a category in the categories collection.
type CategoryRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	CreatedAt string `json:"createdAt"`
}

// ProjectRecord is a project in the projects collection.
type ProjectRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CategoryID  string `json:"categoryId"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// TaskRecord is a task in the tasks collection.
type TaskRecord struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	DueDate      string              `json:"dueDate"`
	StartTime    *string             `json:"startTime,omitempty"`
	EndTime      *string             `json:"endTime,omitempty"`
	Notification *NotificationRecord `json:"notification,omitempty"`
	Image        string              `json:"image,omitempty"`
	ProjectID    string              `json:"projectId"`
	Order        int                 `json:"order"`
	Completed    flexBool            `json:"completed"`
	CreatedAt    string              `json:"createdAt"`
}

// NoteRecord is a note in the notes collection.
type NoteRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Protected    flexBool `json:"protected"`
	PasswordHash string   `json:"passwordHash,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	ModifiedAt   string   `json:"modifiedAt"`
}

// flexBool decodes JSON booleans as well as the 0/1 integers older clients
// wrote for flags.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*b = flexBool(x)
	case float64:
		*b = x != 0
	case nil:
		*b = false
	default:
		return types.ErrMalformedRecord
	}
	return nil
}

// Marshal encodes a record for storage in a collection.
func Marshal(record any) (json.RawMessage, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// RecordID extracts the id field of any stored record. It returns "" when the
// record is not an object or has no string id.
func RecordID(raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// CategoryToRecord converts c to its fallback record.
func CategoryToRecord(c types.Category) CategoryRecord {
	return CategoryRecord{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		CreatedAt: FormatTime(c.CreatedAt),
	}
}

// CategoryFromRecord decodes a fallback record. ok is false when the record
// is not a valid category.
func CategoryFromRecord(raw json.RawMessage) (types.Category, bool) {
	var r CategoryRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Category{}, false
	}
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Category{}, false
	}
	c := types.Category{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		Icon:      r.Icon,
		CreatedAt: createdAt,
	}
	if c.Validate() != nil {
		return types.Category{}, false
	}
	return c, true
}

// ProjectToRecord converts p to its fallback record.
func ProjectToRecord(p types.Project) ProjectRecord {
	return ProjectRecord{
		ID:          p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		CreatedAt:   FormatTime(p.CreatedAt),
	}
}

// ProjectFromRecord decodes a fallback record. ok is false when the record
// is not a valid project.
func ProjectFromRecord(raw json.RawMessage) (types.Project, bool) {
	var r ProjectRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Project{}, false
	}
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Project{}, false
	}
	p := types.Project{
		ID:          r.ID,
		Name:        r.Name,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		CreatedAt:   createdAt,
	}
	if p.Validate() != nil {
		return types.Project{}, false
	}
	return p, true
}

// TaskToRecord converts t to its fallback record.
func TaskToRecord(t types.Task) TaskRecord {
	return TaskRecord{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		DueDate:      FormatTime(t.DueDate),
		StartTime:    formatOptionalTime(t.StartTime),
		EndTime:      formatOptionalTime(t.EndTime),
		Notification: notificationToRecord(t.Notification),
		Image:        t.Image,
		ProjectID:    t.ProjectID,
		Order:        t.Order,
		Completed:    flexBool(t.Completed),
		CreatedAt:    FormatTime(t.CreatedAt),
	}
}

// TaskFromRecord decodes a fallback record. ok is false when the record is
// not a valid task.
func TaskFromRecord(raw json.RawMessage) (types.Task, bool) {
	var r TaskRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Task{}, false
	}
	due, ok := ParseTime(r.DueDate)
	if !ok {
		return types.Task{}, false
	}
	createdAt, ok := ParseTime(r.CreatedAt)
	if !ok {
		return types.Task{}, false
	}
	start, ok := parseOptionalTime(r.StartTime)
	if !ok {
		return types.Task{}, false
	}
	end, ok := parseOptionalTime(r.EndTime)
	if !ok {
		return types.Task{}, false
	}
	n, ok := notificationFromRecord(r.Notification)
	if !ok {
		return types.Task{}, false
	}
	t := types.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      due,
		StartTime:    start,
		EndTime:      end,
		Notification: n,
		Image:        r.Image,
		ProjectID:    r.ProjectID,
		Order:        r.Order,
		Completed:    bool(r.Completed),
		CreatedAt:    createdAt,
	}
	if t.Validate() != nil {
		return types.Task{}, false
	}
	return t, true
}

// NoteToRecord converts n to its fallback record.
func NoteToRecord(n types.Note) NoteRecord {
	return NoteRecord{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		Protected:    flexBool(n.Protected),
		PasswordHash: n.PasswordHash,
		CreatedAt:    FormatTime(n.CreatedAt),
		ModifiedAt:   FormatTime(n.ModifiedAt),
	}
}

// NoteFromRecord decodes a fallback record. ok is false when the record is
// not a valid note.
func NoteFromRecord(raw json.RawMessage) (types.Note, bool) {
	var r NoteRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return types.Note{}, false
	}
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
		Protected:    bool(r.Protected),
		PasswordHash: r.PasswordHash,
		CreatedAt:    createdAt,
		ModifiedAt:   modifiedAt,
	}
	if n.Validate() != nil {
		return types.Note{}, false
	}
	return n, true
}
