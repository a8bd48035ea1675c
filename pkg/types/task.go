package types

import "time"

// Task is a unit of work inside a project. Order defines the display
// sequence within the project and is not required to be contiguous.
type Task struct {
	ID           string        `validate:"required"` // UUID v7, generated on creation.
	Title        string        `validate:"required"` // Display title.
	Description  string        // Free text, may be empty.
	DueDate      time.Time     `validate:"required"` // Deadline.
	StartTime    *time.Time    // Optional start of the work window.
	EndTime      *time.Time    // Optional end of the work window; after StartTime.
	Notification *Notification // Optional reminder.
	Image        string        // Optional opaque image payload (base64 or URI).
	ProjectID    string        `validate:"required"` // Soft reference to a Project.
	Order        int           `validate:"gte=0"`    // Position within the project.
	Completed    bool          // Completion flag.
	CreatedAt    time.Time     `validate:"required"` // Timestamp of creation.
}

// TaskInput holds the caller-supplied fields for a new task. Order and
// Completed are assigned by the repository.
type TaskInput struct {
	Title        string
	Description  string
	DueDate      time.Time
	StartTime    *time.Time
	EndTime      *time.Time
	Notification *Notification
	Image        string
	ProjectID    string
}

// TaskPatch lists the task fields an update may change. Optional fields are
// cleared by setting them to nil or "".
type TaskPatch struct {
	Title        Field[string]
	Description  Field[string]
	DueDate      Field[time.Time]
	StartTime    Field[*time.Time]
	EndTime      Field[*time.Time]
	Notification Field[*Notification]
	Image        Field[string]
	ProjectID    Field[string]
	Order        Field[int]
	Completed    Field[bool]
}

// ApplyTo merges the patch onto t.
func (p TaskPatch) ApplyTo(t *Task) {
	p.Title.Apply(&t.Title)
	p.Description.Apply(&t.Description)
	p.DueDate.Apply(&t.DueDate)
	p.StartTime.Apply(&t.StartTime)
	p.EndTime.Apply(&t.EndTime)
	p.Notification.Apply(&t.Notification)
	p.Image.Apply(&t.Image)
	p.ProjectID.Apply(&t.ProjectID)
	p.Order.Apply(&t.Order)
	p.Completed.Apply(&t.Completed)
}

// IsOverdue reports whether the task is open and its due day is before the
// day of now. Days are compared in now's location.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	return startOfDay(t.DueDate.In(now.Location())).Before(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
