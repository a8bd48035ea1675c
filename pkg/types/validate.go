package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all entity Validate methods. validator.Validate
// caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(taskStructLevel, Task{})
	v.RegisterStructValidation(noteStructLevel, Note{})
	return v
}

// taskStructLevel enforces the work window and notification invariants.
func taskStructLevel(sl validator.StructLevel) {
	t := sl.Current().Interface().(Task)
	if t.StartTime != nil && t.EndTime != nil && !t.EndTime.After(*t.StartTime) {
		sl.ReportError(t.EndTime, "EndTime", "EndTime", "gtstart", "")
	}
	if t.Notification != nil {
		if err := t.Notification.Validate(); err != nil {
			sl.ReportError(t.Notification, "Notification", "Notification", "notification", string(t.Notification.Kind))
		}
	}
}

// noteStructLevel enforces that Protected is set exactly when a digest is present.
func noteStructLevel(sl validator.StructLevel) {
	n := sl.Current().Interface().(Note)
	if n.Protected && n.PasswordHash == "" {
		sl.ReportError(n.PasswordHash, "PasswordHash", "PasswordHash", "required_if_protected", "")
	}
	if !n.Protected && n.PasswordHash != "" {
		sl.ReportError(n.PasswordHash, "PasswordHash", "PasswordHash", "excluded_unless_protected", "")
	}
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Validate reports whether c satisfies the category invariants.
func (c Category) Validate() error { return check(c) }

// Validate reports whether p satisfies the project invariants.
func (p Project) Validate() error { return check(p) }

// Validate reports whether t satisfies the task invariants: required fields,
// EndTime after StartTime, and a well-formed notification.
func (t Task) Validate() error { return check(t) }

// Validate reports whether n satisfies the note invariants.
func (n Note) Validate() error { return check(n) }
