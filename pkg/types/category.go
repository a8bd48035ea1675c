package types

import "time"

// Category groups projects. Categories are referenced by projects and cannot
// be deleted while a project points at them.
type Category struct {
	ID        string    `validate:"required"` // UUID v7, generated on creation.
	Name      string    `validate:"required"` // Display name.
	Color     string    `validate:"required"` // Display color, e.g. "#2196f3".
	Icon      string    `validate:"required"` // Symbolic icon name.
	CreatedAt time.Time `validate:"required"` // Timestamp of creation.
}

// CategoryInput holds the caller-supplied fields for a new category.
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
}

// CategoryPatch lists the category fields an update may change.
type CategoryPatch struct {
	Name  Field[string]
	Color Field[string]
	Icon  Field[string]
}

// ApplyTo merges the patch onto c.
func (p CategoryPatch) ApplyTo(c *Category) {
	p.Name.Apply(&c.Name)
	p.Color.Apply(&c.Color)
	p.Icon.Apply(&c.Icon)
}
