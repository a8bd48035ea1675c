package types

import "time"

// Project belongs to a category and owns tasks. Deleting a project deletes
// its tasks.
type Project struct {
	ID          string    `validate:"required"` // UUID v7, generated on creation.
	Name        string    `validate:"required"` // Display name.
	CategoryID  string    `validate:"required"` // Soft reference to a Category.
	Description string    // Optional; empty means absent.
	CreatedAt   time.Time `validate:"required"` // Timestamp of creation.
}

// ProjectInput holds the caller-supplied fields for a new project.
type ProjectInput struct {
	Name        string
	CategoryID  string
	Description string
}

// ProjectPatch lists the project fields an update may change.
type ProjectPatch struct {
	Name        Field[string]
	CategoryID  Field[string]
	Description Field[string]
}

// ApplyTo merges the patch onto p.
func (pp ProjectPatch) ApplyTo(p *Project) {
	pp.Name.Apply(&p.Name)
	pp.CategoryID.Apply(&p.CategoryID)
	pp.Description.Apply(&p.Description)
}
