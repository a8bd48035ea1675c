package types

import "time"

// Note is a standalone text note that may be protected by a password. Only a
// digest of the password is stored.
type Note struct {
	ID           string    `validate:"required"` // UUID v7, generated on creation.
	Title        string    `validate:"required"` // Display title.
	Content      string    // Body text.
	Protected    bool      // True iff PasswordHash is set.
	PasswordHash string    // Password digest; empty when unprotected.
	CreatedAt    time.Time `validate:"required"` // Timestamp of creation.
	ModifiedAt   time.Time `validate:"required"` // Bumped on every update.
}

// NoteInput holds the caller-supplied fields for a new note. The password is
// passed separately to the repository.
type NoteInput struct {
	Title   string
	Content string
}

// NotePatch lists the note fields an update may change. Password is never
// stored: a non-empty value protects the note with its digest, an empty value
// removes protection.
type NotePatch struct {
	Title    Field[string]
	Content  Field[string]
	Password Field[string]
}
