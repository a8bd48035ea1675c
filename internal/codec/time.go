// Package codec maps entities to and from their two stored shapes: fallback
// records (camelCase JSON objects in the key-value store) and relational rows
// (snake_case columns in SQLite).
//
// Decoders never return errors. A record that cannot be turned into a valid
// entity decodes to ok == false and the caller drops it, since stores may hold
// entries written by older clients.
package codec

import (
	"database/sql"
	"time"
)

// TimeLayout is the ISO-8601 layout used for every stored timestamp. The
// fraction is fixed width so stored strings sort chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Any RFC 3339 timestamp is accepted,
// with or without fractional seconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// parseOptionalTime returns (nil, true) for an absent value and (nil, false)
// for a present value that does not parse.
func parseOptionalTime(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	t, ok := ParseTime(*s)
	if !ok {
		return nil, false
	}
	return &t, true
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
