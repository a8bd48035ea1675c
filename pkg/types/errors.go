package types

import "errors"

// Lookup and invariant errors returned by repositories. Callers are expected
// to handle these as ordinary outcomes.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrReferentialConflict = errors.New("entity is referenced by another entity")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidID           = errors.New("invalid entity ID")
	ErrInvalidData         = errors.New("invalid entity data")
)

// Storage errors.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnsupported        = errors.New("relational store not supported on this platform")
	ErrNotInitialized     = errors.New("storage not initialized")
)

// ErrMalformedRecord marks a stored record that fails decoding. Backends drop
// such records during reads; the error never leaves the storage layer.
var ErrMalformedRecord = errors.New("malformed record")
