package types

import "errors"

// Config selects the storage backends and where they keep their files.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// Supported backend names. BackendSQLite makes the relational store
// authoritative when the platform supports it; BackendJSONL pins the fallback
// store. The fallback store is written in both modes.
const (
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendJSONL:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// PrimaryEnabled reports whether the relational store should be attempted.
func (c Config) PrimaryEnabled() bool {
	return c.Backend == BackendSQLite
}
