// Package kvstore implements the fallback key-value store: named collections
// of JSON records kept as JSONL files, plus single JSON values under plain
// keys, all inside one data directory.
//
// Collections live in <name>.jsonl and keys in <name>.json. Every write
// replaces the whole file atomically, so a crash leaves either the old or the
// new contents.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/mesh-intelligence/agenda/pkg/types"
)

const (
	collectionExt = ".jsonl"
	keyExt        = ".json"
	maxLineSize   = 32 << 20
)

// ErrInvalidKey is returned for collection or key names outside [a-z0-9_-]+.
var ErrInvalidKey = errors.New("invalid key name")

var namePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Store is the fallback key-value store. It is safe for concurrent use.
type Store struct {
	dir string

	mu          sync.Mutex
	initialized bool
}

// New returns a store rooted at dir. Nothing touches the filesystem until
// Init.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the store files.
func (s *Store) Dir() string { return s.dir }

// Init creates the data directory. It is idempotent; a failed Init is
// retried by the next call.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked()
}

func (s *Store) initLocked() error {
	if s.initialized {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", types.ErrStorageUnavailable, s.dir, err)
	}
	s.initialized = true
	return nil
}

// GetCollection returns the records stored under name, or an empty slice
// when the collection has never been written.
func (s *Store) GetCollection(name string) ([]json.RawMessage, error) {
	path, err := s.path(name, collectionExt)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return nil, err
	}
	records, err := readJSONL(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return records, nil
}

// SetCollection replaces the collection with records.
func (s *Store) SetCollection(name string, records []json.RawMessage) error {
	path, err := s.path(name, collectionExt)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return err
	}
	if err := writeJSONL(path, records); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

// UpdateCollection reads the collection, passes it to fn and writes back
// the result, holding the store lock throughout.
func (s *Store) UpdateCollection(name string, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	path, err := s.path(name, collectionExt)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return err
	}
	records, err := readJSONL(path)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	if err := writeJSONL(path, updated); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

// Get decodes the value stored under key into dst. It reports false when
// the key is absent.
func (s *Store) Get(key string, dst any) (bool, error) {
	path, err := s.path(key, keyExt)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return false, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: reading %s: %v", types.ErrStorageUnavailable, key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, types.ErrMalformedRecord)
	}
	return true, nil
}

// Set stores the JSON encoding of v under key.
func (s *Store) Set(key string, v any) error {
	path, err := s.path(key, keyExt)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(); err != nil {
		return err
	}
	if err := writeJSON(path, v); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	path, err := s.path(key, keyExt)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %v", types.ErrStorageUnavailable, key, err)
	}
	return nil
}

// Clear removes every collection and key. Other files in the directory are
// left alone.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: listing %s: %v", types.ErrStorageUnavailable, s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != collectionExt && ext != keyExt {
			continue
		}
		if !namePattern.MatchString(e.Name()[:len(e.Name())-len(ext)]) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: removing %s: %v", types.ErrStorageUnavailable, e.Name(), err)
		}
	}
	return nil
}

func (s *Store) path(name, ext string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	return filepath.Join(s.dir, name+ext), nil
}
