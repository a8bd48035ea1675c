// Package sqlite implements the embedded relational store: the four entity
// tables in a single SQLite file, opened through sqlx on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Probe reports whether the relational engine can run on this platform.
type Probe func() bool

// Supported is the default probe. The engine is pure Go, so it is always
// available; configuration can still disable the store.
func Supported() bool { return true }

// Options configures a Store.
type Options struct {
	// Dir holds the database file. It is created on Initialize.
	Dir     string
	Probe   Probe
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Store is the embedded relational store. Every method is safe to call
// before Initialize or after Close; reads then return nothing and writes
// report types.ErrStorageUnavailable.
type Store struct {
	dir     string
	probe   Probe
	log     *zap.Logger
	metrics *metrics.Metrics

	mu sync.RWMutex
	db *sqlx.DB
}

// New returns an uninitialized store.
func New(opts Options) *Store {
	probe := opts.Probe
	if probe == nil {
		probe = Supported
	}
	return &Store{
		dir:     opts.Dir,
		probe:   probe,
		log:     logging.OrNop(opts.Logger).Named("sqlite"),
		metrics: opts.Metrics,
	}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DBFile)
}

// Initialize opens or creates the database, creates missing tables and
// indexes, then applies additive migrations. It returns types.ErrUnsupported
// when the probe fails. Calling it on an open store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	if !s.probe() {
		return types.ErrUnsupported
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", types.ErrStorageUnavailable, s.dir, err)
	}
	db, err := sqlx.Open(driverName, s.Path())
	if err != nil {
		return fmt.Errorf("%w: opening database: %v", types.ErrStorageUnavailable, err)
	}
	// One connection serializes writers and keeps PRAGMAs consistent.
	db.SetMaxOpenConns(1)

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	s.migrate(ctx, db)

	s.db = db
	s.log.Debug("relational store ready", zap.String("path", s.Path()))
	return nil
}

func createSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// migrate applies each additive migration. Failures other than an already
// present column are logged and skipped.
func (s *Store) migrate(ctx context.Context, db *sqlx.DB) {
	for _, m := range migrations {
		_, err := db.ExecContext(ctx, m.stmt)
		if err == nil || isDuplicateColumn(err) {
			continue
		}
		s.log.Warn("migration failed", zap.String("migration", m.name), zap.Error(err))
	}
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}

// IsAvailable reports whether the store is open.
func (s *Store) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// Close closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Query runs a read statement and returns each row as a column map. It
// returns no rows when the store is not open.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return []map[string]any{}, nil
	}
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// noResult is returned by Execute when the store is not open.
type noResult struct{}

func (noResult) LastInsertId() (int64, error) { return 0, nil }
func (noResult) RowsAffected() (int64, error) { return 0, nil }

// Execute runs a write statement. It does nothing when the store is not
// open.
func (s *Store) Execute(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return noResult{}, nil
	}
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("executing: %w", err)
	}
	return res, nil
}

// withDB runs fn with the open database under the read lock.
func (s *Store) withDB(fn func(db *sqlx.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return types.ErrStorageUnavailable
	}
	return fn(s.db)
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return s.withDB(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: beginning transaction: %v", types.ErrStorageUnavailable, err)
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: committing: %v", types.ErrStorageUnavailable, err)
		}
		return nil
	})
}
