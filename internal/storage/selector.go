package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/internal/sqlite"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Selector decides once per session which store is authoritative for reads
// and fans every write out to the relational store (when selected) and the
// fallback store.
type Selector struct {
	primary  *sqlite.Store
	fallback *Fallback
	enabled  bool
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	initialized bool
	usePrimary  bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the selector logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) { s.log = logging.OrNop(l).Named("storage") }
}

// WithMetrics sets the counters the selector increments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// WithPrimaryDisabled pins the fallback store without trying the relational
// store.
func WithPrimaryDisabled() Option {
	return func(s *Selector) { s.enabled = false }
}

// NewSelector returns an uninitialized selector. primary may be nil, which
// behaves like WithPrimaryDisabled.
func NewSelector(primary *sqlite.Store, fallback *Fallback, opts ...Option) *Selector {
	s := &Selector{
		primary:  primary,
		fallback: fallback,
		enabled:  primary != nil,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize prepares the fallback store and then tries the relational
// store. A fallback failure is returned. A relational failure is logged and
// the fallback store stays authoritative until Reset. Initialize on an
// initialized selector does nothing.
func (s *Selector) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	if err := s.fallback.Init(); err != nil {
		return fmt.Errorf("initializing fallback store: %w", err)
	}

	s.usePrimary = false
	if s.enabled && s.primary != nil {
		err := s.primary.Initialize(ctx)
		switch {
		case err == nil:
			s.usePrimary = true
		case errors.Is(err, types.ErrUnsupported):
			s.log.Warn("relational store unsupported, using fallback store")
			s.metrics.Degrade()
		default:
			s.log.Warn("relational store unavailable, using fallback store", zap.Error(err))
			s.metrics.Degrade()
		}
	}
	s.initialized = true
	s.log.Debug("storage initialized", zap.Bool("primary", s.usePrimary))
	return nil
}

// IsUsingPrimary reports whether the relational store is authoritative.
func (s *Selector) IsUsingPrimary() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized && s.usePrimary
}

// Reader returns the authoritative backend.
func (s *Selector) Reader() Backend {
	if s.IsUsingPrimary() {
		return s.primary
	}
	return s.fallback
}

// Fallback returns the fallback backend, which always holds every record.
func (s *Selector) Fallback() *Fallback { return s.fallback }

// Primary returns the relational store, or nil when none was configured.
func (s *Selector) Primary() *sqlite.Store { return s.primary }

// Write applies fn to the relational store when it is authoritative, then
// to the fallback store. Both writes finish before Write returns; the first
// error stops the sequence.
func (s *Selector) Write(ctx context.Context, fn func(Backend) error) error {
	s.mu.RLock()
	initialized, usePrimary := s.initialized, s.usePrimary
	s.mu.RUnlock()
	if !initialized {
		return types.ErrNotInitialized
	}

	if usePrimary {
		if err := fn(s.primary); err != nil {
			return fmt.Errorf("relational store: %w", err)
		}
	}
	if err := fn(s.fallback); err != nil {
		return fmt.Errorf("fallback store: %w", err)
	}
	return nil
}

// SyncFromFallback copies every fallback record into the relational store,
// replacing rows with the same id. It does nothing when the fallback store
// is authoritative and returns the number of records copied. Running it
// twice leaves the relational store unchanged.
func (s *Selector) SyncFromFallback(ctx context.Context) (int, error) {
	if !s.IsUsingPrimary() {
		return 0, nil
	}
	snap, err := s.fallback.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading fallback store: %w", err)
	}
	if err := s.primary.Import(ctx, snap); err != nil {
		return 0, err
	}
	s.metrics.Sync(types.CollectionCategories, len(snap.Categories))
	s.metrics.Sync(types.CollectionProjects, len(snap.Projects))
	s.metrics.Sync(types.CollectionTasks, len(snap.Tasks))
	s.metrics.Sync(types.CollectionNotes, len(snap.Notes))
	s.log.Info("synced fallback store into relational store",
		zap.Int("categories", len(snap.Categories)),
		zap.Int("projects", len(snap.Projects)),
		zap.Int("tasks", len(snap.Tasks)),
		zap.Int("notes", len(snap.Notes)))
	return snap.Len(), nil
}

// Reset closes the relational store and returns the selector to its
// uninitialized state. The next Initialize selects again.
func (s *Selector) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.usePrimary = false
	if s.primary == nil {
		return nil
	}
	if err := s.primary.Close(); err != nil {
		return fmt.Errorf("closing relational store: %w", err)
	}
	return nil
}

// Close releases the relational store.
func (s *Selector) Close() error {
	return s.Reset()
}
