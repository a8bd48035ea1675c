package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Snapshot is the full contents of the four collections.
type Snapshot struct {
	Categories []types.Category
	Projects   []types.Project
	Tasks      []types.Task
	Notes      []types.Note
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Categories) + len(s.Projects) + len(s.Tasks) + len(s.Notes)
}

// Import upserts every record of snap in one transaction. Either all records
// are written or none are. Existing rows not present in snap are kept.
func (s *Store) Import(ctx context.Context, snap Snapshot) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range snap.Categories {
			if err := upsert(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, p := range snap.Projects {
			if err := upsert(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, t := range snap.Tasks {
			if err := upsert(ctx, tx, t); err != nil {
				return err
			}
		}
		for _, n := range snap.Notes {
			if err := upsert(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	s.metrics.Write(metrics.BackendSQLite, metrics.OpPut, snap.Len())
	return nil
}

// Truncate deletes every row from the four tables.
func (s *Store) Truncate(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range types.StandardCollections {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("%w: truncating %s: %v", types.ErrStorageUnavailable, table, err)
			}
		}
		return nil
	})
}
