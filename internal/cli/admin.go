package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
)

// storeStatus describes the open stores.
type storeStatus struct {
	DataDir string `json:"dataDir"`
	Backend string `json:"backend"`
	Primary bool   `json:"primary"`
}

func (s *session) status(app *agenda.App) (storeStatus, error) {
	opts, err := s.options()
	if err != nil {
		return storeStatus{}, err
	}
	st := storeStatus{DataDir: opts.DataDir, Backend: "jsonl", Primary: app.IsUsingPrimary()}
	if st.Primary {
		st.Backend = "sqlite"
	}
	return st, nil
}

func (s *session) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and seed default categories",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			st, err := s.status(app)
			if err != nil {
				return err
			}
			return s.emit(cmd, st, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "initialized %s (%s)\n", st.DataDir, st.Backend)
				return err
			})
		}),
	}
}

func (s *session) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the fallback store into the SQLite database",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			n, err := app.Sync(ctx)
			if err != nil {
				return err
			}
			return s.emit(cmd, map[string]int{"synced": n}, func(w io.Writer) error {
				if !app.IsUsingPrimary() {
					_, err := fmt.Fprintln(w, "SQLite unavailable; nothing synced")
					return err
				}
				_, err := fmt.Fprintf(w, "synced %d records\n", n)
				return err
			})
		}),
	}
}

func (s *session) newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and seed the default categories again",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("%w: reset deletes all data; pass --yes to confirm", errUsage)
			}
			return nil
		},
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			if err := app.ResetAll(ctx); err != nil {
				return err
			}
			st, err := s.status(app)
			if err != nil {
				return err
			}
			return s.done(cmd, "reset", st.DataDir)
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}

func (s *session) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store status and the storage counters of this run",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			st, err := s.status(app)
			if err != nil {
				return err
			}
			counters, err := s.counters()
			if err != nil {
				return err
			}
			out := struct {
				storeStatus
				Counters map[string]float64 `json:"counters"`
			}{st, counters}
			return s.emit(cmd, out, func(w io.Writer) error {
				rows := [][]string{
					{"data dir", st.DataDir},
					{"backend", st.Backend},
				}
				keys := make([]string, 0, len(counters))
				for k := range counters {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					rows = append(rows, []string{k, fmt.Sprintf("%g", counters[k])})
				}
				return table(w, rows)
			})
		}),
	}
}

// counters flattens the gathered counter families into name{labels} keys.
func (s *session) counters() (map[string]float64, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}
			out[key] = m.GetCounter().GetValue()
		}
	}
	return out, nil
}
