package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/internal/codec"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// dateLayouts are the accepted forms of date arguments, tried in order.
// Forms without a zone are read in the local time zone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate parses a date or date-time argument.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q (use YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)", errUsage, s)
}

// parseOptionalDate returns nil for an empty argument.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseNotification accepts an offset kind (30min, 1hour, 1day) or a date
// for a custom reminder. "none" and "" mean no reminder.
func parseNotification(s string) (*types.Notification, error) {
	if s == "" || s == "none" {
		return nil, nil
	}
	if kind, err := types.ParseNotificationKind(s); err == nil && kind != types.NotifyCustom {
		return types.NotifyBefore(kind), nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: notification must be 30min, 1hour, 1day, none or a date", errUsage)
	}
	return types.NotifyAt(t), nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// table writes aligned rows; the first row is the header.
func table(w io.Writer, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// shortTime formats t for tables in the local time zone.
func shortTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// emit prints v as JSON in --json mode and calls text otherwise.
func (s *session) emit(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	if s.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return text(cmd.OutOrStdout())
}

// done prints a one-line confirmation, or {"id": ...} in --json mode.
func (s *session) done(cmd *cobra.Command, msg, id string) error {
	if s.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": id, "status": msg})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msg, id)
	return err
}

// JSON views reuse the fallback record encoding so CLI output matches the
// files on disk.

func categoryViews(cs []types.Category) []codec.CategoryRecord {
	out := make([]codec.CategoryRecord, 0, len(cs))
	for _, c := range cs {
		out = append(out, codec.CategoryToRecord(c))
	}
	return out
}

func projectViews(ps []types.Project) []codec.ProjectRecord {
	out := make([]codec.ProjectRecord, 0, len(ps))
	for _, p := range ps {
		out = append(out, codec.ProjectToRecord(p))
	}
	return out
}

func taskViews(ts []types.Task) []codec.TaskRecord {
	out := make([]codec.TaskRecord, 0, len(ts))
	for _, t := range ts {
		out = append(out, codec.TaskToRecord(t))
	}
	return out
}

// noteView hides the password digest and, for protected notes, the content.
func noteView(n types.Note, reveal bool) codec.NoteRecord {
	r := codec.NoteToRecord(n)
	r.PasswordHash = ""
	if n.Protected && !reveal {
		r.Content = ""
	}
	return r
}

func noteViews(ns []types.Note) []codec.NoteRecord {
	out := make([]codec.NoteRecord, 0, len(ns))
	for _, n := range ns {
		out = append(out, noteView(n, false))
	}
	return out
}
