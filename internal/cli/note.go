package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// errWrongPassword is returned when a protected note does not open.
var errWrongPassword = fmt.Errorf("%w: wrong password", errUsage)

func (s *session) newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage notes",
	}
	cmd.AddCommand(
		s.newNoteListCmd(),
		s.newNoteAddCmd(),
		s.newNoteShowCmd(),
		s.newNoteUpdateCmd(),
		s.newNoteDeleteCmd(),
	)
	return cmd
}

func (s *session) newNoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently changed first",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			ns, err := app.Notes.GetAll(ctx)
			if err != nil {
				return err
			}
			return s.emit(cmd, noteViews(ns), func(w io.Writer) error {
				rows := [][]string{{"ID", "LOCKED", "MODIFIED", "TITLE"}}
				for _, n := range ns {
					locked := ""
					if n.Protected {
						locked = "yes"
					}
					rows = append(rows, []string{n.ID, locked, shortTime(n.ModifiedAt), n.Title})
				}
				return table(w, rows)
			})
		}),
	}
}

func (s *session) newNoteAddCmd() *cobra.Command {
	var (
		content  string
		password string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a note, optionally protected by a password",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			n, err := app.Notes.Create(ctx, types.NoteInput{Title: args[0], Content: content}, password)
			if err != nil {
				return err
			}
			return s.done(cmd, "created note", n.ID)
		}),
	}
	cmd.Flags().StringVar(&content, "content", "", "note body")
	cmd.Flags().StringVar(&password, "password", "", "protect the note with this password")
	return cmd
}

func (s *session) newNoteShowCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note, unlocking it when protected",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			n, ok, err := app.Notes.Unlock(ctx, args[0], password)
			if err != nil {
				return err
			}
			if !ok {
				return errWrongPassword
			}
			return s.emit(cmd, noteView(n, true), func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\n\n%s\n", n.Title, n.Content)
				return err
			})
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "password of a protected note")
	return cmd
}

func (s *session) newNoteUpdateCmd() *cobra.Command {
	var title, content, password, newPassword string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a note; --new-password \"\" removes protection",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if _, ok, err := app.Notes.Unlock(ctx, args[0], password); err != nil {
				return err
			} else if !ok {
				return errWrongPassword
			}
			var patch types.NotePatch
			if cmd.Flags().Changed("title") {
				patch.Title = types.Some(title)
			}
			if cmd.Flags().Changed("content") {
				patch.Content = types.Some(content)
			}
			if cmd.Flags().Changed("new-password") {
				patch.Password = types.Some(newPassword)
			}
			n, err := app.Notes.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			return s.done(cmd, "updated note", n.ID)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new body")
	cmd.Flags().StringVar(&password, "password", "", "current password of a protected note")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password")
	return cmd
}

func (s *session) newNoteDeleteCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if _, ok, err := app.Notes.Unlock(ctx, args[0], password); err != nil {
				return err
			} else if !ok {
				return errWrongPassword
			}
			if err := app.Notes.Delete(ctx, args[0]); err != nil {
				return err
			}
			return s.done(cmd, "deleted note", args[0])
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "password of a protected note")
	return cmd
}
