package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

func (s *session) newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		s.newProjectListCmd(),
		s.newProjectAddCmd(),
		s.newProjectUpdateCmd(),
		s.newProjectDeleteCmd(),
	)
	return cmd
}

func (s *session) newProjectListCmd() *cobra.Command {
	var categoryID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			var (
				ps  []types.Project
				err error
			)
			if categoryID != "" {
				ps, err = app.Projects.GetByCategory(ctx, categoryID)
			} else {
				ps, err = app.Projects.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			return s.emit(cmd, projectViews(ps), func(w io.Writer) error {
				rows := [][]string{{"ID", "NAME", "CATEGORY", "DESCRIPTION"}}
				for _, p := range ps {
					rows = append(rows, []string{p.ID, p.Name, p.CategoryID, p.Description})
				}
				return table(w, rows)
			})
		}),
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "only projects of this category")
	return cmd
}

func (s *session) newProjectAddCmd() *cobra.Command {
	var in types.ProjectInput
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			in.Name = args[0]
			p, err := app.Projects.Create(ctx, in)
			if err != nil {
				return err
			}
			return s.done(cmd, "created project", p.ID)
		}),
	}
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "category id (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (s *session) newProjectUpdateCmd() *cobra.Command {
	var name, categoryID, description string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a project",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			var patch types.ProjectPatch
			if cmd.Flags().Changed("name") {
				patch.Name = types.Some(name)
			}
			if cmd.Flags().Changed("category") {
				patch.CategoryID = types.Some(categoryID)
			}
			if cmd.Flags().Changed("description") {
				patch.Description = types.Some(description)
			}
			p, err := app.Projects.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			return s.done(cmd, "updated project", p.ID)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&categoryID, "category", "", "new category id")
	cmd.Flags().StringVar(&description, "description", "", "new description (empty clears it)")
	return cmd
}

func (s *session) newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if err := app.Projects.Delete(ctx, args[0]); err != nil {
				return err
			}
			return s.done(cmd, "deleted project", args[0])
		}),
	}
}
