package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

func (s *session) newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		s.newCategoryListCmd(),
		s.newCategoryAddCmd(),
		s.newCategoryUpdateCmd(),
		s.newCategoryDeleteCmd(),
	)
	return cmd
}

func (s *session) newCategoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			cs, err := app.Categories.GetAll(ctx)
			if err != nil {
				return err
			}
			return s.emit(cmd, categoryViews(cs), func(w io.Writer) error {
				rows := [][]string{{"ID", "NAME", "COLOR", "ICON"}}
				for _, c := range cs {
					rows = append(rows, []string{c.ID, c.Name, c.Color, c.Icon})
				}
				return table(w, rows)
			})
		}),
	}
}

func (s *session) newCategoryAddCmd() *cobra.Command {
	var in types.CategoryInput
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			in.Name = args[0]
			c, err := app.Categories.Create(ctx, in)
			if err != nil {
				return err
			}
			return s.done(cmd, "created category", c.ID)
		}),
	}
	cmd.Flags().StringVar(&in.Color, "color", "#9e9e9e", "display color")
	cmd.Flags().StringVar(&in.Icon, "icon", "folder", "icon name")
	return cmd
}

func (s *session) newCategoryUpdateCmd() *cobra.Command {
	var name, color, icon string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a category",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			var patch types.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = types.Some(name)
			}
			if cmd.Flags().Changed("color") {
				patch.Color = types.Some(color)
			}
			if cmd.Flags().Changed("icon") {
				patch.Icon = types.Some(icon)
			}
			c, err := app.Categories.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			return s.done(cmd, "updated category", c.ID)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new color")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")
	return cmd
}

func (s *session) newCategoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category that no project uses",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if err := app.Categories.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("delete category %s: %w", args[0], err)
			}
			return s.done(cmd, "deleted category", args[0])
		}),
	}
}
