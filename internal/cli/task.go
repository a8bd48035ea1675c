package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/agenda/pkg/agenda"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

func (s *session) newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		s.newTaskListCmd(),
		s.newTaskAddCmd(),
		s.newTaskUpdateCmd(),
		s.newTaskToggleCmd("done", true),
		s.newTaskToggleCmd("undo", false),
		s.newTaskMoveCmd(),
		s.newTaskReorderCmd(),
		s.newTaskDeleteCmd(),
	)
	return cmd
}

func (s *session) newTaskListCmd() *cobra.Command {
	var (
		projectID string
		overdue   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, _ []string) error {
			var (
				ts  []types.Task
				err error
			)
			switch {
			case overdue:
				ts, err = app.Tasks.Overdue(ctx, time.Now())
			case projectID != "":
				ts, err = app.Tasks.GetByProject(ctx, projectID)
			default:
				ts, err = app.Tasks.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			if overdue && projectID != "" {
				filtered := ts[:0]
				for _, t := range ts {
					if t.ProjectID == projectID {
						filtered = append(filtered, t)
					}
				}
				ts = filtered
			}
			return s.emit(cmd, taskViews(ts), func(w io.Writer) error {
				rows := [][]string{{"ID", "ORDER", "DONE", "DUE", "TITLE"}}
				for _, t := range ts {
					done := " "
					if t.Completed {
						done = "x"
					}
					rows = append(rows, []string{t.ID, strconv.Itoa(t.Order), done, shortTime(t.DueDate), t.Title})
				}
				return table(w, rows)
			})
		}),
	}
	cmd.Flags().StringVar(&projectID, "project", "", "only tasks of this project")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "only open tasks due before today")
	return cmd
}

// taskFlags are the optional task fields shared by add and update.
type taskFlags struct {
	description  string
	due          string
	start        string
	end          string
	notification string
	image        string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.due, "due", "", "due date")
	cmd.Flags().StringVar(&f.start, "start", "", "start of the work window")
	cmd.Flags().StringVar(&f.end, "end", "", "end of the work window")
	cmd.Flags().StringVar(&f.notification, "notify", "", "reminder: 30min, 1hour, 1day, none or a date")
	cmd.Flags().StringVar(&f.image, "image", "", "image payload or URI")
}

func (s *session) newTaskAddCmd() *cobra.Command {
	var (
		f         taskFlags
		projectID string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task at the end of a project",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			in := types.TaskInput{
				Title:       args[0],
				Description: f.description,
				Image:       f.image,
				ProjectID:   projectID,
			}
			var err error
			if in.DueDate, err = parseDate(f.due); err != nil {
				return err
			}
			if in.StartTime, err = parseOptionalDate(f.start); err != nil {
				return err
			}
			if in.EndTime, err = parseOptionalDate(f.end); err != nil {
				return err
			}
			if in.Notification, err = parseNotification(f.notification); err != nil {
				return err
			}
			t, err := app.Tasks.Create(ctx, in)
			if err != nil {
				return err
			}
			return s.done(cmd, "created task", t.ID)
		}),
	}
	f.register(cmd)
	cmd.Flags().StringVar(&projectID, "project", "", "project id (required)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func (s *session) newTaskUpdateCmd() *cobra.Command {
	var (
		f     taskFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task; an empty value clears an optional field",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				patch.Title = types.Some(title)
			}
			t, err := app.Tasks.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			return s.done(cmd, "updated task", t.ID)
		}),
	}
	f.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "new title")
	return cmd
}

// patch builds a TaskPatch from the flags the user set.
func (f *taskFlags) patch(cmd *cobra.Command) (types.TaskPatch, error) {
	var p types.TaskPatch
	changed := cmd.Flags().Changed
	if changed("description") {
		p.Description = types.Some(f.description)
	}
	if changed("image") {
		p.Image = types.Some(f.image)
	}
	if changed("due") {
		due, err := parseDate(f.due)
		if err != nil {
			return p, err
		}
		p.DueDate = types.Some(due)
	}
	if changed("start") {
		start, err := parseOptionalDate(f.start)
		if err != nil {
			return p, err
		}
		p.StartTime = types.Some(start)
	}
	if changed("end") {
		end, err := parseOptionalDate(f.end)
		if err != nil {
			return p, err
		}
		p.EndTime = types.Some(end)
	}
	if changed("notify") {
		n, err := parseNotification(f.notification)
		if err != nil {
			return p, err
		}
		p.Notification = types.Some(n)
	}
	return p, nil
}

func (s *session) newTaskToggleCmd(use string, completed bool) *cobra.Command {
	short := "Mark a task completed"
	if !completed {
		short = "Mark a task open again"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			t, err := app.Tasks.ToggleCompleted(ctx, args[0], completed)
			if err != nil {
				return err
			}
			if completed {
				return s.done(cmd, "completed task", t.ID)
			}
			return s.done(cmd, "reopened task", t.ID)
		}),
	}
}

func (s *session) newTaskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <project-id>",
		Short: "Move a task to the end of another project",
		Args:  cobra.ExactArgs(2),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			t, err := app.Tasks.MoveToProject(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return s.done(cmd, "moved task", t.ID)
		}),
	}
}

func (s *session) newTaskReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <project-id> <task-id>...",
		Short: "Set the order of a project's tasks to the listed sequence",
		Args:  cobra.MinimumNArgs(2),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if err := app.Tasks.Reorder(ctx, args[0], args[1:]); err != nil {
				return err
			}
			return s.done(cmd, fmt.Sprintf("reordered %d tasks in project", len(args)-1), args[0])
		}),
	}
}

func (s *session) newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: s.withApp(func(ctx context.Context, cmd *cobra.Command, app *agenda.App, args []string) error {
			if err := app.Tasks.Delete(ctx, args[0]); err != nil {
				return err
			}
			return s.done(cmd, "deleted task", args[0])
		}),
	}
}
