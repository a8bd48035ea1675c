package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/agenda/internal/storage"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Tasks is the task repository.
type Tasks struct {
	base
}

// NewTasks returns a task repository over sel.
func NewTasks(sel *storage.Selector, opts ...Option) *Tasks {
	return &Tasks{base: newBase(sel, opts)}
}

func taskID(t types.Task) string { return t.ID }

// GetAll returns every task sorted by order.
func (r *Tasks) GetAll(ctx context.Context) ([]types.Task, error) {
	return r.sel.Reader().Tasks(ctx)
}

// GetByID returns the task with id or types.ErrNotFound.
func (r *Tasks) GetByID(ctx context.Context, id string) (types.Task, error) {
	ts, err := r.GetAll(ctx)
	if err != nil {
		return types.Task{}, err
	}
	t, ok := findByID(ts, id, taskID)
	if !ok {
		return types.Task{}, notFound("task", id)
	}
	return t, nil
}

// GetByProject returns the tasks of one project in ascending order.
func (r *Tasks) GetByProject(ctx context.Context, projectID string) ([]types.Task, error) {
	return r.sel.Reader().TasksByProject(ctx, projectID)
}

// Exists reports whether a task with id exists.
func (r *Tasks) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return existsResult(err)
}

// Overdue returns the open tasks whose due day is before the day of now.
func (r *Tasks) Overdue(ctx context.Context, now time.Time) ([]types.Task, error) {
	ts, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := ts[:0]
	for _, t := range ts {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// nextOrder returns one past the highest order in the project, or 0 for an
// empty project.
func (r *Tasks) nextOrder(ctx context.Context, projectID string) (int, error) {
	siblings, err := r.GetByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if len(siblings) == 0 {
		return 0, nil
	}
	max := siblings[0].Order
	for _, s := range siblings[1:] {
		if s.Order > max {
			max = s.Order
		}
	}
	return max + 1, nil
}

// Create stores a new open task at the end of its project.
func (r *Tasks) Create(ctx context.Context, in types.TaskInput) (types.Task, error) {
	t := types.Task{
		ID:           r.newID(),
		Title:        in.Title,
		Description:  in.Description,
		DueDate:      normalizeTime(in.DueDate),
		StartTime:    normalizeTimePtr(in.StartTime),
		EndTime:      normalizeTimePtr(in.EndTime),
		Notification: normalizeNotification(in.Notification),
		Image:        in.Image,
		ProjectID:    in.ProjectID,
		CreatedAt:    r.timestamp(),
	}
	if err := t.Validate(); err != nil {
		return types.Task{}, err
	}
	order, err := r.nextOrder(ctx, t.ProjectID)
	if err != nil {
		return types.Task{}, err
	}
	t.Order = order
	err = r.sel.Write(ctx, func(b storage.Backend) error { return b.Insert(ctx, t) })
	if err != nil {
		return types.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return t, nil
}

// Update merges patch onto the task with id.
func (r *Tasks) Update(ctx context.Context, id string, patch types.TaskPatch) (types.Task, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	patch.ApplyTo(&t)
	t.DueDate = normalizeTime(t.DueDate)
	t.StartTime = normalizeTimePtr(t.StartTime)
	t.EndTime = normalizeTimePtr(t.EndTime)
	t.Notification = normalizeNotification(t.Notification)
	return r.save(ctx, t)
}

func (r *Tasks) save(ctx context.Context, t types.Task) (types.Task, error) {
	if err := t.Validate(); err != nil {
		return types.Task{}, err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error { return b.Put(ctx, t) })
	if err != nil {
		return types.Task{}, fmt.Errorf("saving task: %w", err)
	}
	return t, nil
}

// MoveToProject moves the task to the end of another project.
func (r *Tasks) MoveToProject(ctx context.Context, id, projectID string) (types.Task, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	order, err := r.nextOrder(ctx, projectID)
	if err != nil {
		return types.Task{}, err
	}
	t.ProjectID = projectID
	t.Order = order
	return r.save(ctx, t)
}

// ToggleCompleted sets the completion flag of the task.
func (r *Tasks) ToggleCompleted(ctx context.Context, id string, completed bool) (types.Task, error) {
	return r.Update(ctx, id, types.TaskPatch{Completed: types.Some(completed)})
}

// Reorder sets each listed task's order to its index in ids. Ids that are
// not tasks of the project are ignored, and unlisted tasks keep their order.
func (r *Tasks) Reorder(ctx context.Context, projectID string, ids []string) error {
	tasks, err := r.GetByProject(ctx, projectID)
	if err != nil {
		return err
	}
	byID := make(map[string]types.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var changed []any
	for i, id := range ids {
		t, ok := byID[id]
		if !ok || t.Order == i {
			continue
		}
		t.Order = i
		changed = append(changed, t)
	}
	if len(changed) == 0 {
		return nil
	}
	err = r.sel.Write(ctx, func(b storage.Backend) error { return b.Put(ctx, changed...) })
	if err != nil {
		return fmt.Errorf("reordering tasks: %w", err)
	}
	return nil
}

// Delete removes the task with id.
func (r *Tasks) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	err := r.sel.Write(ctx, func(b storage.Backend) error {
		return b.Delete(ctx, types.CollectionTasks, id)
	})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// DeleteByProject removes every task of one project and returns how many
// were removed.
func (r *Tasks) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	tasks, err := r.sel.Fallback().TasksByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		if err := r.Delete(ctx, t.ID); err != nil {
			return 0, err
		}
	}
	return len(tasks), nil
}

func normalizeNotification(n *types.Notification) *types.Notification {
	if n == nil {
		return nil
	}
	kind := n.Kind
	if k, err := types.ParseNotificationKind(string(kind)); err == nil {
		kind = k
	}
	return &types.Notification{Kind: kind, CustomAt: normalizeTimePtr(n.CustomAt)}
}
