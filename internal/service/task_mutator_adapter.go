package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/automation"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskMutatorAdapter adapts a store.TaskStore to the automation.TaskMutator
// interface the action executor depends on. Crucially it writes straight to
// the store and raises no events: cascaded events are synthesized by the
// dispatch engine itself so the execution context (depth, fired rules) is
// inherited rather than reset.
type TaskMutatorAdapter struct {
	tasks store.TaskStore
}

// NewTaskMutatorAdapter creates a new adapter wrapping the given task store.
func NewTaskMutatorAdapter(tasks store.TaskStore) *TaskMutatorAdapter {
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	return &TaskMutatorAdapter{tasks: tasks}
}

// Ensure TaskMutatorAdapter implements automation.TaskMutator
var _ automation.TaskMutator = (*TaskMutatorAdapter)(nil)

// UpdateStatus implements automation.TaskMutator.UpdateStatus
func (a *TaskMutatorAdapter) UpdateStatus(
	ctx context.Context,
	taskID uuid.UUID,
	newStatus string,
) (*domain.Task, error) {
	return a.tasks.UpdateStatus(ctx, taskID, newStatus)
}

// GetAssignee implements automation.TaskMutator.GetAssignee
func (a *TaskMutatorAdapter) GetAssignee(
	ctx context.Context,
	taskID uuid.UUID,
) (*uuid.UUID, error) {
	task, err := a.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task.Assignee, nil
}
