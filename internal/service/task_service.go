package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// TaskService is the external task-mutation surface. Every successful
// mutation it performs raises the corresponding event, which is what feeds
// the dispatch engine. The engine's own action-driven mutations bypass this
// service so cascades stay under the engine's control.
type TaskService interface {
	// CreateTask persists a new task.
	CreateTask(ctx context.Context, projectID uuid.UUID, title, status string) (*domain.Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// UpdateStatus sets a task's status and raises a task_status_change
	// event when the status actually changed.
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status string) (*domain.Task, error)

	// AssignTask sets or clears a task's assignee and raises a
	// task_assigned event. Unassignment (nil assignee) still raises the
	// event; the engine declines to fire assignment rules for it.
	AssignTask(ctx context.Context, taskID uuid.UUID, assignee *uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks   store.TaskStore
	emitter events.Emitter
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	emitter events.Emitter,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &taskServiceImpl{
		tasks:   tasks,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	projectID uuid.UUID,
	title, status string,
) (*domain.Task, error) {
	task, err := domain.NewTask(projectID, title, status)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, &TaskServiceError{Operation: "create", Message: "failed to save task", Err: err}
	}

	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, taskID)
}

// UpdateStatus implements TaskService.UpdateStatus
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	before, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.UpdateStatus(ctx, taskID, status)
	if err != nil {
		return nil, &TaskServiceError{Operation: "update status", Message: "failed to save task", Err: err}
	}

	if before.Status != task.Status {
		event := domain.NewStatusChangeEvent(task.ID, task.ProjectID, before.Status, task.Status)
		if err := s.emitter.Emit(ctx, event); err != nil {
			// The mutation stuck; automation failures must not undo it or
			// surface to the caller.
			log.Error("failed to dispatch status change event",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()))
		}
	}

	return task, nil
}

// AssignTask implements TaskService.AssignTask
func (s *taskServiceImpl) AssignTask(
	ctx context.Context,
	taskID uuid.UUID,
	assignee *uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	before, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.UpdateAssignee(ctx, taskID, assignee)
	if err != nil {
		return nil, &TaskServiceError{Operation: "assign", Message: "failed to save task", Err: err}
	}

	event := domain.NewAssignmentEvent(task.ID, task.ProjectID, before.Assignee, task.Assignee)
	if err := s.emitter.Emit(ctx, event); err != nil {
		log.Error("failed to dispatch assignment event",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
	}

	return task, nil
}
