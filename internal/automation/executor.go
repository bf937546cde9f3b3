package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// ErrActionFailed is returned when an action's side effect fails, times
// out, or its collaborator is unreachable. The engine isolates these per
// rule: one failing action never blocks sibling rules.
var ErrActionFailed = errors.New("action execution failed")

// TaskMutator is the task-mutation collaborator the executor performs
// status changes and assignee lookups against.
type TaskMutator interface {
	// UpdateStatus sets the task's status and returns the updated task.
	UpdateStatus(ctx context.Context, taskID uuid.UUID, newStatus string) (*domain.Task, error)

	// GetAssignee returns the task's current assignee, or nil if the task
	// is unassigned.
	GetAssignee(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error)
}

// Notifier is the notification collaborator. Fire-and-forget from the
// engine's viewpoint: failures are logged, not propagated to users.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, message string) error
}

// BadgeAwarder is the badge/achievement collaborator. A deployment may not
// have one at all, in which case assign_badge actions are logged no-ops.
type BadgeAwarder interface {
	Award(ctx context.Context, userID uuid.UUID, badgeType string) error
}

// ActionResult describes the observable outcome of executing an action.
// StatusChanged tells the engine whether to synthesize a cascaded
// task_status_change event.
type ActionResult struct {
	StatusChanged bool
	OldStatus     string
	NewStatus     string
}

// Executor performs the effects named by matched rules' actions.
type Executor struct {
	tasks    TaskMutator
	notifier Notifier
	badges   BadgeAwarder // nil when the deployment has no badge system
	timeout  time.Duration
	logger   *slog.Logger
}

// NewExecutor creates an Executor. badges may be nil; tasks and notifier
// must not be. Each Execute invocation is bounded by the given timeout.
func NewExecutor(
	tasks TaskMutator,
	notifier Notifier,
	badges BadgeAwarder,
	timeout time.Duration,
	logger *slog.Logger,
) *Executor {
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Executor{
		tasks:    tasks,
		notifier: notifier,
		badges:   badges,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "action_executor")),
	}
}

// Execute performs the given action against the task snapshot. The snapshot
// is the task as loaded at dispatch time; collaborator calls may observe
// fresher state (e.g. the current assignee for notification fallback).
func (e *Executor) Execute(
	ctx context.Context,
	action domain.ActionSpec,
	task *domain.Task,
) (ActionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch action.Type {
	case domain.ActionChangeStatus:
		return e.changeStatus(ctx, action.ChangeStatus, task)
	case domain.ActionAssignBadge:
		return e.assignBadge(ctx, action.AssignBadge, task)
	case domain.ActionSendNotification:
		return e.sendNotification(ctx, action.Notification, task)
	}

	// The store only hands out rules with valid action types, so this is a
	// programming error, not a data error.
	return ActionResult{}, fmt.Errorf("%w: unknown action type %q", ErrActionFailed, action.Type)
}

func (e *Executor) changeStatus(
	ctx context.Context,
	data *domain.ChangeStatusData,
	task *domain.Task,
) (ActionResult, error) {
	oldStatus := task.Status

	updated, err := e.tasks.UpdateStatus(ctx, task.ID, data.NewStatus)
	if err != nil {
		return ActionResult{}, fmt.Errorf("%w: change_status: %v", ErrActionFailed, err)
	}

	e.logger.Info("task status changed by automation",
		"task_id", task.ID,
		"old_status", oldStatus,
		"new_status", updated.Status)

	return ActionResult{
		StatusChanged: oldStatus != updated.Status,
		OldStatus:     oldStatus,
		NewStatus:     updated.Status,
	}, nil
}

func (e *Executor) assignBadge(
	ctx context.Context,
	data *domain.AssignBadgeData,
	task *domain.Task,
) (ActionResult, error) {
	if e.badges == nil {
		e.logger.Info("badge collaborator absent, skipping award",
			"task_id", task.ID,
			"badge_type", data.BadgeType)
		return ActionResult{}, nil
	}

	assignee, err := e.tasks.GetAssignee(ctx, task.ID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("%w: assign_badge: %v", ErrActionFailed, err)
	}
	if assignee == nil {
		e.logger.Info("task has no assignee, skipping badge award",
			"task_id", task.ID,
			"badge_type", data.BadgeType)
		return ActionResult{}, nil
	}

	if err := e.badges.Award(ctx, *assignee, data.BadgeType); err != nil {
		return ActionResult{}, fmt.Errorf("%w: assign_badge: %v", ErrActionFailed, err)
	}

	e.logger.Info("badge awarded",
		"task_id", task.ID,
		"user_id", *assignee,
		"badge_type", data.BadgeType)
	return ActionResult{}, nil
}

func (e *Executor) sendNotification(
	ctx context.Context,
	data *domain.SendNotificationData,
	task *domain.Task,
) (ActionResult, error) {
	recipient := data.RecipientID
	if recipient == nil {
		assignee, err := e.tasks.GetAssignee(ctx, task.ID)
		if err != nil {
			return ActionResult{}, fmt.Errorf("%w: send_notification: %v", ErrActionFailed, err)
		}
		recipient = assignee
	}

	if recipient == nil {
		e.logger.Info("no resolvable recipient, skipping notification",
			"task_id", task.ID)
		return ActionResult{}, nil
	}

	if err := e.notifier.Notify(ctx, *recipient, data.Message); err != nil {
		return ActionResult{}, fmt.Errorf("%w: send_notification: %v", ErrActionFailed, err)
	}

	e.logger.Info("notification sent",
		"task_id", task.ID,
		"recipient_id", *recipient)
	return ActionResult{}, nil
}
