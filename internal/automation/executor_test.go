package automation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/automation"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// mockTaskMutator implements automation.TaskMutator with function fields.
type mockTaskMutator struct {
	updateStatusFn func(ctx context.Context, taskID uuid.UUID, newStatus string) (*domain.Task, error)
	getAssigneeFn  func(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error)
}

func (m *mockTaskMutator) UpdateStatus(ctx context.Context, taskID uuid.UUID, newStatus string) (*domain.Task, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, taskID, newStatus)
	}
	return &domain.Task{ID: taskID, Status: newStatus}, nil
}

func (m *mockTaskMutator) GetAssignee(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error) {
	if m.getAssigneeFn != nil {
		return m.getAssigneeFn(ctx, taskID)
	}
	return nil, nil
}

// mockNotifier implements automation.Notifier with a function field and a
// record of delivered notifications.
type mockNotifier struct {
	notifyFn  func(ctx context.Context, recipientID uuid.UUID, message string) error
	delivered []notification
}

type notification struct {
	recipientID uuid.UUID
	message     string
}

func (m *mockNotifier) Notify(ctx context.Context, recipientID uuid.UUID, message string) error {
	if m.notifyFn != nil {
		return m.notifyFn(ctx, recipientID, message)
	}
	m.delivered = append(m.delivered, notification{recipientID, message})
	return nil
}

// mockBadgeAwarder implements automation.BadgeAwarder.
type mockBadgeAwarder struct {
	awardFn func(ctx context.Context, userID uuid.UUID, badgeType string) error
	awarded []award
}

type award struct {
	userID    uuid.UUID
	badgeType string
}

func (m *mockBadgeAwarder) Award(ctx context.Context, userID uuid.UUID, badgeType string) error {
	if m.awardFn != nil {
		return m.awardFn(ctx, userID, badgeType)
	}
	m.awarded = append(m.awarded, award{userID, badgeType})
	return nil
}

func newTestExecutor(t *testing.T, tasks *mockTaskMutator, notifier *mockNotifier, badges automation.BadgeAwarder) *automation.Executor {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return automation.NewExecutor(tasks, notifier, badges, time.Second, log)
}

func changeStatusAction(newStatus string) domain.ActionSpec {
	return domain.ActionSpec{
		Type:         domain.ActionChangeStatus,
		ChangeStatus: &domain.ChangeStatusData{NewStatus: newStatus},
	}
}

func TestExecuteChangeStatus(t *testing.T) {
	t.Parallel()

	task := &domain.Task{ID: uuid.New(), ProjectID: uuid.New(), Status: "in_progress"}

	t.Run("reports old and new status on change", func(t *testing.T) {
		t.Parallel()
		tasks := &mockTaskMutator{}
		exec := newTestExecutor(t, tasks, &mockNotifier{}, nil)

		result, err := exec.Execute(context.Background(), changeStatusAction("done"), task)
		require.NoError(t, err)
		assert.True(t, result.StatusChanged)
		assert.Equal(t, "in_progress", result.OldStatus)
		assert.Equal(t, "done", result.NewStatus)
	})

	t.Run("no-op transition reports unchanged", func(t *testing.T) {
		t.Parallel()
		tasks := &mockTaskMutator{}
		exec := newTestExecutor(t, tasks, &mockNotifier{}, nil)

		result, err := exec.Execute(context.Background(), changeStatusAction("in_progress"), task)
		require.NoError(t, err)
		assert.False(t, result.StatusChanged)
	})

	t.Run("store failure wraps ErrActionFailed", func(t *testing.T) {
		t.Parallel()
		tasks := &mockTaskMutator{
			updateStatusFn: func(ctx context.Context, taskID uuid.UUID, newStatus string) (*domain.Task, error) {
				return nil, errors.New("connection reset")
			},
		}
		exec := newTestExecutor(t, tasks, &mockNotifier{}, nil)

		_, err := exec.Execute(context.Background(), changeStatusAction("done"), task)
		assert.ErrorIs(t, err, automation.ErrActionFailed)
	})
}

func TestExecuteAssignBadge(t *testing.T) {
	t.Parallel()

	assignee := uuid.New()
	task := &domain.Task{ID: uuid.New(), Status: "done", Assignee: &assignee}
	action := domain.ActionSpec{
		Type:        domain.ActionAssignBadge,
		AssignBadge: &domain.AssignBadgeData{BadgeType: "finisher"},
	}

	t.Run("awards to the current assignee", func(t *testing.T) {
		t.Parallel()
		tasks := &mockTaskMutator{
			getAssigneeFn: func(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error) {
				return &assignee, nil
			},
		}
		badges := &mockBadgeAwarder{}
		exec := newTestExecutor(t, tasks, &mockNotifier{}, badges)

		result, err := exec.Execute(context.Background(), action, task)
		require.NoError(t, err)
		assert.False(t, result.StatusChanged)
		require.Len(t, badges.awarded, 1)
		assert.Equal(t, assignee, badges.awarded[0].userID)
		assert.Equal(t, "finisher", badges.awarded[0].badgeType)
	})

	t.Run("unassigned task is a quiet no-op", func(t *testing.T) {
		t.Parallel()
		badges := &mockBadgeAwarder{}
		exec := newTestExecutor(t, &mockTaskMutator{}, &mockNotifier{}, badges)

		_, err := exec.Execute(context.Background(), action, task)
		require.NoError(t, err)
		assert.Empty(t, badges.awarded)
	})

	t.Run("nil badge collaborator is a quiet no-op", func(t *testing.T) {
		t.Parallel()
		exec := newTestExecutor(t, &mockTaskMutator{}, &mockNotifier{}, nil)

		_, err := exec.Execute(context.Background(), action, task)
		assert.NoError(t, err)
	})

	t.Run("award failure wraps ErrActionFailed", func(t *testing.T) {
		t.Parallel()
		tasks := &mockTaskMutator{
			getAssigneeFn: func(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error) {
				return &assignee, nil
			},
		}
		badges := &mockBadgeAwarder{
			awardFn: func(ctx context.Context, userID uuid.UUID, badgeType string) error {
				return errors.New("badge service down")
			},
		}
		exec := newTestExecutor(t, tasks, &mockNotifier{}, badges)

		_, err := exec.Execute(context.Background(), action, task)
		assert.ErrorIs(t, err, automation.ErrActionFailed)
	})
}

func TestExecuteSendNotification(t *testing.T) {
	t.Parallel()

	task := &domain.Task{ID: uuid.New(), Status: "done"}

	t.Run("explicit recipient wins", func(t *testing.T) {
		t.Parallel()
		recipient := uuid.New()
		notifier := &mockNotifier{}
		exec := newTestExecutor(t, &mockTaskMutator{}, notifier, nil)

		action := domain.ActionSpec{
			Type: domain.ActionSendNotification,
			Notification: &domain.SendNotificationData{
				Message:     "task done",
				RecipientID: &recipient,
			},
		}

		_, err := exec.Execute(context.Background(), action, task)
		require.NoError(t, err)
		require.Len(t, notifier.delivered, 1)
		assert.Equal(t, recipient, notifier.delivered[0].recipientID)
		assert.Equal(t, "task done", notifier.delivered[0].message)
	})

	t.Run("falls back to the current assignee", func(t *testing.T) {
		t.Parallel()
		assignee := uuid.New()
		tasks := &mockTaskMutator{
			getAssigneeFn: func(ctx context.Context, taskID uuid.UUID) (*uuid.UUID, error) {
				return &assignee, nil
			},
		}
		notifier := &mockNotifier{}
		exec := newTestExecutor(t, tasks, notifier, nil)

		action := domain.ActionSpec{
			Type:         domain.ActionSendNotification,
			Notification: &domain.SendNotificationData{Message: "heads up"},
		}

		_, err := exec.Execute(context.Background(), action, task)
		require.NoError(t, err)
		require.Len(t, notifier.delivered, 1)
		assert.Equal(t, assignee, notifier.delivered[0].recipientID)
	})

	t.Run("no resolvable recipient is a quiet no-op", func(t *testing.T) {
		t.Parallel()
		notifier := &mockNotifier{}
		exec := newTestExecutor(t, &mockTaskMutator{}, notifier, nil)

		action := domain.ActionSpec{
			Type:         domain.ActionSendNotification,
			Notification: &domain.SendNotificationData{Message: "heads up"},
		}

		_, err := exec.Execute(context.Background(), action, task)
		require.NoError(t, err)
		assert.Empty(t, notifier.delivered)
	})

	t.Run("delivery failure wraps ErrActionFailed", func(t *testing.T) {
		t.Parallel()
		recipient := uuid.New()
		notifier := &mockNotifier{
			notifyFn: func(ctx context.Context, recipientID uuid.UUID, message string) error {
				return errors.New("smtp timeout")
			},
		}
		exec := newTestExecutor(t, &mockTaskMutator{}, notifier, nil)

		action := domain.ActionSpec{
			Type: domain.ActionSendNotification,
			Notification: &domain.SendNotificationData{
				Message:     "task done",
				RecipientID: &recipient,
			},
		}

		_, err := exec.Execute(context.Background(), action, task)
		assert.ErrorIs(t, err, automation.ErrActionFailed)
	})
}
