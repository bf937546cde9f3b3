package testutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// StatusChangeTrigger builds a task_status_change trigger. Nil fields mean
// "match any".
func StatusChangeTrigger(oldStatus, newStatus *string) domain.TriggerSpec {
	return domain.TriggerSpec{
		Type:         domain.TriggerTaskStatusChange,
		StatusChange: &domain.StatusChangeCondition{OldStatus: oldStatus, NewStatus: newStatus},
	}
}

// AssignedTrigger builds a task_assigned trigger. A nil userID matches any
// assignee.
func AssignedTrigger(userID *uuid.UUID) domain.TriggerSpec {
	return domain.TriggerSpec{
		Type:     domain.TriggerTaskAssigned,
		Assigned: &domain.AssignedCondition{UserID: userID},
	}
}

// NotifyAction builds a send_notification action addressed to the task's
// current assignee.
func NotifyAction(message string) domain.ActionSpec {
	return domain.ActionSpec{
		Type:         domain.ActionSendNotification,
		Notification: &domain.SendNotificationData{Message: message},
	}
}

// ChangeStatusAction builds a change_status action.
func ChangeStatusAction(newStatus string) domain.ActionSpec {
	return domain.ActionSpec{
		Type:         domain.ActionChangeStatus,
		ChangeStatus: &domain.ChangeStatusData{NewStatus: newStatus},
	}
}

// CreateTestRule returns a valid active rule for the given project. The
// default trigger fires on any status change and the default action sends a
// notification to the assignee.
func CreateTestRule(t *testing.T, projectID, createdBy uuid.UUID) *domain.Rule {
	t.Helper()

	rule, err := domain.NewRule(
		projectID,
		"test rule",
		StatusChangeTrigger(nil, nil),
		NotifyAction("test notification"),
		createdBy,
	)
	require.NoError(t, err)
	return rule
}

// CreateTestTask returns a valid task in the given project.
func CreateTestTask(t *testing.T, projectID uuid.UUID) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(projectID, "test task", "todo")
	require.NoError(t, err)
	return task
}

// CreateTestProject returns a project owned by ownerID with the given
// additional members.
func CreateTestProject(ownerID uuid.UUID, memberIDs ...uuid.UUID) *domain.Project {
	return &domain.Project{
		ID:        uuid.New(),
		Name:      "test project",
		OwnerID:   ownerID,
		MemberIDs: memberIDs,
		CreatedAt: time.Now().UTC(),
	}
}
