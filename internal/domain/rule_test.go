package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validTrigger(t *testing.T) TriggerSpec {
	t.Helper()
	spec, err := ParseTriggerSpec(TriggerTaskStatusChange, json.RawMessage(`{"newStatus":"Done"}`))
	require.NoError(t, err)
	return spec
}

func validAction(t *testing.T) ActionSpec {
	t.Helper()
	spec, err := ParseActionSpec(ActionSendNotification, json.RawMessage(`{"message":"task moved"}`))
	require.NoError(t, err)
	return spec
}

func TestParseTriggerSpec(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown trigger type", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTriggerSpec("bogus", nil)
		assert.ErrorIs(t, err, ErrInvalidTriggerType)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty condition means match-any", func(t *testing.T) {
		t.Parallel()

		spec, err := ParseTriggerSpec(TriggerTaskStatusChange, nil)
		require.NoError(t, err)
		require.NotNil(t, spec.StatusChange)
		assert.Nil(t, spec.StatusChange.OldStatus)
		assert.Nil(t, spec.StatusChange.NewStatus)

		spec, err = ParseTriggerSpec(TriggerTaskStatusChange, json.RawMessage(`{}`))
		require.NoError(t, err)
		require.NotNil(t, spec.StatusChange)
		assert.Nil(t, spec.StatusChange.NewStatus)
	})

	t.Run("parses status change condition", func(t *testing.T) {
		t.Parallel()

		spec, err := ParseTriggerSpec(
			TriggerTaskStatusChange,
			json.RawMessage(`{"oldStatus":"To Do","newStatus":"Done"}`),
		)
		require.NoError(t, err)
		require.NotNil(t, spec.StatusChange)
		assert.Equal(t, "To Do", *spec.StatusChange.OldStatus)
		assert.Equal(t, "Done", *spec.StatusChange.NewStatus)
	})

	t.Run("parses assignment condition", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		spec, err := ParseTriggerSpec(
			TriggerTaskAssigned,
			json.RawMessage(`{"userId":"`+userID.String()+`"}`),
		)
		require.NoError(t, err)
		require.NotNil(t, spec.Assigned)
		assert.Equal(t, userID, *spec.Assigned.UserID)
	})

	t.Run("due date trigger ignores condition", func(t *testing.T) {
		t.Parallel()

		spec, err := ParseTriggerSpec(TriggerDueDatePassed, json.RawMessage(`{"anything":"goes"}`))
		require.NoError(t, err)
		assert.Nil(t, spec.StatusChange)
		assert.Nil(t, spec.Assigned)
	})

	t.Run("rejects malformed condition document", func(t *testing.T) {
		t.Parallel()

		_, err := ParseTriggerSpec(TriggerTaskStatusChange, json.RawMessage(`{"newStatus":`))
		assert.ErrorIs(t, err, ErrInvalidTriggerCondition)
	})
}

func TestParseActionSpec(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown action type", func(t *testing.T) {
		t.Parallel()

		_, err := ParseActionSpec("explode", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrInvalidActionType)
	})

	t.Run("change_status requires newStatus", func(t *testing.T) {
		t.Parallel()

		_, err := ParseActionSpec(ActionChangeStatus, json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrInvalidActionData)

		spec, err := ParseActionSpec(ActionChangeStatus, json.RawMessage(`{"newStatus":"In Progress"}`))
		require.NoError(t, err)
		assert.Equal(t, "In Progress", spec.ChangeStatus.NewStatus)
	})

	t.Run("assign_badge requires badgeType", func(t *testing.T) {
		t.Parallel()

		_, err := ParseActionSpec(ActionAssignBadge, nil)
		assert.ErrorIs(t, err, ErrInvalidActionData)

		spec, err := ParseActionSpec(ActionAssignBadge, json.RawMessage(`{"badgeType":"finisher"}`))
		require.NoError(t, err)
		assert.Equal(t, "finisher", spec.AssignBadge.BadgeType)
	})

	t.Run("send_notification defaults recipient to unset", func(t *testing.T) {
		t.Parallel()

		spec, err := ParseActionSpec(
			ActionSendNotification,
			json.RawMessage(`{"message":"heads up"}`),
		)
		require.NoError(t, err)
		assert.Equal(t, "heads up", spec.Notification.Message)
		assert.Nil(t, spec.Notification.RecipientID)
	})
}

func TestTriggerSpecJSONRoundTrip(t *testing.T) {
	t.Parallel()

	spec, err := ParseTriggerSpec(TriggerTaskStatusChange, json.RawMessage(`{"newStatus":"Done"}`))
	require.NoError(t, err)

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"task_status_change","condition":{"newStatus":"Done"}}`, string(data))

	var decoded TriggerSpec
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, spec, decoded)

	// Unmarshal goes through the same boundary validation as parse.
	var bad TriggerSpec
	err = json.Unmarshal([]byte(`{"type":"bogus"}`), &bad)
	assert.ErrorIs(t, err, ErrInvalidTriggerType)
}

func TestNewRule(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	creatorID := uuid.New()

	t.Run("creates valid active rule", func(t *testing.T) {
		t.Parallel()

		rule, err := NewRule(projectID, "notify on done", validTrigger(t), validAction(t), creatorID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rule.ID)
		assert.True(t, rule.IsActive)
		assert.Equal(t, projectID, rule.ProjectID)
		assert.Equal(t, creatorID, rule.CreatedBy)
		assert.False(t, rule.CreatedAt.IsZero())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := NewRule(projectID, "", validTrigger(t), validAction(t), creatorID)
		assert.ErrorIs(t, err, ErrRuleNameEmpty)
	})

	t.Run("rejects missing project", func(t *testing.T) {
		t.Parallel()

		_, err := NewRule(uuid.Nil, "r", validTrigger(t), validAction(t), creatorID)
		assert.ErrorIs(t, err, ErrRuleProjectIDEmpty)
	})

	t.Run("rejects invalid trigger", func(t *testing.T) {
		t.Parallel()

		_, err := NewRule(projectID, "r", TriggerSpec{Type: "bogus"}, validAction(t), creatorID)
		assert.ErrorIs(t, err, ErrInvalidTriggerType)
	})

	t.Run("accepts absent condition as match-all", func(t *testing.T) {
		t.Parallel()

		rule, err := NewRule(projectID, "r",
			TriggerSpec{Type: TriggerTaskStatusChange}, validAction(t), creatorID)
		require.NoError(t, err)
		assert.Nil(t, rule.Trigger.StatusChange)

		_, err = NewRule(projectID, "r",
			TriggerSpec{Type: TriggerTaskAssigned}, validAction(t), creatorID)
		require.NoError(t, err)
	})

	t.Run("rejects condition from another trigger kind", func(t *testing.T) {
		t.Parallel()

		_, err := NewRule(projectID, "r", TriggerSpec{
			Type:     TriggerTaskStatusChange,
			Assigned: &AssignedCondition{},
		}, validAction(t), creatorID)
		assert.ErrorIs(t, err, ErrInvalidTriggerCondition)

		_, err = NewRule(projectID, "r", TriggerSpec{
			Type:         TriggerDueDatePassed,
			StatusChange: &StatusChangeCondition{},
		}, validAction(t), creatorID)
		assert.ErrorIs(t, err, ErrInvalidTriggerCondition)
	})
}

func TestRuleApply(t *testing.T) {
	t.Parallel()

	rule, err := NewRule(uuid.New(), "original", validTrigger(t), validAction(t), uuid.New())
	require.NoError(t, err)

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		r := *rule
		inactive := false
		require.NoError(t, r.Apply(RuleUpdate{Name: strPtr("renamed"), IsActive: &inactive}))
		assert.Equal(t, "renamed", r.Name)
		assert.False(t, r.IsActive)
		assert.Equal(t, rule.Trigger, r.Trigger)
		assert.Equal(t, rule.Action, r.Action)
	})

	t.Run("invalid update leaves rule unchanged", func(t *testing.T) {
		r := *rule
		err := r.Apply(RuleUpdate{Name: strPtr("")})
		assert.ErrorIs(t, err, ErrRuleNameEmpty)
		assert.Equal(t, "original", r.Name)
	})
}
