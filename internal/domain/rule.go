package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TriggerType identifies the kind of event a rule is waiting for.
type TriggerType string

// The closed set of trigger types. Validation against this set happens at
// rule create/update time; downstream components trust stored values.
const (
	TriggerTaskStatusChange TriggerType = "task_status_change"
	TriggerTaskAssigned     TriggerType = "task_assigned"
	TriggerDueDatePassed    TriggerType = "due_date_passed"
)

// IsValid reports whether the trigger type is one of the known types.
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerTaskStatusChange, TriggerTaskAssigned, TriggerDueDatePassed:
		return true
	}
	return false
}

// ActionType identifies the effect a rule performs once its trigger matches.
type ActionType string

// The closed set of action types.
const (
	ActionAssignBadge      ActionType = "assign_badge"
	ActionChangeStatus     ActionType = "change_status"
	ActionSendNotification ActionType = "send_notification"
)

// IsValid reports whether the action type is one of the known types.
func (t ActionType) IsValid() bool {
	switch t {
	case ActionAssignBadge, ActionChangeStatus, ActionSendNotification:
		return true
	}
	return false
}

// StatusChangeCondition narrows a task_status_change trigger.
// A nil field matches any value for that field; a condition with both
// fields nil matches every status transition.
type StatusChangeCondition struct {
	OldStatus *string `json:"oldStatus,omitempty"`
	NewStatus *string `json:"newStatus,omitempty"`
}

// AssignedCondition narrows a task_assigned trigger.
// A nil UserID matches any assignee.
type AssignedCondition struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
}

// TriggerSpec is a tagged union of trigger type and its typed condition.
// Exactly the variant matching Type is populated; due_date_passed carries
// no condition at all.
type TriggerSpec struct {
	Type         TriggerType
	StatusChange *StatusChangeCondition
	Assigned     *AssignedCondition
}

// triggerSpecJSON is the persisted/wire representation of a TriggerSpec:
// {"type": "...", "condition": {...}}.
type triggerSpecJSON struct {
	Type      TriggerType     `json:"type"`
	Condition json.RawMessage `json:"condition,omitempty"`
}

// ParseTriggerSpec validates a raw (type, condition) pair and returns the
// typed TriggerSpec. An absent or empty condition document is valid for
// every trigger type and means "match any". Unknown types are rejected here
// and nowhere else.
func ParseTriggerSpec(triggerType TriggerType, condition json.RawMessage) (TriggerSpec, error) {
	if !triggerType.IsValid() {
		return TriggerSpec{}, fmt.Errorf("%w: %q", ErrInvalidTriggerType, triggerType)
	}

	spec := TriggerSpec{Type: triggerType}
	empty := len(condition) == 0 || string(condition) == "null"

	switch triggerType {
	case TriggerTaskStatusChange:
		cond := &StatusChangeCondition{}
		if !empty {
			if err := json.Unmarshal(condition, cond); err != nil {
				return TriggerSpec{}, fmt.Errorf("%w: %v", ErrInvalidTriggerCondition, err)
			}
		}
		spec.StatusChange = cond
	case TriggerTaskAssigned:
		cond := &AssignedCondition{}
		if !empty {
			if err := json.Unmarshal(condition, cond); err != nil {
				return TriggerSpec{}, fmt.Errorf("%w: %v", ErrInvalidTriggerCondition, err)
			}
		}
		spec.Assigned = cond
	case TriggerDueDatePassed:
		// The type alone is sufficient; any condition document is ignored.
	}

	return spec, nil
}

// MarshalJSON implements json.Marshaler for the {type, condition} wire form.
func (s TriggerSpec) MarshalJSON() ([]byte, error) {
	out := triggerSpecJSON{Type: s.Type}

	var cond any
	switch s.Type {
	case TriggerTaskStatusChange:
		cond = s.StatusChange
	case TriggerTaskAssigned:
		cond = s.Assigned
	}
	if cond != nil {
		raw, err := json.Marshal(cond)
		if err != nil {
			return nil, err
		}
		out.Condition = raw
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, validating through
// ParseTriggerSpec so malformed documents are rejected at the boundary.
func (s *TriggerSpec) UnmarshalJSON(data []byte) error {
	var raw triggerSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTriggerSpec(raw.Type, raw.Condition)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Validate checks the spec's type and that any condition present belongs to
// it. A nil condition variant is valid: it matches every event of the
// trigger's kind, same as an empty condition document.
func (s TriggerSpec) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTriggerType, s.Type)
	}
	switch s.Type {
	case TriggerTaskStatusChange:
		if s.Assigned != nil {
			return fmt.Errorf("%w: assignment condition on a status change trigger", ErrInvalidTriggerCondition)
		}
	case TriggerTaskAssigned:
		if s.StatusChange != nil {
			return fmt.Errorf("%w: status change condition on an assignment trigger", ErrInvalidTriggerCondition)
		}
	case TriggerDueDatePassed:
		if s.StatusChange != nil || s.Assigned != nil {
			return fmt.Errorf("%w: due date triggers carry no condition", ErrInvalidTriggerCondition)
		}
	}
	return nil
}

// ChangeStatusData is the payload for a change_status action.
type ChangeStatusData struct {
	NewStatus string `json:"newStatus"`
}

// AssignBadgeData is the payload for an assign_badge action.
type AssignBadgeData struct {
	BadgeType string `json:"badgeType"`
}

// SendNotificationData is the payload for a send_notification action.
// A nil RecipientID means the notification goes to the task's current
// assignee at execution time.
type SendNotificationData struct {
	Message     string     `json:"message"`
	RecipientID *uuid.UUID `json:"recipientId,omitempty"`
}

// ActionSpec is a tagged union of action type and its typed data payload.
type ActionSpec struct {
	Type         ActionType
	ChangeStatus *ChangeStatusData
	AssignBadge  *AssignBadgeData
	Notification *SendNotificationData
}

// actionSpecJSON is the persisted/wire representation of an ActionSpec:
// {"type": "...", "data": {...}}.
type actionSpecJSON struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ParseActionSpec validates a raw (type, data) pair and returns the typed
// ActionSpec. Unlike trigger conditions, action data is required: every
// action type has at least one mandatory field.
func ParseActionSpec(actionType ActionType, data json.RawMessage) (ActionSpec, error) {
	if !actionType.IsValid() {
		return ActionSpec{}, fmt.Errorf("%w: %q", ErrInvalidActionType, actionType)
	}

	spec := ActionSpec{Type: actionType}
	empty := len(data) == 0 || string(data) == "null"

	switch actionType {
	case ActionChangeStatus:
		payload := &ChangeStatusData{}
		if !empty {
			if err := json.Unmarshal(data, payload); err != nil {
				return ActionSpec{}, fmt.Errorf("%w: %v", ErrInvalidActionData, err)
			}
		}
		if payload.NewStatus == "" {
			return ActionSpec{}, fmt.Errorf("%w: change_status requires newStatus", ErrInvalidActionData)
		}
		spec.ChangeStatus = payload
	case ActionAssignBadge:
		payload := &AssignBadgeData{}
		if !empty {
			if err := json.Unmarshal(data, payload); err != nil {
				return ActionSpec{}, fmt.Errorf("%w: %v", ErrInvalidActionData, err)
			}
		}
		if payload.BadgeType == "" {
			return ActionSpec{}, fmt.Errorf("%w: assign_badge requires badgeType", ErrInvalidActionData)
		}
		spec.AssignBadge = payload
	case ActionSendNotification:
		payload := &SendNotificationData{}
		if !empty {
			if err := json.Unmarshal(data, payload); err != nil {
				return ActionSpec{}, fmt.Errorf("%w: %v", ErrInvalidActionData, err)
			}
		}
		if payload.Message == "" {
			return ActionSpec{}, fmt.Errorf("%w: send_notification requires message", ErrInvalidActionData)
		}
		spec.Notification = payload
	}

	return spec, nil
}

// MarshalJSON implements json.Marshaler for the {type, data} wire form.
func (s ActionSpec) MarshalJSON() ([]byte, error) {
	out := actionSpecJSON{Type: s.Type}

	var payload any
	switch s.Type {
	case ActionChangeStatus:
		payload = s.ChangeStatus
	case ActionAssignBadge:
		payload = s.AssignBadge
	case ActionSendNotification:
		payload = s.Notification
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		out.Data = raw
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, validating through
// ParseActionSpec so malformed documents are rejected at the boundary.
func (s *ActionSpec) UnmarshalJSON(data []byte) error {
	var raw actionSpecJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseActionSpec(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Validate checks the spec's type and that the data variant matches it.
func (s ActionSpec) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidActionType, s.Type)
	}
	switch s.Type {
	case ActionChangeStatus:
		if s.ChangeStatus == nil || s.ChangeStatus.NewStatus == "" {
			return fmt.Errorf("%w: change_status requires newStatus", ErrInvalidActionData)
		}
	case ActionAssignBadge:
		if s.AssignBadge == nil || s.AssignBadge.BadgeType == "" {
			return fmt.Errorf("%w: assign_badge requires badgeType", ErrInvalidActionData)
		}
	case ActionSendNotification:
		if s.Notification == nil || s.Notification.Message == "" {
			return fmt.Errorf("%w: send_notification requires message", ErrInvalidActionData)
		}
	}
	return nil
}

// Rule is a persisted trigger-condition-action tuple scoped to a project.
// Rules are created and mutated only through the owner-facing CRUD surface;
// the dispatch engine treats them as read-only.
type Rule struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	Name      string      `json:"name"`
	Trigger   TriggerSpec `json:"trigger"`
	Action    ActionSpec  `json:"action"`
	CreatedBy uuid.UUID   `json:"created_by"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewRule creates a new active Rule with the given project, name, trigger,
// action, and creator. It generates a new UUID for the rule ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewRule(
	projectID uuid.UUID,
	name string,
	trigger TriggerSpec,
	action ActionSpec,
	createdBy uuid.UUID,
) (*Rule, error) {
	now := time.Now().UTC()
	rule := &Rule{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Trigger:   trigger,
		Action:    action,
		CreatedBy: createdBy,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// Validate checks if the Rule has valid data.
// Returns an error if any field fails validation.
func (r *Rule) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: rule ID cannot be empty", ErrValidation)
	}
	if r.ProjectID == uuid.Nil {
		return ErrRuleProjectIDEmpty
	}
	if r.Name == "" {
		return ErrRuleNameEmpty
	}
	if r.CreatedBy == uuid.Nil {
		return ErrRuleCreatorEmpty
	}
	if err := r.Trigger.Validate(); err != nil {
		return err
	}
	return r.Action.Validate()
}

// RuleUpdate describes a partial update to a Rule. Nil fields keep the
// rule's current value, mirroring the CRUD surface's PUT semantics.
type RuleUpdate struct {
	Name     *string
	Trigger  *TriggerSpec
	Action   *ActionSpec
	IsActive *bool
}

// Apply mutates the rule with the non-nil fields of the update and bumps
// UpdatedAt. The rule is left unchanged if the result fails validation.
func (r *Rule) Apply(update RuleUpdate) error {
	updated := *r
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Trigger != nil {
		updated.Trigger = *update.Trigger
	}
	if update.Action != nil {
		updated.Action = *update.Action
	}
	if update.IsActive != nil {
		updated.IsActive = *update.IsActive
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*r = updated
	return nil
}
