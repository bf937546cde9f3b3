package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Common request/response structures

// TriggerPayload is the wire form of a rule trigger: a type tag plus an
// optional condition document whose shape depends on the type.
type TriggerPayload struct {
	Type      string          `json:"type"      validate:"required"`
	Condition json.RawMessage `json:"condition,omitempty"`
}

// ActionPayload is the wire form of a rule action: a type tag plus a data
// document whose shape depends on the type.
type ActionPayload struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CreateRuleRequest defines the payload for the rule creation endpoint.
type CreateRuleRequest struct {
	Name    string         `json:"name"    validate:"required,max=200"`
	Trigger TriggerPayload `json:"trigger" validate:"required"`
	Action  ActionPayload  `json:"action"  validate:"required"`
}

// UpdateRuleRequest defines the payload for the rule update endpoint.
// Absent fields keep the rule's current value.
type UpdateRuleRequest struct {
	Name     *string         `json:"name,omitempty"     validate:"omitempty,min=1,max=200"`
	Trigger  *TriggerPayload `json:"trigger,omitempty"`
	Action   *ActionPayload  `json:"action,omitempty"`
	IsActive *bool           `json:"is_active,omitempty"`
}

// RuleResponse represents the response data for an automation rule.
// TriggerSpec and ActionSpec marshal to their {type, condition} and
// {type, data} wire forms.
type RuleResponse struct {
	ID        uuid.UUID          `json:"id"`
	ProjectID uuid.UUID          `json:"project_id"`
	Name      string             `json:"name"`
	Trigger   domain.TriggerSpec `json:"trigger"`
	Action    domain.ActionSpec  `json:"action"`
	CreatedBy uuid.UUID          `json:"created_by"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func ruleToResponse(rule *domain.Rule) RuleResponse {
	return RuleResponse{
		ID:        rule.ID,
		ProjectID: rule.ProjectID,
		Name:      rule.Name,
		Trigger:   rule.Trigger,
		Action:    rule.Action,
		CreatedBy: rule.CreatedBy,
		IsActive:  rule.IsActive,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	Title  string `json:"title"  validate:"required,max=500"`
	Status string `json:"status" validate:"required,max=100"`
}

// UpdateTaskStatusRequest defines the payload for the status update endpoint.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,max=100"`
}

// AssignTaskRequest defines the payload for the assignee update endpoint.
// A null assignee clears the assignment.
type AssignTaskRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Assignee  *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		Title:     task.Title,
		Status:    task.Status,
		Assignee:  task.Assignee,
		DueDate:   task.DueDate,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
