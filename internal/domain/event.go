package domain

import (
	"github.com/google/uuid"
)

// Event is a transient description of a task state change that may satisfy
// zero or more rules. Events are never persisted; each occurrence is
// consumed exactly once by the dispatch engine.
//
// Kind mirrors the trigger types: only kind-specific fields are populated.
// For status changes that is OldStatus/NewStatus; for assignment changes
// OldAssignee/NewAssignee, where a nil pointer means "unassigned"; due-date
// events carry no payload beyond the task and project references.
type Event struct {
	Kind        TriggerType
	TaskID      uuid.UUID
	ProjectID   uuid.UUID
	OldStatus   string
	NewStatus   string
	OldAssignee *uuid.UUID
	NewAssignee *uuid.UUID
}

// NewStatusChangeEvent builds a task_status_change event.
func NewStatusChangeEvent(taskID, projectID uuid.UUID, oldStatus, newStatus string) Event {
	return Event{
		Kind:      TriggerTaskStatusChange,
		TaskID:    taskID,
		ProjectID: projectID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// NewAssignmentEvent builds a task_assigned event. Either assignee pointer
// may be nil; a nil NewAssignee describes an unassignment.
func NewAssignmentEvent(taskID, projectID uuid.UUID, oldAssignee, newAssignee *uuid.UUID) Event {
	return Event{
		Kind:        TriggerTaskAssigned,
		TaskID:      taskID,
		ProjectID:   projectID,
		OldAssignee: oldAssignee,
		NewAssignee: newAssignee,
	}
}

// NewDueDatePassedEvent builds a due_date_passed event. The caller decides
// when a due date has passed; the event itself carries no payload.
func NewDueDatePassedEvent(taskID, projectID uuid.UUID) Event {
	return Event{
		Kind:      TriggerDueDatePassed,
		TaskID:    taskID,
		ProjectID: projectID,
	}
}
