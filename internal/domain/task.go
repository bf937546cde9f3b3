package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a unit of work on a project board. The automation engine
// reads tasks and mutates their status/assignee through the task-mutation
// surface; everything else about task management lives outside this service.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Assignee    *uuid.UUID `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	DueNotified bool       `json:"due_notified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the given status.
// Returns an error if validation fails.
func NewTask(projectID uuid.UUID, title, status string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidID
	}
	if t.ProjectID == uuid.Nil {
		return ErrTaskProjectIDEmpty
	}
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}
	if t.Status == "" {
		return ErrTaskStatusEmpty
	}
	return nil
}
