package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the persistence surface the automation engine and the
// task-mutation collaborator need. Full task management lives elsewhere;
// only reads plus status/assignee mutation are modeled here.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateStatus sets a task's status and returns the updated task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Task, error)

	// UpdateAssignee sets or clears a task's assignee and returns the
	// updated task. A nil assignee clears the assignment.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateAssignee(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (*domain.Task, error)

	// ClaimOverdue finds tasks whose due date has passed as of the given
	// time, that are not done and not yet marked due-notified, and marks
	// them notified
	// in the same statement. Each overdue task is therefore returned to
	// exactly one caller, which keeps due_date_passed events one-shot even
	// with replicated scanners.
	ClaimOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
