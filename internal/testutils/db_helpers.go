//go:build integration

package testutils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MustInsertProject inserts a project row owned by a fresh user and returns
// the project ID and owner ID.
func MustInsertProject(ctx context.Context, t *testing.T, db store.DBTX) (projectID, ownerID uuid.UUID) {
	t.Helper()

	projectID = uuid.New()
	ownerID = uuid.New()

	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, name, owner_id)
		VALUES ($1, $2, $3)
	`, projectID, "test project", ownerID)
	require.NoError(t, err, "should insert test project")

	return projectID, ownerID
}

// MustAddProjectMember inserts a membership row.
func MustAddProjectMember(ctx context.Context, t *testing.T, db store.DBTX, projectID, userID uuid.UUID) {
	t.Helper()

	_, err := db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
	`, projectID, userID)
	require.NoError(t, err, "should insert project member")
}

// MustInsertTask inserts a task row and returns the task.
func MustInsertTask(ctx context.Context, t *testing.T, db store.DBTX, projectID uuid.UUID) *domain.Task {
	t.Helper()

	task := CreateTestTask(t, projectID)
	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, status, assignee_id, due_date, due_notified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, task.ID, task.ProjectID, task.Title, task.Status, task.Assignee, task.DueDate, task.DueNotified, task.CreatedAt, task.UpdatedAt)
	require.NoError(t, err, "should insert test task")

	return task
}
