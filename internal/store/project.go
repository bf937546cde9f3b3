package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// ProjectStore defines the read-only project surface the rule CRUD
// authorization check needs: ownership and membership lookups.
type ProjectStore interface {
	// GetByID retrieves a project with its member list.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}
