package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// RuleStore defines the interface for automation rule persistence.
//
// Trigger and action types are validated against the closed enum sets at
// the domain boundary before a rule ever reaches the store, so consumers of
// stored rules (the dispatch engine in particular) may trust the type
// fields without re-validating.
type RuleStore interface {
	// Create saves a new rule to the store.
	// Returns validation errors if the rule data is invalid.
	Create(ctx context.Context, rule *domain.Rule) error

	// GetByID retrieves a rule by its unique ID.
	// Returns ErrRuleNotFound if the rule does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error)

	// Update saves changes to an existing rule.
	// Returns ErrRuleNotFound if the rule does not exist.
	Update(ctx context.Context, rule *domain.Rule) error

	// Delete removes a rule from the store by its ID.
	// Returns ErrRuleNotFound if the rule does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListActive retrieves the active rules for a project with the given
	// trigger type, in creation order. Creation order is the execution
	// order the dispatch engine guarantees, so implementations must make
	// it stable.
	ListActive(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error)

	// ListByProject retrieves all rules for a project, active or not,
	// in creation order. This backs the member-facing list endpoint.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Rule, error)

	// WithTx returns a new RuleStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) RuleStore
}
