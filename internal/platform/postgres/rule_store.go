package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// isForeignKeyViolation checks if the given error is a PostgreSQL foreign
// key constraint violation, such as a rule referencing a missing project.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode
}

// PostgresRuleStore implements the store.RuleStore interface
// using a PostgreSQL database as the storage backend.
//
// Rules carry a monotonically increasing position column assigned on
// insert; every listing orders by it, which is what gives the dispatch
// engine its creation-order execution guarantee.
type PostgresRuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRuleStore creates a new PostgreSQL implementation of the
// RuleStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresRuleStore(db store.DBTX, logger *slog.Logger) *PostgresRuleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "rule_store")),
	}
}

// Ensure PostgresRuleStore implements store.RuleStore interface
var _ store.RuleStore = (*PostgresRuleStore)(nil)

// triggerColumns flattens a TriggerSpec into its type and condition
// document for the trigger_type / trigger_condition columns.
func triggerColumns(spec domain.TriggerSpec) (string, []byte, error) {
	var cond any
	switch spec.Type {
	case domain.TriggerTaskStatusChange:
		cond = spec.StatusChange
	case domain.TriggerTaskAssigned:
		cond = spec.Assigned
	}
	if cond == nil {
		return string(spec.Type), nil, nil
	}
	raw, err := json.Marshal(cond)
	if err != nil {
		return "", nil, err
	}
	return string(spec.Type), raw, nil
}

// actionColumns flattens an ActionSpec into its type and data document for
// the action_type / action_data columns.
func actionColumns(spec domain.ActionSpec) (string, []byte, error) {
	var payload any
	switch spec.Type {
	case domain.ActionChangeStatus:
		payload = spec.ChangeStatus
	case domain.ActionAssignBadge:
		payload = spec.AssignBadge
	case domain.ActionSendNotification:
		payload = spec.Notification
	}
	if payload == nil {
		return string(spec.Type), nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return string(spec.Type), raw, nil
}

// scanRule reads one rule row. The caller's SELECT must list the columns in
// this order: id, project_id, name, trigger_type, trigger_condition,
// action_type, action_data, created_by, is_active, created_at, updated_at.
func scanRule(row interface{ Scan(...any) error }) (*domain.Rule, error) {
	var (
		rule        domain.Rule
		triggerType string
		triggerCond []byte
		actionType  string
		actionData  []byte
	)

	err := row.Scan(
		&rule.ID,
		&rule.ProjectID,
		&rule.Name,
		&triggerType,
		&triggerCond,
		&actionType,
		&actionData,
		&rule.CreatedBy,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.Trigger, err = domain.ParseTriggerSpec(domain.TriggerType(triggerType), triggerCond)
	if err != nil {
		return nil, fmt.Errorf("%w: stored trigger: %v", store.ErrInvalidEntity, err)
	}
	rule.Action, err = domain.ParseActionSpec(domain.ActionType(actionType), actionData)
	if err != nil {
		return nil, fmt.Errorf("%w: stored action: %v", store.ErrInvalidEntity, err)
	}

	return &rule, nil
}

// Create implements store.RuleStore.Create
// It saves a new rule to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the project doesn't exist (foreign key
// violation) and store.ErrDuplicate on an ID collision.
func (s *PostgresRuleStore) Create(ctx context.Context, rule *domain.Rule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rule.Validate(); err != nil {
		log.Warn("rule validation failed during create",
			slog.String("error", err.Error()),
			slog.String("rule_id", rule.ID.String()))
		return err
	}

	triggerType, triggerCond, err := triggerColumns(rule.Trigger)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	actionType, actionData, err := actionColumns(rule.Action)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO automation_rules
			(id, project_id, name, trigger_type, trigger_condition,
			 action_type, action_data, created_by, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		rule.ID,
		rule.ProjectID,
		rule.Name,
		triggerType,
		triggerCond,
		actionType,
		actionData,
		rule.CreatedBy,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during rule creation",
				slog.String("error", err.Error()),
				slog.String("rule_id", rule.ID.String()),
				slog.String("project_id", rule.ProjectID.String()))
			return fmt.Errorf("%w: project with ID %s not found",
				store.ErrInvalidEntity, rule.ProjectID)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return fmt.Errorf("%w: rule with ID %s", store.ErrDuplicate, rule.ID)
		}

		log.Error("failed to create rule",
			slog.String("error", err.Error()),
			slog.String("rule_id", rule.ID.String()))
		return err
	}

	log.Info("rule created",
		slog.String("rule_id", rule.ID.String()),
		slog.String("project_id", rule.ProjectID.String()),
		slog.String("trigger_type", triggerType),
		slog.String("action_type", actionType))
	return nil
}

// GetByID implements store.RuleStore.GetByID
// Returns store.ErrRuleNotFound if the rule does not exist.
func (s *PostgresRuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, name, trigger_type, trigger_condition,
		       action_type, action_data, created_by, is_active, created_at, updated_at
		FROM automation_rules
		WHERE id = $1
	`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("rule not found", slog.String("rule_id", id.String()))
			return nil, store.ErrRuleNotFound
		}
		log.Error("failed to get rule by ID",
			slog.String("error", err.Error()),
			slog.String("rule_id", id.String()))
		return nil, err
	}

	return rule, nil
}

// Update implements store.RuleStore.Update
// The position column is untouched: updates never change a rule's slot in
// the execution order.
// Returns store.ErrRuleNotFound if the rule does not exist.
func (s *PostgresRuleStore) Update(ctx context.Context, rule *domain.Rule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rule.Validate(); err != nil {
		log.Warn("rule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("rule_id", rule.ID.String()))
		return err
	}

	triggerType, triggerCond, err := triggerColumns(rule.Trigger)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	actionType, actionData, err := actionColumns(rule.Action)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE automation_rules
		SET name = $1, trigger_type = $2, trigger_condition = $3,
		    action_type = $4, action_data = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		rule.Name,
		triggerType,
		triggerCond,
		actionType,
		actionData,
		rule.IsActive,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		log.Error("failed to update rule",
			slog.String("error", err.Error()),
			slog.String("rule_id", rule.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("rule_id", rule.ID.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("rule not found for update", slog.String("rule_id", rule.ID.String()))
		return store.ErrRuleNotFound
	}

	log.Info("rule updated",
		slog.String("rule_id", rule.ID.String()),
		slog.Bool("is_active", rule.IsActive))
	return nil
}

// Delete implements store.RuleStore.Delete
// Returns store.ErrRuleNotFound if the rule does not exist.
func (s *PostgresRuleStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM automation_rules WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete rule",
			slog.String("error", err.Error()),
			slog.String("rule_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("rule_id", id.String()))
		return err
	}
	if rowsAffected == 0 {
		log.Debug("rule not found for delete", slog.String("rule_id", id.String()))
		return store.ErrRuleNotFound
	}

	log.Info("rule deleted", slog.String("rule_id", id.String()))
	return nil
}

// ListActive implements store.RuleStore.ListActive
// Rows come back ordered by position, the insertion-assigned sequence, so
// callers see rules in creation order.
func (s *PostgresRuleStore) ListActive(
	ctx context.Context,
	projectID uuid.UUID,
	trigger domain.TriggerType,
) ([]*domain.Rule, error) {
	query := `
		SELECT id, project_id, name, trigger_type, trigger_condition,
		       action_type, action_data, created_by, is_active, created_at, updated_at
		FROM automation_rules
		WHERE project_id = $1 AND trigger_type = $2 AND is_active = TRUE
		ORDER BY position ASC
	`
	return s.listRules(ctx, query, projectID, string(trigger))
}

// ListByProject implements store.RuleStore.ListByProject
func (s *PostgresRuleStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*domain.Rule, error) {
	query := `
		SELECT id, project_id, name, trigger_type, trigger_condition,
		       action_type, action_data, created_by, is_active, created_at, updated_at
		FROM automation_rules
		WHERE project_id = $1
		ORDER BY position ASC
	`
	return s.listRules(ctx, query, projectID)
}

func (s *PostgresRuleStore) listRules(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list rules", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rules []*domain.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			log.Error("failed to scan rule row", slog.String("error", err.Error()))
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		log.Error("rule row iteration failed", slog.String("error", err.Error()))
		return nil, err
	}

	return rules, nil
}

// WithTx implements store.RuleStore.WithTx
// It returns a new RuleStore instance that uses the provided transaction.
func (s *PostgresRuleStore) WithTx(tx *sql.Tx) store.RuleStore {
	return &PostgresRuleStore{
		db:     tx,
		logger: s.logger,
	}
}
