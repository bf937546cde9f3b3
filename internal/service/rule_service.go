package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// RuleServiceError is a custom error type for rule service errors.
type RuleServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for RuleServiceError.
func (e *RuleServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("rule service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *RuleServiceError) Unwrap() error {
	return e.Err
}

// NewRuleServiceError creates a new RuleServiceError.
func NewRuleServiceError(operation, message string, err error) *RuleServiceError {
	return &RuleServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// RuleService provides automation rule management with project-scoped
// authorization: mutations require project ownership, reads require
// membership.
type RuleService interface {
	// CreateRule validates and persists a new rule for the project.
	// The actor must own the project.
	CreateRule(
		ctx context.Context,
		actorID, projectID uuid.UUID,
		name string,
		trigger domain.TriggerSpec,
		action domain.ActionSpec,
	) (*domain.Rule, error)

	// GetRule retrieves a single rule. The actor must be a member of the
	// rule's project.
	GetRule(ctx context.Context, actorID, ruleID uuid.UUID) (*domain.Rule, error)

	// ListRules retrieves all of a project's rules, active or not, in
	// creation order. The actor must be a member of the project.
	ListRules(ctx context.Context, actorID, projectID uuid.UUID) ([]*domain.Rule, error)

	// UpdateRule applies a partial update to a rule. The actor must own
	// the rule's project.
	UpdateRule(
		ctx context.Context,
		actorID, ruleID uuid.UUID,
		update domain.RuleUpdate,
	) (*domain.Rule, error)

	// DeleteRule removes a rule. The actor must own the rule's project.
	DeleteRule(ctx context.Context, actorID, ruleID uuid.UUID) error
}

// ruleServiceImpl implements the RuleService interface.
type ruleServiceImpl struct {
	rules    store.RuleStore
	projects store.ProjectStore
	logger   *slog.Logger
}

// NewRuleService creates a new RuleService.
// It returns an error if any of the required dependencies are nil.
func NewRuleService(
	rules store.RuleStore,
	projects store.ProjectStore,
	logger *slog.Logger,
) (RuleService, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule store cannot be nil")
	}
	if projects == nil {
		return nil, fmt.Errorf("project store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &ruleServiceImpl{
		rules:    rules,
		projects: projects,
		logger:   logger.With(slog.String("component", "rule_service")),
	}, nil
}

// requireOwner loads the project and verifies the actor owns it.
func (s *ruleServiceImpl) requireOwner(ctx context.Context, actorID, projectID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.IsOwner(actorID) {
		return ErrNotProjectOwner
	}
	return nil
}

// requireMember loads the project and verifies the actor is a member.
func (s *ruleServiceImpl) requireMember(ctx context.Context, actorID, projectID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.IsMember(actorID) {
		return ErrNotProjectMember
	}
	return nil
}

// CreateRule implements RuleService.CreateRule
func (s *ruleServiceImpl) CreateRule(
	ctx context.Context,
	actorID, projectID uuid.UUID,
	name string,
	trigger domain.TriggerSpec,
	action domain.ActionSpec,
) (*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.requireOwner(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	rule, err := domain.NewRule(projectID, name, trigger, action, actorID)
	if err != nil {
		log.Warn("rule rejected at creation",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, NewRuleServiceError("create", "failed to save rule", err)
	}

	log.Info("automation rule created",
		slog.String("rule_id", rule.ID.String()),
		slog.String("project_id", projectID.String()),
		slog.String("trigger_type", string(rule.Trigger.Type)),
		slog.String("action_type", string(rule.Action.Type)))
	return rule, nil
}

// GetRule implements RuleService.GetRule
func (s *ruleServiceImpl) GetRule(
	ctx context.Context,
	actorID, ruleID uuid.UUID,
) (*domain.Rule, error) {
	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, actorID, rule.ProjectID); err != nil {
		return nil, err
	}

	return rule, nil
}

// ListRules implements RuleService.ListRules
func (s *ruleServiceImpl) ListRules(
	ctx context.Context,
	actorID, projectID uuid.UUID,
) ([]*domain.Rule, error) {
	if err := s.requireMember(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	rules, err := s.rules.ListByProject(ctx, projectID)
	if err != nil {
		return nil, NewRuleServiceError("list", "failed to list rules", err)
	}
	return rules, nil
}

// UpdateRule implements RuleService.UpdateRule
func (s *ruleServiceImpl) UpdateRule(
	ctx context.Context,
	actorID, ruleID uuid.UUID,
	update domain.RuleUpdate,
) (*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOwner(ctx, actorID, rule.ProjectID); err != nil {
		return nil, err
	}

	if err := rule.Apply(update); err != nil {
		log.Warn("rule update rejected",
			slog.String("error", err.Error()),
			slog.String("rule_id", ruleID.String()))
		return nil, err
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, NewRuleServiceError("update", "failed to save rule", err)
	}

	log.Info("automation rule updated",
		slog.String("rule_id", rule.ID.String()),
		slog.Bool("is_active", rule.IsActive))
	return rule, nil
}

// DeleteRule implements RuleService.DeleteRule
func (s *ruleServiceImpl) DeleteRule(ctx context.Context, actorID, ruleID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return err
	}

	if err := s.requireOwner(ctx, actorID, rule.ProjectID); err != nil {
		return err
	}

	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return NewRuleServiceError("delete", "failed to delete rule", err)
	}

	log.Info("automation rule deleted",
		slog.String("rule_id", ruleID.String()),
		slog.String("project_id", rule.ProjectID.String()))
	return nil
}
