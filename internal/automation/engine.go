package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// RuleSource is the read-only slice of the rule store the engine needs.
type RuleSource interface {
	ListActive(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error)
}

// TaskReader loads the task snapshot an event refers to.
type TaskReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// EngineConfig holds the engine's tuning knobs.
type EngineConfig struct {
	// MaxCascadeDepth bounds how many cascade levels one causal chain may
	// produce before the engine truncates it. Without this bound, a
	// change_status action whose resulting event matches another rule
	// could recurse indefinitely.
	MaxCascadeDepth int
}

// DefaultEngineConfig returns an EngineConfig with reasonable defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{MaxCascadeDepth: 5}
}

// Engine is the dispatch orchestrator: it receives events, loads candidate
// rules, evaluates their conditions, and executes matching actions while
// enforcing the safety invariants (per-chain depth bound, at-most-once
// firing per rule per chain, creation-order execution, per-project
// serialization).
type Engine struct {
	rules    RuleSource
	tasks    TaskReader
	executor *Executor
	config   EngineConfig
	logger   *slog.Logger

	// Per-project sequencing points. Events for one project are processed
	// strictly one chain at a time; independent projects proceed in
	// parallel.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a dispatch Engine.
func NewEngine(
	rules RuleSource,
	tasks TaskReader,
	executor *Executor,
	config EngineConfig,
	logger *slog.Logger,
) *Engine {
	if config.MaxCascadeDepth <= 0 {
		config.MaxCascadeDepth = DefaultEngineConfig().MaxCascadeDepth
	}

	return &Engine{
		rules:    rules,
		tasks:    tasks,
		executor: executor,
		config:   config,
		logger:   logger.With(slog.String("component", "dispatch_engine")),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// HandleEvent implements events.Handler. It processes one externally-
// originated event and every cascaded event it produces, synchronously:
// when HandleEvent returns, the whole causal chain has run.
func (e *Engine) HandleEvent(ctx context.Context, event domain.Event) error {
	lock := e.projectLock(event.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	return e.dispatch(ctx, event, NewExecutionContext())
}

// projectLock returns the sequencing mutex for a project, creating it on
// first use.
func (e *Engine) projectLock(projectID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[projectID] = lock
	}
	return lock
}

// dispatch runs one event through the load/match/execute state machine.
// It is called with the project lock held, both for the top-level event and
// recursively for cascaded ones.
func (e *Engine) dispatch(ctx context.Context, event domain.Event, ec *ExecutionContext) error {
	if ec.Depth >= e.config.MaxCascadeDepth {
		e.logger.Warn("cascade depth limit reached, truncating chain",
			"project_id", event.ProjectID,
			"task_id", event.TaskID,
			"event_kind", event.Kind,
			"depth", ec.Depth)
		cascadesTruncated.Inc()
		return nil
	}

	eventsDispatched.WithLabelValues(string(event.Kind)).Inc()

	// Snapshot the candidate rules. Rules deleted or deactivated after
	// this point still execute for this event; the next event sees the
	// new state.
	rules, err := e.rules.ListActive(ctx, event.ProjectID, event.Kind)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	task, err := e.tasks.GetByID(ctx, event.TaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The task vanished between the mutation and this dispatch.
			// Nothing to act on; the event is considered handled.
			e.logger.Info("task gone before dispatch, skipping event",
				"task_id", event.TaskID,
				"event_kind", event.Kind)
			return nil
		}
		return fmt.Errorf("failed to load task: %w", err)
	}

	for _, rule := range rules {
		if ec.HasFired(rule.ID) {
			e.logger.Debug("rule already fired in this chain, skipping",
				"rule_id", rule.ID,
				"depth", ec.Depth)
			continue
		}
		if !Matches(rule.Trigger, event) {
			continue
		}

		ec.MarkFired(rule.ID)
		e.executeRule(ctx, rule, event, task, ec)
	}

	return nil
}

// executeRule runs one matched rule's action and, when the action changed
// the task's status, dispatches the cascaded event before returning. A
// rule's whole cascade completes before the next sibling rule executes.
// Failures are isolated here: they are logged with full context and never
// propagate to sibling rules or to the caller that raised the event.
func (e *Engine) executeRule(
	ctx context.Context,
	rule *domain.Rule,
	event domain.Event,
	task *domain.Task,
	ec *ExecutionContext,
) {
	result, err := e.executor.Execute(ctx, rule.Action, task)
	if err != nil {
		actionsExecuted.WithLabelValues(string(rule.Action.Type), "failure").Inc()
		e.logger.Error("rule action failed",
			"error", err,
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"action_type", rule.Action.Type,
			"event_kind", event.Kind,
			"task_id", event.TaskID,
			"depth", ec.Depth)
		return
	}
	actionsExecuted.WithLabelValues(string(rule.Action.Type), "success").Inc()

	if !result.StatusChanged {
		return
	}

	// Keep the snapshot current for sibling rules evaluated after this
	// cascade returns.
	task.Status = result.NewStatus

	next := domain.NewStatusChangeEvent(task.ID, task.ProjectID, result.OldStatus, result.NewStatus)
	if err := e.dispatch(ctx, next, ec.Child()); err != nil {
		e.logger.Error("cascaded dispatch failed",
			"error", err,
			"rule_id", rule.ID,
			"task_id", task.ID,
			"depth", ec.Depth+1)
	}
}

// Ensure Engine implements events.Handler
var _ events.Handler = (*Engine)(nil)
