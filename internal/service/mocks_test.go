package service_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// mockRuleStore implements store.RuleStore with function fields so each
// test overrides only what it needs.
type mockRuleStore struct {
	createFn        func(ctx context.Context, rule *domain.Rule) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
	updateFn        func(ctx context.Context, rule *domain.Rule) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	listActiveFn    func(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error)
	listByProjectFn func(ctx context.Context, projectID uuid.UUID) ([]*domain.Rule, error)
}

func (m *mockRuleStore) Create(ctx context.Context, rule *domain.Rule) error {
	if m.createFn != nil {
		return m.createFn(ctx, rule)
	}
	return nil
}

func (m *mockRuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrRuleNotFound
}

func (m *mockRuleStore) Update(ctx context.Context, rule *domain.Rule) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, rule)
	}
	return nil
}

func (m *mockRuleStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockRuleStore) ListActive(
	ctx context.Context,
	projectID uuid.UUID,
	trigger domain.TriggerType,
) ([]*domain.Rule, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, projectID, trigger)
	}
	return nil, nil
}

func (m *mockRuleStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*domain.Rule, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockRuleStore) WithTx(tx *sql.Tx) store.RuleStore { return m }

// mockProjectStore implements store.ProjectStore.
type mockProjectStore struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrProjectNotFound
}

// mockTaskStore implements store.TaskStore.
type mockTaskStore struct {
	createFn         func(ctx context.Context, task *domain.Task) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	updateStatusFn   func(ctx context.Context, id uuid.UUID, status string) (*domain.Task, error)
	updateAssigneeFn func(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (*domain.Task, error)
	claimOverdueFn   func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)
}

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status string,
) (*domain.Task, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) UpdateAssignee(
	ctx context.Context,
	id uuid.UUID,
	assignee *uuid.UUID,
) (*domain.Task, error) {
	if m.updateAssigneeFn != nil {
		return m.updateAssigneeFn(ctx, id, assignee)
	}
	return nil, store.ErrTaskNotFound
}

func (m *mockTaskStore) ClaimOverdue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Task, error) {
	if m.claimOverdueFn != nil {
		return m.claimOverdueFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

// mockEmitter implements events.Emitter and records emitted events.
type mockEmitter struct {
	emitFn  func(ctx context.Context, event domain.Event) error
	emitted []domain.Event
}

func (m *mockEmitter) Emit(ctx context.Context, event domain.Event) error {
	if m.emitFn != nil {
		return m.emitFn(ctx, event)
	}
	m.emitted = append(m.emitted, event)
	return nil
}
