package automation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/automation"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// mockRuleSource implements automation.RuleSource with a function field.
type mockRuleSource struct {
	listActiveFn func(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error)
}

func (m *mockRuleSource) ListActive(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error) {
	return m.listActiveFn(ctx, projectID, trigger)
}

// mockTaskReader implements automation.TaskReader with a function field.
type mockTaskReader struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

func (m *mockTaskReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFn(ctx, id)
}

// engineFixture wires an Engine against in-memory collaborators that record
// every status change and notification in order.
type engineFixture struct {
	engine    *automation.Engine
	projectID uuid.UUID
	taskID    uuid.UUID

	rules []*domain.Rule

	// current in-memory task state; the mutator and reader share it.
	status string

	statusLog []string
	notifier  *mockNotifier
}

func newEngineFixture(t *testing.T, maxDepth int) *engineFixture {
	t.Helper()

	f := &engineFixture{
		projectID: uuid.New(),
		taskID:    uuid.New(),
		status:    "todo",
		notifier:  &mockNotifier{},
	}

	tasks := &mockTaskMutator{
		updateStatusFn: func(ctx context.Context, taskID uuid.UUID, newStatus string) (*domain.Task, error) {
			f.status = newStatus
			f.statusLog = append(f.statusLog, newStatus)
			return &domain.Task{ID: taskID, ProjectID: f.projectID, Status: newStatus}, nil
		},
	}

	log, _ := logger.GetTestLogger(t)
	executor := automation.NewExecutor(tasks, f.notifier, &mockBadgeAwarder{}, time.Second, log)

	source := &mockRuleSource{
		listActiveFn: func(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error) {
			var matching []*domain.Rule
			for _, r := range f.rules {
				if r.Trigger.Type == trigger {
					matching = append(matching, r)
				}
			}
			return matching, nil
		},
	}

	reader := &mockTaskReader{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			return &domain.Task{ID: f.taskID, ProjectID: f.projectID, Status: f.status}, nil
		},
	}

	f.engine = automation.NewEngine(source, reader, executor,
		automation.EngineConfig{MaxCascadeDepth: maxDepth}, log)
	return f
}

func (f *engineFixture) addStatusRule(t *testing.T, oldStatus, newStatus *string, action domain.ActionSpec) *domain.Rule {
	t.Helper()
	trigger := domain.TriggerSpec{Type: domain.TriggerTaskStatusChange}
	if oldStatus != nil || newStatus != nil {
		trigger.StatusChange = &domain.StatusChangeCondition{OldStatus: oldStatus, NewStatus: newStatus}
	}
	rule, err := domain.NewRule(f.projectID, fmt.Sprintf("rule %d", len(f.rules)+1), trigger, action, uuid.New())
	require.NoError(t, err)
	f.rules = append(f.rules, rule)
	return rule
}

func notifyAction(message string, recipient uuid.UUID) domain.ActionSpec {
	return domain.ActionSpec{
		Type: domain.ActionSendNotification,
		Notification: &domain.SendNotificationData{
			Message:     message,
			RecipientID: &recipient,
		},
	}
}

func TestEngineExecutesRulesInOrder(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	recipient := uuid.New()
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("first", recipient))
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("second", recipient))
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("third", recipient))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "in_progress", "done")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.delivered, 3)
	assert.Equal(t, "first", f.notifier.delivered[0].message)
	assert.Equal(t, "second", f.notifier.delivered[1].message)
	assert.Equal(t, "third", f.notifier.delivered[2].message)
}

func TestEngineNonMatchingRulesSkipped(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	recipient := uuid.New()
	f.addStatusRule(t, nil, strPtr("archived"), notifyAction("should not fire", recipient))
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("should fire", recipient))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "in_progress", "done")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.delivered, 1)
	assert.Equal(t, "should fire", f.notifier.delivered[0].message)
}

func TestEngineCascadeChainsStatusChanges(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	f.addStatusRule(t, nil, strPtr("review"), changeStatusAction("approved"))
	f.addStatusRule(t, nil, strPtr("approved"), changeStatusAction("done"))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "in_progress", "review")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	assert.Equal(t, []string{"approved", "done"}, f.statusLog)
}

func TestEngineDepthLimitTruncatesCascade(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 2)
	f.addStatusRule(t, nil, strPtr("s1"), changeStatusAction("s2"))
	f.addStatusRule(t, nil, strPtr("s2"), changeStatusAction("s3"))
	f.addStatusRule(t, nil, strPtr("s3"), changeStatusAction("s4"))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "todo", "s1")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	// Depth 0 fires the first rule, depth 1 the second; the dispatch for
	// the second cascaded event arrives at the limit and is dropped.
	assert.Equal(t, []string{"s2", "s3"}, f.statusLog)
}

func TestEngineRuleFiresAtMostOncePerChain(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 10)
	// An empty condition matches every transition, including the one this
	// rule itself causes.
	f.addStatusRule(t, nil, nil, changeStatusAction("done"))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "todo", "in_progress")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	assert.Equal(t, []string{"done"}, f.statusLog)
}

func TestEnginePingPongTerminates(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 10)
	f.addStatusRule(t, nil, strPtr("a"), changeStatusAction("b"))
	f.addStatusRule(t, nil, strPtr("b"), changeStatusAction("a"))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "todo", "a")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	// Each rule fires once; the second cascade finds both already fired.
	assert.Equal(t, []string{"b", "a"}, f.statusLog)
}

func TestEngineActionFailureIsolated(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	recipient := uuid.New()
	f.notifier.notifyFn = func(ctx context.Context, recipientID uuid.UUID, message string) error {
		if message == "boom" {
			return errors.New("delivery failed")
		}
		f.notifier.delivered = append(f.notifier.delivered, notification{recipientID, message})
		return nil
	}

	f.addStatusRule(t, nil, strPtr("done"), notifyAction("boom", recipient))
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("survivor", recipient))

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "in_progress", "done")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.delivered, 1)
	assert.Equal(t, "survivor", f.notifier.delivered[0].message)
}

func TestEngineTaskGoneSkipsEvent(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	recipient := uuid.New()
	f.addStatusRule(t, nil, nil, notifyAction("never", recipient))

	source := &mockRuleSource{
		listActiveFn: func(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error) {
			return f.rules, nil
		},
	}
	reader := &mockTaskReader{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			return nil, store.ErrTaskNotFound
		},
	}
	log, _ := logger.GetTestLogger(t)
	executor := automation.NewExecutor(&mockTaskMutator{}, f.notifier, nil, time.Second, log)
	engine := automation.NewEngine(source, reader, executor, automation.DefaultEngineConfig(), log)

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "todo", "done")
	require.NoError(t, engine.HandleEvent(context.Background(), event))
	assert.Empty(t, f.notifier.delivered)
}

func TestEngineRuleLoadErrorPropagates(t *testing.T) {
	t.Parallel()

	source := &mockRuleSource{
		listActiveFn: func(ctx context.Context, projectID uuid.UUID, trigger domain.TriggerType) ([]*domain.Rule, error) {
			return nil, errors.New("db down")
		},
	}
	reader := &mockTaskReader{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
			t.Fatal("task should not be loaded when rules fail to load")
			return nil, nil
		},
	}
	log, _ := logger.GetTestLogger(t)
	executor := automation.NewExecutor(&mockTaskMutator{}, &mockNotifier{}, nil, time.Second, log)
	engine := automation.NewEngine(source, reader, executor, automation.DefaultEngineConfig(), log)

	event := domain.NewStatusChangeEvent(uuid.New(), uuid.New(), "todo", "done")
	err := engine.HandleEvent(context.Background(), event)
	assert.Error(t, err)
}

func TestEngineRuleDeletedMidDispatchStillExecutes(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, 5)
	recipient := uuid.New()
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("first", recipient))
	f.addStatusRule(t, nil, strPtr("done"), notifyAction("second", recipient))

	// The first delivery deletes every rule, as a concurrent owner request
	// would. The chain keeps running against the snapshot loaded at
	// dispatch time.
	f.notifier.notifyFn = func(ctx context.Context, recipientID uuid.UUID, message string) error {
		f.notifier.delivered = append(f.notifier.delivered, notification{recipientID, message})
		f.rules = nil
		return nil
	}

	event := domain.NewStatusChangeEvent(f.taskID, f.projectID, "in_progress", "done")
	require.NoError(t, f.engine.HandleEvent(context.Background(), event))

	require.Len(t, f.notifier.delivered, 2)
	assert.Equal(t, "first", f.notifier.delivered[0].message)
	assert.Equal(t, "second", f.notifier.delivered[1].message)
}
