package automation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/automation"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// mockOverdueClaimer implements automation.OverdueClaimer.
type mockOverdueClaimer struct {
	claimFn func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)
}

func (m *mockOverdueClaimer) ClaimOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	return m.claimFn(ctx, now, limit)
}

// mockEmitter implements events.Emitter and records what was emitted.
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

func overdueTask(projectID uuid.UUID) *domain.Task {
	due := time.Now().Add(-time.Hour)
	return &domain.Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Title:     "overdue",
		Status:    "in_progress",
		DueDate:   &due,
	}
}

func newTestScanner(t *testing.T, claimer automation.OverdueClaimer, emitter *mockEmitter) *automation.Scanner {
	t.Helper()
	log, _ := logger.GetTestLogger(t)
	return automation.NewScanner(claimer, emitter, automation.ScannerConfig{
		Interval:  time.Minute,
		BatchSize: 10,
	}, log)
}

func TestScannerEmitsOneEventPerClaimedTask(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	tasks := []*domain.Task{overdueTask(projectID), overdueTask(projectID)}

	claimer := &mockOverdueClaimer{
		claimFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
			assert.Equal(t, 10, limit)
			return tasks, nil
		},
	}
	emitter := &mockEmitter{}
	scanner := newTestScanner(t, claimer, emitter)

	require.NoError(t, scanner.Scan(context.Background()))

	require.Len(t, emitter.emitted, 2)
	for i, event := range emitter.emitted {
		assert.Equal(t, domain.TriggerDueDatePassed, event.Kind)
		assert.Equal(t, tasks[i].ID, event.TaskID)
		assert.Equal(t, projectID, event.ProjectID)
	}
}

func TestScannerEmptyClaimIsQuiet(t *testing.T) {
	t.Parallel()

	claimer := &mockOverdueClaimer{
		claimFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
			return nil, nil
		},
	}
	emitter := &mockEmitter{}
	scanner := newTestScanner(t, claimer, emitter)

	require.NoError(t, scanner.Scan(context.Background()))
	assert.Empty(t, emitter.emitted)
}

func TestScannerClaimErrorPropagates(t *testing.T) {
	t.Parallel()

	claimer := &mockOverdueClaimer{
		claimFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
			return nil, errors.New("db down")
		},
	}
	scanner := newTestScanner(t, claimer, &mockEmitter{})

	assert.Error(t, scanner.Scan(context.Background()))
}

func TestScannerEmitFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	tasks := []*domain.Task{overdueTask(projectID), overdueTask(projectID)}

	claimer := &mockOverdueClaimer{
		claimFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
			return tasks, nil
		},
	}

	var attempts int
	emitter := &mockEmitter{}
	emitter.emitFn = func(ctx context.Context, event domain.Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("handler failed")
		}
		emitter.emitted = append(emitter.emitted, event)
		return nil
	}
	scanner := newTestScanner(t, claimer, emitter)

	require.NoError(t, scanner.Scan(context.Background()))
	assert.Equal(t, 2, attempts)
	require.Len(t, emitter.emitted, 1)
	assert.Equal(t, tasks[1].ID, emitter.emitted[0].TaskID)
}

func TestScannerRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	claimer := &mockOverdueClaimer{
		claimFn: func(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error) {
			return nil, nil
		},
	}
	scanner := newTestScanner(t, claimer, &mockEmitter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scanner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop after context cancellation")
	}
}
