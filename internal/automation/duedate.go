package automation

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
)

// OverdueClaimer atomically claims tasks whose due date has passed and that
// have not yet been surfaced. A claimed task is never returned again by a
// later call.
type OverdueClaimer interface {
	ClaimOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Task, error)
}

// ScannerConfig holds the due-date scanner's tuning knobs.
type ScannerConfig struct {
	// Interval between scans.
	Interval time.Duration

	// BatchSize caps how many overdue tasks one scan claims.
	BatchSize int
}

// Scanner periodically sweeps for tasks whose due date has passed and
// raises a due_date_passed event for each, exactly once per task.
type Scanner struct {
	tasks   OverdueClaimer
	emitter events.Emitter
	config  ScannerConfig
	logger  *slog.Logger
	clock   func() time.Time
}

// NewScanner creates a due-date Scanner. Panics if tasks or emitter is nil.
func NewScanner(
	tasks OverdueClaimer,
	emitter events.Emitter,
	config ScannerConfig,
	logger *slog.Logger,
) *Scanner {
	if tasks == nil {
		panic("NewScanner: tasks cannot be nil")
	}
	if emitter == nil {
		panic("NewScanner: emitter cannot be nil")
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	return &Scanner{
		tasks:   tasks,
		emitter: emitter,
		config:  config,
		logger:  logger.With(slog.String("component", "due_date_scanner")),
		clock:   time.Now,
	}
}

// Run scans on the configured interval until ctx is cancelled. It blocks;
// callers typically run it in its own goroutine.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("due date scanner started",
		"interval", s.config.Interval,
		"batch_size", s.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("due date scanner stopped")
			return
		case <-ticker.C:
			if err := s.Scan(ctx); err != nil {
				s.logger.Error("due date scan failed", "error", err)
			}
		}
	}
}

// Scan claims the current batch of overdue tasks and raises one
// due_date_passed event per task. Claiming and marking are a single
// operation in the store, so a task whose event was raised is never
// claimed again even if a later scan overlaps or the process restarts.
func (s *Scanner) Scan(ctx context.Context) error {
	tasks, err := s.tasks.ClaimOverdue(ctx, s.clock(), s.config.BatchSize)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	s.logger.Info("claimed overdue tasks", "count", len(tasks))

	for _, task := range tasks {
		event := domain.NewDueDatePassedEvent(task.ID, task.ProjectID)
		if err := s.emitter.Emit(ctx, event); err != nil {
			// The claim already stuck, so this task will not be retried.
			// Log loudly rather than failing the rest of the batch.
			s.logger.Error("failed to emit due date event",
				"error", err,
				"task_id", task.ID,
				"project_id", task.ProjectID)
		}
	}

	return nil
}
