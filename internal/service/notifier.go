package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/automation"
)

// LogNotifier implements automation.Notifier by writing structured log
// records. It stands in until a real delivery channel (email, websocket
// push) is wired up; recipients and messages are fully captured in the
// log stream so nothing is lost in the meantime.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. If logger is nil, the default
// logger is used.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Ensure LogNotifier implements automation.Notifier
var _ automation.Notifier = (*LogNotifier)(nil)

// Notify implements automation.Notifier.Notify
func (n *LogNotifier) Notify(ctx context.Context, recipientID uuid.UUID, message string) error {
	n.logger.InfoContext(ctx, "notification delivered",
		slog.String("recipient_id", recipientID.String()),
		slog.String("message", message))
	return nil
}

// LogBadgeAwarder implements automation.BadgeAwarder by writing structured
// log records, for deployments without a badge backend.
type LogBadgeAwarder struct {
	logger *slog.Logger
}

// NewLogBadgeAwarder creates a LogBadgeAwarder. If logger is nil, the
// default logger is used.
func NewLogBadgeAwarder(logger *slog.Logger) *LogBadgeAwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogBadgeAwarder{
		logger: logger.With(slog.String("component", "badge_awarder")),
	}
}

// Ensure LogBadgeAwarder implements automation.BadgeAwarder
var _ automation.BadgeAwarder = (*LogBadgeAwarder)(nil)

// Award implements automation.BadgeAwarder.Award
func (b *LogBadgeAwarder) Award(ctx context.Context, userID uuid.UUID, badgeType string) error {
	b.logger.InfoContext(ctx, "badge awarded",
		slog.String("user_id", userID.String()),
		slog.String("badge_type", badgeType))
	return nil
}
