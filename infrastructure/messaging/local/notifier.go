package local

import (
	"context"

	"crud-microservices/application/ports"
	"crud-microservices/domain/events"

	"go.uber.org/zap"
)

// Notifier logs notifications instead of enqueueing them.
type Notifier struct {
	logger *zap.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a log-only notifier.
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Send implements ports.Notifier.
func (n *Notifier) Send(_ context.Context, msg events.Notification) error {
	n.logger.Info("Notification sent (local)",
		zap.String("type", msg.Type),
		zap.String("userId", msg.UserID),
		zap.String("message", msg.Message),
	)
	return nil
}

// Ping always succeeds.
func (n *Notifier) Ping(context.Context) error { return nil }
