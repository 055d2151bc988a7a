package services

import (
	"context"
	"errors"

	"crud-microservices/application/ports"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// base carries what every entity service needs.
type base struct {
	store     ports.RecordStore
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       utils.Clock
}

func newBase(store ports.RecordStore, publisher ports.EventPublisher, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{store: store, publisher: publisher, logger: logger, now: utils.SystemClock}
}

// SetClock replaces the time source.
func (b *base) SetClock(now utils.Clock) { b.now = now }

// emit publishes after a successful write. Publish failures are logged and
// never undo the write.
func (b *base) emit(ctx context.Context, eventType string, payload interface{}) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(ctx, eventType, payload); err != nil {
		b.logger.Error("Failed to publish event",
			zap.String("eventType", eventType),
			zap.Error(err),
		)
	}
}

func requireCaller(caller *auth.CallerIdentity) error {
	if caller == nil || caller.UserID == "" {
		return apperrors.NewAuthenticationError("Unauthorized").WithCode(apperrors.CodeAuthRequired)
	}
	return nil
}

func isConditionFailed(err error) bool {
	return errors.Is(err, ports.ErrConditionFailed)
}
