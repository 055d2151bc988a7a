package services

import (
	"context"
	"encoding/json"
	"fmt"

	"crud-microservices/application/ports"
	"crud-microservices/domain/entities"
	"crud-microservices/domain/events"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// NotificationService turns lifecycle events into queued notifications.
type NotificationService struct {
	notifier ports.Notifier
	logger   *zap.Logger
	now      utils.Clock
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifier ports.Notifier, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{notifier: notifier, logger: logger, now: utils.SystemClock}
}

// Handle processes one event. Event types without a notification are logged
// and skipped. It reports whether a notification was sent.
func (s *NotificationService) Handle(ctx context.Context, eventType string, data json.RawMessage) (bool, error) {
	n, err := s.build(eventType, data)
	if err != nil {
		return false, err
	}
	if n == nil {
		s.logger.Info("No notification for event type", zap.String("eventType", eventType))
		return false, nil
	}

	if err := s.notifier.Send(ctx, *n); err != nil {
		return false, fmt.Errorf("failed to send %s notification: %w", n.Type, err)
	}
	s.logger.Info("Notification sent", zap.String("type", n.Type), zap.String("eventType", eventType))
	return true, nil
}

func (s *NotificationService) build(eventType string, data json.RawMessage) (*events.Notification, error) {
	ts := utils.ISOTimestamp(s.now())
	switch eventType {
	case events.UserCreated:
		var user entities.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user event: %w", err)
		}
		return &events.Notification{
			Type:      events.NotificationUserWelcome,
			UserID:    user.ID,
			Message:   fmt.Sprintf("Welcome %s ! Your account has been created successfully.", user.Name),
			Timestamp: ts,
		}, nil

	case events.OrderCreated:
		var order entities.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order event: %w", err)
		}
		return &events.Notification{
			Type:      events.NotificationOrderConfirmation,
			UserID:    order.UserID,
			OrderID:   order.ID,
			Message:   fmt.Sprintf("Order %s has been placed successfully. Total: $%.2f", order.ID, order.TotalAmount),
			Timestamp: ts,
		}, nil

	case events.ProductCreated:
		var product entities.Product
		if err := json.Unmarshal(data, &product); err != nil {
			return nil, fmt.Errorf("failed to decode product event: %w", err)
		}
		return &events.Notification{
			Type:      events.NotificationProductAdded,
			ProductID: product.ID,
			Message:   fmt.Sprintf("New product added to the catalog in %s: %s", product.Category, product.Name),
			Timestamp: ts,
		}, nil
	}
	return nil, nil
}
