package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"crud-microservices/application/services"
	"crud-microservices/infrastructure/config"
	"crud-microservices/infrastructure/di"
	"crud-microservices/pkg/observability"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// detail is the envelope the event publisher puts in each EventBridge entry.
type detail struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// consumer turns lifecycle events into notifications.
type consumer struct {
	notifications *services.NotificationService
	tracer        *observability.Tracer
	logger        *zap.Logger
}

func (c *consumer) handle(ctx context.Context, event events.CloudWatchEvent) error {
	var d detail
	if err := json.Unmarshal(event.Detail, &d); err != nil {
		c.logger.Error("Malformed event detail", zap.String("id", event.ID), zap.Error(err))
		return fmt.Errorf("decode event %s: %w", event.ID, err)
	}
	eventType := d.EventType
	if eventType == "" {
		eventType = event.DetailType
	}

	return c.tracer.TraceFunction(ctx, "notifications."+eventType, func(ctx context.Context) error {
		c.tracer.AddAnnotation(ctx, "eventType", eventType)
		sent, err := c.notifications.Handle(ctx, eventType, d.Data)
		if err != nil {
			c.logger.Error("Failed to process event",
				zap.String("id", event.ID),
				zap.String("eventType", eventType),
				zap.Error(err),
			)
			return err
		}
		c.logger.Info("Event processed",
			zap.String("id", event.ID),
			zap.String("eventType", eventType),
			zap.Bool("notified", sent),
		)
		return nil
	})
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	c := &consumer{
		notifications: container.Notifications,
		tracer:        container.Tracer,
		logger:        container.Logger,
	}
	lambda.Start(c.handle)
}
