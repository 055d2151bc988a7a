package di

import (
	"crud-microservices/application/ports"
	"crud-microservices/application/services"
	"crud-microservices/infrastructure/config"
	"crud-microservices/interfaces/http/rest"
	"crud-microservices/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Store         ports.RecordStore
	Objects       ports.ObjectStore
	Publisher     ports.EventPublisher
	Notifier      ports.Notifier
	Prometheus    *observability.Prometheus
	Metrics       *observability.Metrics
	Tracer        *observability.Tracer
	Notifications *services.NotificationService
	Router        *rest.Router
}
