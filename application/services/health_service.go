package services

import (
	"context"

	"crud-microservices/application/ports"
	"crud-microservices/pkg/utils"

	"go.uber.org/zap"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Service string `json:"service"`
	Error   string `json:"error,omitempty"`
}

// HealthReport aggregates every check.
type HealthReport struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Healthy reports whether every check passed.
func (r *HealthReport) Healthy() bool { return r.Status == StatusHealthy }

type probe struct {
	name    string
	service string
	ping    func(context.Context) error
}

// HealthService probes the backends a request depends on.
type HealthService struct {
	probes []probe
	logger *zap.Logger
	now    utils.Clock
}

// NewHealthService creates a new health service
func NewHealthService(store ports.RecordStore, publisher ports.EventPublisher, notifier ports.Notifier, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		probes: []probe{
			{name: "dynamodb", service: "DynamoDB", ping: store.Ping},
			{name: "eventbus", service: "EventBridge", ping: publisher.Ping},
			{name: "queue", service: "SQS", ping: notifier.Ping},
		},
		logger: logger,
		now:    utils.SystemClock,
	}
}

// Check runs every probe. It never fails; failures are reported per check.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(s.probes)),
		Timestamp: utils.ISOTimestamp(s.now()),
	}
	for _, p := range s.probes {
		result := CheckResult{Healthy: true, Service: p.service}
		if err := p.ping(ctx); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			report.Status = StatusUnhealthy
			s.logger.Warn("Health check failed", zap.String("check", p.name), zap.Error(err))
		}
		report.Checks[p.name] = result
	}
	return report
}
