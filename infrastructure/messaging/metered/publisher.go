package metered

import (
	"context"

	"crud-microservices/application/ports"
	"crud-microservices/pkg/observability"
)

// Publisher counts every publish attempt in Prometheus and every delivered
// event as a CloudWatch business event. Either sink may be nil.
type Publisher struct {
	next       ports.EventPublisher
	prometheus *observability.Prometheus
	metrics    *observability.Metrics
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher wraps next.
func NewPublisher(next ports.EventPublisher, prometheus *observability.Prometheus, metrics *observability.Metrics) *Publisher {
	return &Publisher{next: next, prometheus: prometheus, metrics: metrics}
}

// Publish implements ports.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	err := p.next.Publish(ctx, eventType, payload)
	p.prometheus.ObservePublish(eventType, err)
	if err == nil {
		p.metrics.RecordBusinessEvent(ctx, eventType)
	}
	return err
}

// Ping implements ports.EventPublisher.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.next.Ping(ctx)
}
