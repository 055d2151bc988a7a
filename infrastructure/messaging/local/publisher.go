package local

import (
	"context"
	"sync"
	"time"

	"crud-microservices/application/ports"
	"crud-microservices/domain/events"

	"go.uber.org/zap"
)

// Publisher logs events instead of sending them. It also keeps the last
// envelopes so offline runs and tests can inspect what was emitted.
type Publisher struct {
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	published []events.Envelope
	keep      int
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a log-only publisher retaining up to keep envelopes.
func NewPublisher(logger *zap.Logger, keep int) *Publisher {
	return &Publisher{logger: logger, now: time.Now, keep: keep}
}

// Publish implements ports.EventPublisher.
func (p *Publisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	env := events.NewEnvelope(eventType, payload, p.now())
	p.logger.Info("Event published (local)",
		zap.String("eventType", eventType),
		zap.Any("data", payload),
		zap.String("timestamp", env.Timestamp),
	)

	if p.keep > 0 {
		p.mu.Lock()
		p.published = append(p.published, env)
		if over := len(p.published) - p.keep; over > 0 {
			p.published = p.published[over:]
		}
		p.mu.Unlock()
	}
	return nil
}

// Published returns a copy of the retained envelopes.
func (p *Publisher) Published() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.published...)
}

// Ping always succeeds.
func (p *Publisher) Ping(context.Context) error { return nil }
