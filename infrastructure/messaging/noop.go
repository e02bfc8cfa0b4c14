// Package messaging holds event publisher implementations.
package messaging

import (
	"context"

	"okr-backend/application/ports"
	"okr-backend/domain/events"

	"go.uber.org/zap"
)

// NoopPublisher logs events instead of publishing them. Used when no event
// bus is configured, such as local runs and tests.
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a publisher that drops events after logging them
func NewNoopPublisher(logger *zap.Logger) ports.EventPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish logs the event and succeeds.
func (p *NoopPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Debug("Dropping domain event, no bus configured",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateId", event.GetAggregateID()),
	)
	return nil
}
