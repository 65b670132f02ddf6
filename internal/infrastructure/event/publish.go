package event

import (
	"context"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PublishDomainEvents hands each aggregate's recorded events to publisher
// and clears them. Call it after the write has committed. A publish failure
// is logged and never returned.
func PublishDomainEvents(ctx context.Context, publisher shared.EventPublisher, aggregates ...shared.AggregateRoot) {
	if publisher == nil {
		return
	}
	for _, aggregate := range aggregates {
		events := aggregate.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.L(ctx).Warn("Failed to publish domain events",
				zap.String("aggregate_id", aggregate.GetID().String()),
				zap.Error(err),
			)
		}
		aggregate.ClearDomainEvents()
	}
}
