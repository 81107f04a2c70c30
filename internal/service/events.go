package service

import (
	"context"

	"crm-graphql/internal/events"

	"go.uber.org/zap"
)

// publish sends an event after a successful write. Failures are logged, never returned.
func publish(ctx context.Context, publisher events.Publisher, logger *zap.Logger, env events.Envelope, err error) {
	if err == nil {
		err = publisher.Publish(ctx, env)
	}
	if err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", env.EventType),
			zap.String("correlation_id", env.CorrelationID),
			zap.Error(err),
		)
	}
}
