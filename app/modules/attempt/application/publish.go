package attemptservice

import (
	"context"

	"github.com/Black-And-White-Club/speedsolve/app/eventbus"
	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	scoped "github.com/Black-And-White-Club/speedsolve/pkg/eventbus"
)

// publish emits payload on topic. Failures are logged: the write has
// already committed and the caller's result stands.
func (s *AttemptService) publish(ctx context.Context, topic string, pair *pairKey, payload any) {
	if s.eventBus == nil {
		return
	}

	msg, err := eventbus.NewMessage(ctx, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		return
	}
	if pair != nil {
		scoped.ScopeToPair(msg, pair.userID, pair.puzzleTypeID)
	}

	if err := s.eventBus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return
	}
	s.logger.DebugContext(ctx, "Event published",
		attr.ExtractCorrelationID(ctx),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
}
