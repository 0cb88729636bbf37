package event

import (
	"context"
	"log/slog"

	pkgkafka "github.com/infLocus/Crowdsourced-Review-Platform/pkg/kafka"
)

// LocalBus is an in-process pkgkafka.Publisher used when Kafka is disabled.
// It hands every event straight to the handler on the caller's goroutine.
type LocalBus struct {
	handler pkgkafka.Handler
	logger  *slog.Logger
}

// NewLocalBus creates a bus delivering to handler.
func NewLocalBus(handler pkgkafka.Handler, logger *slog.Logger) *LocalBus {
	return &LocalBus{handler: handler, logger: logger}
}

// Publish delivers the event. Cancellation of the request context does not
// abort delivery of an event whose change is already committed.
func (b *LocalBus) Publish(ctx context.Context, topic string, evt *pkgkafka.Event) error {
	if err := b.handler(context.WithoutCancel(ctx), evt); err != nil {
		b.logger.ErrorContext(ctx, "local event delivery failed",
			slog.String("topic", topic),
			slog.String("event_type", evt.EventType),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
