package kafka_middleware

import (
	"context"

	"verleih/pkg/kafka"
	"verleih/pkg/metrics"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		err := next(ctx, msg)
		metrics.EventsPublishedTotal.WithLabelValues(msg.Topic, result(err)).Inc()
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		err := next(ctx, msg)
		metrics.EventsConsumedTotal.WithLabelValues(msg.Topic, result(err)).Inc()
		return err
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
