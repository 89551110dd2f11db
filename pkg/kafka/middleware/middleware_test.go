package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"verleih/pkg/kafka"
	"verleih/pkg/logger"
	"verleih/pkg/metrics"
)

func TestProducerMiddleware_PassesThrough(t *testing.T) {
	msg := kafka.Message{Topic: "mw-test-producer", Key: "r-1", Headers: map[string]string{}}
	boom := errors.New("boom")

	logging := LoggingProducerMiddleware(logger.Discard())
	counting := MetricsProducerMiddleware()

	next := func(ctx context.Context, m kafka.Message) error { return boom }
	wrapped := func(ctx context.Context, m kafka.Message) error { return counting(ctx, m, next) }

	if err := logging(context.Background(), msg, wrapped); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := testutil.ToFloat64(metrics.EventsPublishedTotal.WithLabelValues("mw-test-producer", "error")); got != 1 {
		t.Errorf("published error counter = %v, want 1", got)
	}
}

func TestConsumerMiddleware_CountsSuccess(t *testing.T) {
	msg := kafka.Message{Topic: "mw-test-consumer", Headers: map[string]string{}}
	called := false

	err := LoggingConsumerMiddleware(logger.Discard())(context.Background(), msg, func(ctx context.Context, m kafka.Message) error {
		return MetricsConsumerMiddleware()(ctx, m, func(context.Context, kafka.Message) error {
			called = true
			return nil
		})
	})
	if err != nil || !called {
		t.Fatalf("err = %v, called = %v", err, called)
	}
	if got := testutil.ToFloat64(metrics.EventsConsumedTotal.WithLabelValues("mw-test-consumer", "ok")); got != 1 {
		t.Errorf("consumed ok counter = %v, want 1", got)
	}
}
