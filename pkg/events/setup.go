package events

import (
	"fmt"

	"verleih/pkg/config"
	"verleih/pkg/kafka"
	kafka_config "verleih/pkg/kafka/config"
	kafka_middleware "verleih/pkg/kafka/middleware"
)

// NewPublisherFromConfig returns a Kafka-backed publisher for the rental
// events topic, or a NopPublisher when events are disabled.
func NewPublisherFromConfig(cfg *config.Config, source string) (Publisher, error) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Rental events disabled")
		return NopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.RentalEventsTopic, cfg.RentalEventsDLQTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	cfg.Log.Info("Rental events enabled", "topic", cfg.RentalEventsTopic)
	return NewKafkaPublisher(producer, source), nil
}
