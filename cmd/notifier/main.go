package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	depotsrepository "verleih/internal/depots/repository"
	"verleih/internal/notifier"
	"verleih/pkg/config"
	"verleih/pkg/kafka"
	kafka_config "verleih/pkg/kafka/config"
	kafka_middleware "verleih/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	n := notifier.New(depotsrepository.NewMongoDepotRepository(cfg), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, cfg.RentalEventsTopic, cfg.NotifierGroupID, cfg.RentalEventsDLQTopic, n.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.RentalEventsTopic, "group_id", cfg.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
