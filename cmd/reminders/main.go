package main

import (
	"context"
	"time"

	"verleih/internal/reminders"
	rentalsrepository "verleih/internal/rentals/repository"
	"verleih/pkg/config"
	"verleih/pkg/events"
)

const JobName = "reminders"

// Runs once; schedule it daily with cron or a Kubernetes CronJob.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	publisher, err := events.NewPublisherFromConfig(cfg, JobName)
	if err != nil {
		cfg.Log.Error("Failed to set up event publisher", "error", err)
		return
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	job := reminders.NewJob(rentalsrepository.NewMongoRentalRepository(cfg), publisher, cfg.ReminderOverdueDays, cfg.Log)
	sent, err := job.Run(ctx)
	if err != nil {
		cfg.Log.Error("Reminder job finished with errors", "sent", sent, "error", err)
		return
	}
	cfg.Log.Info("Reminder job finished", "sent", sent)
}
