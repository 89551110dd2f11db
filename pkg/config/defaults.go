package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "verleih"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAvailabilityDefaultWindow = 7 * 24 * time.Hour
	DefaultConflictingStatuses       = "approved"
	DefaultDepotLockTTL              = 10 * time.Second
	DefaultReminderOverdueDays       = 7

	DefaultEventsEnabled        = true
	DefaultRentalEventsTopic    = "rental-events"
	DefaultRentalEventsDLQTopic = "dlq-rental-events"
	DefaultNotifierGroupID      = "notifier-consumer-group"

	DefaultPaginationLimit = 100
)
