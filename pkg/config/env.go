package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAvailabilityDefaultWindow = "AVAILABILITY_DEFAULT_WINDOW"
	EnvConflictingStatuses       = "CONFLICTING_STATUSES"
	EnvDepotLockTTL              = "DEPOT_LOCK_TTL"
	EnvReminderOverdueDays       = "REMINDER_OVERDUE_DAYS"

	EnvEventsEnabled        = "EVENTS_ENABLED"
	EnvRentalEventsTopic    = "RENTAL_EVENTS_TOPIC"
	EnvRentalEventsDLQTopic = "RENTAL_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID      = "NOTIFIER_GROUP_ID"
)
