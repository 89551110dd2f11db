package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verleih_http_request_duration_seconds",
		Help:    "Duration of HTTP requests by method, route and status.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route", "status"},
	)

	RentalsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verleih_rentals_created_total",
		Help: "Total number of rentals successfully created.",
	})

	RentalTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verleih_rental_transitions_total",
		Help: "Total number of committed rental state transitions.",
	},
		[]string{"from", "to"},
	)

	RejectedTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verleih_rental_transitions_rejected_total",
		Help: "Total number of rejected rental state transitions by reason.",
	},
		[]string{"reason"},
	)

	CapacityViolationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verleih_capacity_violations_total",
		Help: "Total number of rental lines rejected because availability was too low.",
	})

	AvailabilityQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verleih_availability_queries_total",
		Help: "Total number of availability computations.",
	})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verleih_events_published_total",
		Help: "Total number of published events by topic and result.",
	},
		[]string{"topic", "result"},
	)

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verleih_events_consumed_total",
		Help: "Total number of consumed events by topic and result.",
	},
		[]string{"topic", "result"},
	)

	RemindersSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verleih_overdue_reminders_total",
		Help: "Total number of overdue reminders emitted.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verleih_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
