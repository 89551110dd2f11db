// Package reminders finds approved rentals that are overdue and announces
// them as rental.overdue events.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"verleih/pkg/events"
	"verleih/pkg/logger"
	"verleih/pkg/metrics"
	"verleih/pkg/model"
)

type RentalFinder interface {
	FindDueBetween(ctx context.Context, from, to time.Time, state model.RentalStatus) ([]*model.Rental, error)
}

type Job struct {
	rentals     RentalFinder
	publisher   events.Publisher
	overdueDays int
	log         *logger.Logger
	now         func() time.Time
}

func NewJob(rentals RentalFinder, publisher events.Publisher, overdueDays int, log *logger.Logger) *Job {
	return &Job{
		rentals:     rentals,
		publisher:   publisher,
		overdueDays: overdueDays,
		log:         log,
		now:         time.Now,
	}
}

// DueDay returns the UTC day whose returns are overdueDays old at now.
func DueDay(now time.Time, overdueDays int) (time.Time, time.Time) {
	y, m, d := now.UTC().Date()
	from := time.Date(y, m, d-overdueDays, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// Run publishes one event per approved rental whose return date fell on the
// due day. It keeps going after a failed publish and reports how many
// reminders went out.
func (j *Job) Run(ctx context.Context) (int, error) {
	from, to := DueDay(j.now(), j.overdueDays)

	due, err := j.rentals.FindDueBetween(ctx, from, to, model.StatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to find due rentals: %w", err)
	}

	j.log.Info("Overdue rentals found",
		"count", len(due),
		"return_date", from.Format(time.DateOnly),
		"overdue_days", j.overdueDays,
	)

	sent := 0
	var errs []error
	for _, rental := range due {
		event := events.NewRentalEvent(events.TypeRentalOverdue, rental, "", "")
		if err := j.publisher.Publish(ctx, event); err != nil {
			j.log.Error("Failed to publish reminder", "rental_id", rental.ID, "error", err)
			errs = append(errs, fmt.Errorf("rental %s: %w", rental.ID, err))
			continue
		}
		metrics.RemindersSentTotal.Inc()
		sent++
	}

	return sent, errors.Join(errs...)
}
