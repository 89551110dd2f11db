// Package notifier turns rental events into the notices sent to requesters
// and depot managers. Delivery is left to an external mailer; the notices
// are logged.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/events"
	"verleih/pkg/kafka"
	"verleih/pkg/logger"
	"verleih/pkg/model"
)

const subjectPrefix = "[Verleihtool]"

type DepotStore interface {
	FindByID(ctx context.Context, id string) (*model.Depot, error)
}

type Notice struct {
	To      []string
	Subject string
}

type Notifier struct {
	depots DepotStore
	log    *logger.Logger
}

func New(depots DepotStore, log *logger.Logger) *Notifier {
	return &Notifier{depots: depots, log: log}
}

// Handle is a kafka.MessageHandler. A missing depot or a malformed event is
// permanent; anything else is left for the consumer to classify.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	event, err := events.Decode(msg)
	if err != nil {
		return err
	}

	depot, err := n.depots.FindByID(ctx, event.DepotID)
	if err != nil {
		if errors.Is(err, depotserrors.ErrDepotNotFound) || errors.Is(err, depotserrors.ErrInvalidID) {
			return kafka.NewPermanentError("depot of rental event not found", err)
		}
		return fmt.Errorf("failed to load depot %s: %w", event.DepotID, err)
	}

	for _, notice := range Compose(event, depot) {
		n.log.Info("Notification composed",
			"rental_id", event.RentalID,
			"event_type", event.Type,
			"to", notice.To,
			"subject", notice.Subject,
		)
	}
	return nil
}

// Compose builds the notices for one event. Unknown event types yield none.
func Compose(event events.RentalEvent, depot *model.Depot) []Notice {
	requester := []string{event.Email}

	switch event.Type {
	case events.TypeRentalCreated:
		return []Notice{
			{To: requester, Subject: fmt.Sprintf("%s Your rental request, %s %s", subjectPrefix, event.FirstName, event.LastName)},
			{To: depot.ManagerIDs, Subject: fmt.Sprintf("%s New rental request by %s %s for %q", subjectPrefix, event.FirstName, event.LastName, depot.Name)},
		}
	case events.TypeRentalStateChanged:
		return []Notice{
			{To: requester, Subject: fmt.Sprintf("%s Your rental request from %q is now %s, %s %s", subjectPrefix, depot.Name, event.ToState, event.FirstName, event.LastName)},
		}
	case events.TypeRentalOverdue:
		days := OverdueDays(event)
		return []Notice{
			{To: requester, Subject: fmt.Sprintf("%s Your rental request from %q is due since %d days, %s %s!", subjectPrefix, depot.Name, days, event.FirstName, event.LastName)},
			{To: depot.ManagerIDs, Subject: fmt.Sprintf("%s Rental request by %s %s from %q has been due since %d days!", subjectPrefix, event.FirstName, event.LastName, depot.Name, days)},
		}
	default:
		return nil
	}
}

// OverdueDays counts whole days between the return date and the event.
func OverdueDays(event events.RentalEvent) int {
	if !event.OccurredAt.After(event.ReturnDate) {
		return 0
	}
	return int(event.OccurredAt.Sub(event.ReturnDate) / (24 * time.Hour))
}
