// Package events defines the rental lifecycle events the service emits and
// the publishers that deliver them.
package events

import (
	"context"
	"time"

	"verleih/pkg/model"
)

const (
	TypeRentalCreated      = "rental.created"
	TypeRentalStateChanged = "rental.state_changed"
	TypeRentalOverdue      = "rental.overdue"

	SchemaVersion = "1"
)

type RentalEvent struct {
	Type       string             `json:"type"`
	RentalID   string             `json:"rental_id"`
	DepotID    string             `json:"depot_id"`
	ActorID    string             `json:"actor_id,omitempty"`
	FromState  model.RentalStatus `json:"from_state,omitempty"`
	ToState    model.RentalStatus `json:"to_state"`
	FirstName  string             `json:"firstname"`
	LastName   string             `json:"lastname"`
	Email      string             `json:"email"`
	StartDate  time.Time          `json:"start_date"`
	ReturnDate time.Time          `json:"return_date"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// NewRentalEvent snapshots the rental fields a notification needs. FromState
// is left empty for creation and overdue events.
func NewRentalEvent(eventType string, rental *model.Rental, actorID string, from model.RentalStatus) RentalEvent {
	return RentalEvent{
		Type:       eventType,
		RentalID:   rental.ID,
		DepotID:    rental.DepotID,
		ActorID:    actorID,
		FromState:  from,
		ToState:    rental.State,
		FirstName:  rental.FirstName,
		LastName:   rental.LastName,
		Email:      rental.Email,
		StartDate:  rental.StartDate,
		ReturnDate: rental.ReturnDate,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event RentalEvent) error
	Close() error
}

// NopPublisher drops every event. Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RentalEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
