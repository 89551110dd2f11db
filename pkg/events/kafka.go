package events

import (
	"context"
	"fmt"

	"verleih/pkg/kafka"
)

// MessageProducer is the subset of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys messages by rental id so all events of one rental land on the
// same partition in commit order.
func (p *KafkaPublisher) Publish(ctx context.Context, event RentalEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.RentalID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(correlationID(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("build %s message: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for rental %s: %w", event.Type, event.RentalID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type correlationKey struct{}

// WithCorrelationID attaches an id that KafkaPublisher copies into the
// correlation-id header, typically the HTTP request id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Decode extracts a RentalEvent from a consumed message.
func Decode(msg kafka.Message) (RentalEvent, error) {
	var event RentalEvent
	if err := msg.DecodeValue(&event); err != nil {
		return RentalEvent{}, kafka.NewPermanentError("decode rental event", err)
	}
	if event.RentalID == "" || event.Type == "" {
		return RentalEvent{}, kafka.NewPermanentError("rental event missing type or rental id", nil)
	}
	return event, nil
}
