package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"verleih/pkg/kafka"
	"verleih/pkg/model"
)

type mockProducer struct {
	published []kafka.Message
	err       error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func testRental() *model.Rental {
	return &model.Rental{
		ID:         "0b6f1f8e-5d4e-4b55-9d0e-0f3d3b0a1c11",
		DepotID:    "65f000000000000000000001",
		FirstName:  "Alex",
		LastName:   "Example",
		Email:      "alex@example.org",
		StartDate:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		State:      model.StatusApproved,
	}
}

func TestNewRentalEvent(t *testing.T) {
	rental := testRental()
	event := NewRentalEvent(TypeRentalStateChanged, rental, "manager-1", model.StatusPending)

	if event.RentalID != rental.ID || event.DepotID != rental.DepotID {
		t.Errorf("ids not copied: %+v", event)
	}
	if event.FromState != model.StatusPending || event.ToState != model.StatusApproved {
		t.Errorf("states = %s -> %s", event.FromState, event.ToState)
	}
	if event.OccurredAt.IsZero() {
		t.Errorf("OccurredAt not set")
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &mockProducer{}
	publisher := NewKafkaPublisher(producer, "rentals")

	ctx := WithCorrelationID(context.Background(), "req-42")
	event := NewRentalEvent(TypeRentalCreated, testRental(), "user-1", "")
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(producer.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(producer.published))
	}
	msg := producer.published[0]
	if msg.Key != event.RentalID {
		t.Errorf("Key = %q, want rental id", msg.Key)
	}
	if msg.EventType() != TypeRentalCreated {
		t.Errorf("EventType() = %q", msg.EventType())
	}
	if msg.CorrelationID() != "req-42" {
		t.Errorf("CorrelationID() = %q", msg.CorrelationID())
	}

	decoded, err := Decode(msg)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Email != event.Email || !decoded.ReturnDate.Equal(event.ReturnDate) {
		t.Errorf("decoded event differs: %+v", decoded)
	}
}

func TestKafkaPublisher_PropagatesProducerError(t *testing.T) {
	boom := errors.New("broker down")
	publisher := NewKafkaPublisher(&mockProducer{err: boom}, "rentals")

	err := publisher.Publish(context.Background(), NewRentalEvent(TypeRentalOverdue, testRental(), "", ""))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped broker error", err)
	}
}

func TestDecode_RejectsGarbageAsPermanent(t *testing.T) {
	for _, value := range []string{"not json", `{"type":"rental.created"}`} {
		_, err := Decode(kafka.Message{Value: []byte(value)})
		if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
			t.Errorf("Decode(%q) error = %v, want permanent", value, err)
		}
	}
}
