package kafka

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"verleih/pkg/logger"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("rental-1").
		WithValue(map[string]string{"state": "approved"}).
		WithEventType("rental.state_changed").
		WithSource("rentals").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "rental-1" {
		t.Errorf("Key = %q", msg.Key)
	}
	if msg.EventID() == "" {
		t.Errorf("event id not generated")
	}
	if msg.EventType() != "rental.state_changed" {
		t.Errorf("EventType() = %q", msg.EventType())
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Errorf("timestamp header missing")
	}

	var payload map[string]string
	if err := msg.DecodeValue(&payload); err != nil || payload["state"] != "approved" {
		t.Errorf("DecodeValue() = %v, %v", payload, err)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	if _, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).Build(); err == nil {
		t.Fatal("expected encoding error")
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 11; i++ {
		msg.IncrementRetryCount()
	}
	if msg.RetryCount() != 11 {
		t.Errorf("RetryCount() = %d, want 11", msg.RetryCount())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("db", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("decode", errors.New("x")), ErrorTypePermanent},
		{"wrapped transient", fmt.Errorf("handler: %w", NewTransientError("db", nil)), ErrorTypeTransient},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("bad payload"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("db", nil)

	if !ShouldRetry(transient, 0, 3) {
		t.Errorf("transient error below max should retry")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Errorf("max retries reached should not retry")
	}
	if ShouldRetry(NewPermanentError("decode", nil), 0, 3) {
		t.Errorf("permanent error should not retry")
	}
}

func TestConsumer_HandleWithRetry(t *testing.T) {
	c := &Consumer{topic: "rental-events", maxRetries: 2, log: logger.Discard()}

	t.Run("transient errors are retried up to the limit", func(t *testing.T) {
		calls := 0
		err := c.handleWithRetry(context.Background(), Message{Headers: map[string]string{}}, func(context.Context, Message) error {
			calls++
			return NewTransientError("db down", nil)
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		calls := 0
		err := c.handleWithRetry(context.Background(), Message{Headers: map[string]string{}}, func(context.Context, Message) error {
			calls++
			if calls == 1 {
				return NewTransientError("db down", nil)
			}
			return nil
		})
		if err != nil || calls != 2 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		_ = c.handleWithRetry(context.Background(), Message{Headers: map[string]string{}}, func(context.Context, Message) error {
			calls++
			return NewPermanentError("bad json", nil)
		})
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := &Producer{topic: "rental-events", log: logger.Discard()}

	if err := p.Publish(context.Background(), Message{Value: []byte("{}")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("err = %v, want ErrEmptyKey", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("err = %v, want ErrEmptyValue", err)
	}

	p.closed = true
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("err = %v, want ErrProducerClosed", err)
	}
}
