package mongo

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout(t *testing.T) {
	t.Run("adds deadline to plain context", func(t *testing.T) {
		ctx, cancel := WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected a deadline")
		}
		if time.Until(deadline) > time.Minute {
			t.Errorf("deadline too far: %v", deadline)
		}
	})

	t.Run("keeps tighter parent deadline", func(t *testing.T) {
		parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancelParent()

		ctx, cancel := WithTimeout(parent, time.Hour)
		defer cancel()

		deadline, _ := ctx.Deadline()
		if time.Until(deadline) > time.Second {
			t.Errorf("expected parent deadline to win, got %v", time.Until(deadline))
		}
	})
}
