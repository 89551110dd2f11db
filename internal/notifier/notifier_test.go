package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/events"
	"verleih/pkg/kafka"
	"verleih/pkg/logger"
	"verleih/pkg/model"
)

type mockDepotStore struct {
	depot *model.Depot
	err   error
}

func (m *mockDepotStore) FindByID(ctx context.Context, id string) (*model.Depot, error) {
	return m.depot, m.err
}

func overdueEvent() events.RentalEvent {
	return events.RentalEvent{
		Type:       events.TypeRentalOverdue,
		RentalID:   "r1",
		DepotID:    "d1",
		ToState:    model.StatusApproved,
		FirstName:  "Alex",
		LastName:   "Example",
		Email:      "alex@example.org",
		ReturnDate: time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC),
		OccurredAt: time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC),
	}
}

func TestCompose_Overdue(t *testing.T) {
	depot := &model.Depot{Name: "Fachschaft", ManagerIDs: []string{"m1", "m2"}}

	notices := Compose(overdueEvent(), depot)

	require.Len(t, notices, 2)
	assert.Equal(t, []string{"alex@example.org"}, notices[0].To)
	assert.Equal(t, `[Verleihtool] Your rental request from "Fachschaft" is due since 7 days, Alex Example!`, notices[0].Subject)
	assert.Equal(t, []string{"m1", "m2"}, notices[1].To)
	assert.Equal(t, `[Verleihtool] Rental request by Alex Example from "Fachschaft" has been due since 7 days!`, notices[1].Subject)
}

func TestCompose_OtherEvents(t *testing.T) {
	depot := &model.Depot{Name: "Fachschaft"}

	created := overdueEvent()
	created.Type = events.TypeRentalCreated
	notices := Compose(created, depot)
	require.Len(t, notices, 2)
	assert.Equal(t, "[Verleihtool] Your rental request, Alex Example", notices[0].Subject)

	changed := overdueEvent()
	changed.Type = events.TypeRentalStateChanged
	changed.ToState = model.StatusDeclined
	notices = Compose(changed, depot)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Subject, "is now declined")

	unknown := overdueEvent()
	unknown.Type = "rental.archived"
	assert.Empty(t, Compose(unknown, depot))
}

func TestOverdueDays(t *testing.T) {
	ev := overdueEvent()
	assert.Equal(t, 7, OverdueDays(ev))

	ev.OccurredAt = ev.ReturnDate.Add(-time.Hour)
	assert.Equal(t, 0, OverdueDays(ev))
}

func TestHandle(t *testing.T) {
	msg, err := kafka.NewMessage().WithKey("r1").WithValue(overdueEvent()).Build()
	require.NoError(t, err)

	t.Run("composes notices", func(t *testing.T) {
		n := New(&mockDepotStore{depot: &model.Depot{ID: "d1", Name: "Fachschaft"}}, logger.Discard())
		assert.NoError(t, n.Handle(context.Background(), msg))
	})

	t.Run("missing depot is permanent", func(t *testing.T) {
		n := New(&mockDepotStore{err: depotserrors.ErrDepotNotFound}, logger.Discard())
		err := n.Handle(context.Background(), msg)
		require.Error(t, err)
		assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		n := New(&mockDepotStore{err: errors.New("connection refused")}, logger.Discard())
		err := n.Handle(context.Background(), msg)
		require.Error(t, err)
		assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
	})

	t.Run("malformed payload is permanent", func(t *testing.T) {
		bad := kafka.Message{Value: []byte("not json")}
		n := New(&mockDepotStore{}, logger.Discard())
		err := n.Handle(context.Background(), bad)
		assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	})
}
