package service

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/availability"
	apperrors "verleih/pkg/errors"
	"verleih/pkg/logger"
	"verleih/pkg/model"
)

// ────────────────────────────────────────────────
// Mock stores
// ────────────────────────────────────────────────

type mockReservationStore struct {
	calls            atomic.Int32
	lastStatuses     []model.RentalStatus
	findReservations func(ctx context.Context, depotID string, start, end time.Time) ([]availability.Reservation, error)
}

func (m *mockReservationStore) FindReservations(ctx context.Context, depotID string, start, end time.Time, statuses []model.RentalStatus) ([]availability.Reservation, error) {
	m.calls.Add(1)
	m.lastStatuses = statuses
	if m.findReservations != nil {
		return m.findReservations(ctx, depotID, start, end)
	}
	return nil, nil
}

type mockItemStore struct {
	findByDepot func(ctx context.Context, depotID string) ([]*model.Item, error)
}

func (m *mockItemStore) FindByDepot(ctx context.Context, depotID string) ([]*model.Item, error) {
	if m.findByDepot != nil {
		return m.findByDepot(ctx, depotID)
	}
	return []*model.Item{}, nil
}

func (m *mockItemStore) FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error) {
	return nil, nil
}

type mockDepotStore struct {
	findByID func(ctx context.Context, id string) (*model.Depot, error)
}

func (m *mockDepotStore) FindByID(ctx context.Context, id string) (*model.Depot, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return &model.Depot{ID: id, Active: true}, nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

var base = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return base.AddDate(0, 0, n)
}

func reservation(rentalID, itemID string, start, end, qty int) availability.Reservation {
	return availability.Reservation{
		RentalID: rentalID,
		ItemID:   itemID,
		Start:    day(start),
		End:      day(end),
		Quantity: qty,
		Status:   model.StatusApproved,
	}
}

func newTestService(res ReservationStore, opts ...Option) AvailabilityService {
	return NewAvailabilityService(res, &mockItemStore{}, &mockDepotStore{}, logger.Discard(), opts...)
}

// ────────────────────────────────────────────────
// GetAvailability
// ────────────────────────────────────────────────

func TestGetAvailability_SingleFetchPerItemFilteringAndOrder(t *testing.T) {
	store := &mockReservationStore{
		findReservations: func(ctx context.Context, depotID string, start, end time.Time) ([]availability.Reservation, error) {
			return []availability.Reservation{
				reservation("r1", "tent", 2, 5, 3),
				reservation("r2", "stove", 1, 3, 1),
				reservation("r3", "tent", 4, 7, 2),
			}, nil
		},
	}
	svc := newTestService(store)

	items := []*model.Item{
		{ID: "stove", Name: "Stove", Quantity: 2},
		{ID: "tent", Name: "Tent", Quantity: 10},
		{ID: "rope", Name: "Rope", Quantity: 4},
	}

	got, err := svc.GetAvailability(context.Background(), day(0), day(10), "depot", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.calls.Load() != 1 {
		t.Errorf("expected one reservation fetch, got %d", store.calls.Load())
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"stove", "tent", "rope"} {
		if got[i].Item.ID != want {
			t.Errorf("result %d: item %s, want %s", i, got[i].Item.ID, want)
		}
	}

	if got[0].Minimum != 1 {
		t.Errorf("stove minimum = %d, want 1", got[0].Minimum)
	}
	if got[1].Minimum != 5 {
		t.Errorf("tent minimum = %d, want 5", got[1].Minimum)
	}
	if len(got[2].Intervals) != 1 || got[2].Minimum != 4 {
		t.Errorf("rope should be untouched: %+v", got[2].Intervals)
	}
	if len(got[1].Chart) != 2*len(got[1].Intervals) {
		t.Errorf("chart has %d points for %d intervals", len(got[1].Chart), len(got[1].Intervals))
	}
}

func TestGetAvailability_DefaultAndCustomConflictingStatuses(t *testing.T) {
	store := &mockReservationStore{}

	_, _ = newTestService(store).GetAvailability(context.Background(), day(0), day(1), "depot", nil)
	if !slices.Equal(store.lastStatuses, []model.RentalStatus{model.StatusApproved}) {
		t.Errorf("default statuses = %v, want [approved]", store.lastStatuses)
	}

	custom := newTestService(store, WithConflictingStatuses(model.StatusApproved, model.StatusPending))
	_, _ = custom.GetAvailability(context.Background(), day(0), day(1), "depot", nil)
	if !slices.Equal(store.lastStatuses, []model.RentalStatus{model.StatusApproved, model.StatusPending}) {
		t.Errorf("custom statuses = %v", store.lastStatuses)
	}
}

func TestGetAvailability_InvalidWindow(t *testing.T) {
	store := &mockReservationStore{}
	svc := newTestService(store)

	for _, end := range []time.Time{day(0), day(-1)} {
		_, err := svc.GetAvailability(context.Background(), day(0), end, "depot", nil)
		if apperrors.AsAppError(err).StatusCode() != http.StatusBadRequest {
			t.Errorf("end=%v: expected 400, got %v", end, err)
		}
	}
	if store.calls.Load() != 0 {
		t.Errorf("store should not be queried for an invalid window")
	}
}

func TestGetAvailability_StoreFailure(t *testing.T) {
	store := &mockReservationStore{
		findReservations: func(ctx context.Context, depotID string, start, end time.Time) ([]availability.Reservation, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, err := newTestService(store).GetAvailability(context.Background(), day(0), day(1), "depot", []*model.Item{{ID: "a", Quantity: 1}})
	if apperrors.AsAppError(err).Code != apperrors.CodeInternal {
		t.Errorf("expected internal error, got %v", err)
	}
}

// ────────────────────────────────────────────────
// ForDepot
// ────────────────────────────────────────────────

func TestForDepot(t *testing.T) {
	items := &mockItemStore{
		findByDepot: func(ctx context.Context, depotID string) ([]*model.Item, error) {
			return []*model.Item{{ID: "tent", DepotID: depotID, Quantity: 3}}, nil
		},
	}

	t.Run("combines depot, items and intervals", func(t *testing.T) {
		store := &mockReservationStore{
			findReservations: func(ctx context.Context, depotID string, start, end time.Time) ([]availability.Reservation, error) {
				return []availability.Reservation{reservation("r1", "tent", 1, 2, 1)}, nil
			},
		}
		svc := NewAvailabilityService(store, items, &mockDepotStore{}, logger.Discard())

		got, err := svc.ForDepot(context.Background(), "d1", day(0), day(3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Depot.ID != "d1" || len(got.Items) != 1 {
			t.Fatalf("unexpected result: %+v", got)
		}
		if len(got.Items[0].Intervals) != 3 || got.Items[0].Minimum != 2 {
			t.Errorf("unexpected intervals: %v", got.Items[0].Intervals)
		}
	})

	t.Run("unknown depot is 404", func(t *testing.T) {
		depots := &mockDepotStore{
			findByID: func(ctx context.Context, id string) (*model.Depot, error) {
				return nil, depotserrors.ErrDepotNotFound
			},
		}
		svc := NewAvailabilityService(&mockReservationStore{}, items, depots, logger.Discard())

		_, err := svc.ForDepot(context.Background(), "missing", day(0), day(3))
		if apperrors.AsAppError(err).StatusCode() != http.StatusNotFound {
			t.Errorf("expected 404, got %v", err)
		}
	})
}

// ────────────────────────────────────────────────
// CheckCapacity
// ────────────────────────────────────────────────

func TestCheckCapacity(t *testing.T) {
	tent := &model.Item{ID: "tent", Name: "Tent", Quantity: 5}
	stove := &model.Item{ID: "stove", Name: "Stove", Quantity: 2}

	store := &mockReservationStore{
		findReservations: func(ctx context.Context, depotID string, start, end time.Time) ([]availability.Reservation, error) {
			return []availability.Reservation{
				reservation("other", "tent", 0, 4, 3),
				reservation("self", "tent", 1, 3, 2),
				reservation("other", "stove", 2, 3, 2),
			}, nil
		},
	}
	svc := newTestService(store)

	tests := []struct {
		name          string
		lines         []CapacityLine
		exclude       string
		wantViolating []string
	}{
		{
			name:    "fits",
			lines:   []CapacityLine{{Item: tent, Quantity: 1}},
			exclude: "self",
		},
		{
			name:          "own reservation counted without exclusion",
			lines:         []CapacityLine{{Item: tent, Quantity: 1}},
			wantViolating: []string{"tent"},
		},
		{
			name:          "lines of the same item are summed",
			lines:         []CapacityLine{{Item: tent, Quantity: 1}, {Item: tent, Quantity: 2}},
			exclude:       "self",
			wantViolating: []string{"tent"},
		},
		{
			name:          "every offending item is reported",
			lines:         []CapacityLine{{Item: tent, Quantity: 3}, {Item: stove, Quantity: 1}},
			exclude:       "self",
			wantViolating: []string{"tent", "stove"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckCapacity(context.Background(), CapacityCheck{
				DepotID:         "depot",
				Start:           day(0),
				End:             day(5),
				Lines:           tt.lines,
				ExcludeRentalID: tt.exclude,
			})

			if len(tt.wantViolating) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var capErr *CapacityError
			if !errors.As(err, &capErr) {
				t.Fatalf("expected *CapacityError, got %v", err)
			}
			if !errors.Is(err, availability.ErrCapacityExceeded) {
				t.Errorf("CapacityError should match ErrCapacityExceeded")
			}
			var ids []string
			for _, v := range capErr.Violations {
				ids = append(ids, v.ItemID)
			}
			if !slices.Equal(ids, tt.wantViolating) {
				t.Errorf("violations = %v, want %v", ids, tt.wantViolating)
			}
		})
	}
}
