package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"verleih/internal/availability/service"
	"verleih/pkg/logger"
	"verleih/pkg/model"
)

type mockAvailabilityService struct {
	depotID    string
	start, end time.Time
}

func (m *mockAvailabilityService) GetAvailability(ctx context.Context, start, end time.Time, depotID string, items []*model.Item) ([]service.ItemAvailability, error) {
	return nil, nil
}

func (m *mockAvailabilityService) ForDepot(ctx context.Context, depotID string, start, end time.Time) (*service.DepotAvailability, error) {
	m.depotID, m.start, m.end = depotID, start, end
	return &service.DepotAvailability{Depot: &model.Depot{ID: depotID}, Start: start, End: end}, nil
}

func (m *mockAvailabilityService) CheckCapacity(ctx context.Context, check service.CapacityCheck) error {
	return nil
}

func TestForDepot_Window(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:       "defaults to now plus window",
			wantStatus: http.StatusOK,
			wantStart:  now,
			wantEnd:    now.Add(7 * 24 * time.Hour),
		},
		{
			name:       "explicit window",
			query:      "?start_date=2024-03-05T00:00:00Z&return_date=2024-03-08T00:00:00Z",
			wantStatus: http.StatusOK,
			wantStart:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "only start given",
			query:      "?start_date=2024-03-05T00:00:00Z",
			wantStatus: http.StatusOK,
			wantStart:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "inverted window is rejected",
			query:      "?start_date=2024-03-08T00:00:00Z&return_date=2024-03-05T00:00:00Z",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty window is rejected",
			query:      "?start_date=2024-03-08T00:00:00Z&return_date=2024-03-08T00:00:00Z",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed date",
			query:      "?start_date=tomorrow",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAvailabilityService{}
			h := NewAvailabilityHandler(svc, logger.Discard(), 7*24*time.Hour)
			h.now = func() time.Time { return now }

			router := httprouter.New()
			h.RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/depots/d1/availability"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if svc.depotID != "d1" {
				t.Errorf("depot id = %q", svc.depotID)
			}
			if !svc.start.Equal(tt.wantStart) || !svc.end.Equal(tt.wantEnd) {
				t.Errorf("window = [%v, %v), want [%v, %v)", svc.start, svc.end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
