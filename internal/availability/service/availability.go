package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/availability"
	apperrors "verleih/pkg/errors"
	"verleih/pkg/logger"
	"verleih/pkg/metrics"
	"verleih/pkg/model"
)

// ReservationStore returns one reservation per rental item line of the depot
// whose rental is in one of statuses and strictly overlaps [start, end).
type ReservationStore interface {
	FindReservations(ctx context.Context, depotID string, start, end time.Time, statuses []model.RentalStatus) ([]availability.Reservation, error)
}

type ItemStore interface {
	FindByDepot(ctx context.Context, depotID string) ([]*model.Item, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error)
}

type DepotStore interface {
	FindByID(ctx context.Context, id string) (*model.Depot, error)
}

type ItemAvailability struct {
	Item      *model.Item               `json:"item"`
	Intervals []availability.Interval   `json:"intervals"`
	Chart     []availability.ChartPoint `json:"chart"`
	Minimum   int                       `json:"minimum"`
}

type DepotAvailability struct {
	Depot *model.Depot       `json:"depot"`
	Start time.Time          `json:"start_date"`
	End   time.Time          `json:"return_date"`
	Items []ItemAvailability `json:"items"`
}

type CapacityLine struct {
	Item     *model.Item
	Quantity int
}

// CapacityCheck describes a prospective booking. ExcludeRentalID keeps a
// rental's own reservation out of the computation when it is re-validated.
type CapacityCheck struct {
	DepotID         string
	Start           time.Time
	End             time.Time
	Lines           []CapacityLine
	ExcludeRentalID string
}

type CapacityViolation struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

type CapacityError struct {
	Violations []CapacityViolation
}

func (e *CapacityError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: requested %d, available %d", v.ItemID, v.Requested, v.Available))
	}
	return availability.ErrCapacityExceeded.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *CapacityError) Unwrap() error {
	return availability.ErrCapacityExceeded
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, start, end time.Time, depotID string, items []*model.Item) ([]ItemAvailability, error)
	ForDepot(ctx context.Context, depotID string, start, end time.Time) (*DepotAvailability, error)
	CheckCapacity(ctx context.Context, check CapacityCheck) error
}

type availabilityService struct {
	reservations ReservationStore
	items        ItemStore
	depots       DepotStore
	log          *logger.Logger
	conflicting  []model.RentalStatus
}

type Option func(*availabilityService)

// WithConflictingStatuses sets which rental states consume capacity.
// An empty list keeps the default of approved only.
func WithConflictingStatuses(statuses ...model.RentalStatus) Option {
	return func(s *availabilityService) {
		if len(statuses) > 0 {
			s.conflicting = slices.Clone(statuses)
		}
	}
}

func NewAvailabilityService(reservations ReservationStore, items ItemStore, depots DepotStore, log *logger.Logger, opts ...Option) AvailabilityService {
	s := &availabilityService{
		reservations: reservations,
		items:        items,
		depots:       depots,
		log:          log,
		conflicting:  []model.RentalStatus{model.StatusApproved},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAvailability computes per-item intervals for the window from a single
// reservation fetch. Results follow the order of items.
func (s *availabilityService) GetAvailability(ctx context.Context, start, end time.Time, depotID string, items []*model.Item) ([]ItemAvailability, error) {
	return s.compute(ctx, start, end, depotID, items, "")
}

func (s *availabilityService) compute(ctx context.Context, start, end time.Time, depotID string, items []*model.Item, excludeRentalID string) ([]ItemAvailability, error) {
	if !end.After(start) {
		return nil, apperrors.InvalidInput("return_date must be after start_date")
	}

	reservations, err := s.reservations.FindReservations(ctx, depotID, start, end, s.conflicting)
	if err != nil {
		s.log.Error("Failed to load reservations", "depot_id", depotID, "error", err)
		return nil, apperrors.Internal("Failed to load reservations", err)
	}

	byItem := make(map[string][]availability.Reservation, len(items))
	for _, r := range reservations {
		if excludeRentalID != "" && r.RentalID == excludeRentalID {
			continue
		}
		byItem[r.ItemID] = append(byItem[r.ItemID], r)
	}

	result := make([]ItemAvailability, 0, len(items))
	for _, item := range items {
		intervals, err := availability.SplitIntervals(start, end, item.Quantity, byItem[item.ID])
		if err != nil {
			return nil, apperrors.Internal("Failed to compute availability", err)
		}
		result = append(result, ItemAvailability{
			Item:      item,
			Intervals: intervals,
			Chart:     availability.ChartPoints(intervals),
			Minimum:   availability.MinimumAvailability(intervals),
		})
	}

	metrics.AvailabilityQueriesTotal.Inc()
	s.log.Debug("Availability computed",
		"depot_id", depotID,
		"items", len(items),
		"reservations", len(reservations),
	)
	return result, nil
}

func (s *availabilityService) ForDepot(ctx context.Context, depotID string, start, end time.Time) (*DepotAvailability, error) {
	if depotID == "" {
		return nil, apperrors.InvalidInput("Depot ID cannot be empty")
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInput("return_date must be after start_date")
	}

	var (
		depot *model.Depot
		items []*model.Item
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		depot, err = s.depots.FindByID(gctx, depotID)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.items.FindByDepot(gctx, depotID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.mapDepotError(depotID, err)
	}

	computed, err := s.GetAvailability(ctx, start, end, depotID, items)
	if err != nil {
		return nil, err
	}

	return &DepotAvailability{
		Depot: depot,
		Start: start,
		End:   end,
		Items: computed,
	}, nil
}

// CheckCapacity recomputes availability and reports every line that does not
// fit. Lines naming the same item are summed before comparison.
func (s *availabilityService) CheckCapacity(ctx context.Context, check CapacityCheck) error {
	requested := make(map[string]int, len(check.Lines))
	var items []*model.Item
	for _, line := range check.Lines {
		if _, seen := requested[line.Item.ID]; !seen {
			items = append(items, line.Item)
		}
		requested[line.Item.ID] += line.Quantity
	}

	computed, err := s.compute(ctx, check.Start, check.End, check.DepotID, items, check.ExcludeRentalID)
	if err != nil {
		return err
	}

	var violations []CapacityViolation
	for _, ia := range computed {
		want := requested[ia.Item.ID]
		if availability.CheckCapacity(want, ia.Intervals) != nil {
			violations = append(violations, CapacityViolation{
				ItemID:    ia.Item.ID,
				ItemName:  ia.Item.Name,
				Requested: want,
				Available: ia.Minimum,
			})
		}
	}
	if len(violations) > 0 {
		metrics.CapacityViolationsTotal.Add(float64(len(violations)))
		return &CapacityError{Violations: violations}
	}
	return nil
}

func (s *availabilityService) mapDepotError(depotID string, err error) error {
	switch {
	case errors.Is(err, depotserrors.ErrDepotNotFound):
		return apperrors.NotFoundWithID("Depot", depotID)
	case errors.Is(err, depotserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid depot ID format")
	default:
		s.log.Error("Failed to load depot", "depot_id", depotID, "error", err)
		return apperrors.Internal("Failed to load depot", err)
	}
}
