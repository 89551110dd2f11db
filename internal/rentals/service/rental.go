package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	availabilityservice "verleih/internal/availability/service"
	depotserrors "verleih/internal/depots/errors"
	depotsrepository "verleih/internal/depots/repository"
	rentalserrors "verleih/internal/rentals/errors"
	"verleih/internal/rentals/repository"
	"verleih/internal/rentals/validator"
	"verleih/pkg/config"
	apperrors "verleih/pkg/errors"
	"verleih/pkg/events"
	"verleih/pkg/metrics"
	"verleih/pkg/model"
	"verleih/pkg/sanitizer"
	"verleih/pkg/statemachine"
)

type RentalService interface {
	Create(ctx context.Context, userID string, req *model.RentalRequest) (*model.Rental, error)
	GetByID(ctx context.Context, id string) (*model.Rental, error)
	ListByDepot(ctx context.Context, userID, depotID string, state *model.RentalStatus, limit int, offset int64) ([]*model.Rental, int64, error)
	AllowedActions(ctx context.Context, userID, id string) ([]model.RentalStatus, error)
	ChangeState(ctx context.Context, userID, id string, req *model.StateChangeRequest) (*model.Rental, error)
}

type rentalService struct {
	repo         repository.RentalRepository
	lockRepo     repository.DepotLockRepository
	depots       depotsrepository.DepotRepository
	items        depotsrepository.ItemRepository
	availability availabilityservice.AvailabilityService
	validator    *validator.RentalValidator
	publisher    events.Publisher
	cfg          *config.Config
	now          func() time.Time
}

func NewRentalService(
	repo repository.RentalRepository,
	lockRepo repository.DepotLockRepository,
	depots depotsrepository.DepotRepository,
	items depotsrepository.ItemRepository,
	availability availabilityservice.AvailabilityService,
	validator *validator.RentalValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RentalService {
	return &rentalService{
		repo:         repo,
		lockRepo:     lockRepo,
		depots:       depots,
		items:        items,
		availability: availability,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending rental. Capacity is checked again under the
// depot lock, against reservations read inside the insert's transaction.
func (s *rentalService) Create(ctx context.Context, userID string, req *model.RentalRequest) (*model.Rental, error) {
	sanitizer.RentalRequest(req)
	if err := s.validator.ValidateRequest(req, s.now()); err != nil {
		return nil, s.validationError("Rental validation failed", err)
	}

	depot, err := s.depots.FindByID(ctx, req.DepotID)
	if err != nil {
		return nil, s.mapDepotError(req.DepotID, err)
	}

	items, err := s.items.FindByIDs(ctx, itemIDs(req.Items))
	if err != nil {
		return nil, s.mapDepotError(req.DepotID, err)
	}

	if err := s.validator.ValidateAgainstDepot(req, depot, items); err != nil {
		return nil, s.validationError("Rental validation failed", err)
	}

	rental := &model.Rental{
		DepotID:    depot.ID,
		UserID:     userID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Purpose:    req.Purpose,
		StartDate:  req.StartDate.UTC(),
		ReturnDate: req.ReturnDate.UTC(),
		State:      model.StatusPending,
		Items:      make([]model.ItemRental, 0, len(req.Items)),
	}
	for _, line := range req.Items {
		rental.Items = append(rental.Items, model.ItemRental{ItemID: line.ItemID, Quantity: line.Quantity})
	}

	release, err := s.acquireDepotLock(ctx, depot.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	check := capacityCheck(rental, items, "")
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkCapacity(sessCtx, check); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, rental); err != nil {
			return apperrors.Internal("Failed to create rental", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Rental not created", "depot_id", depot.ID, "error", err)
		return nil, err
	}

	metrics.RentalsCreatedTotal.Inc()
	s.cfg.Log.Info("Rental created successfully",
		"id", rental.ID,
		"depot_id", rental.DepotID,
		"start_date", rental.StartDate,
		"return_date", rental.ReturnDate,
	)
	s.publish(ctx, events.NewRentalEvent(events.TypeRentalCreated, rental, userID, ""))
	return rental, nil
}

func (s *rentalService) GetByID(ctx context.Context, id string) (*model.Rental, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rental ID cannot be empty")
	}

	rental, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRentalError(id, err)
	}
	return rental, nil
}

// ListByDepot is restricted to the depot's managers.
func (s *rentalService) ListByDepot(ctx context.Context, userID, depotID string, state *model.RentalStatus, limit int, offset int64) ([]*model.Rental, int64, error) {
	if depotID == "" {
		return nil, 0, apperrors.InvalidInput("Depot ID cannot be empty")
	}
	if state != nil && !state.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown rental state: %s", *state))
	}

	depot, err := s.depots.FindByID(ctx, depotID)
	if err != nil {
		return nil, 0, s.mapDepotError(depotID, err)
	}
	if !depot.ManagedBy(userID) {
		return nil, 0, apperrors.Forbidden("Only depot managers can list the depot's rentals")
	}

	var (
		count    int64
		rentals  []*model.Rental
		errCount error
		errFind  error
		wg       sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByDepot(ctx, depotID, state)
		if err != nil {
			s.cfg.Log.Error("Failed to count rentals", "depot_id", depotID, "error", err)
			errCount = apperrors.Internal("Failed to count rentals", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rentals, err = s.repo.FindByDepot(ctx, depotID, state, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list rentals",
				"depot_id", depotID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve rentals", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rentals, count, nil
}

// AllowedActions lists the states userID may move the rental to next.
// Users who neither manage the depot nor own the rental get none.
func (s *rentalService) AllowedActions(ctx context.Context, userID, id string) ([]model.RentalStatus, error) {
	rental, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isManager, err := s.isManager(ctx, userID, rental)
	if err != nil {
		return nil, err
	}
	if !isManager && !ownedBy(rental, userID) {
		return []model.RentalStatus{}, nil
	}
	return statemachine.AllowedTransitions(isManager, rental.State), nil
}

// ChangeState applies a transition. req.OldState is the state the caller
// saw; the write only lands if the rental is still in it.
func (s *rentalService) ChangeState(ctx context.Context, userID, id string, req *model.StateChangeRequest) (*model.Rental, error) {
	if err := s.validator.ValidateStateChange(req); err != nil {
		return nil, s.validationError("Invalid state change", err)
	}

	rental, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rental.State != req.OldState {
		metrics.RejectedTransitionsTotal.WithLabelValues("stale").Inc()
		s.cfg.Log.Warn("Stale state change rejected",
			"rental_id", id,
			"expected", req.OldState,
			"current", rental.State,
		)
		return nil, apperrors.StateChanged(string(req.OldState), string(rental.State))
	}

	isManager, err := s.isManager(ctx, userID, rental)
	if err != nil {
		return nil, err
	}
	if !isManager && !ownedBy(rental, userID) {
		metrics.RejectedTransitionsTotal.WithLabelValues("forbidden").Inc()
		return nil, apperrors.Forbidden("Only the requester or a depot manager can change this rental")
	}
	if !statemachine.IsLegalTransition(isManager, rental.State, req.State) {
		metrics.RejectedTransitionsTotal.WithLabelValues("illegal").Inc()
		s.cfg.Log.Warn("Illegal transition rejected",
			"rental_id", id,
			"role", statemachine.RoleFor(isManager).String(),
			"from", rental.State,
			"to", req.State,
		)
		return nil, apperrors.IllegalTransition(string(rental.State), string(req.State))
	}

	var check *availabilityservice.CapacityCheck
	if s.consumesCapacity(req.State) && !s.consumesCapacity(rental.State) {
		release, err := s.acquireDepotLock(ctx, rental.DepotID)
		if err != nil {
			return nil, err
		}
		defer release()

		items, err := s.items.FindByIDs(ctx, itemIDsOf(rental))
		if err != nil {
			return nil, s.mapDepotError(rental.DepotID, err)
		}
		c := capacityCheck(rental, items, rental.ID)
		check = &c
	}

	var updated *model.Rental
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if check != nil {
			if err := s.checkCapacity(sessCtx, *check); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.repo.UpdateState(sessCtx, id, req.OldState, req.State)
		if err != nil {
			if errors.Is(err, rentalserrors.ErrStateConflict) {
				metrics.RejectedTransitionsTotal.WithLabelValues("stale").Inc()
				return apperrors.StateChanged(string(req.OldState), "")
			}
			return s.mapRentalError(id, err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("State change not applied", "rental_id", id, "to", req.State, "error", err)
		return nil, err
	}

	metrics.RentalTransitionsTotal.WithLabelValues(string(req.OldState), string(req.State)).Inc()
	s.cfg.Log.Info("Rental state changed",
		"rental_id", id,
		"from", req.OldState,
		"to", req.State,
		"actor", userID,
	)
	s.publish(ctx, events.NewRentalEvent(events.TypeRentalStateChanged, updated, userID, req.OldState))
	return updated, nil
}

// --- Helpers ---

func (s *rentalService) isManager(ctx context.Context, userID string, rental *model.Rental) (bool, error) {
	depot, err := s.depots.FindByID(ctx, rental.DepotID)
	if err != nil {
		return false, s.mapDepotError(rental.DepotID, err)
	}
	return depot.ManagedBy(userID), nil
}

func ownedBy(rental *model.Rental, userID string) bool {
	return userID != "" && rental.UserID == userID
}

func (s *rentalService) consumesCapacity(state model.RentalStatus) bool {
	return slices.Contains(s.cfg.ConflictingStatuses, state)
}

func (s *rentalService) checkCapacity(ctx context.Context, check availabilityservice.CapacityCheck) error {
	err := s.availability.CheckCapacity(ctx, check)
	if err == nil {
		return nil
	}

	var capErr *availabilityservice.CapacityError
	if errors.As(err, &capErr) {
		return apperrors.CapacityExceeded(map[string]any{"violations": capErr.Violations})
	}
	return err
}

// acquireDepotLock returns a release func that must be deferred.
func (s *rentalService) acquireDepotLock(ctx context.Context, depotID string) (func(), error) {
	lock, err := s.lockRepo.Acquire(ctx, depotID, s.cfg.DepotLockTTL)
	if err != nil {
		if errors.Is(err, rentalserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This depot is currently being booked by another request. Please try again.")
		}
		s.cfg.Log.Error("Failed to acquire depot lock", "depot_id", depotID, "error", err)
		return nil, apperrors.Internal("Failed to acquire depot lock", err)
	}

	return func() {
		err := s.lockRepo.Release(context.WithoutCancel(ctx), lock)
		switch {
		case err == nil:
		case errors.Is(err, rentalserrors.ErrLockLost):
			metrics.OperationErrorsTotal.WithLabelValues("depot_lock_lost").Inc()
			s.cfg.Log.Warn("Depot lock expired before release", "lock_id", lock.ID, "ttl", s.cfg.DepotLockTTL)
		default:
			s.cfg.Log.Warn("Failed to release depot lock", "lock_id", lock.ID, "error", err)
		}
	}, nil
}

func (s *rentalService) publish(ctx context.Context, event events.RentalEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("publish_event").Inc()
		s.cfg.Log.Error("Failed to publish rental event",
			"type", event.Type,
			"rental_id", event.RentalID,
			"error", err,
		)
	}
}

func (s *rentalService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation(message, errs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *rentalService) mapRentalError(id string, err error) error {
	switch {
	case errors.Is(err, rentalserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Rental", id)
	case errors.Is(err, rentalserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid rental ID format")
	default:
		s.cfg.Log.Error("Failed to load rental", "rental_id", id, "error", err)
		return apperrors.Internal("Failed to retrieve rental", err)
	}
}

func (s *rentalService) mapDepotError(depotID string, err error) error {
	switch {
	case errors.Is(err, depotserrors.ErrDepotNotFound):
		return apperrors.NotFoundWithID("Depot", depotID)
	case errors.Is(err, depotserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid depot or item ID format")
	default:
		s.cfg.Log.Error("Failed to load depot data", "depot_id", depotID, "error", err)
		return apperrors.Internal("Failed to load depot", err)
	}
}

func itemIDs(lines []model.ItemQuantity) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return ids
}

func itemIDsOf(rental *model.Rental) []string {
	ids := make([]string, 0, len(rental.Items))
	for _, line := range rental.Items {
		ids = append(ids, line.ItemID)
	}
	return ids
}

// capacityCheck skips lines whose item is no longer listed.
func capacityCheck(rental *model.Rental, items []*model.Item, excludeRentalID string) availabilityservice.CapacityCheck {
	byID := make(map[string]*model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	check := availabilityservice.CapacityCheck{
		DepotID:         rental.DepotID,
		Start:           rental.StartDate,
		End:             rental.ReturnDate,
		ExcludeRentalID: excludeRentalID,
	}
	for _, line := range rental.Items {
		if item, ok := byID[line.ItemID]; ok {
			check.Lines = append(check.Lines, availabilityservice.CapacityLine{Item: item, Quantity: line.Quantity})
		}
	}
	return check
}
