package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	rentalserrors "verleih/internal/rentals/errors"
	"verleih/pkg/availability"
	"verleih/pkg/config"
	mongodb "verleih/pkg/db/mongo"
	"verleih/pkg/model"
)

const (
	RentalsCollection = "Rentals"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *model.Rental) error
	FindByID(ctx context.Context, id string) (*model.Rental, error)
	FindByDepot(ctx context.Context, depotID string, state *model.RentalStatus, limit int, offset int64) ([]*model.Rental, error)
	CountByDepot(ctx context.Context, depotID string, state *model.RentalStatus) (int64, error)
	FindReservations(ctx context.Context, depotID string, start, end time.Time, statuses []model.RentalStatus) ([]availability.Reservation, error)
	FindDueBetween(ctx context.Context, from, to time.Time, state model.RentalStatus) ([]*model.Rental, error)
	UpdateState(ctx context.Context, id string, from, to model.RentalStatus) (*model.Rental, error)
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoRentalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongodb.TransactionManager
}

func NewMongoRentalRepository(cfg *config.Config) RentalRepository {
	return &mongoRentalRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(RentalsCollection),
		txManager:  mongodb.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if rental.ID == "" {
		rental.ID = uuid.NewString()
	}
	rental.CreatedAt = now
	rental.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, rental); err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}

func (r *mongoRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", rentalserrors.ErrInvalidID, id)
	}

	var rental model.Rental
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rental)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, rentalserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rental: %w", err)
	}

	return &rental, nil
}

func (r *mongoRentalRepository) FindByDepot(ctx context.Context, depotID string, state *model.RentalStatus, limit int, offset int64) ([]*model.Rental, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, depotFilter(depotID, state), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rentals: %w", err)
	}
	defer cursor.Close(ctx)

	rentals := []*model.Rental{}
	if err = cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}

	return rentals, nil
}

func (r *mongoRentalRepository) CountByDepot(ctx context.Context, depotID string, state *model.RentalStatus) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, depotFilter(depotID, state))
	if err != nil {
		return 0, fmt.Errorf("failed to count rentals: %w", err)
	}
	return count, nil
}

func depotFilter(depotID string, state *model.RentalStatus) bson.M {
	filter := bson.M{"depot_id": depotID}
	if state != nil {
		filter["state"] = *state
	}
	return filter
}

type reservationDoc struct {
	RentalID string             `bson:"rental_id"`
	ItemID   string             `bson:"item_id"`
	Start    time.Time          `bson:"start_date"`
	End      time.Time          `bson:"return_date"`
	Quantity int                `bson:"quantity"`
	Status   model.RentalStatus `bson:"state"`
}

// FindReservations flattens every item line of the matching rentals into
// one reservation. The overlap test is strict on both ends.
func (r *mongoRentalRepository) FindReservations(ctx context.Context, depotID string, start, end time.Time, statuses []model.RentalStatus) ([]availability.Reservation, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"depot_id":    depotID,
			"state":       bson.M{"$in": statuses},
			"start_date":  bson.M{"$lt": end},
			"return_date": bson.M{"$gt": start},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$project", Value: bson.M{
			"_id":         0,
			"rental_id":   "$_id",
			"item_id":     "$items.item_id",
			"quantity":    "$items.quantity",
			"start_date":  1,
			"return_date": 1,
			"state":       1,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reservationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	reservations := make([]availability.Reservation, 0, len(docs))
	for _, d := range docs {
		reservations = append(reservations, availability.Reservation{
			RentalID: d.RentalID,
			ItemID:   d.ItemID,
			Start:    d.Start.UTC(),
			End:      d.End.UTC(),
			Quantity: d.Quantity,
			Status:   d.Status,
		})
	}
	return reservations, nil
}

// FindDueBetween returns rentals in state whose return date lies in [from, to).
func (r *mongoRentalRepository) FindDueBetween(ctx context.Context, from, to time.Time, state model.RentalStatus) ([]*model.Rental, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"state":       state,
		"return_date": bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "return_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find due rentals: %w", err)
	}
	defer cursor.Close(ctx)

	rentals := []*model.Rental{}
	if err = cursor.All(ctx, &rentals); err != nil {
		return nil, fmt.Errorf("failed to decode rentals: %w", err)
	}
	return rentals, nil
}

// UpdateState moves a rental from one state to another only if it is still
// in from. It returns ErrStateConflict when another writer got there first.
func (r *mongoRentalRepository) UpdateState(ctx context.Context, id string, from, to model.RentalStatus) (*model.Rental, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "state": from}
	update := bson.M{"$set": bson.M{
		"state":      to,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rental model.Rental
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rental)
	if err == nil {
		return &rental, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update rental state: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check rental existence: %w", err)
	}
	if count == 0 {
		return nil, rentalserrors.ErrNotFound
	}
	return nil, rentalserrors.ErrStateConflict
}

func (r *mongoRentalRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
