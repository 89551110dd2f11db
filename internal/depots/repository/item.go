package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/config"
	mongodb "verleih/pkg/db/mongo"
	"verleih/pkg/model"
)

// ItemRepository never returns items whose visibility is deleted.
type ItemRepository interface {
	FindByDepot(ctx context.Context, depotID string) ([]*model.Item, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error)
}

type mongoItemRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoItemRepository(cfg *config.Config) ItemRepository {
	return &mongoItemRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(ItemsCollection),
	}
}

func (r *mongoItemRepository) FindByDepot(ctx context.Context, depotID string) ([]*model.Item, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"depot_id":   depotID,
		"visibility": bson.M{"$ne": model.VisibilityDeleted},
	}
	return r.find(ctx, filter)
}

// FindByIDs returns the live items among ids, in name order. Unknown ids are
// skipped; callers compare lengths to detect them.
func (r *mongoItemRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Item, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", depotserrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	filter := bson.M{
		"_id":        bson.M{"$in": objectIDs},
		"visibility": bson.M{"$ne": model.VisibilityDeleted},
	}
	return r.find(ctx, filter)
}

func (r *mongoItemRepository) find(ctx context.Context, filter bson.M) ([]*model.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}
