package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	depotserrors "verleih/internal/depots/errors"
	"verleih/pkg/config"
	mongodb "verleih/pkg/db/mongo"
	"verleih/pkg/model"
)

const (
	DepotsCollection = "Depots"
	ItemsCollection  = "Items"
)

type DepotRepository interface {
	FindByID(ctx context.Context, id string) (*model.Depot, error)
}

type mongoDepotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDepotRepository(cfg *config.Config) DepotRepository {
	return &mongoDepotRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DepotsCollection),
	}
}

func (r *mongoDepotRepository) FindByID(ctx context.Context, id string) (*model.Depot, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", depotserrors.ErrInvalidID, id)
	}

	var depot model.Depot
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&depot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, depotserrors.ErrDepotNotFound
		}
		return nil, fmt.Errorf("failed to find depot: %w", err)
	}

	return &depot, nil
}
