package mongo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	depotsrepository "verleih/internal/depots/repository"
	"verleih/internal/migrations/mongo/validators"
	rentalsrepository "verleih/internal/rentals/repository"
	"verleih/pkg/logger"
)

var (
	RentalsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "depot_id", Value: 1},
			{Key: "state", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "return_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "return_date", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	ItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "depot_id", Value: 1},
			{Key: "visibility", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	DepotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "manager_ids", Value: 1}}},
	}

	DepotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		rentalsrepository.RentalsCollection: {
			Indexes:   RentalsIndexes,
			Validator: validators.RentalValidator,
		},
		depotsrepository.ItemsCollection: {
			Indexes:   ItemsIndexes,
			Validator: validators.ItemValidator,
		},
		depotsrepository.DepotsCollection: {
			Indexes:   DepotsIndexes,
			Validator: validators.DepotValidator,
		},
		rentalsrepository.DepotLocksCollection: {
			Indexes:   DepotLocksIndexes,
			Validator: validators.DepotLockValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	collections := Collections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := collections[name]
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		log.Info("Collection migrated", "collection", name, "indexes", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
