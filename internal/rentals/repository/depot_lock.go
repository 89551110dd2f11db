package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	rentalserrors "verleih/internal/rentals/errors"
	"verleih/pkg/config"
	mongodb "verleih/pkg/db/mongo"
	"verleih/pkg/model"
)

const DepotLocksCollection = "Depot_locks"

// DepotLockRepository manages advisory locks that serialise capacity checks
// of a single depot. An expired lock is taken over by the next Acquire; the
// TTL index on expires_at only cleans up.
type DepotLockRepository interface {
	Acquire(ctx context.Context, depotID string, ttl time.Duration) (*model.DepotLock, error)
	Release(ctx context.Context, lock *model.DepotLock) error
}

type mongoDepotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoDepotLockRepository(cfg *config.Config) DepotLockRepository {
	return &mongoDepotLockRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DepotLocksCollection),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func DepotLockID(depotID string) string {
	return "depot_lock_" + depotID
}

// acquireFilter matches the depot's lock only once it has expired, so the
// upsert either inserts a fresh lock, takes over an expired one, or fails
// with a duplicate key on the live one.
func acquireFilter(lockID string, now time.Time) bson.M {
	return bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}}
}

func releaseFilter(lock *model.DepotLock) bson.M {
	return bson.M{"_id": lock.ID, "owner": lock.Owner}
}

// Acquire returns ErrLockHeld if another request holds an unexpired lock on
// the depot.
func (r *mongoDepotLockRepository) Acquire(ctx context.Context, depotID string, ttl time.Duration) (*model.DepotLock, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now()
	lock := &model.DepotLock{
		ID:        DepotLockID(depotID),
		Owner:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"created_at": lock.CreatedAt,
		"expires_at": lock.ExpiresAt,
	}}
	_, err := r.collection.UpdateOne(ctx, acquireFilter(lock.ID, now), update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, rentalserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire depot lock: %w", err)
	}
	return lock, nil
}

// Release deletes the lock only while lock still owns it. ErrLockLost means
// it expired and another request has taken it over.
func (r *mongoDepotLockRepository) Release(ctx context.Context, lock *model.DepotLock) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, releaseFilter(lock))
	if err != nil {
		return fmt.Errorf("failed to release depot lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return rentalserrors.ErrLockLost
	}
	return nil
}
