package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viral-clips/domain/model"
	"viral-clips/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const discoveryCacheCollection = "discovery_cache"

// DiscoveryCacheRepository is the MongoDB cold tier: one document per
// fingerprint with an expires_at field for application-level filtering (a
// store-native TTL index on the same field works as well, the sweep handles
// whichever is missing).
type DiscoveryCacheRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewDiscoveryCacheRepository(client *mongo.Client, database string) *DiscoveryCacheRepository {
	return &DiscoveryCacheRepository{
		collection: client.Database(database).Collection(discoveryCacheCollection),
		now:        time.Now,
	}
}

// Get returns the entry for the fingerprint when present and unexpired.
func (r *DiscoveryCacheRepository) Get(ctx context.Context, fingerprint string) (*model.CacheEntry, error) {
	filter := bson.M{
		"fingerprint": fingerprint,
		"expires_at":  bson.M{"$gt": r.now().UTC()},
	}
	return r.findOne(ctx, filter)
}

// GetStale returns the entry regardless of expiry; nil when absent.
func (r *DiscoveryCacheRepository) GetStale(ctx context.Context, fingerprint string) (*model.CacheEntry, error) {
	return r.findOne(ctx, bson.M{"fingerprint": fingerprint})
}

func (r *DiscoveryCacheRepository) findOne(ctx context.Context, filter bson.M) (*model.CacheEntry, error) {
	var entry model.CacheEntry
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("discovery cache lookup: %w", err)
	}
	return &entry, nil
}

// Upsert stores or replaces the entry for its fingerprint.
func (r *DiscoveryCacheRepository) Upsert(ctx context.Context, entry *model.CacheEntry) error {
	filter := bson.M{"fingerprint": entry.Fingerprint}
	update := bson.M{"$set": entry}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("discovery cache upsert: %w", err)
	}
	return nil
}

// Touch bumps stored_at/expires_at without rewriting the payload.
func (r *DiscoveryCacheRepository) Touch(ctx context.Context, fingerprint string, storedAt, expiresAt time.Time) error {
	filter := bson.M{"fingerprint": fingerprint}
	update := bson.M{"$set": bson.M{"stored_at": storedAt.UTC(), "expires_at": expiresAt.UTC()}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("discovery cache touch: %w", err)
	}
	return nil
}

func (r *DiscoveryCacheRepository) Delete(ctx context.Context, fingerprint string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"fingerprint": fingerprint})
	if err != nil {
		return fmt.Errorf("discovery cache delete: %w", err)
	}
	return nil
}

func (r *DiscoveryCacheRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("discovery cache clear: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *DiscoveryCacheRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"expires_at": bson.M{"$gt": r.now().UTC()}})
	if err != nil {
		return 0, fmt.Errorf("discovery cache count: %w", err)
	}
	return n, nil
}

func (r *DiscoveryCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": r.now().UTC()}})
	if err != nil {
		return 0, fmt.Errorf("discovery cache purge: %w", err)
	}
	return res.DeletedCount, nil
}

var _ repository.IDiscoveryCache = (*DiscoveryCacheRepository)(nil)
