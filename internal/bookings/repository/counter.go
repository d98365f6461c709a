package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reservio/pkg/config"
)

const (
	CountersCollectionName = "Counters"
	BookingCounterName     = "booking_id"
)

// CounterRepository hands out monotonically increasing int64 ids.
// Booking ids come from here rather than ObjectIDs so clients get
// small, orderable numbers.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type mongoCounterRepository struct {
	collection *mongo.Collection
}

func NewCounterRepository(cfg *config.Config) CounterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCounterRepository{
		collection: db.Collection(CountersCollectionName),
	}
}

// Next atomically increments and returns the named counter, creating
// it on first use.
func (r *mongoCounterRepository) Next(ctx context.Context, name string) (int64, error) {
	filter := bson.M{"_id": name}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", name, err)
	}

	return counter.Seq, nil
}
