package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

type SequenceStore struct {
	coll *mongo.Collection
}

// Next atomically increments the named counter document and returns the new
// value. FindOneAndUpdate with upsert means the first caller creates the
// counter at 1 and there is no read-modify-write window for concurrent
// callers to collide in.
func (s *SequenceStore) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocating next %q value: %w", name, err)
	}
	return counter.Value, nil
}
