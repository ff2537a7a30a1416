package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type OwnerStore struct {
	coll *mongo.Collection
}

func (s *OwnerStore) Insert(ctx context.Context, o *models.Owner) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, o)
	return err
}

func (s *OwnerStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Owner, error) {
	var o models.Owner
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OwnerStore) List(ctx context.Context, limit int64) ([]models.Owner, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var owners []models.Owner
	if err := cursor.All(ctx, &owners); err != nil {
		return nil, err
	}
	return owners, nil
}

func (s *OwnerStore) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	// Derived counters are off limits here; only the recalculator writes them.
	delete(fields, "stats")

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *OwnerStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *OwnerStore) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.OwnerStats) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stats": stats}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
