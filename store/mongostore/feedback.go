package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type ReviewStore struct {
	coll *mongo.Collection
}

func (s *ReviewStore) Insert(ctx context.Context, r *models.Review) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, r)
	return err
}

func (s *ReviewStore) Exists(ctx context.Context, propertyID primitive.ObjectID, reviewerPhone string) (bool, error) {
	err := s.coll.FindOne(ctx, bson.M{"propertyId": propertyID, "reviewerPhone": reviewerPhone}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ReviewStore) ListByProperty(ctx context.Context, propertyID primitive.ObjectID) ([]models.Review, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"propertyId": propertyID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

type FeedbackStore struct {
	coll *mongo.Collection
}

func (s *FeedbackStore) Insert(ctx context.Context, f *models.PendingFeedback) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, f)
	return err
}

func (s *FeedbackStore) FindPending(ctx context.Context, propertyID primitive.ObjectID, payerPhone string) (*models.PendingFeedback, error) {
	var f models.PendingFeedback
	err := s.coll.FindOne(ctx, bson.M{
		"propertyId": propertyID,
		"payerPhone": payerPhone,
		"status":     models.FeedbackPending,
	}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FeedbackStore) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updatedAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FeedbackStore) Complete(ctx context.Context, propertyID primitive.ObjectID, payerPhone string, at time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx, bson.M{
		"propertyId": propertyID,
		"payerPhone": payerPhone,
		"status":     models.FeedbackPending,
	}, bson.M{"$set": bson.M{"status": models.FeedbackCompleted, "updatedAt": at}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *FeedbackStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *FeedbackStore) ListPending(ctx context.Context) ([]models.PendingFeedback, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"status": models.FeedbackPending})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pending []models.PendingFeedback
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}
