package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type NotificationStore struct {
	coll *mongo.Collection
}

func (s *NotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, n)
	return err
}

func (s *NotificationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAdminRead only ever sets the latch; there is no write path back to
// unread, which keeps isRead monotonic. The filter excludes already-read
// records so re-marking never rewrites the original readAt.
func (s *NotificationStore) MarkAdminRead(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "target": models.TargetAdmin, "admin.isRead": false},
		bson.M{"$set": bson.M{"admin.isRead": true, "admin.readAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Already read is a no-op; only a missing record is an error.
		err := s.coll.FindOne(ctx, bson.M{"_id": id, "target": models.TargetAdmin}).Err()
		if err == mongo.ErrNoDocuments {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// MarkMobileRead guards the increment with a readBy membership check in the
// filter, so a reader that already appears in the set changes nothing and
// totalReads stays equal to the set size under concurrent calls.
func (s *NotificationStore) MarkMobileRead(ctx context.Context, id primitive.ObjectID, readerID string) error {
	filter := bson.M{
		"_id":           id,
		"target":        models.TargetMobile,
		"mobile.readBy": bson.M{"$ne": readerID},
	}
	update := bson.M{
		"$addToSet": bson.M{"mobile.readBy": readerID},
		"$inc":      bson.M{"mobile.totalReads": 1},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either already read by this reader or not a mobile notification;
		// distinguish so callers can report missing records.
		err := s.coll.FindOne(ctx, bson.M{"_id": id, "target": models.TargetMobile}).Err()
		if err == mongo.ErrNoDocuments {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationStore) Hide(ctx context.Context, id primitive.ObjectID, readerID string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "target": models.TargetMobile},
		bson.M{"$addToSet": bson.M{"mobile.hiddenBy": readerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) ListAdmin(ctx context.Context, since time.Time, limit int64) ([]models.Notification, error) {
	filter := bson.M{"target": models.TargetAdmin, "createdAt": bson.M{"$gte": since}}
	opts := options.Find().
		SetSort(bson.D{{Key: "admin.isRead", Value: 1}, {Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStore) ListMobile(ctx context.Context, readerID string, since time.Time) ([]models.Notification, error) {
	filter := bson.M{
		"target":          models.TargetMobile,
		"createdAt":       bson.M{"$gte": since},
		"mobile.hiddenBy": bson.M{"$ne": readerID},
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStore) CountAdminUnread(ctx context.Context, since time.Time) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{
		"target":       models.TargetAdmin,
		"admin.isRead": false,
		"createdAt":    bson.M{"$gte": since},
	})
}

// CountMobileUnread is reader-scoped: a notification is unread for a reader
// exactly when that reader is absent from its readBy set.
func (s *NotificationStore) CountMobileUnread(ctx context.Context, readerID string, since time.Time) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{
		"target":          models.TargetMobile,
		"createdAt":       bson.M{"$gte": since},
		"mobile.readBy":   bson.M{"$ne": readerID},
		"mobile.hiddenBy": bson.M{"$ne": readerID},
	})
}
