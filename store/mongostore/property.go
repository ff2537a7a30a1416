package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type PropertyStore struct {
	coll *mongo.Collection
}

func (s *PropertyStore) Insert(ctx context.Context, p *models.Property) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.PropId = p.ID.Hex()
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

func (s *PropertyStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PropertyStore) List(ctx context.Context, f store.PropertyFilter) ([]models.Property, error) {
	filter := bson.M{}
	if f.OwnerID != nil {
		filter["ownerId"] = *f.OwnerID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.MaxPrice > 0 {
		filter["price"] = bson.M{"$lte": f.MaxPrice}
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (s *PropertyStore) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkSold is the one write path for the sold transition. The filter keeps
// the check-and-set atomic: of two concurrent buyers only one update matches,
// the other sees MatchedCount 0 and must be surfaced as already sold.
func (s *PropertyStore) MarkSold(ctx context.Context, id primitive.ObjectID, buyer, transactionID string, at time.Time) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.PropertyStatus{models.StatusSale, models.StatusBoth}},
	}
	update := bson.M{"$set": bson.M{
		"status":            models.StatusSold,
		"soldTo":            buyer,
		"soldTransactionId": transactionID,
		"soldAt":            at,
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("marking property %s sold: %w", id.Hex(), err)
	}
	return res.MatchedCount > 0, nil
}

// CountsByOwner derives all four counters in one aggregation pass so the
// recalculator never has to stitch numbers together from separate reads.
func (s *PropertyStore) CountsByOwner(ctx context.Context, ownerID primitive.ObjectID) (store.PropertyCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ownerId": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"owned": bson.M{"$sum": 1},
			"rentEligible": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$status", bson.A{models.StatusRent, models.StatusBoth}}}, 1, 0,
			}}},
			"saleEligible": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$status", bson.A{models.StatusSale, models.StatusBoth}}}, 1, 0,
			}}},
			"sold": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", models.StatusSold}}, 1, 0,
			}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return store.PropertyCounts{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Owned        int `bson:"owned"`
		RentEligible int `bson:"rentEligible"`
		SaleEligible int `bson:"saleEligible"`
		Sold         int `bson:"sold"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return store.PropertyCounts{}, err
	}
	if len(rows) == 0 {
		return store.PropertyCounts{}, nil
	}
	return store.PropertyCounts{
		Owned:        rows[0].Owned,
		RentEligible: rows[0].RentEligible,
		SaleEligible: rows[0].SaleEligible,
		Sold:         rows[0].Sold,
	}, nil
}
