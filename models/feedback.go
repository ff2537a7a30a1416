package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackStatus string

const (
	FeedbackPending   FeedbackStatus = "pending"
	FeedbackCompleted FeedbackStatus = "completed"
)

// PendingFeedback is an obligation for a payer to review a property after a
// completed transaction. At most one pending record may exist per
// (propertyId, payerPhone) pair.
type PendingFeedback struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropertyID    primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	PayerPhone    string             `bson:"payerPhone" json:"payerPhone"`
	PayerName     string             `bson:"payerName" json:"payerName"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Status        FeedbackStatus     `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropertyID    primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	ReviewerPhone string             `bson:"reviewerPhone" json:"reviewerPhone"`
	ReviewerName  string             `bson:"reviewerName" json:"reviewerName"`
	Rating        int                `bson:"rating" json:"rating"`
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
