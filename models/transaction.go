package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PurchaseType string

const (
	PurchaseBuy  PurchaseType = "buy"
	PurchaseRent PurchaseType = "rent"
)

func ValidPurchaseType(t PurchaseType) bool {
	return t == PurchaseBuy || t == PurchaseRent
}

const TransactionCompleted = "completed"

// Transaction is an immutable record of one completed purchase or rental.
// Written once by the finalizer; the only mutation allowed afterward is
// administrative deletion, which must re-derive the owner's counters.
type Transaction struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TransactionID    string             `bson:"transactionId" json:"transactionId"`
	PaymentReference string             `bson:"paymentReference" json:"paymentReference"`
	PayerName        string             `bson:"payerName" json:"payerName"`
	PayerPhone       string             `bson:"payerPhone" json:"payerPhone"`
	PayerEmail       string             `bson:"payerEmail,omitempty" json:"payerEmail,omitempty"`
	PayerPhoto       string             `bson:"payerPhoto,omitempty" json:"payerPhoto,omitempty"`
	Amount           int64              `bson:"amount" json:"amount"`
	PurchaseType     PurchaseType       `bson:"purchaseType" json:"purchaseType"`
	PropertyID       primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	OwnerID          primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	OwnerName        string             `bson:"ownerName,omitempty" json:"ownerName,omitempty"`
	Status           string             `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
