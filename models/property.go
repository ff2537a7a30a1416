package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyStatus string

const (
	StatusRent PropertyStatus = "rent"
	StatusSale PropertyStatus = "sale"
	StatusBoth PropertyStatus = "both"
	StatusSold PropertyStatus = "sold"
)

// ValidPropertyStatus reports whether s is one of the four known statuses.
func ValidPropertyStatus(s PropertyStatus) bool {
	switch s {
	case StatusRent, StatusSale, StatusBoth, StatusSold:
		return true
	}
	return false
}

type Property struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropId    string             `bson:"id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Type      string             `bson:"type" json:"type"`
	Status    PropertyStatus     `bson:"status" json:"status"`
	Price     int64              `bson:"price" json:"price"`
	RentPrice int64              `bson:"rentPrice,omitempty" json:"rentPrice,omitempty"`
	State     string             `bson:"state" json:"state"`
	City      string             `bson:"city" json:"city"`
	AreaSqFt  int                `bson:"areaSqFt" json:"areaSqFt"`
	Bedrooms  int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms int                `bson:"bathrooms" json:"bathrooms"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`

	// Sold metadata, set once by the sold transition and never cleared.
	SoldTo            string     `bson:"soldTo,omitempty" json:"soldTo,omitempty"`
	SoldTransactionID string     `bson:"soldTransactionId,omitempty" json:"soldTransactionId,omitempty"`
	SoldAt            *time.Time `bson:"soldAt,omitempty" json:"soldAt,omitempty"`

	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Sellable reports whether a buy transaction may still claim the property.
func (p *Property) Sellable() bool {
	return p.Status == StatusSale || p.Status == StatusBoth
}

// Rentable reports whether a rent transaction is permitted. Renting does not
// consume the listing, so a rentable property stays rentable afterward.
func (p *Property) Rentable() bool {
	return p.Status == StatusRent || p.Status == StatusBoth
}
