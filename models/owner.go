package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OwnerStats holds the derived counters cached on an Owner document. They are
// a pure function of the owner's current Property set and are written only by
// the stats recalculator; nothing else may touch them.
type OwnerStats struct {
	Owned         int `bson:"propertyOwned" json:"propertyOwned"`
	RentEligible  int `bson:"rentEligible" json:"rentEligible"`
	SaleEligible  int `bson:"saleEligible" json:"saleEligible"`
	Sold          int `bson:"sold" json:"sold"`
	TotalListings int `bson:"totalListings" json:"totalListings"`
}

type Owner struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OwnerID   string             `bson:"ownerId" json:"ownerId"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Stats     OwnerStats         `bson:"stats" json:"stats"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
