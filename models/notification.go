package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationTarget string

const (
	TargetAdmin  NotificationTarget = "admin"
	TargetMobile NotificationTarget = "mobile"
)

// EventType is the closed vocabulary of domain events the notification
// router classifies. Anything outside this list routes to the admin
// audience so operators see it rather than it being dropped.
type EventType string

const (
	EventTransactionCompleted EventType = "transaction_completed"
	EventPropertySold         EventType = "property_sold"
	EventPropertyCreated      EventType = "property_created"
	EventPropertyUpdated      EventType = "property_updated"
	EventPropertyDeleted      EventType = "property_deleted"
	EventOwnerCreated         EventType = "owner_created"
	EventFeedbackRequested    EventType = "feedback_requested"
)

// AdminReadState tracks the single shared consumer role of the dashboard.
// IsRead is a one-way latch: once true it never goes back.
type AdminReadState struct {
	IsRead bool       `bson:"isRead" json:"isRead"`
	ReadAt *time.Time `bson:"readAt,omitempty" json:"readAt,omitempty"`
}

// MobileReadState tracks many independent readers of one broadcast record.
// TotalReads must always equal len(ReadBy).
type MobileReadState struct {
	ReadBy     []string `bson:"readBy" json:"readBy"`
	TotalReads int      `bson:"totalReads" json:"totalReads"`
	HiddenBy   []string `bson:"hiddenBy,omitempty" json:"hiddenBy,omitempty"`
}

// Notification is one event record for one audience. Exactly one of Admin or
// Mobile is set, matching Target; the two read models are never mixed.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Target        NotificationTarget `bson:"target" json:"target"`
	Type          EventType          `bson:"type" json:"type"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Message       string             `bson:"message" json:"message"`
	PropertyID    primitive.ObjectID `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	OwnerID       primitive.ObjectID `bson:"ownerId,omitempty" json:"ownerId,omitempty"`

	Admin  *AdminReadState  `bson:"admin,omitempty" json:"admin,omitempty"`
	Mobile *MobileReadState `bson:"mobile,omitempty" json:"mobile,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ReadBy reports whether the notification has been read by the given reader,
// under whichever read model the record carries.
func (n *Notification) ReadBy(readerID string) bool {
	switch n.Target {
	case TargetAdmin:
		return n.Admin != nil && n.Admin.IsRead
	case TargetMobile:
		if n.Mobile == nil {
			return false
		}
		for _, r := range n.Mobile.ReadBy {
			if r == readerID {
				return true
			}
		}
	}
	return false
}

// HiddenFor reports whether a mobile reader has hidden this broadcast record
// for themselves. Admin notifications cannot be hidden.
func (n *Notification) HiddenFor(readerID string) bool {
	if n.Mobile == nil {
		return false
	}
	for _, r := range n.Mobile.HiddenBy {
		if r == readerID {
			return true
		}
	}
	return false
}
