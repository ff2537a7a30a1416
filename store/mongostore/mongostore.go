// Package mongostore implements the store interfaces on MongoDB. All
// conditional-update semantics (sold transition, read-set add, counter
// increment-and-fetch) live here as single atomic operations.
package mongostore

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harborview/property_market_system/store"
)

type Stores struct {
	Properties    *PropertyStore
	Owners        *OwnerStore
	Transactions  *TransactionStore
	Reviews       *ReviewStore
	Feedback      *FeedbackStore
	Notifications *NotificationStore
	Users         *UserStore
	Sequences     *SequenceStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Properties:    &PropertyStore{coll: db.Collection("properties")},
		Owners:        &OwnerStore{coll: db.Collection("owners")},
		Transactions:  &TransactionStore{coll: db.Collection("transactions")},
		Reviews:       &ReviewStore{coll: db.Collection("reviews")},
		Feedback:      &FeedbackStore{coll: db.Collection("pending_feedback")},
		Notifications: &NotificationStore{coll: db.Collection("notifications")},
		Users:         &UserStore{coll: db.Collection("users")},
		Sequences:     &SequenceStore{coll: db.Collection("counters")},
	}
}

var (
	_ store.PropertyStore     = (*PropertyStore)(nil)
	_ store.OwnerStore        = (*OwnerStore)(nil)
	_ store.TransactionStore  = (*TransactionStore)(nil)
	_ store.ReviewStore       = (*ReviewStore)(nil)
	_ store.FeedbackStore     = (*FeedbackStore)(nil)
	_ store.NotificationStore = (*NotificationStore)(nil)
	_ store.UserStore         = (*UserStore)(nil)
	_ store.SequenceStore     = (*SequenceStore)(nil)
)
