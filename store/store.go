// Package store defines the narrow persistence interfaces the domain
// components depend on. The mongostore subpackage is the production
// implementation; memstore backs the package tests.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
)

var ErrNotFound = errors.New("store: not found")

// PropertyFilter narrows List results. Zero values mean "no constraint".
type PropertyFilter struct {
	OwnerID  *primitive.ObjectID
	Statuses []models.PropertyStatus
	City     string
	Type     string
	MaxPrice int64
	Limit    int64
}

// PropertyCounts is the raw material for the owner stat recalculation,
// computed in one pass over the owner's current Property set.
type PropertyCounts struct {
	Owned        int
	RentEligible int
	SaleEligible int
	Sold         int
}

type PropertyStore interface {
	Insert(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	List(ctx context.Context, f PropertyFilter) ([]models.Property, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// MarkSold performs the conditional sold transition: status becomes sold
	// only if it still is sale or both. Returns false when the condition did
	// not match, i.e. the property was already sold or never sellable.
	MarkSold(ctx context.Context, id primitive.ObjectID, buyer, transactionID string, at time.Time) (bool, error)

	// CountsByOwner computes the four counters from the owner's current
	// properties in a single query.
	CountsByOwner(ctx context.Context, ownerID primitive.ObjectID) (PropertyCounts, error)
}

type OwnerStore interface {
	Insert(ctx context.Context, o *models.Owner) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Owner, error)
	List(ctx context.Context, limit int64) ([]models.Owner, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// UpdateStats replaces all derived counters in one write.
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.OwnerStats) error
}

type TransactionStore interface {
	Insert(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	List(ctx context.Context, limit int64) ([]models.Transaction, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReviewStore interface {
	Insert(ctx context.Context, r *models.Review) error
	Exists(ctx context.Context, propertyID primitive.ObjectID, reviewerPhone string) (bool, error)
	ListByProperty(ctx context.Context, propertyID primitive.ObjectID) ([]models.Review, error)
}

type FeedbackStore interface {
	Insert(ctx context.Context, f *models.PendingFeedback) error
	FindPending(ctx context.Context, propertyID primitive.ObjectID, payerPhone string) (*models.PendingFeedback, error)
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// Complete flips a matching pending record to completed. Returns false
	// when no pending record existed for the pair.
	Complete(ctx context.Context, propertyID primitive.ObjectID, payerPhone string, at time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListPending(ctx context.Context) ([]models.PendingFeedback, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)

	// MarkAdminRead flips the shared isRead latch. Idempotent.
	MarkAdminRead(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// MarkMobileRead adds readerID to the readBy set and bumps totalReads,
	// as one conditional update so concurrent readers cannot double-count.
	MarkMobileRead(ctx context.Context, id primitive.ObjectID, readerID string) error

	// Hide marks a mobile broadcast record hidden for one reader.
	Hide(ctx context.Context, id primitive.ObjectID, readerID string) error

	// ListAdmin returns admin notifications created since the cutoff,
	// unread first, newest first within each group, capped at limit.
	ListAdmin(ctx context.Context, since time.Time, limit int64) ([]models.Notification, error)

	// ListMobile returns mobile notifications created since the cutoff,
	// excluding ones the requesting reader has hidden.
	ListMobile(ctx context.Context, readerID string, since time.Time) ([]models.Notification, error)

	CountAdminUnread(ctx context.Context, since time.Time) (int64, error)
	CountMobileUnread(ctx context.Context, readerID string, since time.Time) (int64, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
}

// SequenceStore issues strictly increasing integers per counter name via an
// atomic increment-and-fetch. Values are never reused, even across restarts.
type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}
