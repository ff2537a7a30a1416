package notify

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

// Admin notifications are listed over the last day; mobile over the last
// week. The durable read path uses the same windows as the unread counts so
// the two never disagree.
const (
	AdminWindow    = 24 * time.Hour
	MobileWindow   = 7 * 24 * time.Hour
	AdminPageLimit = 50
)

// Tracker mutates and queries read state under the audience's own model:
// a shared one-way latch for admin, a per-reader set for mobile. The two
// models are never applied to the other audience.
type Tracker struct {
	notifications store.NotificationStore
	now           func() time.Time
}

func NewTracker(notifications store.NotificationStore) *Tracker {
	return &Tracker{notifications: notifications, now: time.Now}
}

// MarkAdminRead flips the shared latch. Idempotent; there is no way back to
// unread.
func (t *Tracker) MarkAdminRead(ctx context.Context, id primitive.ObjectID) error {
	return t.notifications.MarkAdminRead(ctx, id, t.now())
}

// MarkMobileRead adds the reader to the record's read set. Idempotent and
// safe under concurrent readers; totalReads tracks the set size exactly.
func (t *Tracker) MarkMobileRead(ctx context.Context, id primitive.ObjectID, readerID string) error {
	return t.notifications.MarkMobileRead(ctx, id, readerID)
}

// Hide removes a mobile broadcast record from one reader's view without
// affecting anyone else's.
func (t *Tracker) Hide(ctx context.Context, id primitive.ObjectID, readerID string) error {
	return t.notifications.Hide(ctx, id, readerID)
}

// IsReadBy answers under the record's own model: the latch for admin,
// set membership for mobile.
func (t *Tracker) IsReadBy(n *models.Notification, readerID string) bool {
	return n.ReadBy(readerID)
}

// ListAdmin returns the dashboard feed: last 24 hours, unread first,
// bounded page.
func (t *Tracker) ListAdmin(ctx context.Context) ([]models.Notification, error) {
	return t.notifications.ListAdmin(ctx, t.now().Add(-AdminWindow), AdminPageLimit)
}

// ListMobile returns the reader's feed: last 7 days, minus records the
// reader has hidden.
func (t *Tracker) ListMobile(ctx context.Context, readerID string) ([]models.Notification, error) {
	return t.notifications.ListMobile(ctx, readerID, t.now().Add(-MobileWindow))
}

func (t *Tracker) UnreadAdminCount(ctx context.Context) (int64, error) {
	return t.notifications.CountAdminUnread(ctx, t.now().Add(-AdminWindow))
}

func (t *Tracker) UnreadMobileCount(ctx context.Context, readerID string) (int64, error) {
	return t.notifications.CountMobileUnread(ctx, readerID, t.now().Add(-MobileWindow))
}
