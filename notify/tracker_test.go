package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/store/memstore"
)

func insertAdmin(t *testing.T, stores *memstore.Stores, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Target:    models.TargetAdmin,
		Type:      models.EventTransactionCompleted,
		Message:   "txn",
		Admin:     &models.AdminReadState{},
		CreatedAt: createdAt,
	}
	require.NoError(t, stores.Notifications.Insert(context.Background(), n))
	return n
}

func insertMobile(t *testing.T, stores *memstore.Stores, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Target:    models.TargetMobile,
		Type:      models.EventPropertyCreated,
		Title:     "New Villa Added!",
		Message:   "msg",
		Mobile:    &models.MobileReadState{ReadBy: []string{}},
		CreatedAt: createdAt,
	}
	require.NoError(t, stores.Notifications.Insert(context.Background(), n))
	return n
}

func TestAdminReadIsOneWayLatch(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)
	n := insertAdmin(t, stores, time.Now())

	require.NoError(t, tracker.MarkAdminRead(context.Background(), n.ID))

	first, err := stores.Notifications.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Admin.ReadAt)

	// Marking again is a no-op: never a reset, never a fresher timestamp.
	require.NoError(t, tracker.MarkAdminRead(context.Background(), n.ID))

	reloaded, err := stores.Notifications.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Admin.IsRead)
	require.NotNil(t, reloaded.Admin.ReadAt)
	assert.Equal(t, *first.Admin.ReadAt, *reloaded.Admin.ReadAt)
}

func TestMobileReadRoundTrip(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)
	n := insertMobile(t, stores, time.Now())

	require.NoError(t, tracker.MarkMobileRead(context.Background(), n.ID, "reader-1"))

	count1, err := tracker.UnreadMobileCount(context.Background(), "reader-1")
	require.NoError(t, err)
	assert.Zero(t, count1, "read notification never comes back unread for its reader")

	count2, err := tracker.UnreadMobileCount(context.Background(), "reader-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count2, "another reader still sees it unread")
}

func TestMobileReadIsIdempotent(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)
	n := insertMobile(t, stores, time.Now())

	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.MarkMobileRead(context.Background(), n.ID, "reader-1"))
	}

	reloaded, err := stores.Notifications.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"reader-1"}, reloaded.Mobile.ReadBy)
	assert.Equal(t, 1, reloaded.Mobile.TotalReads)
}

func TestTotalReadsMatchesReadSetUnderConcurrency(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)
	n := insertMobile(t, stores, time.Now())

	const readers = 25
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			readerID := string(rune('a' + i))
			// Each reader marks twice; the second must not double-count.
			assert.NoError(t, tracker.MarkMobileRead(context.Background(), n.ID, readerID))
			assert.NoError(t, tracker.MarkMobileRead(context.Background(), n.ID, readerID))
		}(i)
	}
	wg.Wait()

	reloaded, err := stores.Notifications.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Mobile.ReadBy, readers)
	assert.Equal(t, readers, reloaded.Mobile.TotalReads)
}

func TestIsReadByUsesEachAudiencesModel(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)

	admin := insertAdmin(t, stores, time.Now())
	mobile := insertMobile(t, stores, time.Now())

	require.NoError(t, tracker.MarkAdminRead(context.Background(), admin.ID))
	require.NoError(t, tracker.MarkMobileRead(context.Background(), mobile.ID, "reader-1"))

	adminReloaded, err := stores.Notifications.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	mobileReloaded, err := stores.Notifications.GetByID(context.Background(), mobile.ID)
	require.NoError(t, err)

	// Admin: shared flag, any reader identity.
	assert.True(t, tracker.IsReadBy(adminReloaded, "whoever"))
	// Mobile: strict set membership.
	assert.True(t, tracker.IsReadBy(mobileReloaded, "reader-1"))
	assert.False(t, tracker.IsReadBy(mobileReloaded, "reader-2"))
}

func TestMarkMobileReadRejectsAdminRecords(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)
	n := insertAdmin(t, stores, time.Now())

	err := tracker.MarkMobileRead(context.Background(), n.ID, "reader-1")
	assert.Error(t, err, "admin records have no per-reader read set")
}

func TestListAdminUnreadFirstAndBounded(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)

	old := insertAdmin(t, stores, time.Now().Add(-48*time.Hour))
	read := insertAdmin(t, stores, time.Now().Add(-2*time.Hour))
	unread := insertAdmin(t, stores, time.Now().Add(-1*time.Hour))
	require.NoError(t, tracker.MarkAdminRead(context.Background(), read.ID))

	list, err := tracker.ListAdmin(context.Background())
	require.NoError(t, err)

	require.Len(t, list, 2, "outside the 24h window is excluded")
	assert.Equal(t, unread.ID, list[0].ID, "unread sorts first")
	assert.Equal(t, read.ID, list[1].ID)
	for _, n := range list {
		assert.NotEqual(t, old.ID, n.ID)
	}
}

func TestListMobileExcludesHiddenForThatReaderOnly(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)

	n := insertMobile(t, stores, time.Now())
	stale := insertMobile(t, stores, time.Now().Add(-8*24*time.Hour))

	require.NoError(t, tracker.Hide(context.Background(), n.ID, "reader-1"))

	forReader1, err := tracker.ListMobile(context.Background(), "reader-1")
	require.NoError(t, err)
	assert.Empty(t, forReader1)

	forReader2, err := tracker.ListMobile(context.Background(), "reader-2")
	require.NoError(t, err)
	require.Len(t, forReader2, 1, "7-day horizon excludes the stale record")
	assert.Equal(t, n.ID, forReader2[0].ID)
	_ = stale
}

func TestUnreadAdminCountUsesSharedFlag(t *testing.T) {
	stores := memstore.New()
	tracker := notify.NewTracker(stores.Notifications)

	a := insertAdmin(t, stores, time.Now())
	insertAdmin(t, stores, time.Now())

	count, err := tracker.UnreadAdminCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, tracker.MarkAdminRead(context.Background(), a.ID))

	count, err = tracker.UnreadAdminCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
