package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
)

func targetsOf(records []models.Notification) []models.NotificationTarget {
	var out []models.NotificationTarget
	for _, n := range records {
		out = append(out, n.Target)
	}
	return out
}

func TestRouteAudiences(t *testing.T) {
	tests := []struct {
		eventType models.EventType
		want      []models.NotificationTarget
	}{
		{models.EventTransactionCompleted, []models.NotificationTarget{models.TargetAdmin, models.TargetMobile}},
		{models.EventPropertySold, []models.NotificationTarget{models.TargetAdmin, models.TargetMobile}},
		{models.EventPropertyCreated, []models.NotificationTarget{models.TargetAdmin, models.TargetMobile}},
		{models.EventPropertyUpdated, []models.NotificationTarget{models.TargetAdmin}},
		{models.EventPropertyDeleted, []models.NotificationTarget{models.TargetAdmin}},
		{models.EventOwnerCreated, []models.NotificationTarget{models.TargetAdmin}},
		{models.EventFeedbackRequested, []models.NotificationTarget{models.TargetMobile}},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			records := notify.Route(notify.Event{Type: tt.eventType, Message: "m"}, time.Now())
			assert.Equal(t, tt.want, targetsOf(records))
		})
	}
}

func TestRouteUnknownTypeFallsBackToAdmin(t *testing.T) {
	records := notify.Route(notify.Event{Type: "something_new", Message: "diagnostic text"}, time.Now())

	require.Len(t, records, 1)
	assert.Equal(t, models.TargetAdmin, records[0].Target)
	assert.Equal(t, "diagnostic text", records[0].Message)
}

func TestRoutePropertyCreatedVilla(t *testing.T) {
	propertyID := primitive.NewObjectID()
	records := notify.Route(notify.Event{
		Type:       models.EventPropertyCreated,
		Subtype:    "Villa",
		Message:    "property created: Sunset Villa",
		PropertyID: propertyID,
	}, time.Now())

	require.Len(t, records, 2)

	admin, mobile := records[0], records[1]
	assert.Equal(t, models.TargetAdmin, admin.Target)
	assert.Equal(t, "property created: Sunset Villa", admin.Message, "admin keeps the technical message verbatim")
	require.NotNil(t, admin.Admin)
	assert.False(t, admin.Admin.IsRead)
	assert.Nil(t, admin.Mobile)

	assert.Equal(t, models.TargetMobile, mobile.Target)
	assert.Equal(t, "New Villa Added!", mobile.Title)
	assert.Contains(t, mobile.Message, "Villa")
	require.NotNil(t, mobile.Mobile)
	assert.Empty(t, mobile.Mobile.ReadBy)
	assert.Zero(t, mobile.Mobile.TotalReads)
	assert.Nil(t, mobile.Admin)

	// Both reference the same property.
	assert.Equal(t, propertyID, admin.PropertyID)
	assert.Equal(t, propertyID, mobile.PropertyID)
}

func TestRouteCallerSuppliedMobileTextWins(t *testing.T) {
	records := notify.Route(notify.Event{
		Type:          models.EventPropertySold,
		Subtype:       "Villa",
		Message:       "tech",
		Title:         "Custom Title",
		MobileMessage: "Custom message",
	}, time.Now())

	require.Len(t, records, 2)
	mobile := records[1]
	assert.Equal(t, "Custom Title", mobile.Title)
	assert.Equal(t, "Custom message", mobile.Message)
}
