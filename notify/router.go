// Package notify classifies domain events into audience-specific
// notification records and tracks their read state.
package notify

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
)

// Event is one domain occurrence to fan out. Message is the technical text
// shown verbatim to admins; Title/MobileMessage override the mobile template
// when set.
type Event struct {
	Type          models.EventType
	Subtype       string
	Message       string
	Title         string
	MobileMessage string
	PropertyID    primitive.ObjectID
	TransactionID string
	OwnerID       primitive.ObjectID
}

type audience struct {
	admin  bool
	mobile bool
}

// routing is the closed classification table. Event types not listed here
// fall back to the admin audience so operators see them instead of the
// event being dropped.
var routing = map[models.EventType]audience{
	models.EventTransactionCompleted: {admin: true, mobile: true},
	models.EventPropertySold:         {admin: true, mobile: true},
	models.EventPropertyCreated:      {admin: true, mobile: true},
	models.EventPropertyUpdated:      {admin: true},
	models.EventPropertyDeleted:      {admin: true},
	models.EventOwnerCreated:         {admin: true},
	models.EventFeedbackRequested:    {mobile: true},
}

// Route shapes zero, one, or two notification records from one event. Admin
// records carry the caller's technical message and a fresh isRead latch;
// mobile records get a templated human message and an empty reader set.
func Route(ev Event, now time.Time) []models.Notification {
	aud, known := routing[ev.Type]
	if !known {
		aud = audience{admin: true}
	}

	var out []models.Notification
	if aud.admin {
		out = append(out, models.Notification{
			Target:        models.TargetAdmin,
			Type:          ev.Type,
			Message:       ev.Message,
			PropertyID:    ev.PropertyID,
			TransactionID: ev.TransactionID,
			OwnerID:       ev.OwnerID,
			Admin:         &models.AdminReadState{IsRead: false},
			CreatedAt:     now,
		})
	}
	if aud.mobile {
		title, message := mobileText(ev)
		out = append(out, models.Notification{
			Target:        models.TargetMobile,
			Type:          ev.Type,
			Title:         title,
			Message:       message,
			PropertyID:    ev.PropertyID,
			TransactionID: ev.TransactionID,
			OwnerID:       ev.OwnerID,
			Mobile:        &models.MobileReadState{ReadBy: []string{}, TotalReads: 0},
			CreatedAt:     now,
		})
	}
	return out
}

// mobileText renders the human-readable title and message for the mobile
// audience, keyed by event type and subtype, unless the caller supplied
// its own.
func mobileText(ev Event) (title, message string) {
	title, message = ev.Title, ev.MobileMessage
	if title != "" && message != "" {
		return title, message
	}

	subtype := ev.Subtype
	if subtype == "" {
		subtype = "Property"
	}

	var defTitle, defMessage string
	switch ev.Type {
	case models.EventPropertyCreated:
		defTitle = fmt.Sprintf("New %s Added!", subtype)
		defMessage = fmt.Sprintf("A new %s has just been listed. Take a look before it's gone!", subtype)
	case models.EventPropertySold:
		defTitle = fmt.Sprintf("%s Sold", subtype)
		defMessage = fmt.Sprintf("A %s has just found a new home.", subtype)
	case models.EventTransactionCompleted:
		defTitle = "Transaction Completed"
		defMessage = "Your transaction was completed successfully. Thank you!"
	case models.EventFeedbackRequested:
		defTitle = "How was it?"
		defMessage = "Tell us about your experience with your recent property."
	default:
		defTitle = "Update"
		defMessage = ev.Message
	}

	if title == "" {
		title = defTitle
	}
	if message == "" {
		message = defMessage
	}
	return title, message
}
