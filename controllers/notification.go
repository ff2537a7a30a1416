package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/store"
)

// GetAdminNotifications serves the dashboard feed: last 24 hours, unread
// first, bounded page.
func GetAdminNotifications(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifications, err := tracker.ListAdmin(r.Context())
		if err != nil {
			log.Printf("Error fetching admin notifications: %v", err)
			http.Error(w, "Error fetching notifications", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(notifications)
	}
}

// GetMobileNotifications serves the requesting reader's feed: last 7 days,
// minus records they have hidden.
func GetMobileNotifications(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		notifications, err := tracker.ListMobile(r.Context(), readerID)
		if err != nil {
			log.Printf("Error fetching mobile notifications for %s: %v", readerID, err)
			http.Error(w, "Error fetching notifications", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(notifications)
	}
}

func MarkAdminNotificationRead(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid notification ID", http.StatusBadRequest)
			return
		}

		if err := tracker.MarkAdminRead(r.Context(), objID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Notification not found", http.StatusNotFound)
				return
			}
			log.Printf("Error marking admin notification %s read: %v", objID.Hex(), err)
			http.Error(w, "Failed to mark as read", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{Success: true, Message: "Notification marked as read"})
	}
}

func MarkMobileNotificationRead(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid notification ID", http.StatusBadRequest)
			return
		}

		if err := tracker.MarkMobileRead(r.Context(), objID, readerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Notification not found", http.StatusNotFound)
				return
			}
			log.Printf("Error marking mobile notification %s read by %s: %v", objID.Hex(), readerID, err)
			http.Error(w, "Failed to mark as read", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{Success: true, Message: "Notification marked as read"})
	}
}

func HideMobileNotification(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid notification ID", http.StatusBadRequest)
			return
		}

		if err := tracker.Hide(r.Context(), objID, readerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Notification not found", http.StatusNotFound)
				return
			}
			log.Printf("Error hiding notification %s for %s: %v", objID.Hex(), readerID, err)
			http.Error(w, "Failed to hide notification", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{Success: true, Message: "Notification hidden"})
	}
}

// GetUnreadCounts reports both audiences' unread totals. The admin count is
// a shared-flag count; the mobile count is scoped to the requesting reader.
func GetUnreadCounts(tracker *notify.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		adminCount, err := tracker.UnreadAdminCount(r.Context())
		if err != nil {
			log.Printf("Error counting admin unread: %v", err)
			http.Error(w, "Error counting notifications", http.StatusInternalServerError)
			return
		}

		mobileCount, err := tracker.UnreadMobileCount(r.Context(), readerID)
		if err != nil {
			log.Printf("Error counting mobile unread for %s: %v", readerID, err)
			http.Error(w, "Error counting notifications", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{
			"admin":  adminCount,
			"mobile": mobileCount,
		})
	}
}
