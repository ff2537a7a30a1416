package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/feedback"
	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

// CreateReview stores a property review and completes the payer's matching
// pending-feedback obligation, if one exists.
func CreateReview(reviews store.ReviewStore, scheduler *feedback.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var review models.Review
		if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
			log.Printf("Invalid review payload: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if review.PropertyID.IsZero() || review.ReviewerPhone == "" {
			http.Error(w, "propertyId and reviewerPhone are required", http.StatusBadRequest)
			return
		}
		if review.Rating < 1 || review.Rating > 5 {
			http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
			return
		}
		review.CreatedAt = time.Now()

		if err := reviews.Insert(r.Context(), &review); err != nil {
			log.Printf("Review insert failed: %v", err)
			http.Error(w, "Failed to create review", http.StatusInternalServerError)
			return
		}

		completed, err := scheduler.CompleteForReview(r.Context(), &review)
		if err != nil {
			log.Printf("Completing pending feedback failed for property %s: %v", review.PropertyID.Hex(), err)
		} else if completed {
			log.Printf("Pending feedback completed for property %s by %s", review.PropertyID.Hex(), review.ReviewerPhone)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(review)
	}
}

func GetPropertyReviews(reviews store.ReviewStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		list, err := reviews.ListByProperty(r.Context(), objID)
		if err != nil {
			log.Printf("Error fetching reviews for property %s: %v", objID.Hex(), err)
			http.Error(w, "Error fetching reviews", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func GetPendingFeedback(pending store.FeedbackStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := pending.ListPending(r.Context())
		if err != nil {
			log.Printf("Error fetching pending feedback: %v", err)
			http.Error(w, "Error fetching pending feedback", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func CancelPendingFeedback(scheduler *feedback.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid feedback ID", http.StatusBadRequest)
			return
		}

		if err := scheduler.Cancel(r.Context(), objID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Pending feedback not found", http.StatusNotFound)
				return
			}
			log.Printf("Cancelling pending feedback %s failed: %v", objID.Hex(), err)
			http.Error(w, "Failed to cancel pending feedback", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{Success: true, Message: "Pending feedback cancelled"})
	}
}
