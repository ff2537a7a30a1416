package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store"
)

func CreateOwner(owners store.OwnerStore, allocator *sequence.Allocator, notifier *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var owner models.Owner
		if err := json.NewDecoder(r.Body).Decode(&owner); err != nil {
			log.Printf("Invalid owner payload: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if owner.Name == "" || owner.Phone == "" {
			http.Error(w, "Name and phone are required", http.StatusBadRequest)
			return
		}

		// No owner record without a successfully allocated ID.
		ownerID, err := allocator.NextOwnerID(r.Context())
		if err != nil {
			log.Printf("Owner ID allocation failed: %v", err)
			http.Error(w, "Failed to create owner", http.StatusInternalServerError)
			return
		}
		owner.OwnerID = ownerID
		owner.Stats = models.OwnerStats{}
		owner.CreatedAt = time.Now()

		if err := owners.Insert(r.Context(), &owner); err != nil {
			log.Printf("Owner insert failed: %v", err)
			http.Error(w, "Failed to create owner", http.StatusInternalServerError)
			return
		}

		if _, err := notifier.Send(r.Context(), notify.Event{
			Type:    models.EventOwnerCreated,
			Message: "New owner registered: " + owner.Name + " (" + owner.OwnerID + ")",
			OwnerID: owner.ID,
		}); err != nil {
			log.Printf("Notification fan-out failed for owner %s: %v", owner.OwnerID, err)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(owner)
	}
}

func GetOwners(owners store.OwnerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := owners.List(r.Context(), 100)
		if err != nil {
			log.Printf("Error fetching owners: %v", err)
			http.Error(w, "Error fetching owners", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func GetOwnerByID(owners store.OwnerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}

		owner, err := owners.GetByID(r.Context(), objID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Owner not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching owner %s: %v", objID.Hex(), err)
			http.Error(w, "Error fetching owner", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(owner)
	}
}

func UpdateOwner(owners store.OwnerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			log.Printf("Invalid owner update data: %v", err)
			http.Error(w, "Invalid update data", http.StatusBadRequest)
			return
		}

		delete(updateData, "_id")
		delete(updateData, "ownerId")
		delete(updateData, "stats")

		if err := owners.Update(r.Context(), objID, updateData); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Owner not found", http.StatusNotFound)
				return
			}
			log.Printf("Owner update failed for %s: %v", objID.Hex(), err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Owner updated successfully"})
	}
}

func DeleteOwner(owners store.OwnerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}

		if err := owners.Delete(r.Context(), objID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Owner not found", http.StatusNotFound)
				return
			}
			log.Printf("Owner delete failed for %s: %v", objID.Hex(), err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Owner deleted successfully"})
	}
}

// RecalculateOwnerStats is the prescribed manual recovery when a transaction
// response reported ownerStatsUpdated=false.
func RecalculateOwnerStats(recalc *stats.Recalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}

		ownerStats, err := recalc.Recalculate(r.Context(), objID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Owner not found", http.StatusNotFound)
				return
			}
			log.Printf("Manual recalculation failed for owner %s: %v", objID.Hex(), err)
			http.Error(w, "Recalculation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Owner stats recalculated",
			Data:    ownerStats,
		})
	}
}
