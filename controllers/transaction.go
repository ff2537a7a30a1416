package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/availability"
	"github.com/harborview/property_market_system/finalize"
	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store"
)

// CreateTransaction receives the payment-completed event from the payment
// gateway collaborator and runs the finalization pipeline. Once the
// transaction record is durable the request succeeds even if downstream
// steps failed; the advisory flags on the response say which did.
func CreateTransaction(finalizer *finalize.Finalizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finalize.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Invalid transaction payload: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := finalizer.Finalize(r.Context(), req)
		if err != nil {
			status := finalizeErrorStatus(err)
			log.Printf("Transaction rejected (%d): %v", status, err)
			http.Error(w, err.Error(), status)
			return
		}

		if !result.OwnerStatsUpdated {
			log.Printf("WARNING: owner stats not updated for transaction %s; run manual recalculation", result.Transaction.TransactionID)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	}
}

func finalizeErrorStatus(err error) int {
	switch {
	case errors.Is(err, finalize.ErrInvalidPurchaseType),
		errors.Is(err, finalize.ErrInvalidAmount),
		errors.Is(err, finalize.ErrInvalidPropertyID),
		errors.Is(err, finalize.ErrMissingPayer):
		return http.StatusBadRequest
	case errors.Is(err, availability.ErrAlreadySold),
		errors.Is(err, availability.ErrNotForSale),
		errors.Is(err, availability.ErrNotForRent):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func GetTransactions(transactions store.TransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := transactions.List(r.Context(), 100)
		if err != nil {
			log.Printf("Error fetching transactions: %v", err)
			http.Error(w, "Error fetching transactions", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

// DeleteTransaction is the administrative deletion path. The affected
// owner's counters are re-derived afterward so the cache cannot drift.
func DeleteTransaction(transactions store.TransactionStore, recalc *stats.Recalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
			return
		}

		txn, err := transactions.GetByID(r.Context(), objID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error loading transaction %s: %v", objID.Hex(), err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if err := transactions.Delete(r.Context(), objID); err != nil {
			log.Printf("Transaction delete failed for %s: %v", objID.Hex(), err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if _, err := recalc.Recalculate(r.Context(), txn.OwnerID); err != nil {
			log.Printf("Owner stats NOT updated after transaction delete %s: %v", txn.TransactionID, err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Transaction deleted",
		})
	}
}
