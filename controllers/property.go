package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store"
)

func CreateProperty(properties store.PropertyStore, recalc *stats.Recalculator, notifier *notify.Service, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var property models.Property
		if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
			log.Printf("Invalid request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !models.ValidPropertyStatus(property.Status) || property.Status == models.StatusSold {
			log.Printf("Invalid status for new property: %q", property.Status)
			http.Error(w, "Status must be rent, sale, or both", http.StatusBadRequest)
			return
		}
		if property.OwnerID.IsZero() {
			http.Error(w, "ownerId is required", http.StatusBadRequest)
			return
		}

		property.CreatedBy = userID
		if property.CreatedAt.IsZero() {
			property.CreatedAt = time.Now()
		}

		if err := properties.Insert(r.Context(), &property); err != nil {
			log.Printf("Insert failed: %v", err)
			http.Error(w, "Failed to create property", http.StatusInternalServerError)
			return
		}

		// The new listing changes the owner's derived counters.
		if _, err := recalc.Recalculate(r.Context(), property.OwnerID); err != nil {
			log.Printf("Owner stats NOT updated after property create %s: %v", property.PropId, err)
		}

		if _, err := notifier.Send(r.Context(), notify.Event{
			Type:       models.EventPropertyCreated,
			Subtype:    property.Type,
			Message:    "New property listed: " + property.Title,
			PropertyID: property.ID,
			OwnerID:    property.OwnerID,
		}); err != nil {
			log.Printf("Notification fan-out failed for property %s: %v", property.PropId, err)
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(property)
	}
}

func GetAllProperties(properties store.PropertyStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		cacheKey := generateCacheKey(query)

		cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
		if err == nil {
			log.Printf("Cache Hit for key: %s", cacheKey)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cachedData))
			return
		}
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", cacheKey, err)
		}

		log.Printf("Cache Miss for key: %s", cacheKey)

		filter := store.PropertyFilter{
			City:  query.Get("city"),
			Type:  query.Get("type"),
			Limit: 50,
		}
		if status := query.Get("status"); status != "" {
			filter.Statuses = []models.PropertyStatus{models.PropertyStatus(status)}
		}
		// Sold properties stay readable for history but never show up in
		// the available listing view.
		if query.Get("available") == "true" {
			filter.Statuses = []models.PropertyStatus{models.StatusRent, models.StatusSale, models.StatusBoth}
		}
		if maxPrice := query.Get("maxPrice"); maxPrice != "" {
			if n, perr := strconv.ParseInt(maxPrice, 10, 64); perr == nil {
				filter.MaxPrice = n
			} else {
				log.Printf("Invalid maxPrice value: %s", maxPrice)
			}
		}
		if ownerHex := query.Get("ownerId"); ownerHex != "" {
			ownerID, perr := primitive.ObjectIDFromHex(ownerHex)
			if perr != nil {
				http.Error(w, "Invalid ownerId", http.StatusBadRequest)
				return
			}
			filter.OwnerID = &ownerID
		}

		results, err := properties.List(r.Context(), filter)
		if err != nil {
			log.Printf("Error fetching properties: %v", err)
			http.Error(w, "Error fetching properties", http.StatusInternalServerError)
			return
		}

		resultBytes, err := json.Marshal(results)
		if err != nil {
			log.Printf("Failed to serialize properties: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		if err := redisClient.Set(r.Context(), cacheKey, resultBytes, 10*time.Minute).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func GetPropertyByID(properties store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		property, err := properties.GetByID(r.Context(), objID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching property %s: %v", objID.Hex(), err)
			http.Error(w, "Error fetching property", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(property)
	}
}

func UpdateProperty(properties store.PropertyStore, recalc *stats.Recalculator, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			log.Printf("Invalid update data: %v", err)
			http.Error(w, "Invalid update data", http.StatusBadRequest)
			return
		}

		delete(updateData, "_id")
		delete(updateData, "id")
		delete(updateData, "createdBy")
		delete(updateData, "ownerId")
		// The sold transition belongs to the availability guard alone.
		delete(updateData, "soldTo")
		delete(updateData, "soldTransactionId")
		delete(updateData, "soldAt")
		if status, ok := updateData["status"].(string); ok {
			if !models.ValidPropertyStatus(models.PropertyStatus(status)) {
				http.Error(w, "Invalid property status", http.StatusBadRequest)
				return
			}
			if status == string(models.StatusSold) {
				http.Error(w, "Status cannot be set to sold by edit", http.StatusBadRequest)
				return
			}
		}
		if price, ok := updateData["price"].(float64); ok {
			updateData["price"] = int64(price)
		}
		if rentPrice, ok := updateData["rentPrice"].(float64); ok {
			updateData["rentPrice"] = int64(rentPrice)
		}

		existing, err := properties.GetByID(r.Context(), objID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error loading property %s: %v", propertyID, err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		if err := properties.Update(r.Context(), objID, updateData); err != nil {
			log.Printf("Update failed for property %s: %v", propertyID, err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		// Manual edits can change eligibility, so the counters are re-derived
		// rather than adjusted in place.
		if _, err := recalc.Recalculate(r.Context(), existing.OwnerID); err != nil {
			log.Printf("Owner stats NOT updated after property edit %s: %v", propertyID, err)
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property updated successfully"})
	}
}

func DeleteProperty(properties store.PropertyStore, recalc *stats.Recalculator, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		existing, err := properties.GetByID(r.Context(), objID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error loading property %s: %v", propertyID, err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if err := properties.Delete(r.Context(), objID); err != nil {
			log.Printf("Delete failed for property %s: %v", propertyID, err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if _, err := recalc.Recalculate(r.Context(), existing.OwnerID); err != nil {
			log.Printf("Owner stats NOT updated after property delete %s: %v", propertyID, err)
		}

		go func() {
			deletePropertyCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property deleted successfully"})
	}
}

func generateCacheKey(queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "property:" + hex.EncodeToString(sum[:])
}

func deletePropertyCache(redisClient *redis.Client) {
	ctx := context.Background()
	const scanPattern = "property:*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, execErr := pipe.Exec(ctx); execErr != nil {
		log.Printf("Error executing pipeline for deleting %d property cache keys: %v", len(keysToDelete), execErr)
	} else {
		log.Printf("Property cache invalidated, deleted %d keys", len(keysToDelete))
	}
}
