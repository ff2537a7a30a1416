// Package stats recomputes an owner's derived counters from the current
// Property set. The counters on the Owner document are a cache; this is the
// only code path allowed to write them, and it never increments in place.
package stats

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

type Recalculator struct {
	properties store.PropertyStore
	owners     store.OwnerStore

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewRecalculator(properties store.PropertyStore, owners store.OwnerStore) *Recalculator {
	return &Recalculator{
		properties: properties,
		owners:     owners,
		locks:      make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// Recalculate derives all counters from scratch and writes them back in one
// update. Safe to re-run at any time; running it twice in a row yields the
// same result. Calls for the same owner are serialized so a concurrent pair
// cannot interleave a stale read with a fresh write.
func (r *Recalculator) Recalculate(ctx context.Context, ownerID primitive.ObjectID) (models.OwnerStats, error) {
	lock := r.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	counts, err := r.properties.CountsByOwner(ctx, ownerID)
	if err != nil {
		return models.OwnerStats{}, fmt.Errorf("counting properties for owner %s: %w", ownerID.Hex(), err)
	}

	// Sold counts only status=sold. Sold properties are excluded from both
	// eligibility counts and therefore from active listings.
	stats := models.OwnerStats{
		Owned:         counts.Owned,
		RentEligible:  counts.RentEligible,
		SaleEligible:  counts.SaleEligible,
		Sold:          counts.Sold,
		TotalListings: counts.RentEligible + counts.SaleEligible,
	}

	if err := r.owners.UpdateStats(ctx, ownerID, stats); err != nil {
		return models.OwnerStats{}, fmt.Errorf("writing stats for owner %s: %w", ownerID.Hex(), err)
	}
	return stats, nil
}

func (r *Recalculator) ownerLock(ownerID primitive.ObjectID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[ownerID] = lock
	}
	return lock
}
