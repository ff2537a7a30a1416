package stats_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store/memstore"
)

func seedOwner(t *testing.T, stores *memstore.Stores) *models.Owner {
	t.Helper()
	o := &models.Owner{OwnerID: "OWN-1", Name: "Morgan", Phone: "555-0100", CreatedAt: time.Now()}
	require.NoError(t, stores.Owners.Insert(context.Background(), o))
	return o
}

func addProperty(t *testing.T, stores *memstore.Stores, ownerID primitive.ObjectID, status models.PropertyStatus) *models.Property {
	t.Helper()
	p := &models.Property{Title: "P", Status: status, OwnerID: ownerID, CreatedAt: time.Now()}
	require.NoError(t, stores.Properties.Insert(context.Background(), p))
	return p
}

func TestRecalculateCountsByStatus(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)

	addProperty(t, stores, owner.ID, models.StatusRent)
	addProperty(t, stores, owner.ID, models.StatusSale)
	addProperty(t, stores, owner.ID, models.StatusBoth)
	addProperty(t, stores, owner.ID, models.StatusSold)

	got, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Owned)
	assert.Equal(t, 2, got.RentEligible, "rent + both")
	assert.Equal(t, 2, got.SaleEligible, "sale + both")
	assert.Equal(t, 1, got.Sold, "only status=sold counts as sold")
	assert.Equal(t, 4, got.TotalListings, "sold never counts as an active listing")

	reloaded, err := stores.Owners.GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded.Stats)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)

	addProperty(t, stores, owner.ID, models.StatusBoth)
	addProperty(t, stores, owner.ID, models.StatusSold)

	first, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)
	second, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecalculateIgnoresOtherOwners(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)
	other := &models.Owner{OwnerID: "OWN-2", Name: "Riley", Phone: "555-0101", CreatedAt: time.Now()}
	require.NoError(t, stores.Owners.Insert(context.Background(), other))

	addProperty(t, stores, owner.ID, models.StatusRent)
	addProperty(t, stores, other.ID, models.StatusSale)
	addProperty(t, stores, other.ID, models.StatusSold)

	got, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Owned)
	assert.Equal(t, 0, got.Sold)
}

func TestRecalculateWithNoProperties(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)

	got, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OwnerStats{}, got)
}

func TestRecalculateReflectsSoldTransition(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)
	p := addProperty(t, stores, owner.ID, models.StatusBoth)

	before, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, before.TotalListings)
	assert.Equal(t, 0, before.Sold)

	matched, err := stores.Properties.MarkSold(context.Background(), p.ID, "Alice", "TXN-1", time.Now())
	require.NoError(t, err)
	require.True(t, matched)

	after, err := recalc.Recalculate(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Sold)
	assert.Equal(t, 0, after.TotalListings)
	assert.Equal(t, before.Owned, after.Owned)
}

func TestConcurrentRecalculationsConverge(t *testing.T) {
	stores := memstore.New()
	recalc := stats.NewRecalculator(stores.Properties, stores.Owners)
	owner := seedOwner(t, stores)

	for i := 0; i < 6; i++ {
		addProperty(t, stores, owner.ID, models.StatusRent)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recalc.Recalculate(context.Background(), owner.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reloaded, err := stores.Owners.GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Stats.Owned)
	assert.Equal(t, 6, reloaded.Stats.RentEligible)
	assert.Equal(t, 6, reloaded.Stats.TotalListings)
}
