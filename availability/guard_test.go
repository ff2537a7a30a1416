package availability_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/property_market_system/availability"
	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store/memstore"
)

func seedProperty(t *testing.T, stores *memstore.Stores, status models.PropertyStatus) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:     "Sunset Villa",
		Type:      "Villa",
		Status:    status,
		Price:     100000,
		CreatedAt: time.Now(),
	}
	require.NoError(t, stores.Properties.Insert(context.Background(), p))
	return p
}

func TestCheckDecisions(t *testing.T) {
	tests := []struct {
		name         string
		status       models.PropertyStatus
		purchaseType models.PurchaseType
		wantErr      error
	}{
		{"buy sale-listed", models.StatusSale, models.PurchaseBuy, nil},
		{"buy both-listed", models.StatusBoth, models.PurchaseBuy, nil},
		{"buy rent-only", models.StatusRent, models.PurchaseBuy, availability.ErrNotForSale},
		{"buy sold", models.StatusSold, models.PurchaseBuy, availability.ErrAlreadySold},
		{"rent rent-listed", models.StatusRent, models.PurchaseRent, nil},
		{"rent both-listed", models.StatusBoth, models.PurchaseRent, nil},
		{"rent sale-only", models.StatusSale, models.PurchaseRent, availability.ErrNotForRent},
		{"rent sold", models.StatusSold, models.PurchaseRent, availability.ErrAlreadySold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores := memstore.New()
			guard := availability.NewGuard(stores.Properties)
			p := seedProperty(t, stores, tt.status)

			err := guard.Check(p, tt.purchaseType)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRentDoesNotMutateProperty(t *testing.T) {
	stores := memstore.New()
	guard := availability.NewGuard(stores.Properties)
	p := seedProperty(t, stores, models.StatusRent)

	require.NoError(t, guard.Check(p, models.PurchaseRent))

	reloaded, err := stores.Properties.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRent, reloaded.Status)
	assert.Empty(t, reloaded.SoldTo)
}

func TestMarkSoldRecordsBuyerMetadata(t *testing.T) {
	stores := memstore.New()
	guard := availability.NewGuard(stores.Properties)
	p := seedProperty(t, stores, models.StatusBoth)
	soldAt := time.Now()

	err := guard.MarkSold(context.Background(), p.ID, "Alice", "TXN-7", soldAt)
	require.NoError(t, err)

	reloaded, err := stores.Properties.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSold, reloaded.Status)
	assert.Equal(t, "Alice", reloaded.SoldTo)
	assert.Equal(t, "TXN-7", reloaded.SoldTransactionID)
	require.NotNil(t, reloaded.SoldAt)
	assert.True(t, reloaded.SoldAt.Equal(soldAt))
}

func TestMarkSoldIsTerminal(t *testing.T) {
	stores := memstore.New()
	guard := availability.NewGuard(stores.Properties)
	p := seedProperty(t, stores, models.StatusSale)

	require.NoError(t, guard.MarkSold(context.Background(), p.ID, "Alice", "TXN-1", time.Now()))

	err := guard.MarkSold(context.Background(), p.ID, "Bob", "TXN-2", time.Now())
	assert.ErrorIs(t, err, availability.ErrAlreadySold)

	reloaded, err := stores.Properties.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", reloaded.SoldTo)
}

func TestConcurrentBuyersExactlyOneWins(t *testing.T) {
	stores := memstore.New()
	guard := availability.NewGuard(stores.Properties)
	p := seedProperty(t, stores, models.StatusBoth)

	const buyers = 20
	var wg sync.WaitGroup
	errs := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- guard.MarkSold(context.Background(), p.ID, "Buyer", "TXN-X", time.Now())
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		if err == nil {
			wins++
		} else if errors.Is(err, availability.ErrAlreadySold) {
			losses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, buyers-1, losses)
}
