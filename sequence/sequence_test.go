package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/store/memstore"
)

func TestAllocatorFormatsHumanReadableIDs(t *testing.T) {
	allocator := sequence.NewAllocator(memstore.New().Sequences)
	ctx := context.Background()

	txnID, err := allocator.NextTransactionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TXN-1", txnID)

	txnID, err = allocator.NextTransactionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TXN-2", txnID)

	ownerID, err := allocator.NextOwnerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OWN-1", ownerID)
}

func TestAllocatorCountersAreIndependent(t *testing.T) {
	allocator := sequence.NewAllocator(memstore.New().Sequences)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := allocator.Next(ctx, "transactionId")
		require.NoError(t, err)
	}

	n, err := allocator.Next(ctx, "ownerId")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAllocatorNeverRepeatsUnderConcurrency(t *testing.T) {
	allocator := sequence.NewAllocator(memstore.New().Sequences)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := allocator.Next(ctx, "transactionId")
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for n := range results {
		assert.False(t, seen[n], "value %d allocated twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}
