// Package sequence issues the human-readable sequential identifiers used on
// transactions and owners. Values come from a per-name atomic counter and are
// never reused; a failed allocation means the dependent record must not be
// created.
package sequence

import (
	"context"
	"fmt"

	"github.com/harborview/property_market_system/store"
)

const (
	CounterTransactionID = "transactionId"
	CounterOwnerID       = "ownerId"
)

type Allocator struct {
	counters store.SequenceStore
}

func NewAllocator(counters store.SequenceStore) *Allocator {
	return &Allocator{counters: counters}
}

// Next returns the next raw value for an arbitrary counter name.
func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	return a.counters.Next(ctx, name)
}

func (a *Allocator) NextTransactionID(ctx context.Context) (string, error) {
	n, err := a.counters.Next(ctx, CounterTransactionID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%d", n), nil
}

func (a *Allocator) NextOwnerID(ctx context.Context) (string, error) {
	n, err := a.counters.Next(ctx, CounterOwnerID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("OWN-%d", n), nil
}
