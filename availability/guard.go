// Package availability decides whether a property may be bought or rented
// and owns the transition to sold.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/store"
)

var (
	ErrAlreadySold = errors.New("property already sold")
	ErrNotForSale  = errors.New("property not listed for sale")
	ErrNotForRent  = errors.New("property not listed for rent")
)

type Guard struct {
	properties store.PropertyStore
}

func NewGuard(properties store.PropertyStore) *Guard {
	return &Guard{properties: properties}
}

// Check decides availability without mutating anything. Rent never consumes
// the listing; buy is rejected when the property is sold or not sellable.
func (g *Guard) Check(p *models.Property, purchaseType models.PurchaseType) error {
	switch purchaseType {
	case models.PurchaseRent:
		if !p.Rentable() {
			if p.Status == models.StatusSold {
				return ErrAlreadySold
			}
			return ErrNotForRent
		}
		return nil
	case models.PurchaseBuy:
		if p.Status == models.StatusSold {
			return ErrAlreadySold
		}
		if !p.Sellable() {
			return ErrNotForSale
		}
		return nil
	default:
		return fmt.Errorf("unknown purchase type %q", purchaseType)
	}
}

// MarkSold performs the sold transition as one conditional update. Of two
// concurrent buyers only one matches the sellable condition; the loser gets
// ErrAlreadySold rather than silently succeeding.
func (g *Guard) MarkSold(ctx context.Context, propertyID primitive.ObjectID, buyer, transactionID string, at time.Time) error {
	matched, err := g.properties.MarkSold(ctx, propertyID, buyer, transactionID, at)
	if err != nil {
		return err
	}
	if !matched {
		return ErrAlreadySold
	}
	return nil
}
