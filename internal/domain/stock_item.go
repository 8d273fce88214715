package domain

import (
	"fmt"
	"time"
)

// Variant is the slice of catalog data the inventory core needs when a
// stock item is first created. The catalog subsystem owns the rest.
type Variant struct {
	VariantID     string
	SKU           string
	Backorderable bool
}

// StockItem holds the current on-hand and reserved counts for one
// (variant, location) pair. It is owned by its StockLocation and is
// loaded and saved together with it.
type StockItem struct {
	VariantID        string          `bson:"variantId" json:"variantId"`
	StockLocationID  string          `bson:"stockLocationId" json:"stockLocationId"`
	SKU              string          `bson:"sku" json:"sku"`
	QuantityOnHand   int             `bson:"quantityOnHand" json:"quantityOnHand"`
	QuantityReserved int             `bson:"quantityReserved" json:"quantityReserved"`
	Backorderable    bool            `bson:"backorderable" json:"backorderable"`
	Movements        []StockMovement `bson:"movements" json:"movements"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// NewStockItem creates a stock item with zero counts for a variant at a location
func NewStockItem(locationID string, variant Variant) (*StockItem, error) {
	if variant.VariantID == "" {
		return nil, ErrVariantRequired
	}

	now := time.Now().UTC()
	return &StockItem{
		VariantID:       variant.VariantID,
		StockLocationID: locationID,
		SKU:             variant.SKU,
		Backorderable:   variant.Backorderable,
		Movements:       make([]StockMovement, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// QuantityAvailable returns on-hand minus reserved
func (si *StockItem) QuantityAvailable() int {
	return si.QuantityOnHand - si.QuantityReserved
}

// Adjust applies a signed quantity delta to on-hand stock and appends the
// movement that records it. The reserved-vs-on-hand invariant is re-checked
// here as the last line of defense; callers pre-check so they can produce
// friendlier messages.
func (si *StockItem) Adjust(delta int, originator MovementOriginator, originatorID, reason string) (*StockMovement, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	newOnHand := si.QuantityOnHand + delta
	if !si.Backorderable {
		if newOnHand < 0 {
			return nil, fmt.Errorf("%w: on-hand quantity would become %d", ErrNegativeOnHand, newOnHand)
		}
		if si.QuantityReserved > newOnHand {
			return nil, fmt.Errorf("%w: reserved %d would exceed on-hand %d", ErrReservedExceedsOnHand, si.QuantityReserved, newOnHand)
		}
	}

	movement, err := NewStockMovement(si.VariantID, delta, originator, originatorID, reason)
	if err != nil {
		return nil, err
	}

	si.QuantityOnHand = newOnHand
	si.Movements = append(si.Movements, *movement)
	si.UpdatedAt = time.Now().UTC()

	return movement, nil
}

// checkInvariants returns the first count invariant violated by the item's
// current state, or nil
func (si *StockItem) checkInvariants() error {
	if si.QuantityReserved < 0 {
		return fmt.Errorf("%w: variant %s has reserved %d", ErrNegativeReserved, si.VariantID, si.QuantityReserved)
	}
	if si.QuantityOnHand < 0 && !si.Backorderable {
		return fmt.Errorf("%w: variant %s has on-hand %d", ErrNegativeOnHand, si.VariantID, si.QuantityOnHand)
	}
	if !si.Backorderable && si.QuantityReserved > si.QuantityOnHand {
		return fmt.Errorf("%w: variant %s has reserved %d, on-hand %d", ErrReservedExceedsOnHand, si.VariantID, si.QuantityReserved, si.QuantityOnHand)
	}
	return nil
}
