package domain

import "math"

// Offer is one sellable item from the authoritative inventory table.
//
// FreeStock is the portion of the item's inventory not currently reserved by
// any shopper's cart; it is already net of everything held in carts. It is
// mutated only inside a locked transaction by the reconciliation engine (or
// by fulfillment paths outside this service).
type Offer struct {
	ID              int64
	Name            string
	UnitPrice       int64
	DiscountPercent *int32
	IsActive        bool
	IsAvailable     bool
	FreeStock       int32
}

// Orderable reports whether the offer may be placed in a cart at all.
// An unorderable offer forces its cart quantity to zero.
func (o Offer) Orderable() bool {
	return o.IsActive && o.IsAvailable
}

// DiscountedPrice returns the per-unit price after the offer's discount,
// rounded to the nearest minor currency unit, or nil when no discount applies.
func (o Offer) DiscountedPrice() *int64 {
	if o.DiscountPercent == nil || *o.DiscountPercent <= 0 {
		return nil
	}

	final := int64(math.Round(float64(o.UnitPrice) * (1 - float64(*o.DiscountPercent)/100)))
	return &final
}
