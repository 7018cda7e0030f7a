package service

import (
	"github.com/mkorchagin/foodcart/internal/domain"
)

// computeTotals sums per-line contributions.
// Total == Subtotal - DiscountTotal by construction.
func computeTotals(items []domain.CartLine) domain.CartTotals {
	var t domain.CartTotals
	for _, line := range items {
		qty := int64(line.Quantity)
		t.Subtotal += line.UnitPrice * qty
		t.DiscountTotal += (line.UnitPrice - line.FinalPrice()) * qty
	}
	t.Total = t.Subtotal - t.DiscountTotal
	return t
}

// buildLine assembles a canonical cart line from the locked offer row and the
// client's declared line attributes.
func buildLine(offer domain.Offer, desired domain.DesiredLine, quantity int32) domain.CartLine {
	var comment *string
	if desired.Comment != "" {
		c := desired.Comment
		comment = &c
	}

	return domain.CartLine{
		OfferID:          offer.ID,
		Name:             offer.Name,
		Quantity:         quantity,
		UnitPrice:        offer.UnitPrice,
		DiscountPrice:    offer.DiscountedPrice(),
		Comment:          comment,
		AllowReplacement: desired.AllowReplacement,
		IsFavorite:       desired.IsFavorite,
	}
}
