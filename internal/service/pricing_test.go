package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorchagin/foodcart/internal/domain"
)

func Test_computeTotals(t *testing.T) {
	items := []domain.CartLine{
		{OfferID: 1, Quantity: 2, UnitPrice: 200, DiscountPrice: int64Ptr(150)},
		{OfferID: 2, Quantity: 3, UnitPrice: 90},
	}

	totals := computeTotals(items)

	assert.Equal(t, int64(670), totals.Subtotal)      // 400 + 270
	assert.Equal(t, int64(100), totals.DiscountTotal) // 50 * 2
	assert.Equal(t, int64(570), totals.Total)
	assert.Equal(t, totals.Subtotal-totals.DiscountTotal, totals.Total)
}

func Test_computeTotals_Empty(t *testing.T) {
	assert.Equal(t, domain.CartTotals{}, computeTotals(nil))
	assert.Equal(t, domain.CartTotals{}, computeTotals([]domain.CartLine{}))
}

func Test_buildLine(t *testing.T) {
	offer := domain.Offer{
		ID: 1, Name: "Oat milk", UnitPrice: 200, DiscountPercent: pct(25),
		IsActive: true, IsAvailable: true, FreeStock: 5,
	}
	desired := domain.DesiredLine{
		OfferID: 1, Quantity: 99, Comment: "ripe ones", AllowReplacement: true, IsFavorite: true,
	}

	// Quantity comes from the reconciler, not the declaration.
	line := buildLine(offer, desired, 2)

	assert.Equal(t, int64(1), line.OfferID)
	assert.Equal(t, "Oat milk", line.Name)
	assert.Equal(t, int32(2), line.Quantity)
	assert.Equal(t, int64(200), line.UnitPrice)
	require.NotNil(t, line.DiscountPrice)
	assert.Equal(t, int64(150), *line.DiscountPrice)
	require.NotNil(t, line.Comment)
	assert.Equal(t, "ripe ones", *line.Comment)
	assert.True(t, line.AllowReplacement)
	assert.True(t, line.IsFavorite)
	assert.Equal(t, int64(150), line.FinalPrice())
}

func Test_buildLine_EmptyCommentStaysNil(t *testing.T) {
	offer := domain.Offer{ID: 1, Name: "Oat milk", UnitPrice: 200}
	line := buildLine(offer, domain.DesiredLine{OfferID: 1}, 1)

	assert.Nil(t, line.Comment)
	assert.Nil(t, line.DiscountPrice)
	assert.Equal(t, int64(200), line.FinalPrice())
}

func int64Ptr(v int64) *int64 { return &v }
