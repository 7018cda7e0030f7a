package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CartIdentity_CacheKey(t *testing.T) {
	userID := int64(42)

	tests := []struct {
		name     string
		identity CartIdentity
		want     string
	}{
		{
			name:     "anonymous uses token",
			identity: CartIdentity{CartToken: "abc123"},
			want:     "token:abc123",
		},
		{
			name:     "authenticated uses user id",
			identity: CartIdentity{UserID: &userID},
			want:     "user:42",
		},
		{
			name:     "user id wins over token",
			identity: CartIdentity{CartToken: "abc123", UserID: &userID},
			want:     "user:42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.identity.CacheKey())
		})
	}
}

func Test_CartLine_FinalPrice(t *testing.T) {
	discounted := int64(150)

	line := CartLine{UnitPrice: 200}
	assert.Equal(t, int64(200), line.FinalPrice())

	line.DiscountPrice = &discounted
	assert.Equal(t, int64(150), line.FinalPrice())
}

func Test_EmptyCart(t *testing.T) {
	cart := EmptyCart("t1")

	assert.Equal(t, "t1", cart.CartToken)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.Equal(t, CartTotals{}, cart.Totals)
	assert.Nil(t, cart.DeliverySlot)
}
