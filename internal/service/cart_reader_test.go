package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorchagin/foodcart/internal/cache"
	"github.com/mkorchagin/foodcart/internal/domain"
)

func Test_GetOrCreateCart_FirstAccessCreatesEmptyCart(t *testing.T) {
	kv := cache.NewMockKV()
	reader := NewCartReader(cache.NewCartStore(kv), nil, testLogger())

	cart, err := reader.GetOrCreateCart(context.Background(), anonymous("t1"))

	require.NoError(t, err)
	assert.Equal(t, "t1", cart.CartToken)
	assert.Empty(t, cart.Items)
	assert.Equal(t, domain.CartTotals{}, cart.Totals)

	// The empty cart is cached immediately, not lazily on first sync.
	cached, err := cache.NewCartStore(kv).Get(context.Background(), "token:t1")
	require.NoError(t, err)
	assert.Equal(t, cart, cached)
}

func Test_GetOrCreateCart_ReturnsCachedCart(t *testing.T) {
	kv := cache.NewMockKV()
	carts := cache.NewCartStore(kv)
	ctx := context.Background()

	stored := &domain.CanonicalCart{
		CartToken: "t1",
		Items: []domain.CartLine{
			{OfferID: 1, Name: "Oat milk", Quantity: 2, UnitPrice: 200},
		},
		Totals: domain.CartTotals{Subtotal: 400, Total: 400},
	}
	require.NoError(t, carts.Set(ctx, "token:t1", stored))

	reader := NewCartReader(carts, nil, testLogger())
	cart, err := reader.GetOrCreateCart(ctx, anonymous("t1"))

	require.NoError(t, err)
	assert.Equal(t, stored, cart)
}

func Test_GetOrCreateCart_UserIdentityWinsOverToken(t *testing.T) {
	kv := cache.NewMockKV()
	carts := cache.NewCartStore(kv)
	ctx := context.Background()

	userCart := &domain.CanonicalCart{
		CartToken: "older-token",
		Items:     []domain.CartLine{{OfferID: 5, Name: "Rye bread", Quantity: 1, UnitPrice: 90}},
	}
	require.NoError(t, carts.Set(ctx, "user:42", userCart))

	userID := int64(42)
	reader := NewCartReader(carts, nil, testLogger())
	cart, err := reader.GetOrCreateCart(ctx, domain.CartIdentity{CartToken: "fresh-token", UserID: &userID})

	require.NoError(t, err)
	// Logging in surfaces the user's existing cart, not the anonymous one.
	assert.Equal(t, userCart, cart)
}

func Test_GetOrCreateCart_ServesEmptyCartOnOutage(t *testing.T) {
	kv := cache.NewMockKV()
	kv.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", domain.Unavailable(errors.New("connection refused"), "cache.get", "cart cache unreachable")
	}

	reader := NewCartReader(cache.NewCartStore(kv), nil, testLogger())
	cart, err := reader.GetOrCreateCart(context.Background(), anonymous("t1"))

	// The read path degrades gracefully: an empty cart, no error.
	require.NoError(t, err)
	assert.Equal(t, "t1", cart.CartToken)
	assert.Empty(t, cart.Items)
}

func Test_GetOrCreateCart_SetFailureDoesNotFailRead(t *testing.T) {
	kv := cache.NewMockKV()
	kv.SetFunc = func(ctx context.Context, key, value string, ttl time.Duration) error {
		return domain.Unavailable(errors.New("connection refused"), "cache.set", "cart cache unreachable")
	}

	reader := NewCartReader(cache.NewCartStore(kv), nil, testLogger())
	cart, err := reader.GetOrCreateCart(context.Background(), anonymous("t1"))

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
