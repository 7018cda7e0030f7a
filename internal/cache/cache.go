// Package cache holds the cart cache adapter. The cache stores the
// JSON-serialized canonical cart per identity key; every write is a full-cart
// replacement, never a field-level update.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mkorchagin/foodcart/internal/domain"
)

// CartTTL is applied on every write. 30 days outlives the cart-token cookie,
// so a cache entry is never orphaned while its cookie is still valid.
const CartTTL = 30 * 24 * time.Hour

// KV is the raw key/value surface the cart store needs from a cache backend.
type KV interface {
	// Get returns the stored value, or domain.ErrCartNotCached on a miss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// CartStore serializes canonical carts in and out of a KV backend.
type CartStore struct {
	kv KV
}

// NewCartStore creates a cart store over the given backend.
func NewCartStore(kv KV) *CartStore {
	return &CartStore{kv: kv}
}

// Get returns the cached canonical cart for key.
// Returns domain.ErrCartNotCached on a miss; any other error is an outage.
func (s *CartStore) Get(ctx context.Context, key string) (*domain.CanonicalCart, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var cart domain.CanonicalCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, domain.Internal(err, "cache.get", "failed to decode cached cart")
	}
	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}

	return &cart, nil
}

// Set replaces the cached cart under key, refreshing the TTL.
func (s *CartStore) Set(ctx context.Context, key string, cart *domain.CanonicalCart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return domain.Internal(err, "cache.set", "failed to encode cart")
	}

	return s.kv.Set(ctx, key, string(data), CartTTL)
}
