package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mkorchagin/foodcart/internal/cache"
	"github.com/mkorchagin/foodcart/internal/domain"
	"github.com/mkorchagin/foodcart/internal/telemetry"
)

// CartReaderService is the fast read path: it serves the cached canonical
// cart without touching the inventory store. Validation against inventory
// happens only in the reconciliation engine.
type CartReaderService struct {
	carts   *cache.CartStore
	metrics *telemetry.CartMetrics
	logger  *slog.Logger
}

// Compile-time check that CartReaderService implements domain.CartReader.
var _ domain.CartReader = (*CartReaderService)(nil)

// NewCartReader creates the read path. metrics may be nil.
func NewCartReader(carts *cache.CartStore, metrics *telemetry.CartMetrics, logger *slog.Logger) *CartReaderService {
	return &CartReaderService{
		carts:   carts,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *CartReaderService) observeCacheRead(result string) {
	if s.metrics != nil {
		s.metrics.ObserveCacheRead(result)
	}
}

// GetOrCreateCart returns the cached cart for the identity, creating and
// caching an empty one on first access. The write-on-miss makes the cache the
// durable record that this identity has an (empty) cart before any
// reconciliation occurs.
//
// A cache outage is absorbed here: the empty cart is a sufficient answer for
// the read path. Callers that need the previous cart's actual contents (the
// reconciliation engine) read the cache strictly instead.
func (s *CartReaderService) GetOrCreateCart(ctx context.Context, identity domain.CartIdentity) (*domain.CanonicalCart, error) {
	key := identity.CacheKey()

	cart, err := s.carts.Get(ctx, key)
	if err == nil {
		s.observeCacheRead(telemetry.CacheHit)
		return cart, nil
	}

	if !errors.Is(err, domain.ErrCartNotCached) {
		s.observeCacheRead(telemetry.CacheError)
		s.logger.Warn("cart cache read failed, serving empty cart",
			"key", key,
			"error", err,
		)
		return domain.EmptyCart(identity.CartToken), nil
	}

	s.observeCacheRead(telemetry.CacheMiss)
	cart = domain.EmptyCart(identity.CartToken)
	if err := s.carts.Set(ctx, key, cart); err != nil {
		s.logger.Warn("failed to cache empty cart",
			"key", key,
			"error", err,
		)
	}

	return cart, nil
}
