package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mkorchagin/foodcart/internal/cache"
	"github.com/mkorchagin/foodcart/internal/domain"
	"github.com/mkorchagin/foodcart/internal/events"
	"github.com/mkorchagin/foodcart/internal/repository"
)

// Human-readable change messages surfaced to the shopper.
const (
	msgItemUnavailable = "Item is no longer available"
	msgOutOfStock      = "Out of stock"
	msgPriceChanged    = "Price changed"
)

// ReconcilerService is the reconciliation engine. Every call is a full
// re-declaration of desired cart state: the engine corrects it against
// authoritative inventory under row locks, applies stock deltas, rebuilds the
// canonical cart and replaces the cached copy.
//
// Treating calls as declarations rather than increments is what makes the
// protocol idempotent: replaying a request converges to the same quantities
// and a zero stock delta instead of double-applying a decrement.
type ReconcilerService struct {
	offers      repository.OfferStore
	carts       *cache.CartStore
	publisher   events.Publisher
	logger      *slog.Logger
	minOrderSum int64
}

// Compile-time check that ReconcilerService implements domain.CartReconciler.
var _ domain.CartReconciler = (*ReconcilerService)(nil)

func NewReconciler(
	offers repository.OfferStore,
	carts *cache.CartStore,
	publisher events.Publisher,
	logger *slog.Logger,
	minOrderSum int64,
) *ReconcilerService {
	return &ReconcilerService{
		offers:      offers,
		carts:       carts,
		publisher:   publisher,
		logger:      logger,
		minOrderSum: minOrderSum,
	}
}

// keptLine pairs a locked offer row with the corrected quantity and the
// client's declared line attributes, carried out of the transaction for cart
// construction.
type keptLine struct {
	offer    domain.Offer
	desired  domain.DesiredLine
	quantity int32
}

// Reconcile implements domain.CartReconciler.
func (s *ReconcilerService) Reconcile(ctx context.Context, identity domain.CartIdentity, desired domain.DesiredCart) (*domain.ReconcileResult, error) {
	const op = "cart.reconcile"

	for _, line := range desired.Items {
		if line.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	key := identity.CacheKey()

	// The previous cart's quantities are the baseline for every stock delta.
	// A cache outage here must fail the call: silently treating the cart as
	// empty would erase the deltas owed back to free stock.
	prev, err := s.carts.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCartNotCached) {
			return nil, err
		}
		prev = domain.EmptyCart(identity.CartToken)
	}

	prevQty := make(map[int64]int32, len(prev.Items))
	prevFinal := make(map[int64]int64, len(prev.Items))
	for _, line := range prev.Items {
		prevQty[line.OfferID] = line.Quantity
		prevFinal[line.OfferID] = line.FinalPrice()
	}

	// Later duplicate declarations for the same offer win.
	desiredQty := make(map[int64]int32, len(desired.Items))
	desiredLine := make(map[int64]domain.DesiredLine, len(desired.Items))
	for _, line := range desired.Items {
		desiredQty[line.OfferID] = line.Quantity
		desiredLine[line.OfferID] = line
	}

	// Lock the union of both sets: removals (previously present, now absent)
	// must also hold the row lock to release reserved stock safely.
	ids := unionIDs(prevQty, desiredQty)

	changes := make([]domain.CartChange, 0)
	stockByOfferID := make(map[int64]int32, len(ids))
	var kept []keptLine

	err = s.offers.InTx(ctx, func(q repository.OfferQuerier) error {
		offers, err := q.LockOffers(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to lock offers: %w", err)
		}

		for _, id := range ids {
			prevQ := prevQty[id]
			desQ := desiredQty[id]

			offer, found := offers[id]
			if !found {
				// Row deleted from the store entirely: nothing to lock,
				// nothing to return stock to.
				if prevQ > 0 || desQ > 0 {
					changes = append(changes, domain.CartChange{
						Type:    domain.ChangeRemoved,
						OfferID: id,
						Message: msgItemUnavailable,
					})
				}
				continue
			}

			free := offer.FreeStock
			if free < 0 {
				free = 0
			}

			var nextQ int32
			switch {
			case !offer.Orderable():
				nextQ = 0
				if prevQ > 0 || desQ > 0 {
					changes = append(changes, domain.CartChange{
						Type:    domain.ChangeRemoved,
						OfferID: id,
						Message: msgItemUnavailable,
					})
				}
			case desQ <= 0:
				// Explicit removal, not a correction: no change emitted.
				nextQ = 0
			default:
				// The client may keep what it already holds plus whatever
				// is still free.
				maxAllowed := prevQ + free
				if desQ > maxAllowed {
					nextQ = maxAllowed
					msg := msgOutOfStock
					if maxAllowed > 0 {
						msg = fmt.Sprintf("Available only %d", maxAllowed)
					}
					changes = append(changes, domain.CartChange{
						Type:    domain.ChangeQuantityChanged,
						OfferID: id,
						Message: msg,
					})
				} else {
					nextQ = desQ
				}
			}

			delta := nextQ - prevQ
			if delta > offer.FreeStock {
				// Unreachable while the row lock is held; clamp rather than
				// drive free_stock negative.
				nextQ = prevQ + free
				delta = nextQ - prevQ
			}

			newStock := offer.FreeStock
			if delta != 0 {
				// Adding to the cart consumes free stock, removing returns it.
				newStock, err = q.AdjustFreeStock(ctx, id, -delta)
				if err != nil {
					return fmt.Errorf("failed to adjust stock for offer %d: %w", id, err)
				}
			}
			stockByOfferID[id] = newStock

			if nextQ > 0 {
				kept = append(kept, keptLine{offer: offer, desired: desiredLine[id], quantity: nextQ})
			}
		}

		return nil
	})
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return nil, err
		}
		return nil, domain.Unavailable(err, op, "inventory store failure")
	}

	// Pure computation from here on: the locks are released, quantities and
	// stock are settled.
	items := make([]domain.CartLine, 0, len(kept))
	for _, k := range kept {
		line := buildLine(k.offer, k.desired, k.quantity)
		if prevPrice, ok := prevFinal[k.offer.ID]; ok && prevPrice != line.FinalPrice() {
			changes = append(changes, domain.CartChange{
				Type:    domain.ChangePriceChanged,
				OfferID: k.offer.ID,
				Message: msgPriceChanged,
			})
		}
		items = append(items, line)
	}

	cart := &domain.CanonicalCart{
		CartToken:    identity.CartToken,
		DeliverySlot: desired.DeliverySlot,
		Items:        items,
		Totals:       computeTotals(items),
	}

	// Full replacement: the freshly reconciled state is authoritative.
	if err := s.carts.Set(ctx, key, cart); err != nil {
		// The transaction already committed; stock is correct but the cache
		// is stale until the next reconciliation. Never swallow this.
		s.logger.Error("cart cache write failed after stock commit",
			"key", key,
			"error", err,
		)
		return nil, err
	}

	s.publish(ctx, identity, cart, changes)

	return &domain.ReconcileResult{
		Cart:              cart,
		Changes:           changes,
		MinOrderSum:       s.minOrderSum,
		IsMinOrderReached: cart.Totals.Total >= s.minOrderSum,
		StockByOfferID:    stockByOfferID,
	}, nil
}

func (s *ReconcilerService) publish(ctx context.Context, identity domain.CartIdentity, cart *domain.CanonicalCart, changes []domain.CartChange) {
	event := events.CartReconciledEvent{
		CartToken:  identity.CartToken,
		UserID:     identity.UserID,
		Total:      cart.Totals.Total,
		ItemCount:  len(cart.Items),
		Changes:    changes,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.publisher.PublishCartReconciled(ctx, event); err != nil {
		s.logger.Warn("failed to publish cart reconciled event",
			"cart_token", identity.CartToken,
			"error", err,
		)
	}
}

// unionIDs returns the sorted union of the offer-id sets of both maps.
func unionIDs(a, b map[int64]int32) []int64 {
	seen := make(map[int64]struct{}, len(a)+len(b))
	ids := make([]int64, 0, len(a)+len(b))
	for id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
