package domain

import (
	"context"
	"fmt"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	// ErrCartNotCached signals a cache miss, as opposed to a cache outage.
	ErrCartNotCached = &Error{Code: ENOTFOUND, Message: "Cart not cached"}

	// ErrInvalidQuantity guards the engine against negative declarations that
	// slipped past transport-level validation.
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Quantity must not be negative"}
)

// CartIdentity identifies whose cart a request operates on. It is resolved
// per-request by the identity layer and is immutable for the duration of a
// reconciliation call.
type CartIdentity struct {
	CartToken string
	UserID    *int64
}

// CacheKey returns the cache key for this identity. The authenticated user id
// always wins over the anonymous token, so logging in surfaces the user's
// existing cart.
func (id CartIdentity) CacheKey() string {
	if id.UserID != nil {
		return fmt.Sprintf("user:%d", *id.UserID)
	}
	return "token:" + id.CartToken
}

// DesiredLine is one client-declared cart line. Quantity is the absolute
// quantity the client wants, not an increment.
type DesiredLine struct {
	OfferID          int64
	Quantity         int32
	Comment          string
	AllowReplacement bool
	IsFavorite       bool
}

// DesiredCart is the full desired state a client declares on every
// reconciliation call. An offer absent from Items is desired at quantity 0.
type DesiredCart struct {
	DeliverySlot *string
	Items        []DesiredLine
}

// CartLine is one line of the canonical cart.
type CartLine struct {
	OfferID          int64   `json:"offer_id"`
	Name             string  `json:"name"`
	Quantity         int32   `json:"quantity"`
	UnitPrice        int64   `json:"unit_price"`
	DiscountPrice    *int64  `json:"discount_price,omitempty"`
	Comment          *string `json:"comment,omitempty"`
	AllowReplacement bool    `json:"allow_replacement"`
	IsFavorite       bool    `json:"is_favorite"`
}

// FinalPrice returns the effective per-unit price after discount.
func (l CartLine) FinalPrice() int64 {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.UnitPrice
}

// CartTotals aggregates per-line contributions.
// Invariant: Total == Subtotal - DiscountTotal.
type CartTotals struct {
	Subtotal      int64 `json:"subtotal"`
	DiscountTotal int64 `json:"discount_total"`
	Total         int64 `json:"total"`
}

// CanonicalCart is the single authoritative representation of a shopper's
// cart. It is what the cache stores verbatim and what clients receive.
// A cart with zero items and zero totals is a valid, cacheable state.
type CanonicalCart struct {
	CartToken    string     `json:"cart_token"`
	DeliverySlot *string    `json:"delivery_slot,omitempty"`
	Items        []CartLine `json:"items"`
	Totals       CartTotals `json:"totals"`
}

// EmptyCart returns a valid empty canonical cart for the given token.
func EmptyCart(cartToken string) *CanonicalCart {
	return &CanonicalCart{
		CartToken: cartToken,
		Items:     []CartLine{},
	}
}

// ChangeType classifies an automatic correction made during reconciliation.
type ChangeType string

const (
	ChangeRemoved         ChangeType = "removed"
	ChangePriceChanged    ChangeType = "price_changed"
	ChangeQuantityChanged ChangeType = "quantity_changed"
)

// CartChange records one correction the engine applied to the client's
// declared cart. Changes are ephemeral: they are returned to the caller who
// triggered the reconciliation and never persisted.
type CartChange struct {
	Type    ChangeType `json:"type"`
	OfferID int64      `json:"offer_id"`
	Message string     `json:"message"`
}

// ReconcileResult is the full output of one reconciliation call.
type ReconcileResult struct {
	Cart              *CanonicalCart  `json:"cart"`
	Changes           []CartChange    `json:"changes"`
	MinOrderSum       int64           `json:"min_order_sum"`
	IsMinOrderReached bool            `json:"is_min_order_reached"`
	StockByOfferID    map[int64]int32 `json:"stock_by_offer_id"`
}

// CartReader is the fast read path over the cart cache.
type CartReader interface {
	// GetOrCreateCart returns the cached canonical cart for the identity,
	// creating and caching an empty one on first access.
	GetOrCreateCart(ctx context.Context, identity CartIdentity) (*CanonicalCart, error)
}

// CartReconciler reconciles a client-declared desired cart against
// authoritative inventory, adjusting reserved stock and refreshing the cache.
type CartReconciler interface {
	Reconcile(ctx context.Context, identity CartIdentity, desired DesiredCart) (*ReconcileResult, error)
}
