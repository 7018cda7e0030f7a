// Package events publishes cart lifecycle events for downstream consumers
// (fulfillment, analytics). Publishing is best-effort: the cart state in the
// store and cache is authoritative whether or not the event goes out.
package events

import (
	"context"
	"time"

	"github.com/mkorchagin/foodcart/internal/domain"
)

// CartReconciledEvent is emitted after a reconciliation commits and the cache
// is refreshed.
type CartReconciledEvent struct {
	CartToken  string              `json:"cart_token"`
	UserID     *int64              `json:"user_id,omitempty"`
	Total      int64               `json:"total"`
	ItemCount  int                 `json:"item_count"`
	Changes    []domain.CartChange `json:"changes"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher publishes cart events.
type Publisher interface {
	PublishCartReconciled(ctx context.Context, event CartReconciledEvent) error
}

// NoopPublisher discards events. Used when no broker is configured and in
// tests.
type NoopPublisher struct{}

var _ Publisher = (*NoopPublisher)(nil)

func (NoopPublisher) PublishCartReconciled(ctx context.Context, event CartReconciledEvent) error {
	return nil
}
