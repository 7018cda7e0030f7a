// Package repository owns access to the authoritative offers table.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkorchagin/foodcart/internal/domain"
)

// ErrStockUnderflow is returned when a stock adjustment would drive
// free_stock negative. The engine clamps quantities before adjusting, so
// hitting this indicates a bug in the caller.
var ErrStockUnderflow = errors.New("stock adjustment would make free_stock negative")

// OfferQuerier is the transactional surface the reconciliation engine works
// against. All methods must be called inside the transaction passed to the
// InTx callback.
type OfferQuerier interface {
	// LockOffers loads and row-locks every offer in ids, in ascending id
	// order. Ids without a matching row are simply absent from the result.
	LockOffers(ctx context.Context, ids []int64) (map[int64]domain.Offer, error)

	// AdjustFreeStock applies delta to free_stock for one locked row and
	// returns the new value.
	AdjustFreeStock(ctx context.Context, id int64, delta int32) (int32, error)
}

// OfferStore opens transactions over the offers table.
type OfferStore interface {
	// InTx runs fn inside one transaction; fn returning an error rolls the
	// transaction back, otherwise it is committed.
	InTx(ctx context.Context, fn func(q OfferQuerier) error) error

	// GetOffers reads offers without locking, for display paths.
	GetOffers(ctx context.Context, ids []int64) (map[int64]domain.Offer, error)
}

// PostgresOfferStore implements OfferStore on a pgx connection pool.
type PostgresOfferStore struct {
	pool *pgxpool.Pool
}

var _ OfferStore = (*PostgresOfferStore)(nil)

func NewPostgresOfferStore(pool *pgxpool.Pool) *PostgresOfferStore {
	return &PostgresOfferStore{pool: pool}
}

func (s *PostgresOfferStore) InTx(ctx context.Context, fn func(q OfferQuerier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			_ = err
		}
	}()

	if err := fn(&offerQuerier{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *PostgresOfferStore) GetOffers(ctx context.Context, ids []int64) (map[int64]domain.Offer, error) {
	const q = `
SELECT id, name, unit_price, discount_percent, is_active, is_available, free_stock
FROM offers
WHERE id = ANY($1)
ORDER BY id
`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOffers(rows)
}

// offerQuerier binds the querier surface to one open transaction.
type offerQuerier struct {
	tx pgx.Tx
}

func (q *offerQuerier) LockOffers(ctx context.Context, ids []int64) (map[int64]domain.Offer, error) {
	// Ascending id order keeps lock acquisition deterministic across
	// concurrent reconciliations touching overlapping offer sets.
	const query = `
SELECT id, name, unit_price, discount_percent, is_active, is_available, free_stock
FROM offers
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE
`
	rows, err := q.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOffers(rows)
}

func (q *offerQuerier) AdjustFreeStock(ctx context.Context, id int64, delta int32) (int32, error) {
	const query = `
UPDATE offers
SET free_stock = free_stock + $1, updated_at = now()
WHERE id = $2 AND free_stock + $1 >= 0
RETURNING free_stock
`
	var stock int32
	if err := q.tx.QueryRow(ctx, query, delta, id).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrStockUnderflow
		}
		return 0, err
	}
	return stock, nil
}

func scanOffers(rows pgx.Rows) (map[int64]domain.Offer, error) {
	offers := make(map[int64]domain.Offer)
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(
			&o.ID,
			&o.Name,
			&o.UnitPrice,
			&o.DiscountPercent,
			&o.IsActive,
			&o.IsAvailable,
			&o.FreeStock,
		); err != nil {
			return nil, err
		}
		offers[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offers, nil
}
