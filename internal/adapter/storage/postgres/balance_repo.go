package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository over the balances table,
// keyed by (asset_id, holder). A missing row reads as zero.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Get fetches a holder's balance (non-locking read).
func (r *BalanceRepo) Get(ctx context.Context, assetID uint64, holder domain.Principal) (uint64, error) {
	query := `SELECT amount FROM balances WHERE asset_id = $1 AND holder = $2`

	var amount uint64
	err := r.pool.QueryRow(ctx, query, assetID, holder).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return amount, nil
}

// GetForUpdate fetches a holder's balance with pessimistic locking.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal) (uint64, error) {
	query := `SELECT amount FROM balances WHERE asset_id = $1 AND holder = $2 FOR UPDATE`

	var amount uint64
	err := tx.QueryRow(ctx, query, assetID, holder).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance for update: %w", err)
	}
	return amount, nil
}

// Set upserts a holder's balance within a transaction.
func (r *BalanceRepo) Set(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal, amount uint64) error {
	query := `INSERT INTO balances (asset_id, holder, amount) VALUES ($1, $2, $3)
		ON CONFLICT (asset_id, holder) DO UPDATE SET amount = EXCLUDED.amount`

	if _, err := tx.Exec(ctx, query, assetID, holder, amount); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}
