package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// NativeBalanceRepo implements ports.NativeBalanceRepository. Same shape as
// token balances, minus the asset dimension.
type NativeBalanceRepo struct {
	pool Pool
}

// NewNativeBalanceRepo creates a new NativeBalanceRepo.
func NewNativeBalanceRepo(pool Pool) *NativeBalanceRepo {
	return &NativeBalanceRepo{pool: pool}
}

// Get fetches a holder's native balance (non-locking read).
func (r *NativeBalanceRepo) Get(ctx context.Context, holder domain.Principal) (uint64, error) {
	query := `SELECT amount FROM native_balances WHERE holder = $1`

	var amount uint64
	err := r.pool.QueryRow(ctx, query, holder).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get native balance: %w", err)
	}
	return amount, nil
}

// GetForUpdate fetches a holder's native balance with pessimistic locking.
// This MUST be called within a transaction.
func (r *NativeBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, holder domain.Principal) (uint64, error) {
	query := `SELECT amount FROM native_balances WHERE holder = $1 FOR UPDATE`

	var amount uint64
	err := tx.QueryRow(ctx, query, holder).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get native balance for update: %w", err)
	}
	return amount, nil
}

// Set upserts a holder's native balance within a transaction.
func (r *NativeBalanceRepo) Set(ctx context.Context, tx pgx.Tx, holder domain.Principal, amount uint64) error {
	query := `INSERT INTO native_balances (holder, amount) VALUES ($1, $2)
		ON CONFLICT (holder) DO UPDATE SET amount = EXCLUDED.amount`

	if _, err := tx.Exec(ctx, query, holder, amount); err != nil {
		return fmt.Errorf("set native balance: %w", err)
	}
	return nil
}
