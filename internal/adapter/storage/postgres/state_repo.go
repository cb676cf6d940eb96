package postgres

import (
	"context"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// StateRepo implements ports.StateRepository over the singleton ledger_state
// row. The fixed id makes the row lockable with FOR UPDATE, which serializes
// asset registration.
type StateRepo struct {
	pool Pool
}

// NewStateRepo creates a new StateRepo.
func NewStateRepo(pool Pool) *StateRepo {
	return &StateRepo{pool: pool}
}

// Init seeds the singleton row if absent. Idempotent: an existing row is
// left untouched, so restarts never reset the counter or the authority.
func (r *StateRepo) Init(ctx context.Context, authority domain.Principal) error {
	query := `INSERT INTO ledger_state (id, total_assets, authority)
		VALUES (1, 0, $1) ON CONFLICT (id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, authority); err != nil {
		return fmt.Errorf("init ledger state: %w", err)
	}
	return nil
}

// Get fetches the ledger state (non-locking read).
func (r *StateRepo) Get(ctx context.Context) (*domain.LedgerState, error) {
	query := `SELECT total_assets, authority FROM ledger_state WHERE id = 1`

	s := &domain.LedgerState{}
	if err := r.pool.QueryRow(ctx, query).Scan(&s.TotalAssets, &s.Authority); err != nil {
		return nil, fmt.Errorf("get ledger state: %w", err)
	}
	return s, nil
}

// GetForUpdate fetches the ledger state with pessimistic locking.
// This MUST be called within a transaction.
func (r *StateRepo) GetForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error) {
	query := `SELECT total_assets, authority FROM ledger_state WHERE id = 1 FOR UPDATE`

	s := &domain.LedgerState{}
	if err := tx.QueryRow(ctx, query).Scan(&s.TotalAssets, &s.Authority); err != nil {
		return nil, fmt.Errorf("get ledger state for update: %w", err)
	}
	return s, nil
}

// SetTotalAssets advances the asset counter within a transaction.
func (r *StateRepo) SetTotalAssets(ctx context.Context, tx pgx.Tx, total uint64) error {
	query := `UPDATE ledger_state SET total_assets = $1 WHERE id = 1`

	if _, err := tx.Exec(ctx, query, total); err != nil {
		return fmt.Errorf("set total assets: %w", err)
	}
	return nil
}

// SetAuthority rotates the compliance authority within a transaction.
func (r *StateRepo) SetAuthority(ctx context.Context, tx pgx.Tx, authority domain.Principal) error {
	query := `UPDATE ledger_state SET authority = $1 WHERE id = 1`

	if _, err := tx.Exec(ctx, query, authority); err != nil {
		return fmt.Errorf("set authority: %w", err)
	}
	return nil
}
