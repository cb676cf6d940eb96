package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ComplianceRepo implements ports.ComplianceRepository, keyed by
// (asset_id, principal). Rows are only ever inserted or overwritten.
type ComplianceRepo struct {
	pool Pool
}

// NewComplianceRepo creates a new ComplianceRepo.
func NewComplianceRepo(pool Pool) *ComplianceRepo {
	return &ComplianceRepo{pool: pool}
}

// Get fetches the approval record for (asset, user), nil if absent.
func (r *ComplianceRepo) Get(ctx context.Context, assetID uint64, user domain.Principal) (*domain.ComplianceRecord, error) {
	query := `SELECT asset_id, principal, approved, approved_at
		FROM compliance_records WHERE asset_id = $1 AND principal = $2`

	rec := &domain.ComplianceRecord{}
	err := r.pool.QueryRow(ctx, query, assetID, user).Scan(
		&rec.AssetID, &rec.User, &rec.Approved, &rec.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get compliance record: %w", err)
	}
	return rec, nil
}

// Put upserts an approval record within a transaction.
func (r *ComplianceRepo) Put(ctx context.Context, tx pgx.Tx, record *domain.ComplianceRecord) error {
	query := `INSERT INTO compliance_records (asset_id, principal, approved, approved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_id, principal) DO UPDATE
		SET approved = EXCLUDED.approved, approved_at = EXCLUDED.approved_at`

	_, err := tx.Exec(ctx, query, record.AssetID, record.User, record.Approved, record.ApprovedAt)
	if err != nil {
		return fmt.Errorf("put compliance record: %w", err)
	}
	return nil
}
