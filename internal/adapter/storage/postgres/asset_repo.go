package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AssetRepo implements ports.AssetRepository.
type AssetRepo struct {
	pool Pool
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(pool Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

const assetColumns = `id, owner, kind, metadata_uri, total_supply, frozen, created_at`

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	a := &domain.Asset{}
	err := row.Scan(
		&a.ID, &a.Owner, &a.Kind, &a.MetadataURI,
		&a.TotalSupply, &a.Frozen, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new asset record within a transaction.
func (r *AssetRepo) Create(ctx context.Context, tx pgx.Tx, asset *domain.Asset) error {
	query := `INSERT INTO assets (id, owner, kind, metadata_uri, total_supply, frozen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		asset.ID, asset.Owner, asset.Kind, asset.MetadataURI,
		asset.TotalSupply, asset.Frozen, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetByID fetches an asset by id (non-locking read).
func (r *AssetRepo) GetByID(ctx context.Context, id uint64) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get asset by id: %w", err)
	}
	return asset, nil
}

// GetByIDTx fetches an asset by id inside a transaction, without locking.
func (r *AssetRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get asset by id in tx: %w", err)
	}
	return asset, nil
}

// GetByIDForUpdate fetches an asset by id with pessimistic locking.
// This MUST be called within a transaction.
func (r *AssetRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 FOR UPDATE`

	asset, err := scanAsset(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get asset for update: %w", err)
	}
	return asset, nil
}

// UpdateSupply sets an asset's total supply within a transaction.
func (r *AssetRepo) UpdateSupply(ctx context.Context, tx pgx.Tx, id uint64, totalSupply uint64) error {
	query := `UPDATE assets SET total_supply = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, totalSupply, id)
	if err != nil {
		return fmt.Errorf("update asset supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asset not found: %d", id)
	}
	return nil
}
