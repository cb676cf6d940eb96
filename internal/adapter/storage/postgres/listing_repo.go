package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ListingRepo implements ports.ListingRepository, keyed by (asset_id, seller).
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `asset_id, seller, price, quantity, expiry, created_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(&l.AssetID, &l.Seller, &l.Price, &l.Quantity, &l.Expiry, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

// Get fetches a listing (non-locking read).
func (r *ListingRepo) Get(ctx context.Context, assetID uint64, seller domain.Principal) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE asset_id = $1 AND seller = $2`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, assetID, seller))
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// GetForUpdate fetches a listing with pessimistic locking.
// This MUST be called within a transaction.
func (r *ListingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE asset_id = $1 AND seller = $2 FOR UPDATE`

	listing, err := scanListing(tx.QueryRow(ctx, query, assetID, seller))
	if err != nil {
		return nil, fmt.Errorf("get listing for update: %w", err)
	}
	return listing, nil
}

// Put upserts the listing for (asset, seller), replacing any prior one.
func (r *ListingRepo) Put(ctx context.Context, listing *domain.Listing) error {
	query := `INSERT INTO listings (asset_id, seller, price, quantity, expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (asset_id, seller) DO UPDATE
		SET price = EXCLUDED.price, quantity = EXCLUDED.quantity,
			expiry = EXCLUDED.expiry, created_at = EXCLUDED.created_at`

	_, err := r.pool.Exec(ctx, query,
		listing.AssetID, listing.Seller, listing.Price,
		listing.Quantity, listing.Expiry, listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put listing: %w", err)
	}
	return nil
}

// UpdateQuantity sets the remaining quantity within a transaction.
func (r *ListingRepo) UpdateQuantity(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal, quantity uint64) error {
	query := `UPDATE listings SET quantity = $1 WHERE asset_id = $2 AND seller = $3`

	tag, err := tx.Exec(ctx, query, quantity, assetID, seller)
	if err != nil {
		return fmt.Errorf("update listing quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing not found: asset %d seller %s", assetID, seller)
	}
	return nil
}

// Delete removes a fully consumed listing within a transaction.
func (r *ListingRepo) Delete(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) error {
	query := `DELETE FROM listings WHERE asset_id = $1 AND seller = $2`

	if _, err := tx.Exec(ctx, query, assetID, seller); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}
