package ports

import (
	"context"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AssetRepository defines persistence for asset records. Methods accepting
// pgx.Tx run inside transaction blocks with pessimistic locking.
type AssetRepository interface {
	Create(ctx context.Context, tx pgx.Tx, asset *domain.Asset) error
	GetByID(ctx context.Context, id uint64) (*domain.Asset, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error)
	UpdateSupply(ctx context.Context, tx pgx.Tx, id uint64, totalSupply uint64) error
}

// BalanceRepository defines persistence for per-asset-per-holder balances.
// Absent entries read as zero.
type BalanceRepository interface {
	Get(ctx context.Context, assetID uint64, holder domain.Principal) (uint64, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal) (uint64, error)
	Set(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal, amount uint64) error
}

// ListingRepository defines persistence for marketplace listings, keyed by
// (asset, seller). Put overwrites any prior listing for the same key.
type ListingRepository interface {
	Get(ctx context.Context, assetID uint64, seller domain.Principal) (*domain.Listing, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) (*domain.Listing, error)
	Put(ctx context.Context, listing *domain.Listing) error
	UpdateQuantity(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal, quantity uint64) error
	Delete(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) error
}

// ComplianceRepository defines persistence for per-asset-per-user approval
// records. Put overwrites; records are never deleted.
type ComplianceRepository interface {
	Get(ctx context.Context, assetID uint64, user domain.Principal) (*domain.ComplianceRecord, error)
	Put(ctx context.Context, tx pgx.Tx, record *domain.ComplianceRecord) error
}

// StateRepository owns the singleton ledger state row (asset counter +
// compliance authority).
type StateRepository interface {
	// Init seeds the singleton row if absent: zero assets, authority set to
	// the deploying identity. Idempotent.
	Init(ctx context.Context, authority domain.Principal) error
	Get(ctx context.Context) (*domain.LedgerState, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error)
	SetTotalAssets(ctx context.Context, tx pgx.Tx, total uint64) error
	SetAuthority(ctx context.Context, tx pgx.Tx, authority domain.Principal) error
}

// NativeBalanceRepository defines persistence for native payment-asset
// balances used during purchase settlement.
type NativeBalanceRepository interface {
	Get(ctx context.Context, holder domain.Principal) (uint64, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, holder domain.Principal) (uint64, error)
	Set(ctx context.Context, tx pgx.Tx, holder domain.Principal, amount uint64) error
}

// AccountRepository defines persistence for host-adapter identities.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByAddress(ctx context.Context, address domain.Principal) (*domain.Account, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)
}

// AuditRepository defines persistence for the append-only call journal.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// AssetCache is a best-effort read-through cache for asset records.
type AssetCache interface {
	Get(ctx context.Context, id uint64) (*domain.Asset, error) // nil, nil on miss
	Set(ctx context.Context, asset *domain.Asset) error
	Invalidate(ctx context.Context, id uint64) error
}

// DBTransactor provides database transaction management. Every multi-step
// mutation runs inside one transaction so a failing step observes nothing
// half-applied.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
