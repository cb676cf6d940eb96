package ports

import (
	"context"
	"time"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// Call is the host ledger's call envelope: the authenticated caller identity
// and the block height at which the call executes. The host adapter builds
// it; the engine never derives either value itself.
type Call struct {
	Sender domain.Principal
	Height uint64
}

// EngineParams are the deployment-fixed identities the access checks run
// against. The compliance authority is not here: it is mutable ledger state.
type EngineParams struct {
	Contract domain.Principal // the engine's own address
	Owner    domain.Principal // the deploying identity
}

// HeightSource supplies the current block height.
type HeightSource interface {
	Current() uint64
}

// --- Engine entry points ---

// RegistryService is the asset registry: registration, supply issuance, and
// asset queries.
type RegistryService interface {
	Register(ctx context.Context, call Call, req RegisterAssetRequest) (uint64, error)
	Mint(ctx context.Context, call Call, req MintRequest) error
	GetAsset(ctx context.Context, assetID uint64) (*domain.Asset, error)
}

// RegisterAssetRequest holds validated input for asset registration.
type RegisterAssetRequest struct {
	Kind          string
	MetadataURI   string
	InitialSupply uint64
}

// MintRequest holds validated input for supply issuance.
type MintRequest struct {
	AssetID   uint64
	Amount    uint64
	Recipient domain.Principal
}

// LedgerService is the balance ledger: direct transfer and balance queries.
type LedgerService interface {
	Transfer(ctx context.Context, call Call, req TransferRequest) error
	GetBalance(ctx context.Context, assetID uint64, user domain.Principal) (uint64, error)
}

// TransferRequest holds validated input for a balance transfer. The sender
// comes from the call envelope.
type TransferRequest struct {
	AssetID uint64
	To      domain.Principal
	Amount  uint64
}

// TokenMover is the atomic debit-then-credit primitive shared by direct
// transfer and marketplace settlement. It must run inside the caller's
// transaction.
type TokenMover interface {
	Move(ctx context.Context, tx pgx.Tx, asset *domain.Asset, from, to domain.Principal, amount uint64) error
}

// NativeMover is the native payment-asset transfer primitive used during
// purchase settlement. It must run inside the caller's transaction.
type NativeMover interface {
	MoveNative(ctx context.Context, tx pgx.Tx, from, to domain.Principal, amount uint64) error
}

// MarketService is the marketplace: listing creation, purchase settlement,
// and listing queries.
type MarketService interface {
	List(ctx context.Context, call Call, req ListRequest) error
	Buy(ctx context.Context, call Call, req BuyRequest) error
	GetListing(ctx context.Context, assetID uint64, seller domain.Principal) (*domain.Listing, error)
}

// ListRequest holds validated input for listing creation.
type ListRequest struct {
	AssetID  uint64
	Price    uint64
	Quantity uint64
	Expiry   uint64 // block height
}

// BuyRequest holds validated input for a purchase.
type BuyRequest struct {
	AssetID  uint64
	Seller   domain.Principal
	Quantity uint64
}

// ComplianceService is the compliance registry: authority rotation and
// per-user approval records.
type ComplianceService interface {
	SetAuthority(ctx context.Context, call Call, newAuthority domain.Principal) error
	ApproveUser(ctx context.Context, call Call, assetID uint64, user domain.Principal) error
	IsUserApproved(ctx context.Context, assetID uint64, user domain.Principal) (*domain.ComplianceRecord, error)
}

// NativeService exposes the native payment asset outside of settlement:
// faucet-style deposits and balance queries.
type NativeService interface {
	Deposit(ctx context.Context, call Call, amount uint64) error
	GetNativeBalance(ctx context.Context, holder domain.Principal) (uint64, error)
}

// --- Host adapter services ---

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of the host
// call envelope.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles passphrase hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT session tokens for read-only query routes.
type TokenService interface {
	Generate(address domain.Principal, accessKey string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Address   domain.Principal
	AccessKey string
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, address string, nonce string, ttl time.Duration) (bool, error)
}

// AuthService onboards principals and issues session tokens.
type AuthService interface {
	Register(ctx context.Context, req RegisterAccountRequest) (*RegisterAccountResponse, error)
	Login(ctx context.Context, name, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterAccountRequest holds input for principal onboarding.
type RegisterAccountRequest struct {
	Name     string
	Password string
}

// RegisterAccountResponse holds the onboarding result shown once.
type RegisterAccountResponse struct {
	Address   domain.Principal
	AccessKey string
	SecretKey string // plaintext, shown only at registration
}

// AuditService records mutating calls in the append-only journal.
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditEntry)
}
