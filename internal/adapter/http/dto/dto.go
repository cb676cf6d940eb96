package dto

import "time"

// RegisterRequest is the request body for principal onboarding.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for principal login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful onboarding. The
// secret key is shown exactly once.
type RegisterResponse struct {
	Address   string `json:"address"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// RegisterAssetRequest is the request body for asset registration.
type RegisterAssetRequest struct {
	Kind          string `json:"kind" binding:"required,max=32"`
	MetadataURI   string `json:"metadata_uri" binding:"required,max=256"`
	InitialSupply uint64 `json:"initial_supply" binding:"required,gt=0"`
}

// RegisterAssetResponse carries the identifier assigned to a new asset.
type RegisterAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
}

// MintRequest is the request body for supply issuance.
type MintRequest struct {
	Amount    uint64 `json:"amount" binding:"required,gt=0"`
	Recipient string `json:"recipient" binding:"required"`
}

// TransferRequest is the request body for a direct balance transfer.
type TransferRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
	To      string `json:"to" binding:"required"`
	Amount  uint64 `json:"amount" binding:"required,gt=0"`
}

// ListRequest is the request body for listing creation.
type ListRequest struct {
	AssetID  uint64 `json:"asset_id" binding:"required"`
	Price    uint64 `json:"price" binding:"required,gt=0"`
	Quantity uint64 `json:"quantity" binding:"required,gt=0"`
	Expiry   uint64 `json:"expiry" binding:"required"` // block height
}

// BuyRequest is the request body for a purchase.
type BuyRequest struct {
	AssetID  uint64 `json:"asset_id" binding:"required"`
	Seller   string `json:"seller" binding:"required"`
	Quantity uint64 `json:"quantity" binding:"required,gt=0"`
}

// SetAuthorityRequest is the request body for compliance authority rotation.
type SetAuthorityRequest struct {
	Authority string `json:"authority" binding:"required"`
}

// ApproveUserRequest is the request body for a compliance approval.
type ApproveUserRequest struct {
	AssetID uint64 `json:"asset_id" binding:"required"`
	User    string `json:"user" binding:"required"`
}

// DepositRequest is the request body for a native balance deposit.
type DepositRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// AssetResponse is the response body for asset queries.
type AssetResponse struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	Kind        string    `json:"kind"`
	MetadataURI string    `json:"metadata_uri"`
	TotalSupply uint64    `json:"total_supply"`
	Frozen      bool      `json:"frozen"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingResponse is the response body for listing queries.
type ListingResponse struct {
	AssetID   uint64    `json:"asset_id"`
	Seller    string    `json:"seller"`
	Price     uint64    `json:"price"`
	Quantity  uint64    `json:"quantity"`
	Expiry    uint64    `json:"expiry"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceResponse is the response body for balance queries.
type BalanceResponse struct {
	AssetID uint64 `json:"asset_id"`
	Holder  string `json:"holder"`
	Balance uint64 `json:"balance"`
}

// NativeBalanceResponse is the response body for native balance queries.
type NativeBalanceResponse struct {
	Holder  string `json:"holder"`
	Balance uint64 `json:"balance"`
}

// ComplianceResponse is the response body for approval queries.
type ComplianceResponse struct {
	AssetID    uint64 `json:"asset_id"`
	User       string `json:"user"`
	Approved   bool   `json:"approved"`
	ApprovedAt uint64 `json:"approved_at"` // block height, 0 if never approved
}

// HeightResponse is the response body for the current height query.
type HeightResponse struct {
	Height uint64 `json:"height"`
}
