package domain

import "time"

// Asset is a registered tokenizable item. ID, Owner, Kind and MetadataURI are
// immutable after registration; TotalSupply grows through minting and Frozen
// is read by mint/transfer checks.
type Asset struct {
	ID          uint64    `json:"id"`
	Owner       Principal `json:"owner"`
	Kind        string    `json:"kind"`         // bounded ASCII, 1..32
	MetadataURI string    `json:"metadata_uri"` // bounded UTF-8, 1..256
	TotalSupply uint64    `json:"total_supply"`
	Frozen      bool      `json:"is_frozen"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance is a holder's quantity of one asset's tokens. Absent entries read
// as zero; the sum over all holders always equals the asset's TotalSupply.
type Balance struct {
	AssetID uint64    `json:"asset_id"`
	Holder  Principal `json:"holder"`
	Amount  uint64    `json:"amount"`
}
