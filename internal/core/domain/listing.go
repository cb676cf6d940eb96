package domain

import "time"

// Listing is a seller's standing offer: fixed price per token, a remaining
// quantity, and an expiry block height. At most one listing exists per
// (asset, seller) pair; relisting overwrites.
type Listing struct {
	AssetID   uint64    `json:"asset_id"`
	Seller    Principal `json:"seller"`
	Price     uint64    `json:"price"`
	Quantity  uint64    `json:"quantity"`
	Expiry    uint64    `json:"expiry"` // block height
	CreatedAt time.Time `json:"created_at"`
}

// ExpiredAt reports whether the listing has lapsed at the given block height.
// A listing is live through its expiry height inclusive.
func (l *Listing) ExpiredAt(height uint64) bool {
	return height > l.Expiry
}
