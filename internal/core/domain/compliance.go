package domain

// ComplianceRecord marks a user as approved for an asset at a block height.
// Records are queryable state only: no transfer path consults them, and no
// revoke operation exists.
type ComplianceRecord struct {
	AssetID    uint64    `json:"asset_id"`
	User       Principal `json:"user"`
	Approved   bool      `json:"approved"`
	ApprovedAt uint64    `json:"approved_at"` // block height at approval
}

// LedgerState is the singleton row holding the global counters: the
// last-assigned asset id and the current compliance authority.
type LedgerState struct {
	TotalAssets uint64    `json:"total_assets"`
	Authority   Principal `json:"compliance_authority"`
}
