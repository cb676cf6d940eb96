package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"tokenized-asset-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Asset records change rarely (only a mint moves the supply), so a short TTL
// keeps reads cheap without risking long staleness after a missed invalidate.
const assetCacheTTL = 5 * time.Minute

// AssetCache implements ports.AssetCache using Redis with JSON values.
type AssetCache struct {
	client *goredis.Client
	prefix string
}

// NewAssetCache creates a new Redis-backed asset cache.
func NewAssetCache(client *goredis.Client) *AssetCache {
	return &AssetCache{
		client: client,
		prefix: "asset:",
	}
}

func (c *AssetCache) key(id uint64) string {
	return c.prefix + strconv.FormatUint(id, 10)
}

// Get retrieves a cached asset. Returns nil, nil on a miss.
func (c *AssetCache) Get(ctx context.Context, id uint64) (*domain.Asset, error) {
	val, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis asset get: %w", err)
	}

	asset := &domain.Asset{}
	if err := json.Unmarshal(val, asset); err != nil {
		return nil, fmt.Errorf("decode cached asset: %w", err)
	}
	return asset, nil
}

// Set stores an asset with the cache TTL.
func (c *AssetCache) Set(ctx context.Context, asset *domain.Asset) error {
	val, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("encode asset: %w", err)
	}
	if err := c.client.Set(ctx, c.key(asset.ID), val, assetCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis asset set: %w", err)
	}
	return nil
}

// Invalidate drops the cached record after a supply change.
func (c *AssetCache) Invalidate(ctx context.Context, id uint64) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("redis asset del: %w", err)
	}
	return nil
}
