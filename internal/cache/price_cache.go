package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// priceCacheTTL bounds staleness of catalog price reads. Checkout never
// consults this cache; it reads prices inside its own transaction.
const priceCacheTTL = 5 * time.Minute

// PriceCache caches the tier price map of a material for catalog and cart
// display reads. Writes to price tiers invalidate the material's entry.
type PriceCache struct {
	redis *RedisClient
}

// NewPriceCache creates a new PriceCache.
func NewPriceCache(redis *RedisClient) *PriceCache {
	return &PriceCache{redis: redis}
}

func (c *PriceCache) key(materialID int64) string {
	return fmt.Sprintf("prices:material:%d", materialID)
}

// Get returns the cached tier map for a material, or an error on miss.
func (c *PriceCache) Get(ctx context.Context, materialID int64) (map[models.PriceTier]decimal.Decimal, error) {
	raw, err := c.redis.Get(ctx, c.key(materialID))
	if err != nil {
		return nil, err
	}
	var tiers map[models.PriceTier]decimal.Decimal
	if err := json.Unmarshal([]byte(raw), &tiers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached prices: %w", err)
	}
	return tiers, nil
}

// Set stores the tier map for a material.
func (c *PriceCache) Set(ctx context.Context, materialID int64, tiers map[models.PriceTier]decimal.Decimal) error {
	raw, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("failed to marshal prices: %w", err)
	}
	return c.redis.Set(ctx, c.key(materialID), string(raw), priceCacheTTL)
}

// Invalidate drops the cached entry for a material.
func (c *PriceCache) Invalidate(ctx context.Context, materialID int64) error {
	return c.redis.Delete(ctx, c.key(materialID))
}
