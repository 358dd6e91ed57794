package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/cache"
	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// PricingService resolves the unit price a role pays for a material.
// Resolution order: the role's desired tier first, then whichever tier
// exists as a fallback. A material with no tiers at all is unsellable.
type PricingService struct {
	db        *sqlx.DB
	materials *repository.MaterialRepository
	prices    *cache.PriceCache
}

// NewPricingService creates a PricingService. The cache may be nil, in which
// case cached reads go straight to the database.
func NewPricingService(db *sqlx.DB, materials *repository.MaterialRepository, prices *cache.PriceCache) *PricingService {
	return &PricingService{db: db, materials: materials, prices: prices}
}

// DesiredTier returns the tier the role buys at.
func DesiredTier(role models.Role) models.PriceTier {
	if role.WholesalePricing() {
		return models.TierWholesale
	}
	return models.TierRetail
}

// Resolve returns the effective unit price and the tier it came from,
// reading through the given runner. Transactional callers (checkout) pass
// their tx so the price they snapshot is the price they read.
func (s *PricingService) Resolve(q repository.Runner, materialID int64, role models.Role) (decimal.Decimal, models.PriceTier, error) {
	rows, err := s.materials.GetTiers(q, materialID)
	if err != nil {
		return decimal.Zero, "", utils.Internal(err)
	}
	tiers := make(map[models.PriceTier]decimal.Decimal, len(rows))
	for _, p := range rows {
		tiers[p.Tier] = p.Price
	}
	return resolveFromTiers(tiers, role)
}

// ResolveCached resolves a display price via the price cache. Cache failures
// fall back to the database; this path must never be used to price a
// transaction.
func (s *PricingService) ResolveCached(ctx context.Context, materialID int64, role models.Role) (decimal.Decimal, models.PriceTier, error) {
	if s.prices == nil {
		return s.Resolve(s.db, materialID, role)
	}
	tiers, err := s.prices.Get(ctx, materialID)
	if err == nil {
		return resolveFromTiers(tiers, role)
	}

	rows, err := s.materials.GetTiers(s.db, materialID)
	if err != nil {
		return decimal.Zero, "", utils.Internal(err)
	}
	tiers = make(map[models.PriceTier]decimal.Decimal, len(rows))
	for _, p := range rows {
		tiers[p.Tier] = p.Price
	}
	if err := s.prices.Set(ctx, materialID, tiers); err != nil {
		log.Warn().Err(err).Int64("material_id", materialID).Msg("failed to cache prices")
	}
	return resolveFromTiers(tiers, role)
}

func resolveFromTiers(tiers map[models.PriceTier]decimal.Decimal, role models.Role) (decimal.Decimal, models.PriceTier, error) {
	desired := DesiredTier(role)
	if price, ok := tiers[desired]; ok {
		return price, desired, nil
	}
	for _, fallback := range []models.PriceTier{models.TierRetail, models.TierWholesale} {
		if price, ok := tiers[fallback]; ok {
			return price, fallback, nil
		}
	}
	return decimal.Zero, "", utils.Pricing("PRICE_UNAVAILABLE", "no price tier exists for this material")
}
