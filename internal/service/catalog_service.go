package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/cache"
	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// CatalogService owns categories, materials and price tier administration.
type CatalogService struct {
	db        *sqlx.DB
	materials *repository.MaterialRepository
	prices    *cache.PriceCache
	pricing   *PricingService
}

// NewCatalogService creates a CatalogService. The price cache may be nil.
func NewCatalogService(db *sqlx.DB, materials *repository.MaterialRepository, prices *cache.PriceCache, pricing *PricingService) *CatalogService {
	return &CatalogService{db: db, materials: materials, prices: prices, pricing: pricing}
}

// CreateCategory adds a category; the slug is derived from the name.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Validation("INVALID_NAME", "category name is required")
	}
	slug := slugify(name)
	exists, err := s.materials.CategoryExists(name, slug)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if exists {
		return nil, utils.Conflict("CATEGORY_EXISTS", "category already exists")
	}
	cat := &models.Category{Name: name, Slug: slug}
	if err := s.materials.CreateCategory(cat); err != nil {
		return nil, utils.Internal(err)
	}
	return cat, nil
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	list, err := s.materials.ListCategories()
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// MaterialInput is the create/update payload for a material.
type MaterialInput struct {
	SKU         string      `json:"sku" binding:"required"`
	Title       string      `json:"title" binding:"required"`
	CategoryID  int64       `json:"categoryId" binding:"required"`
	Unit        models.Unit `json:"unit" binding:"required"`
	StockQty    int         `json:"stockQty"`
	MinStock    int         `json:"minStock"`
	Description string      `json:"description"`
}

// CreateMaterial adds a catalog item.
func (s *CatalogService) CreateMaterial(ctx context.Context, in MaterialInput) (*models.Material, error) {
	if !in.Unit.Valid() {
		return nil, utils.Validation("INVALID_UNIT", "unit must be one of BAG, TON, PCS, PKG")
	}
	if in.StockQty < 0 || in.MinStock < 0 {
		return nil, utils.Validation("INVALID_QTY", "stock and threshold must be >= 0")
	}
	if _, err := s.materials.GetBySKU(in.SKU); err == nil {
		return nil, utils.Conflict("SKU_EXISTS", "a material with this SKU already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, utils.Internal(err)
	}
	m := &models.Material{
		SKU:         in.SKU,
		Title:       in.Title,
		CategoryID:  in.CategoryID,
		Unit:        in.Unit,
		StockQty:    in.StockQty,
		MinStock:    in.MinStock,
		Description: in.Description,
	}
	if err := s.materials.Create(m); err != nil {
		return nil, utils.Internal(err)
	}
	return m, nil
}

// UpdateMaterial rewrites the catalog fields of a material. Stock is owned
// by the inventory ledger and is not touched here.
func (s *CatalogService) UpdateMaterial(ctx context.Context, id int64, in MaterialInput) (*models.Material, error) {
	if !in.Unit.Valid() {
		return nil, utils.Validation("INVALID_UNIT", "unit must be one of BAG, TON, PCS, PKG")
	}
	m, err := s.materials.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return nil, utils.Internal(err)
	}
	m.SKU = in.SKU
	m.Title = in.Title
	m.CategoryID = in.CategoryID
	m.Unit = in.Unit
	m.MinStock = in.MinStock
	m.Description = in.Description
	if err := s.materials.Update(m); err != nil {
		return nil, utils.Internal(err)
	}
	return m, nil
}

// MaterialView is a material with its role-resolved display price.
type MaterialView struct {
	models.Material
	Price decimal.Decimal  `json:"price"`
	Tier  models.PriceTier `json:"tier,omitempty"`
}

// GetMaterial returns one material priced for the viewer's role. A material
// with no tiers is still returned, at price zero.
func (s *CatalogService) GetMaterial(ctx context.Context, id int64, role models.Role) (*MaterialView, error) {
	m, err := s.materials.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return nil, utils.Internal(err)
	}
	view := &MaterialView{Material: *m, Price: decimal.Zero}
	if price, tier, err := s.pricing.ResolveCached(ctx, id, role); err == nil {
		view.Price = price
		view.Tier = tier
	}
	return view, nil
}

// ListMaterials returns materials priced for the viewer's role, optionally
// filtered by category slug.
func (s *CatalogService) ListMaterials(ctx context.Context, categorySlug string, role models.Role) ([]MaterialView, error) {
	list, err := s.materials.List(categorySlug)
	if err != nil {
		return nil, utils.Internal(err)
	}
	views := make([]MaterialView, 0, len(list))
	for _, m := range list {
		view := MaterialView{Material: m, Price: decimal.Zero}
		if price, tier, err := s.pricing.ResolveCached(ctx, m.ID, role); err == nil {
			view.Price = price
			view.Tier = tier
		}
		views = append(views, view)
	}
	return views, nil
}

// SetPrice writes a material's price for one tier and invalidates its cache
// entry. Historical orders keep their snapshots.
func (s *CatalogService) SetPrice(ctx context.Context, materialID int64, tier models.PriceTier, price decimal.Decimal) error {
	if !tier.Valid() {
		return utils.Validation("INVALID_TIER", "tier must be RETAIL or WHOLESALE")
	}
	if !price.IsPositive() {
		return utils.Validation("INVALID_PRICE", "price must be > 0")
	}
	if _, err := s.materials.GetByID(s.db, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return utils.Internal(err)
	}
	if err := s.materials.UpsertTier(materialID, tier, price); err != nil {
		return utils.Internal(err)
	}
	if s.prices != nil {
		if err := s.prices.Invalidate(ctx, materialID); err != nil {
			log.Warn().Err(err).Int64("material_id", materialID).Msg("price cache invalidation failed")
		}
	}
	return nil
}

// slugify lowercases and dash-joins a name for URL use.
func slugify(name string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
