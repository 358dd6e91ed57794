package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// CartService owns the mutable pre-transaction cart. Prices shown here are
// display prices; nothing is reserved or locked until checkout.
type CartService struct {
	db        *sqlx.DB
	carts     *repository.CartRepository
	materials *repository.MaterialRepository
	pricing   *PricingService
}

// NewCartService creates a CartService.
func NewCartService(db *sqlx.DB, carts *repository.CartRepository, materials *repository.MaterialRepository, pricing *PricingService) *CartService {
	return &CartService{db: db, carts: carts, materials: materials, pricing: pricing}
}

// CartSummary is the user's cart with role-priced lines.
type CartSummary struct {
	Items    []models.CartLine `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// Add puts qty of a material into the user's cart, merging with an existing
// line for the same material.
func (s *CartService) Add(ctx context.Context, userID, materialID int64, qty int) error {
	if qty < 1 {
		return utils.Validation("INVALID_QTY", "quantity must be >= 1")
	}
	if _, err := s.materials.GetByID(s.db, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return utils.Internal(err)
	}
	if err := s.carts.Upsert(userID, materialID, qty); err != nil {
		return utils.Internal(err)
	}
	return nil
}

// UpdateQty overwrites the quantity of one cart line.
func (s *CartService) UpdateQty(ctx context.Context, userID, itemID int64, qty int) error {
	if qty < 1 {
		return utils.Validation("INVALID_QTY", "quantity must be >= 1")
	}
	ok, err := s.carts.UpdateQty(userID, itemID, qty)
	if err != nil {
		return utils.Internal(err)
	}
	if !ok {
		return utils.NotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	}
	return nil
}

// Remove deletes one cart line.
func (s *CartService) Remove(ctx context.Context, userID, itemID int64) error {
	ok, err := s.carts.Delete(userID, itemID)
	if err != nil {
		return utils.Internal(err)
	}
	if !ok {
		return utils.NotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	}
	return nil
}

// Summary returns the cart priced for the user's role. A line whose price
// cannot be resolved is shown at zero rather than failing the whole read;
// checkout re-prices authoritatively anyway.
func (s *CartService) Summary(ctx context.Context, userID int64, role models.Role) (*CartSummary, error) {
	lines, err := s.carts.Lines(s.db, userID, nil)
	if err != nil {
		return nil, utils.Internal(err)
	}
	summary := &CartSummary{Items: []models.CartLine{}, Subtotal: decimal.Zero}
	for _, line := range lines {
		price, _, err := s.pricing.ResolveCached(ctx, line.MaterialID, role)
		if err != nil {
			price = decimal.Zero
		}
		line.Price = price
		line.LineTotal = price.Mul(decimal.NewFromInt(int64(line.Qty)))
		summary.Subtotal = summary.Subtotal.Add(line.LineTotal)
		summary.Items = append(summary.Items, line)
	}
	return summary, nil
}
