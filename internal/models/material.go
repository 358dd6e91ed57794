package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit enumerates the stock-keeping units for materials.
type Unit string

const (
	UnitBag     Unit = "BAG"
	UnitTon     Unit = "TON"
	UnitPieces  Unit = "PCS"
	UnitPackage Unit = "PKG"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitBag, UnitTon, UnitPieces, UnitPackage:
		return true
	}
	return false
}

// Category groups materials for catalog browsing.
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Material is a catalog item. StockQty is owned by the inventory ledger and
// is never written outside a decrement or an admin adjustment; it never goes
// negative.
type Material struct {
	ID          int64     `db:"id" json:"id"`
	SKU         string    `db:"sku" json:"sku"`
	Title       string    `db:"title" json:"title"`
	CategoryID  int64     `db:"category_id" json:"categoryId"`
	Unit        Unit      `db:"unit" json:"unit"`
	StockQty    int       `db:"stock_qty" json:"stockQty"`
	MinStock    int       `db:"min_stock" json:"minStock"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// PriceTier is one of the two price points of a material. Unique per
// (material, tier). Checkout snapshots the resolved price into the order
// line, so edits here never touch historical orders.
type PriceTier string

const (
	TierRetail    PriceTier = "RETAIL"
	TierWholesale PriceTier = "WHOLESALE"
)

// Valid reports whether t is a known tier.
func (t PriceTier) Valid() bool {
	return t == TierRetail || t == TierWholesale
}

// Price is a tier price row for a material.
type Price struct {
	ID         int64           `db:"id" json:"id"`
	MaterialID int64           `db:"material_id" json:"materialId"`
	Tier       PriceTier       `db:"tier" json:"tier"`
	Price      decimal.Decimal `db:"price" json:"price"`
}

// AlertType enumerates alert kinds. Only low stock exists today.
type AlertType string

const AlertLowStock AlertType = "LOW_STOCK"

// Alert flags a material whose stock is at or below its threshold. At most
// one open alert exists per material; crossing back above the threshold
// resolves it instead of stacking history.
type Alert struct {
	ID         int64     `db:"id" json:"id"`
	MaterialID int64     `db:"material_id" json:"materialId"`
	Type       AlertType `db:"type" json:"type"`
	IsResolved bool      `db:"is_resolved" json:"isResolved"`
	Note       string    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
