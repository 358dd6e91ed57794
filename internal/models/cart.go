package models

import "github.com/shopspring/decimal"

// CartItem is one (user, material) row of a mutable cart. Adding the same
// material again increments qty instead of inserting a duplicate. Rows are
// deleted wholesale when the items they represent are checked out.
type CartItem struct {
	ID         int64 `db:"id" json:"id"`
	UserID     int64 `db:"user_id" json:"-"`
	MaterialID int64 `db:"material_id" json:"materialId"`
	Qty        int   `db:"qty" json:"qty"`
}

// CartLine is a cart item joined with its material for display and for the
// checkout validation pass.
type CartLine struct {
	ID         int64  `db:"id" json:"id"`
	MaterialID int64  `db:"material_id" json:"materialId"`
	Qty        int    `db:"qty" json:"qty"`
	Title      string `db:"title" json:"title"`
	SKU        string `db:"sku" json:"sku"`
	Unit       Unit   `db:"unit" json:"unit"`
	StockQty   int    `db:"stock_qty" json:"stockQty"`

	// Role-dependent, computed at read time.
	Price     decimal.Decimal `db:"-" json:"price"`
	LineTotal decimal.Decimal `db:"-" json:"lineTotal"`
}
