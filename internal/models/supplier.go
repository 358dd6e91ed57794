package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is a directory entry for a sourcing partner. Most entries belong
// to a SUPPLIER account, but admins can list partners that have no login.
type Supplier struct {
	ID        int64           `db:"id" json:"id"`
	UserID    *int64          `db:"user_id" json:"userId,omitempty"`
	Name      string          `db:"name" json:"name"`
	Phone     string          `db:"phone" json:"phone,omitempty"`
	Address   string          `db:"address" json:"address,omitempty"`
	Rating    decimal.Decimal `db:"rating" json:"rating"`
	IsActive  bool            `db:"is_active" json:"isActive"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// MaterialSupplier links a supplier to a material they can source: their
// offered wholesale price, lead time, and whether they are the primary
// source. Unique per (supplier, material).
type MaterialSupplier struct {
	ID             int64            `db:"id" json:"id"`
	SupplierID     int64            `db:"supplier_id" json:"supplierId"`
	MaterialID     int64            `db:"material_id" json:"materialId"`
	WholesalePrice *decimal.Decimal `db:"wholesale_price" json:"wholesalePrice,omitempty"`
	IsPrimary      bool             `db:"is_primary" json:"isPrimary"`
	LeadTimeDays   int              `db:"lead_time_days" json:"leadTimeDays"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`

	// Joined for list views.
	SupplierName string `db:"supplier_name" json:"supplierName,omitempty"`
	MaterialSKU  string `db:"material_sku" json:"materialSku,omitempty"`
}
