package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderPlaced     OrderStatus = "PLACED"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderDispatched OrderStatus = "DISPATCHED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// Valid reports whether s is a member of the allowed status set. Any allowed
// status is reachable from any other; there is no transition graph.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderConfirmed, OrderDispatched, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCashOnDelivery
}

// Order is created atomically with its items at checkout. Everything except
// Status is immutable afterwards. Address is a snapshot text, not a
// reference.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"userId"`
	Address         string          `db:"address" json:"address"`
	Status          OrderStatus     `db:"status" json:"status"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax             decimal.Decimal `db:"tax" json:"tax"`
	DeliveryCharges decimal.Decimal `db:"delivery_charges" json:"deliveryCharges"`
	Total           decimal.Decimal `db:"total" json:"total"`
	PaymentMethod   PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`

	Items     []OrderItem `db:"-" json:"items,omitempty"`
	ItemCount int         `db:"item_count" json:"itemCount,omitempty"`
}

// MaterialSnapshot is the immutable value of a material captured at
// transaction time. Order lines copy it instead of referencing the live
// catalog row, so later catalog edits never rewrite history.
type MaterialSnapshot struct {
	Title string
	SKU   string
	Unit  Unit
	Price decimal.Decimal
}

// OrderItem is one priced line of an order. Title, SKU, unit and price are
// snapshots, decoupled from the live material.
type OrderItem struct {
	ID         int64           `db:"id" json:"id"`
	OrderID    int64           `db:"order_id" json:"-"`
	MaterialID int64           `db:"material_id" json:"materialId"`
	Title      string          `db:"title" json:"title"`
	SKU        string          `db:"sku" json:"sku"`
	Unit       Unit            `db:"unit" json:"unit"`
	Qty        int             `db:"qty" json:"qty"`
	Price      decimal.Decimal `db:"price" json:"price"`
	LineTotal  decimal.Decimal `db:"line_total" json:"lineTotal"`
}

// Address is a delivery address kept for the user's history. Orders carry
// their own snapshot text and do not reference this row.
type Address struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Line1     string    `db:"line1" json:"line1"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state,omitempty"`
	Zip       string    `db:"zip" json:"zip,omitempty"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Review is a one-per-order rating left by the order's owner.
type Review struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SalesRow is one day of the sales report.
type SalesRow struct {
	Day     string          `db:"day" json:"day"`
	Orders  int             `db:"orders" json:"orders"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}
