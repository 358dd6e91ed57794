package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BulkRequestStatus string
type BidStatus string

const (
	BulkRequestOpen   BulkRequestStatus = "OPEN"
	BulkRequestClosed BulkRequestStatus = "CLOSED"
)

const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

// BulkRequest is a buyer's open call for supplier offers on a quantity of
// one material. It moves OPEN -> CLOSED exactly once, either by an explicit
// close or by accepting a bid. AcceptedBidID is set at most once and never
// changes afterwards.
type BulkRequest struct {
	ID            int64             `db:"id" json:"id"`
	UserID        int64             `db:"user_id" json:"userId"`
	MaterialID    int64             `db:"material_id" json:"materialId"`
	Qty           int               `db:"qty" json:"qty"`
	Deadline      *time.Time        `db:"deadline" json:"deadline,omitempty"`
	Status        BulkRequestStatus `db:"status" json:"status"`
	AcceptedBidID *int64            `db:"accepted_bid_id" json:"acceptedBid,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`

	// Joined read-only fields for listings.
	Requester     string `db:"requester" json:"requester,omitempty"`
	MaterialSKU   string `db:"material_sku" json:"materialSku,omitempty"`
	MaterialTitle string `db:"material_title" json:"materialTitle,omitempty"`
	BidsCount     int    `db:"bids_count" json:"bidsCount"`
}

// Bid is a supplier's offer on a bulk request. A supplier holds at most one
// bid per request; re-bidding means updating the price, not a second row.
// PENDING resolves to exactly one of ACCEPTED or REJECTED, and only as part
// of the acceptance transaction on the owning request.
type Bid struct {
	ID            int64           `db:"id" json:"id"`
	BulkRequestID int64           `db:"bulk_request_id" json:"bulkRequest"`
	SupplierID    int64           `db:"supplier_id" json:"supplier"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Note          string          `db:"note" json:"note,omitempty"`
	Status        BidStatus       `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`

	// Joined read-only fields for listings.
	SupplierName  string `db:"supplier_name" json:"supplierName,omitempty"`
	MaterialSKU   string `db:"material_sku" json:"materialSku,omitempty"`
	MaterialTitle string `db:"material_title" json:"materialTitle,omitempty"`
}
