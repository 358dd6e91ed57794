package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// BidRepository handles data access for supplier bids.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository creates a new BidRepository.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts a PENDING bid row. The (bulk_request, supplier) pair is
// unique; the service pre-checks and the schema backs it with a constraint.
func (r *BidRepository) Create(b *models.Bid) error {
	q := r.db.Rebind(`
        INSERT INTO bids (bulk_request_id, supplier_id, unit_price, note, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q,
		b.BulkRequestID, b.SupplierID, b.UnitPrice, b.Note, models.BidPending, time.Now().UTC(),
	).Scan(&b.ID)
}

// UpdatePrice rewrites the price and note of a supplier's still-pending bid.
func (r *BidRepository) UpdatePrice(b *models.Bid) (bool, error) {
	q := r.db.Rebind(`
        UPDATE bids SET unit_price = ?, note = ?
        WHERE id = ? AND supplier_id = ? AND status = ?`)
	res, err := r.db.Exec(q, b.UnitPrice, b.Note, b.ID, b.SupplierID, models.BidPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const bidColumns = `id, bulk_request_id, supplier_id, unit_price, note, status, created_at`

// GetByID returns a bid by id using the given runner, which may be a
// transaction.
func (r *BidRepository) GetByID(q Runner, id int64) (*models.Bid, error) {
	var b models.Bid
	query := q.Rebind(`SELECT ` + bidColumns + ` FROM bids WHERE id = ?`)
	if err := q.Get(&b, query, id); err != nil {
		return nil, err
	}
	return &b, nil
}

// Exists reports whether the supplier already holds a bid on the request.
func (r *BidRepository) Exists(bulkRequestID, supplierID int64) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM bids WHERE bulk_request_id = ? AND supplier_id = ?`)
	if err := r.db.Get(&n, q, bulkRequestID, supplierID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAccepted sets a bid's status to ACCEPTED. Runs inside the acceptance
// transaction.
func (r *BidRepository) MarkAccepted(q Runner, bidID int64) error {
	query := q.Rebind(`UPDATE bids SET status = ? WHERE id = ?`)
	_, err := q.Exec(query, models.BidAccepted, bidID)
	return err
}

// RejectSiblings sets every other bid on the request to REJECTED in one bulk
// update. Runs inside the acceptance transaction; returns the number of bids
// rejected.
func (r *BidRepository) RejectSiblings(q Runner, bulkRequestID, acceptedBidID int64) (int64, error) {
	query := q.Rebind(`UPDATE bids SET status = ? WHERE bulk_request_id = ? AND id <> ?`)
	res, err := q.Exec(query, models.BidRejected, bulkRequestID, acceptedBidID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountByStatus returns the number of bids on a request in the given status.
func (r *BidRepository) CountByStatus(bulkRequestID int64, status models.BidStatus) (int, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM bids WHERE bulk_request_id = ? AND status = ?`)
	if err := r.db.Get(&n, q, bulkRequestID, status); err != nil {
		return 0, err
	}
	return n, nil
}

const bidListQuery = `
    SELECT b.id, b.bulk_request_id, b.supplier_id, b.unit_price, b.note, b.status, b.created_at,
           u.username AS supplier_name, m.sku AS material_sku, m.title AS material_title
    FROM bids b
    JOIN users u ON u.id = b.supplier_id
    JOIN bulk_requests br ON br.id = b.bulk_request_id
    JOIN materials m ON m.id = br.material_id`

// ListAll returns every bid, newest first (admin view).
func (r *BidRepository) ListAll() ([]models.Bid, error) {
	var list []models.Bid
	q := r.db.Rebind(bidListQuery + ` ORDER BY b.created_at DESC`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// ListBySupplier returns a supplier's own bids, newest first.
func (r *BidRepository) ListBySupplier(supplierID int64) ([]models.Bid, error) {
	var list []models.Bid
	q := r.db.Rebind(bidListQuery + ` WHERE b.supplier_id = ? ORDER BY b.created_at DESC`)
	if err := r.db.Select(&list, q, supplierID); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByRequestOwner returns the bids placed on a buyer's own requests.
func (r *BidRepository) ListByRequestOwner(ownerID int64) ([]models.Bid, error) {
	var list []models.Bid
	q := r.db.Rebind(bidListQuery + ` WHERE br.user_id = ? ORDER BY b.created_at DESC`)
	if err := r.db.Select(&list, q, ownerID); err != nil {
		return nil, err
	}
	return list, nil
}
