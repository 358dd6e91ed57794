package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// BulkRequestRepository handles data access for bulk purchase requests.
type BulkRequestRepository struct {
	db *sqlx.DB
}

// NewBulkRequestRepository creates a new BulkRequestRepository.
func NewBulkRequestRepository(db *sqlx.DB) *BulkRequestRepository {
	return &BulkRequestRepository{db: db}
}

// Create inserts an OPEN bulk request row.
func (r *BulkRequestRepository) Create(br *models.BulkRequest) error {
	q := r.db.Rebind(`
        INSERT INTO bulk_requests (user_id, material_id, qty, deadline, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q,
		br.UserID, br.MaterialID, br.Qty, br.Deadline, models.BulkRequestOpen, time.Now().UTC(),
	).Scan(&br.ID)
}

const bulkRequestColumns = `id, user_id, material_id, qty, deadline, status, accepted_bid_id, created_at`

// GetByID returns a bulk request by id using the given runner, which may be
// a transaction.
func (r *BulkRequestRepository) GetByID(q Runner, id int64) (*models.BulkRequest, error) {
	var br models.BulkRequest
	query := q.Rebind(`SELECT ` + bulkRequestColumns + ` FROM bulk_requests WHERE id = ?`)
	if err := q.Get(&br, query, id); err != nil {
		return nil, err
	}
	return &br, nil
}

const bulkRequestListQuery = `
    SELECT br.id, br.user_id, br.material_id, br.qty, br.deadline, br.status,
           br.accepted_bid_id, br.created_at,
           u.username AS requester, m.sku AS material_sku, m.title AS material_title,
           (SELECT COUNT(*) FROM bids b WHERE b.bulk_request_id = br.id) AS bids_count
    FROM bulk_requests br
    JOIN users u ON u.id = br.user_id
    JOIN materials m ON m.id = br.material_id`

// ListAll returns every bulk request, newest first (admin view).
func (r *BulkRequestRepository) ListAll() ([]models.BulkRequest, error) {
	var list []models.BulkRequest
	q := r.db.Rebind(bulkRequestListQuery + ` ORDER BY br.created_at DESC`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByUser returns the bulk requests owned by a buyer, newest first.
func (r *BulkRequestRepository) ListByUser(userID int64) ([]models.BulkRequest, error) {
	var list []models.BulkRequest
	q := r.db.Rebind(bulkRequestListQuery + ` WHERE br.user_id = ? ORDER BY br.created_at DESC`)
	if err := r.db.Select(&list, q, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// CloseIfOpen transitions the request OPEN -> CLOSED. Returns whether a
// transition actually occurred; a request already CLOSED is left untouched.
func (r *BulkRequestRepository) CloseIfOpen(q Runner, id int64) (bool, error) {
	query := q.Rebind(`UPDATE bulk_requests SET status = ? WHERE id = ? AND status = ?`)
	res, err := q.Exec(query, models.BulkRequestClosed, id, models.BulkRequestOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AcceptAndClose is the compare-and-set at the heart of bid acceptance: it
// closes the request and records the winning bid in one conditional write.
// Zero rows affected means the request was already CLOSED — the caller must
// treat that as a conflict and roll back. Two concurrent acceptances
// serialize here: exactly one sees the OPEN row.
func (r *BulkRequestRepository) AcceptAndClose(q Runner, id, bidID int64) (bool, error) {
	query := q.Rebind(`
        UPDATE bulk_requests SET status = ?, accepted_bid_id = ?
        WHERE id = ? AND status = ?`)
	res, err := q.Exec(query, models.BulkRequestClosed, bidID, id, models.BulkRequestOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
