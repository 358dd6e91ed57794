package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// BidService owns the bulk-request flow: buyers open requests, suppliers
// bid, and the owner accepts exactly one bid — atomically rejecting the rest
// and closing the request.
type BidService struct {
	db        *sqlx.DB
	requests  *repository.BulkRequestRepository
	bids      *repository.BidRepository
	materials *repository.MaterialRepository
}

// NewBidService creates a BidService.
func NewBidService(db *sqlx.DB, requests *repository.BulkRequestRepository, bids *repository.BidRepository, materials *repository.MaterialRepository) *BidService {
	return &BidService{db: db, requests: requests, bids: bids, materials: materials}
}

// AcceptResult reports the outcome of a successful bid acceptance.
type AcceptResult struct {
	AcceptedBidID int64                    `json:"acceptedBid"`
	BulkRequestID int64                    `json:"bulkRequest"`
	Status        models.BulkRequestStatus `json:"status"`
	RejectedBids  int64                    `json:"rejectedBids"`
}

// CreateRequest opens a bulk purchase request for a material.
func (s *BidService) CreateRequest(ctx context.Context, userID int64, role models.Role, materialID int64, qty int, deadline *time.Time) (*models.BulkRequest, error) {
	if !role.CanRequestBulk() {
		return nil, utils.Forbidden("ROLE_NOT_ALLOWED", "role may not open bulk requests")
	}
	if qty < 1 {
		return nil, utils.Validation("INVALID_QTY", "quantity must be >= 1")
	}
	if _, err := s.materials.GetByID(s.db, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return nil, utils.Internal(err)
	}
	br := &models.BulkRequest{
		UserID:     userID,
		MaterialID: materialID,
		Qty:        qty,
		Deadline:   deadline,
		Status:     models.BulkRequestOpen,
	}
	if err := s.requests.Create(br); err != nil {
		return nil, utils.Internal(err)
	}
	return br, nil
}

// ListRequests returns bulk requests scoped by role: admins see all, others
// see their own.
func (s *BidService) ListRequests(userID int64, role models.Role) ([]models.BulkRequest, error) {
	var (
		list []models.BulkRequest
		err  error
	)
	if role == models.RoleAdmin {
		list, err = s.requests.ListAll()
	} else {
		list, err = s.requests.ListByUser(userID)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// GetRequest returns one bulk request, visible to its owner, any supplier,
// and admins.
func (s *BidService) GetRequest(userID int64, role models.Role, id int64) (*models.BulkRequest, error) {
	br, err := s.requests.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("BULK_REQUEST_NOT_FOUND", "bulk request not found")
		}
		return nil, utils.Internal(err)
	}
	if br.UserID != userID && role != models.RoleAdmin && !role.CanBid() {
		return nil, utils.Forbidden("NOT_OWNER", "not your bulk request")
	}
	return br, nil
}

// PlaceBid records a supplier's offer on an open request. One bid per
// supplier per request; use UpdateBid to change an offer.
func (s *BidService) PlaceBid(ctx context.Context, supplierID int64, role models.Role, requestID int64, unitPrice decimal.Decimal, note string) (*models.Bid, error) {
	if !role.CanBid() {
		return nil, utils.Forbidden("ROLE_NOT_ALLOWED", "role may not place bids")
	}
	if !unitPrice.IsPositive() {
		return nil, utils.Validation("INVALID_PRICE", "unit price must be > 0")
	}
	br, err := s.requests.GetByID(s.db, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("BULK_REQUEST_NOT_FOUND", "bulk request not found")
		}
		return nil, utils.Internal(err)
	}
	if br.Status != models.BulkRequestOpen {
		return nil, utils.Forbidden("BULK_REQUEST_CLOSED", "bulk request is closed for bidding")
	}
	exists, err := s.bids.Exists(requestID, supplierID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if exists {
		return nil, utils.Conflict("BID_EXISTS", "you already bid on this request")
	}
	bid := &models.Bid{
		BulkRequestID: requestID,
		SupplierID:    supplierID,
		UnitPrice:     unitPrice,
		Note:          note,
		Status:        models.BidPending,
	}
	if err := s.bids.Create(bid); err != nil {
		return nil, utils.Internal(err)
	}
	return bid, nil
}

// UpdateBid rewrites the price and note of the supplier's own still-pending
// bid. Resolved bids are immutable.
func (s *BidService) UpdateBid(ctx context.Context, supplierID, bidID int64, unitPrice decimal.Decimal, note string) (*models.Bid, error) {
	if !unitPrice.IsPositive() {
		return nil, utils.Validation("INVALID_PRICE", "unit price must be > 0")
	}
	bid := &models.Bid{ID: bidID, SupplierID: supplierID, UnitPrice: unitPrice, Note: note}
	ok, err := s.bids.UpdatePrice(bid)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !ok {
		return nil, utils.Conflict("BID_NOT_PENDING", "bid not found, not yours, or already resolved")
	}
	return s.bids.GetByID(s.db, bidID)
}

// ListBids returns bids scoped by role: admins see all, suppliers their own
// offers, buyers the bids on their requests.
func (s *BidService) ListBids(userID int64, role models.Role) ([]models.Bid, error) {
	var (
		list []models.Bid
		err  error
	)
	switch {
	case role == models.RoleAdmin:
		list, err = s.bids.ListAll()
	case role == models.RoleSupplier:
		list, err = s.bids.ListBySupplier(userID)
	default:
		list, err = s.bids.ListByRequestOwner(userID)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// CloseRequest transitions the owner's request OPEN -> CLOSED without
// accepting any bid. Pending bids stay pending; a closed request rejects
// further bids and acceptances.
func (s *BidService) CloseRequest(ctx context.Context, userID int64, role models.Role, requestID int64) (*models.BulkRequest, error) {
	br, err := s.requests.GetByID(s.db, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("BULK_REQUEST_NOT_FOUND", "bulk request not found")
		}
		return nil, utils.Internal(err)
	}
	if br.UserID != userID && role != models.RoleAdmin {
		return nil, utils.Forbidden("NOT_OWNER", "only the requester may close this request")
	}
	closed, err := s.requests.CloseIfOpen(s.db, requestID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !closed {
		return nil, utils.Conflict("BULK_REQUEST_CLOSED", "bulk request is already closed")
	}
	return s.requests.GetByID(s.db, requestID)
}

// AcceptBid is the single-winner acceptance transaction. It marks the bid
// ACCEPTED, rejects every sibling bid, and closes the request — all or
// nothing. The close is a compare-and-set on the OPEN status, so a second
// acceptance (concurrent or late) fails with a conflict and leaves no
// partial state.
func (s *BidService) AcceptBid(ctx context.Context, userID int64, role models.Role, bidID int64) (*AcceptResult, error) {
	var result *AcceptResult
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		bid, err := s.bids.GetByID(tx, bidID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.NotFound("BID_NOT_FOUND", "bid not found")
			}
			return utils.Internal(err)
		}
		br, err := s.requests.GetByID(tx, bid.BulkRequestID)
		if err != nil {
			return utils.Internal(err)
		}
		if br.UserID != userID && role != models.RoleAdmin {
			return utils.Forbidden("NOT_OWNER", "only the requester may accept a bid")
		}

		closed, err := s.requests.AcceptAndClose(tx, br.ID, bid.ID)
		if err != nil {
			return utils.Internal(err)
		}
		if !closed {
			return utils.Conflict("BULK_REQUEST_CLOSED", "bulk request is already closed")
		}
		if err := s.bids.MarkAccepted(tx, bid.ID); err != nil {
			return utils.Internal(err)
		}
		rejected, err := s.bids.RejectSiblings(tx, br.ID, bid.ID)
		if err != nil {
			return utils.Internal(err)
		}
		result = &AcceptResult{
			AcceptedBidID: bid.ID,
			BulkRequestID: br.ID,
			Status:        models.BulkRequestClosed,
			RejectedBids:  rejected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Int64("bulk_request_id", result.BulkRequestID).
		Int64("bid_id", result.AcceptedBidID).
		Int64("rejected", result.RejectedBids).
		Msg("bid accepted")
	return result, nil
}
