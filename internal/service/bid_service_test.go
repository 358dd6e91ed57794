package service_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

func newBidService(db *sqlx.DB) *service.BidService {
	return service.NewBidService(db,
		repository.NewBulkRequestRepository(db),
		repository.NewBidRepository(db),
		repository.NewMaterialRepository(db))
}

func bidStatus(t *testing.T, db *sqlx.DB, bidID int64) models.BidStatus {
	t.Helper()
	var s models.BidStatus
	if err := db.Get(&s, `SELECT status FROM bids WHERE id = ?`, bidID); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBidService_CreateRequestRoleGate(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "steel")
	matID := seedMaterial(t, db, catID, "STL-001", 100, 0)
	customer := seedUser(t, db, "customer", models.RoleCustomer)
	retailer := seedUser(t, db, "retailer", models.RoleRetailer)
	svc := newBidService(db)
	ctx := context.Background()

	if _, err := svc.CreateRequest(ctx, customer, models.RoleCustomer, matID, 500, nil); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("customer should be forbidden, got %v", err)
	}
	if _, err := svc.CreateRequest(ctx, retailer, models.RoleRetailer, matID, 0, nil); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("zero qty should be rejected, got %v", err)
	}
	br, err := svc.CreateRequest(ctx, retailer, models.RoleRetailer, matID, 500, nil)
	if err != nil {
		t.Fatal(err)
	}
	if br.Status != models.BulkRequestOpen {
		t.Fatalf("want OPEN, got %s", br.Status)
	}
}

func TestBidService_PlaceBidRules(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "steel")
	matID := seedMaterial(t, db, catID, "STL-001", 100, 0)
	buyer := seedUser(t, db, "buyer", models.RoleRetailer)
	supplier := seedUser(t, db, "supplier", models.RoleSupplier)
	svc := newBidService(db)
	ctx := context.Background()

	br, err := svc.CreateRequest(ctx, buyer, models.RoleRetailer, matID, 500, nil)
	if err != nil {
		t.Fatal(err)
	}

	// A buyer role may not bid.
	if _, err := svc.PlaceBid(ctx, buyer, models.RoleRetailer, br.ID, decimal.NewFromInt(10), ""); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("retailer should be forbidden to bid, got %v", err)
	}

	bid, err := svc.PlaceBid(ctx, supplier, models.RoleSupplier, br.ID, decimal.NewFromInt(10), "bulk discount")
	if err != nil {
		t.Fatal(err)
	}
	if bid.Status != models.BidPending {
		t.Fatalf("want PENDING, got %s", bid.Status)
	}

	// One bid per supplier per request.
	if _, err := svc.PlaceBid(ctx, supplier, models.RoleSupplier, br.ID, decimal.NewFromInt(9), ""); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("duplicate bid should conflict, got %v", err)
	}

	// Re-bidding is an update on the pending bid.
	updated, err := svc.UpdateBid(ctx, supplier, bid.ID, decimal.NewFromInt(9), "better offer")
	if err != nil {
		t.Fatal(err)
	}
	if updated.UnitPrice.String() != "9" {
		t.Fatalf("want 9, got %s", updated.UnitPrice)
	}
}

func TestBidService_AcceptBidSingleWinner(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "steel")
	matID := seedMaterial(t, db, catID, "STL-001", 100, 0)
	buyer := seedUser(t, db, "buyer", models.RoleRetailer)
	s1 := seedUser(t, db, "supplier1", models.RoleSupplier)
	s2 := seedUser(t, db, "supplier2", models.RoleSupplier)
	s3 := seedUser(t, db, "supplier3", models.RoleSupplier)
	outsider := seedUser(t, db, "outsider", models.RoleRetailer)
	svc := newBidService(db)
	ctx := context.Background()

	br, err := svc.CreateRequest(ctx, buyer, models.RoleRetailer, matID, 500, nil)
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := svc.PlaceBid(ctx, s1, models.RoleSupplier, br.ID, decimal.NewFromInt(12), "")
	b2, _ := svc.PlaceBid(ctx, s2, models.RoleSupplier, br.ID, decimal.NewFromInt(10), "")
	b3, _ := svc.PlaceBid(ctx, s3, models.RoleSupplier, br.ID, decimal.NewFromInt(11), "")

	// Only the requester (or an admin) may accept.
	if _, err := svc.AcceptBid(ctx, outsider, models.RoleRetailer, b2.ID); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("outsider should be forbidden, got %v", err)
	}

	result, err := svc.AcceptBid(ctx, buyer, models.RoleRetailer, b2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.AcceptedBidID != b2.ID || result.Status != models.BulkRequestClosed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.RejectedBids != 2 {
		t.Fatalf("want 2 rejected, got %d", result.RejectedBids)
	}

	// Exactly one winner; every sibling rejected; request closed with the
	// winning bid recorded.
	if got := bidStatus(t, db, b2.ID); got != models.BidAccepted {
		t.Fatalf("winner: want ACCEPTED, got %s", got)
	}
	if got := bidStatus(t, db, b1.ID); got != models.BidRejected {
		t.Fatalf("sibling: want REJECTED, got %s", got)
	}
	if got := bidStatus(t, db, b3.ID); got != models.BidRejected {
		t.Fatalf("sibling: want REJECTED, got %s", got)
	}
	closed, err := repository.NewBulkRequestRepository(db).GetByID(db, br.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != models.BulkRequestClosed || closed.AcceptedBidID == nil || *closed.AcceptedBidID != b2.ID {
		t.Fatalf("request not closed on winner: %+v", closed)
	}

	// A second acceptance must conflict and change nothing.
	if _, err := svc.AcceptBid(ctx, buyer, models.RoleRetailer, b1.ID); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("second accept should conflict, got %v", err)
	}
	if got := bidStatus(t, db, b1.ID); got != models.BidRejected {
		t.Fatalf("loser flipped by failed accept: %s", got)
	}
	closed, _ = repository.NewBulkRequestRepository(db).GetByID(db, br.ID)
	if *closed.AcceptedBidID != b2.ID {
		t.Fatalf("accepted bid changed: %d", *closed.AcceptedBidID)
	}

	// Bidding on a closed request is rejected.
	s4 := seedUser(t, db, "supplier4", models.RoleSupplier)
	if _, err := svc.PlaceBid(ctx, s4, models.RoleSupplier, br.ID, decimal.NewFromInt(8), ""); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("bid on closed request should be forbidden, got %v", err)
	}
}

func TestBidService_CloseRequest(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "steel")
	matID := seedMaterial(t, db, catID, "STL-001", 100, 0)
	buyer := seedUser(t, db, "buyer", models.RoleWholesaler)
	supplier := seedUser(t, db, "supplier", models.RoleSupplier)
	svc := newBidService(db)
	ctx := context.Background()

	br, err := svc.CreateRequest(ctx, buyer, models.RoleWholesaler, matID, 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	bid, err := svc.PlaceBid(ctx, supplier, models.RoleSupplier, br.ID, decimal.NewFromInt(10), "")
	if err != nil {
		t.Fatal(err)
	}

	closed, err := svc.CloseRequest(ctx, buyer, models.RoleWholesaler, br.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.Status != models.BulkRequestClosed || closed.AcceptedBidID != nil {
		t.Fatalf("explicit close should not pick a winner: %+v", closed)
	}

	// Pending bids stay pending on an explicit close.
	if got := bidStatus(t, db, bid.ID); got != models.BidPending {
		t.Fatalf("want PENDING after close, got %s", got)
	}

	if _, err := svc.CloseRequest(ctx, buyer, models.RoleWholesaler, br.ID); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("double close should conflict, got %v", err)
	}

	// Acceptance after close conflicts too.
	if _, err := svc.AcceptBid(ctx, buyer, models.RoleWholesaler, bid.ID); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("accept after close should conflict, got %v", err)
	}
}
