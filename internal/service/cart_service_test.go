package service_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

func newCartService(db *sqlx.DB) *service.CartService {
	materials := repository.NewMaterialRepository(db)
	pricing := service.NewPricingService(db, materials, nil)
	return service.NewCartService(db, repository.NewCartRepository(db), materials, pricing)
}

func TestCartService_AddMergesLines(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	seedPrice(t, db, matID, models.TierRetail, "50")
	user := seedUser(t, db, "buyer", models.RoleCustomer)
	svc := newCartService(db)
	ctx := context.Background()

	if err := svc.Add(ctx, user, matID, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(ctx, user, matID, 3); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.Summary(ctx, user, models.RoleCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Items) != 1 {
		t.Fatalf("want 1 merged line, got %d", len(summary.Items))
	}
	if summary.Items[0].Qty != 5 {
		t.Fatalf("want qty 5, got %d", summary.Items[0].Qty)
	}
	if summary.Subtotal.String() != "250" {
		t.Fatalf("want subtotal 250, got %s", summary.Subtotal)
	}
}

func TestCartService_RolePricedSummary(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	seedPrice(t, db, matID, models.TierRetail, "50")
	seedPrice(t, db, matID, models.TierWholesale, "40")
	user := seedUser(t, db, "wholesaler", models.RoleWholesaler)
	svc := newCartService(db)
	ctx := context.Background()

	if err := svc.Add(ctx, user, matID, 2); err != nil {
		t.Fatal(err)
	}
	summary, err := svc.Summary(ctx, user, models.RoleWholesaler)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Items[0].Price.String() != "40" {
		t.Fatalf("want wholesale price 40, got %s", summary.Items[0].Price)
	}
	if summary.Subtotal.String() != "80" {
		t.Fatalf("want subtotal 80, got %s", summary.Subtotal)
	}
}

func TestCartService_Validation(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	user := seedUser(t, db, "buyer", models.RoleCustomer)
	svc := newCartService(db)
	ctx := context.Background()

	if err := svc.Add(ctx, user, matID, 0); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("zero qty should be rejected, got %v", err)
	}
	if err := svc.Add(ctx, user, 9999, 1); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown material should 404, got %v", err)
	}
	if err := svc.UpdateQty(ctx, user, 9999, 2); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown item should 404, got %v", err)
	}
	if err := svc.Remove(ctx, user, 9999); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown item should 404, got %v", err)
	}
}

func TestCartService_OwnershipScoped(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	seedPrice(t, db, matID, models.TierRetail, "50")
	alice := seedUser(t, db, "alice", models.RoleCustomer)
	bob := seedUser(t, db, "bob", models.RoleCustomer)
	svc := newCartService(db)
	ctx := context.Background()

	if err := svc.Add(ctx, alice, matID, 1); err != nil {
		t.Fatal(err)
	}
	summary, err := svc.Summary(ctx, alice, models.RoleCustomer)
	if err != nil {
		t.Fatal(err)
	}
	itemID := summary.Items[0].ID

	// Another user cannot touch the line.
	if err := svc.UpdateQty(ctx, bob, itemID, 9); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("cross-user update should 404, got %v", err)
	}
	if err := svc.Remove(ctx, bob, itemID); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("cross-user remove should 404, got %v", err)
	}
}
