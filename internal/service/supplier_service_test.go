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

func newSupplierService(db *sqlx.DB) *service.SupplierService {
	return service.NewSupplierService(db, repository.NewSupplierRepository(db), repository.NewMaterialRepository(db))
}

func TestSupplierService_Profile(t *testing.T) {
	db := memdb(t)
	supplier := seedUser(t, db, "acme", models.RoleSupplier)
	buyer := seedUser(t, db, "buyer", models.RoleCustomer)
	svc := newSupplierService(db)
	ctx := context.Background()

	// Buyers have no place in the directory.
	if _, err := svc.UpsertProfile(ctx, buyer, models.RoleCustomer, service.ProfileInput{Name: "Nope"}); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("customer profile should be forbidden, got %v", err)
	}
	if _, err := svc.UpsertProfile(ctx, supplier, models.RoleSupplier, service.ProfileInput{Name: "  "}); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("blank name should be rejected, got %v", err)
	}

	created, err := svc.UpsertProfile(ctx, supplier, models.RoleSupplier, service.ProfileInput{
		Name: "Acme Cement Co", Phone: "555-0100",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || !created.IsActive {
		t.Fatalf("unexpected profile: %+v", created)
	}

	// A second save updates in place instead of duplicating.
	updated, err := svc.UpsertProfile(ctx, supplier, models.RoleSupplier, service.ProfileInput{
		Name: "Acme Cement & Steel", Phone: "555-0199",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID || updated.Name != "Acme Cement & Steel" {
		t.Fatalf("update created a new row: %+v", updated)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM suppliers`); n != 1 {
		t.Fatalf("want 1 supplier row, got %d", n)
	}

	got, err := svc.GetProfile(supplier)
	if err != nil {
		t.Fatal(err)
	}
	if got.Phone != "555-0199" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if _, err := svc.GetProfile(buyer); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("missing profile should 404, got %v", err)
	}

	list, err := svc.ListSuppliers()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 directory entry, got %d", len(list))
	}
}

func TestSupplierService_AdminEntries(t *testing.T) {
	db := memdb(t)
	svc := newSupplierService(db)
	ctx := context.Background()

	// Admin can list a partner with no login account.
	sup, err := svc.CreateSupplier(ctx, service.ProfileInput{Name: "Offline Aggregates"})
	if err != nil {
		t.Fatal(err)
	}
	if sup.UserID != nil {
		t.Fatalf("account-less entry has a user: %+v", sup)
	}

	if err := svc.SetActive(sup.ID, false); err != nil {
		t.Fatal(err)
	}
	got, err := svc.ListSuppliers()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].IsActive {
		t.Fatalf("deactivation not persisted: %+v", got)
	}
	if err := svc.SetActive(9999, true); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown supplier should 404, got %v", err)
	}
}

func TestSupplierService_MaterialLinks(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	acmeUser := seedUser(t, db, "acme", models.RoleSupplier)
	rivalUser := seedUser(t, db, "rival", models.RoleSupplier)
	svc := newSupplierService(db)
	ctx := context.Background()

	if _, err := svc.UpsertProfile(ctx, acmeUser, models.RoleSupplier, service.ProfileInput{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertProfile(ctx, rivalUser, models.RoleSupplier, service.ProfileInput{Name: "Rival"}); err != nil {
		t.Fatal(err)
	}

	price := decimal.NewFromInt(38)
	link, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{
		MaterialID: matID, WholesalePrice: &price, IsPrimary: true, LeadTimeDays: 7,
	})
	if err != nil {
		t.Fatal(err)
	}
	if link.MaterialSKU != "CEM-001" || link.SupplierName != "Acme" || !link.IsPrimary {
		t.Fatalf("unexpected link: %+v", link)
	}

	// The rival taking over as primary demotes the first link.
	if _, err := svc.LinkMaterial(ctx, rivalUser, models.RoleSupplier, service.LinkInput{
		MaterialID: matID, IsPrimary: true, LeadTimeDays: 3,
	}); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM material_suppliers WHERE material_id = ? AND is_primary = 1`, matID); n != 1 {
		t.Fatalf("want exactly one primary source, got %d", n)
	}

	// Relinking the same pair updates rather than duplicates.
	if _, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{
		MaterialID: matID, WholesalePrice: &price, LeadTimeDays: 10,
	}); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM material_suppliers WHERE material_id = ?`, matID); n != 2 {
		t.Fatalf("want 2 links, got %d", n)
	}

	zero := decimal.Zero
	if _, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{
		MaterialID: matID, WholesalePrice: &zero,
	}); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("zero price should be rejected, got %v", err)
	}
	if _, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{
		MaterialID: 9999,
	}); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown material should 404, got %v", err)
	}
}

func TestSupplierService_LinkScopingAndRemoval(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 100, 0)
	acmeUser := seedUser(t, db, "acme", models.RoleSupplier)
	rivalUser := seedUser(t, db, "rival", models.RoleSupplier)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	buyer := seedUser(t, db, "buyer", models.RoleCustomer)
	svc := newSupplierService(db)
	ctx := context.Background()

	if _, err := svc.UpsertProfile(ctx, acmeUser, models.RoleSupplier, service.ProfileInput{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertProfile(ctx, rivalUser, models.RoleSupplier, service.ProfileInput{Name: "Rival"}); err != nil {
		t.Fatal(err)
	}
	acmeLink, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{MaterialID: matID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LinkMaterial(ctx, rivalUser, models.RoleSupplier, service.LinkInput{MaterialID: matID}); err != nil {
		t.Fatal(err)
	}

	// Suppliers see their own links, admins everything, buyers nothing.
	mine, err := svc.ListLinks(acmeUser, models.RoleSupplier)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].SupplierName != "Acme" {
		t.Fatalf("unexpected supplier view: %+v", mine)
	}
	all, err := svc.ListLinks(admin, models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see 2 links, got %d", len(all))
	}
	none, err := svc.ListLinks(buyer, models.RoleCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("buyer should see no links, got %+v", none)
	}

	// Linking without a profile fails before touching the material.
	if _, err := svc.LinkMaterial(ctx, buyer, models.RoleCustomer, service.LinkInput{MaterialID: matID}); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("buyer link should be forbidden, got %v", err)
	}

	// Only the owner (or an admin) removes a link.
	if err := svc.UnlinkMaterial(ctx, rivalUser, models.RoleSupplier, acmeLink.ID); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("cross-supplier unlink should be forbidden, got %v", err)
	}
	if err := svc.UnlinkMaterial(ctx, acmeUser, models.RoleSupplier, acmeLink.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.UnlinkMaterial(ctx, acmeUser, models.RoleSupplier, acmeLink.ID); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("double unlink should 404, got %v", err)
	}

	// Admin links on behalf of a supplier by id.
	rival, err := svc.GetProfile(rivalUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LinkMaterial(ctx, admin, models.RoleAdmin, service.LinkInput{
		MaterialID: matID, SupplierID: rival.ID, LeadTimeDays: 1,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LinkMaterial(ctx, acmeUser, models.RoleSupplier, service.LinkInput{
		MaterialID: matID, SupplierID: rival.ID,
	}); utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("impersonating another supplier should be forbidden, got %v", err)
	}
}
