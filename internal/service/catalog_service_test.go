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

func newCatalogService(db *sqlx.DB) *service.CatalogService {
	materials := repository.NewMaterialRepository(db)
	pricing := service.NewPricingService(db, materials, nil)
	return service.NewCatalogService(db, materials, nil, pricing)
}

func TestCatalogService_Categories(t *testing.T) {
	db := memdb(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Portland Cement")
	if err != nil {
		t.Fatal(err)
	}
	if cat.Slug != "portland-cement" {
		t.Fatalf("want slug portland-cement, got %s", cat.Slug)
	}

	if _, err := svc.CreateCategory(ctx, "Portland Cement"); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("duplicate category should conflict, got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "  "); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("blank name should be rejected, got %v", err)
	}
}

func TestCatalogService_Materials(t *testing.T) {
	db := memdb(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Cement")
	if err != nil {
		t.Fatal(err)
	}

	m, err := svc.CreateMaterial(ctx, service.MaterialInput{
		SKU: "CEM-001", Title: "OPC 53 Grade", CategoryID: cat.ID, Unit: models.UnitBag, StockQty: 100, MinStock: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreateMaterial(ctx, service.MaterialInput{
		SKU: "CEM-001", Title: "dupe", CategoryID: cat.ID, Unit: models.UnitBag,
	}); utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("duplicate SKU should conflict, got %v", err)
	}
	if _, err := svc.CreateMaterial(ctx, service.MaterialInput{
		SKU: "CEM-002", Title: "bad unit", CategoryID: cat.ID, Unit: models.Unit("CRATE"),
	}); utils.KindOf(err) != utils.KindValidation {
		t.Fatalf("unknown unit should be rejected, got %v", err)
	}

	if err := svc.SetPrice(ctx, m.ID, models.TierRetail, decimal.NewFromInt(420)); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetPrice(ctx, m.ID, models.PriceTier("VIP"), decimal.NewFromInt(1)); utils.KindOf(err) != utils.KindValidation {
		t.Fatal("unknown tier should be rejected")
	}
	if err := svc.SetPrice(ctx, m.ID, models.TierRetail, decimal.Zero); utils.KindOf(err) != utils.KindValidation {
		t.Fatal("zero price should be rejected")
	}

	view, err := svc.GetMaterial(ctx, m.ID, models.RoleCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if view.Price.String() != "420" || view.Tier != models.TierRetail {
		t.Fatalf("want 420@RETAIL, got %s@%s", view.Price, view.Tier)
	}

	// Update leaves stock alone.
	updated, err := svc.UpdateMaterial(ctx, m.ID, service.MaterialInput{
		SKU: "CEM-001", Title: "OPC 53 Grade (new bag)", CategoryID: cat.ID, Unit: models.UnitBag, MinStock: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.StockQty != 100 {
		t.Fatalf("update touched stock: %d", updated.StockQty)
	}
	if updated.MinStock != 20 {
		t.Fatalf("threshold not updated: %d", updated.MinStock)
	}

	list, err := svc.ListMaterials(ctx, "cement", models.RoleCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 material in category, got %d", len(list))
	}
}
