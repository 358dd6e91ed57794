package service_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

func newInventory(db *sqlx.DB) (*service.InventoryService, *repository.AlertRepository) {
	materials := repository.NewMaterialRepository(db)
	alerts := repository.NewAlertRepository(db)
	return service.NewInventoryService(db, materials, alerts), alerts
}

func TestInventoryService_DecrementGuard(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 10, 0)
	inv, _ := newInventory(db)

	newQty, err := inv.DecrementStock(db, matID, 4)
	if err != nil {
		t.Fatal(err)
	}
	if newQty != 6 {
		t.Fatalf("want 6, got %d", newQty)
	}

	// More than remains: rejected, nothing written. The failure reads like
	// the pre-checked case — a validation error naming the short line.
	_, err = inv.DecrementStock(db, matID, 7)
	if err == nil {
		t.Fatal("expected error")
	}
	ae := utils.AsAppError(err)
	if utils.KindOf(err) != utils.KindValidation || ae.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("want INSUFFICIENT_STOCK validation error, got %v", err)
	}
	if ae.Details == nil {
		t.Fatal("expected per-line details")
	}
	if got := stockOf(t, db, matID); got != 6 {
		t.Fatalf("stock changed on failed decrement: %d", got)
	}

	// Unknown material is not a stock problem.
	if _, err := inv.DecrementStock(db, 9999, 1); utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("unknown material should 404, got %v", err)
	}

	// Down to exactly zero is allowed.
	if newQty, err = inv.DecrementStock(db, matID, 6); err != nil {
		t.Fatal(err)
	}
	if newQty != 0 {
		t.Fatalf("want 0, got %d", newQty)
	}
}

func TestInventoryService_AlertIdempotence(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	matID := seedMaterial(t, db, catID, "CEM-001", 10, 5)
	inv, alerts := newInventory(db)

	// Above threshold: no alert.
	inv.ReevaluateAlert(db, matID)
	if n, _ := alerts.CountOpen(db, matID); n != 0 {
		t.Fatalf("want 0 open alerts, got %d", n)
	}

	// Cross the threshold.
	if _, err := inv.DecrementStock(db, matID, 6); err != nil {
		t.Fatal(err)
	}
	inv.ReevaluateAlert(db, matID)
	if n, _ := alerts.CountOpen(db, matID); n != 1 {
		t.Fatalf("want 1 open alert, got %d", n)
	}

	// Stay below: re-evaluation must not stack a second alert.
	if _, err := inv.DecrementStock(db, matID, 1); err != nil {
		t.Fatal(err)
	}
	inv.ReevaluateAlert(db, matID)
	inv.ReevaluateAlert(db, matID)
	if n, _ := alerts.CountOpen(db, matID); n != 1 {
		t.Fatalf("want 1 open alert after repeats, got %d", n)
	}

	// Restock above threshold resolves it.
	if _, err := inv.AdjustStock(context.Background(), matID, 20); err != nil {
		t.Fatal(err)
	}
	if n, _ := alerts.CountOpen(db, matID); n != 0 {
		t.Fatalf("want 0 open alerts after restock, got %d", n)
	}
	if countRows(t, db, `SELECT COUNT(*) FROM alerts WHERE material_id = ?`, matID) != 1 {
		t.Fatal("resolved alert row should remain as history")
	}
}

func TestInventoryService_AdjustStockNotFound(t *testing.T) {
	db := memdb(t)
	inv, _ := newInventory(db)

	_, err := inv.AdjustStock(context.Background(), 9999, 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("want not-found kind, got %v", err)
	}
}

func TestInventoryService_SweepAlerts(t *testing.T) {
	db := memdb(t)
	catID := seedCategory(t, db, "cement")
	lowID := seedMaterial(t, db, catID, "LOW-001", 2, 5)
	okID := seedMaterial(t, db, catID, "OK-001", 50, 5)
	inv, alerts := newInventory(db)

	if err := inv.SweepAlerts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n, _ := alerts.CountOpen(db, lowID); n != 1 {
		t.Fatalf("want 1 open alert for low material, got %d", n)
	}
	if n, _ := alerts.CountOpen(db, okID); n != 0 {
		t.Fatalf("want 0 open alerts for healthy material, got %d", n)
	}

	// Sweep twice: still one alert.
	if err := inv.SweepAlerts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n, _ := alerts.CountOpen(db, lowID); n != 1 {
		t.Fatalf("sweep is not idempotent: got %d", n)
	}
}
