package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/utils"
)

// InventoryService owns stock movements and the low-stock alert lifecycle.
// Stock only changes through DecrementStock or AdjustStock; both re-evaluate
// the material's alert afterwards.
type InventoryService struct {
	db        *sqlx.DB
	materials *repository.MaterialRepository
	alerts    *repository.AlertRepository
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(db *sqlx.DB, materials *repository.MaterialRepository, alerts *repository.AlertRepository) *InventoryService {
	return &InventoryService{db: db, materials: materials, alerts: alerts}
}

// stockFailure is one line of the insufficient-stock detail payload.
type stockFailure struct {
	SKU       string `json:"sku"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// DecrementStock subtracts qty from a material's stock on the given runner.
// The write is guarded against going negative; a guard miss reports the
// shortfall as a validation error carrying the same per-line detail shape
// checkout produces when it pre-checks stock, so a buyer who loses the race
// gets the same answer either way.
func (s *InventoryService) DecrementStock(q repository.Runner, materialID int64, qty int) (int, error) {
	newQty, err := s.materials.DecrementStock(q, materialID, qty)
	if err == nil {
		return newQty, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, utils.Internal(err)
	}
	m, err := s.materials.GetByID(q, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
		}
		return 0, utils.Internal(err)
	}
	return 0, utils.ValidationWithDetails("INSUFFICIENT_STOCK", "not enough stock remaining",
		[]stockFailure{{SKU: m.SKU, Requested: qty, Available: m.StockQty}})
}

// ReevaluateAlert brings the material's alert state in line with its current
// stock: at or below threshold opens an alert (idempotently), above it
// resolves any open one. Alert bookkeeping must never fail the operation
// that moved the stock, so errors are logged and swallowed.
func (s *InventoryService) ReevaluateAlert(q repository.Runner, materialID int64) {
	m, err := s.materials.GetByID(q, materialID)
	if err != nil {
		log.Error().Err(err).Int64("material_id", materialID).Msg("alert re-evaluation: load material failed")
		return
	}
	if m.StockQty <= m.MinStock {
		note := fmt.Sprintf("stock %d at or below threshold %d", m.StockQty, m.MinStock)
		if err := s.alerts.EnsureOpen(q, materialID, note); err != nil {
			log.Error().Err(err).Int64("material_id", materialID).Msg("alert re-evaluation: open failed")
		}
		return
	}
	if err := s.alerts.ResolveOpen(q, materialID); err != nil {
		log.Error().Err(err).Int64("material_id", materialID).Msg("alert re-evaluation: resolve failed")
	}
}

// AdjustStock overwrites a material's stock quantity (admin restock or
// correction) and re-evaluates its alert in the same transaction.
func (s *InventoryService) AdjustStock(ctx context.Context, materialID int64, qty int) (*models.Material, error) {
	if qty < 0 {
		return nil, utils.Validation("INVALID_QTY", "stock quantity must be >= 0")
	}
	var out *models.Material
	err := repository.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.materials.SetStock(tx, materialID, qty); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.NotFound("MATERIAL_NOT_FOUND", "material not found")
			}
			return utils.Internal(err)
		}
		s.ReevaluateAlert(tx, materialID)
		m, err := s.materials.GetByID(tx, materialID)
		if err != nil {
			return utils.Internal(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SweepAlerts is the safety net run by the background worker: it opens
// alerts for any material at or below threshold that slipped past the
// inline re-evaluation. Idempotent.
func (s *InventoryService) SweepAlerts(ctx context.Context) error {
	ids, err := s.materials.ListAtOrBelowThreshold()
	if err != nil {
		return fmt.Errorf("list low-stock materials: %w", err)
	}
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.ReevaluateAlert(s.db, id)
	}
	if len(ids) > 0 {
		log.Debug().Int("materials", len(ids)).Msg("alert sweep completed")
	}
	return nil
}

// ListOpenAlerts returns all unresolved alerts (admin view).
func (s *InventoryService) ListOpenAlerts() ([]models.Alert, error) {
	list, err := s.alerts.ListOpen()
	if err != nil {
		return nil, utils.Internal(err)
	}
	return list, nil
}

// ResolveAlert marks one alert resolved by id.
func (s *InventoryService) ResolveAlert(alertID int64) error {
	ok, err := s.alerts.Resolve(alertID)
	if err != nil {
		return utils.Internal(err)
	}
	if !ok {
		return utils.NotFound("ALERT_NOT_FOUND", "alert not found or already resolved")
	}
	return nil
}
