package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// AlertRepository handles data access for low-stock alerts. The invariant —
// at most one open alert per material — is enforced here (and backed by a
// partial unique index in the schema).
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// EnsureOpen creates an open LOW_STOCK alert for the material unless one
// already exists. Idempotent.
func (r *AlertRepository) EnsureOpen(q Runner, materialID int64, note string) error {
	n, err := r.CountOpen(q, materialID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	query := q.Rebind(`
        INSERT INTO alerts (material_id, type, is_resolved, note, created_at)
        VALUES (?, ?, ?, ?, ?)`)
	_, err = q.Exec(query, materialID, models.AlertLowStock, false, note, time.Now().UTC())
	return err
}

// ResolveOpen marks any open LOW_STOCK alert for the material resolved.
func (r *AlertRepository) ResolveOpen(q Runner, materialID int64) error {
	query := q.Rebind(`
        UPDATE alerts SET is_resolved = ?
        WHERE material_id = ? AND type = ? AND is_resolved = ?`)
	_, err := q.Exec(query, true, materialID, models.AlertLowStock, false)
	return err
}

// Resolve marks a single alert resolved by id.
func (r *AlertRepository) Resolve(alertID int64) (bool, error) {
	q := r.db.Rebind(`UPDATE alerts SET is_resolved = ? WHERE id = ? AND is_resolved = ?`)
	res, err := r.db.Exec(q, true, alertID, false)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountOpen returns the number of open LOW_STOCK alerts for a material.
// The invariant keeps this at 0 or 1.
func (r *AlertRepository) CountOpen(q Runner, materialID int64) (int, error) {
	var n int
	query := q.Rebind(`
        SELECT COUNT(*) FROM alerts
        WHERE material_id = ? AND type = ? AND is_resolved = ?`)
	if err := q.Get(&n, query, materialID, models.AlertLowStock, false); err != nil {
		return 0, err
	}
	return n, nil
}

// ListOpen returns all open alerts joined with material identifiers.
func (r *AlertRepository) ListOpen() ([]models.Alert, error) {
	var list []models.Alert
	q := r.db.Rebind(`
        SELECT id, material_id, type, is_resolved, note, created_at
        FROM alerts WHERE is_resolved = ? ORDER BY created_at DESC`)
	if err := r.db.Select(&list, q, false); err != nil {
		return nil, err
	}
	return list, nil
}
