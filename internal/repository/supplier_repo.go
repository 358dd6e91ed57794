package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// SupplierRepository handles data access for the supplier directory and the
// material-supplier link table.
type SupplierRepository struct {
	db *sqlx.DB
}

// NewSupplierRepository creates a new SupplierRepository.
func NewSupplierRepository(db *sqlx.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

const supplierColumns = `id, user_id, name, phone, address, rating, is_active, created_at, updated_at`

// Create inserts a supplier directory entry.
func (r *SupplierRepository) Create(s *models.Supplier) error {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	q := r.db.Rebind(`
        INSERT INTO suppliers (user_id, name, phone, address, rating, is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q,
		s.UserID, s.Name, s.Phone, s.Address, s.Rating, s.IsActive, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

// Update rewrites the profile fields of a supplier.
func (r *SupplierRepository) Update(s *models.Supplier) error {
	s.UpdatedAt = time.Now().UTC()
	q := r.db.Rebind(`
        UPDATE suppliers SET name = ?, phone = ?, address = ?, is_active = ?, updated_at = ?
        WHERE id = ?`)
	_, err := r.db.Exec(q, s.Name, s.Phone, s.Address, s.IsActive, s.UpdatedAt, s.ID)
	return err
}

// GetByID returns a supplier by id.
func (r *SupplierRepository) GetByID(id int64) (*models.Supplier, error) {
	var s models.Supplier
	q := r.db.Rebind(`SELECT ` + supplierColumns + ` FROM suppliers WHERE id = ?`)
	if err := r.db.Get(&s, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUserID returns the supplier profile owned by a user.
func (r *SupplierRepository) GetByUserID(userID int64) (*models.Supplier, error) {
	var s models.Supplier
	q := r.db.Rebind(`SELECT ` + supplierColumns + ` FROM suppliers WHERE user_id = ?`)
	if err := r.db.Get(&s, q, userID); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the whole directory ordered by name.
func (r *SupplierRepository) List() ([]models.Supplier, error) {
	var list []models.Supplier
	q := r.db.Rebind(`SELECT ` + supplierColumns + ` FROM suppliers ORDER BY name`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// SetActive flips a supplier's active flag. Returns false when no such
// supplier exists.
func (r *SupplierRepository) SetActive(id int64, active bool) (bool, error) {
	q := r.db.Rebind(`UPDATE suppliers SET is_active = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.Exec(q, active, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertLink writes a supplier's sourcing terms for one material, replacing
// any previous link for the same pair.
func (r *SupplierRepository) UpsertLink(q Runner, l *models.MaterialSupplier) error {
	query := q.Rebind(`
        INSERT INTO material_suppliers (supplier_id, material_id, wholesale_price, is_primary, lead_time_days, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (supplier_id, material_id) DO UPDATE
        SET wholesale_price = excluded.wholesale_price,
            is_primary      = excluded.is_primary,
            lead_time_days  = excluded.lead_time_days
        RETURNING id`)
	return q.QueryRowx(query,
		l.SupplierID, l.MaterialID, l.WholesalePrice, l.IsPrimary, l.LeadTimeDays, time.Now().UTC(),
	).Scan(&l.ID)
}

// DemotePeers clears the primary flag on every other supplier's link for the
// material, so at most one primary source remains.
func (r *SupplierRepository) DemotePeers(q Runner, materialID, supplierID int64) error {
	query := q.Rebind(`
        UPDATE material_suppliers SET is_primary = FALSE
        WHERE material_id = ? AND supplier_id <> ?`)
	_, err := q.Exec(query, materialID, supplierID)
	return err
}

const linkColumns = `
    ms.id, ms.supplier_id, ms.material_id, ms.wholesale_price, ms.is_primary, ms.lead_time_days, ms.created_at,
    s.name AS supplier_name, m.sku AS material_sku`

const linkJoins = `
    FROM material_suppliers ms
    JOIN suppliers s ON s.id = ms.supplier_id
    JOIN materials m ON m.id = ms.material_id`

// GetLink returns one material-supplier link by id.
func (r *SupplierRepository) GetLink(id int64) (*models.MaterialSupplier, error) {
	var l models.MaterialSupplier
	q := r.db.Rebind(`SELECT ` + linkColumns + linkJoins + ` WHERE ms.id = ?`)
	if err := r.db.Get(&l, q, id); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLinksBySupplier returns one supplier's material links, newest first.
func (r *SupplierRepository) ListLinksBySupplier(supplierID int64) ([]models.MaterialSupplier, error) {
	var list []models.MaterialSupplier
	q := r.db.Rebind(`SELECT ` + linkColumns + linkJoins + `
        WHERE ms.supplier_id = ? ORDER BY ms.created_at DESC, ms.id DESC`)
	if err := r.db.Select(&list, q, supplierID); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAllLinks returns every material-supplier link (admin view).
func (r *SupplierRepository) ListAllLinks() ([]models.MaterialSupplier, error) {
	var list []models.MaterialSupplier
	q := r.db.Rebind(`SELECT ` + linkColumns + linkJoins + ` ORDER BY ms.created_at DESC, ms.id DESC`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteLink removes one link by id. Returns false when it did not exist.
func (r *SupplierRepository) DeleteLink(id int64) (bool, error) {
	q := r.db.Rebind(`DELETE FROM material_suppliers WHERE id = ?`)
	res, err := r.db.Exec(q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
