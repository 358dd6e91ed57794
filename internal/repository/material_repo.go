package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// MaterialRepository handles data access for the catalog: categories,
// materials and price tiers. Queries are written with `?` placeholders and
// rebound, so they run unchanged on PostgreSQL and on the SQLite test DB.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// CreateCategory inserts a category row.
func (r *MaterialRepository) CreateCategory(cat *models.Category) error {
	q := r.db.Rebind(`INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q, cat.Name, cat.Slug, time.Now().UTC()).Scan(&cat.ID)
}

// ListCategories returns all categories ordered by name.
func (r *MaterialRepository) ListCategories() ([]models.Category, error) {
	var list []models.Category
	q := r.db.Rebind(`SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// CategoryExists reports whether a category with the given name or slug
// already exists.
func (r *MaterialRepository) CategoryExists(name, slug string) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM categories WHERE name = ? OR slug = ?`)
	if err := r.db.Get(&n, q, name, slug); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a material row.
func (r *MaterialRepository) Create(m *models.Material) error {
	q := r.db.Rebind(`
        INSERT INTO materials (sku, title, category_id, unit, stock_qty, min_stock, description, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q,
		m.SKU, m.Title, m.CategoryID, m.Unit, m.StockQty, m.MinStock, m.Description, time.Now().UTC(),
	).Scan(&m.ID)
}

// Update rewrites the catalog-owned fields of a material. Stock is owned by
// the inventory ledger and is not written here.
func (r *MaterialRepository) Update(m *models.Material) error {
	q := r.db.Rebind(`
        UPDATE materials SET sku = ?, title = ?, category_id = ?, unit = ?, min_stock = ?, description = ?
        WHERE id = ?`)
	_, err := r.db.Exec(q, m.SKU, m.Title, m.CategoryID, m.Unit, m.MinStock, m.Description, m.ID)
	return err
}

const materialColumns = `id, sku, title, category_id, unit, stock_qty, min_stock, description, created_at`

// GetByID returns a material by id using the given runner, which may be a
// transaction.
func (r *MaterialRepository) GetByID(q Runner, id int64) (*models.Material, error) {
	var m models.Material
	query := q.Rebind(`SELECT ` + materialColumns + ` FROM materials WHERE id = ?`)
	if err := q.Get(&m, query, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetBySKU returns a material by its unique SKU.
func (r *MaterialRepository) GetBySKU(sku string) (*models.Material, error) {
	var m models.Material
	q := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials WHERE sku = ?`)
	if err := r.db.Get(&m, q, sku); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns materials, optionally filtered by category slug.
func (r *MaterialRepository) List(categorySlug string) ([]models.Material, error) {
	var list []models.Material
	if categorySlug != "" {
		q := r.db.Rebind(`
            SELECT ` + materialColumnsAliased("m") + `
            FROM materials m JOIN categories c ON c.id = m.category_id
            WHERE c.slug = ? ORDER BY m.title`)
		if err := r.db.Select(&list, q, categorySlug); err != nil {
			return nil, err
		}
		return list, nil
	}
	q := r.db.Rebind(`SELECT ` + materialColumns + ` FROM materials ORDER BY title`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

func materialColumnsAliased(alias string) string {
	return alias + `.id, ` + alias + `.sku, ` + alias + `.title, ` + alias + `.category_id, ` + alias + `.unit, ` +
		alias + `.stock_qty, ` + alias + `.min_stock, ` + alias + `.description, ` + alias + `.created_at`
}

// ListAtOrBelowThreshold returns ids of materials whose stock is at or below
// their min_stock, for the alert sweep.
func (r *MaterialRepository) ListAtOrBelowThreshold() ([]int64, error) {
	var ids []int64
	q := r.db.Rebind(`SELECT id FROM materials WHERE stock_qty <= min_stock`)
	if err := r.db.Select(&ids, q); err != nil {
		return nil, err
	}
	return ids, nil
}

// DecrementStock atomically subtracts qty from a material's stock, guarded
// so the result can never go negative. Returns the new quantity, or
// sql.ErrNoRows when the remaining stock is insufficient (or the material
// does not exist) — in which case nothing was written.
func (r *MaterialRepository) DecrementStock(q Runner, materialID int64, qty int) (int, error) {
	query := q.Rebind(`
        UPDATE materials SET stock_qty = stock_qty - ?
        WHERE id = ? AND stock_qty >= ?
        RETURNING stock_qty`)
	var newQty int
	if err := q.QueryRowx(query, qty, materialID, qty).Scan(&newQty); err != nil {
		return 0, err
	}
	return newQty, nil
}

// SetStock overwrites a material's stock quantity (admin adjustment).
func (r *MaterialRepository) SetStock(q Runner, materialID int64, qty int) error {
	query := q.Rebind(`UPDATE materials SET stock_qty = ? WHERE id = ?`)
	res, err := q.Exec(query, qty, materialID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetTiers returns the price tiers of a material using the given runner.
func (r *MaterialRepository) GetTiers(q Runner, materialID int64) ([]models.Price, error) {
	var prices []models.Price
	query := q.Rebind(`SELECT id, material_id, tier, price FROM price_tiers WHERE material_id = ?`)
	if err := q.Select(&prices, query, materialID); err != nil {
		return nil, err
	}
	return prices, nil
}

// UpsertTier writes a material's price for one tier, replacing any previous
// value. Unique per (material, tier).
func (r *MaterialRepository) UpsertTier(materialID int64, tier models.PriceTier, price decimal.Decimal) error {
	q := r.db.Rebind(`
        INSERT INTO price_tiers (material_id, tier, price) VALUES (?, ?, ?)
        ON CONFLICT (material_id, tier) DO UPDATE SET price = excluded.price`)
	_, err := r.db.Exec(q, materialID, tier, price)
	return err
}
