package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// CartRepository handles data access for cart items.
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Upsert adds qty of a material to the user's cart. An existing
// (user, material) row has its qty incremented instead of duplicating.
func (r *CartRepository) Upsert(userID, materialID int64, qty int) error {
	q := r.db.Rebind(`
        INSERT INTO cart_items (user_id, material_id, qty) VALUES (?, ?, ?)
        ON CONFLICT (user_id, material_id) DO UPDATE SET qty = cart_items.qty + excluded.qty`)
	_, err := r.db.Exec(q, userID, materialID, qty)
	return err
}

// UpdateQty overwrites the quantity of one of the user's cart items.
// Returns whether the row existed.
func (r *CartRepository) UpdateQty(userID, itemID int64, qty int) (bool, error) {
	q := r.db.Rebind(`UPDATE cart_items SET qty = ? WHERE id = ? AND user_id = ?`)
	res, err := r.db.Exec(q, qty, itemID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes one of the user's cart items. Returns whether the row
// existed.
func (r *CartRepository) Delete(userID, itemID int64) (bool, error) {
	q := r.db.Rebind(`DELETE FROM cart_items WHERE id = ? AND user_id = ?`)
	res, err := r.db.Exec(q, itemID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const cartLineQuery = `
    SELECT ci.id, ci.material_id, ci.qty, m.title, m.sku, m.unit, m.stock_qty
    FROM cart_items ci
    JOIN materials m ON m.id = ci.material_id
    WHERE ci.user_id = ?`

// Lines returns the user's cart joined with material data, optionally
// restricted to the given cart item ids. Runs on the given runner so
// checkout reads its lines inside the transaction.
func (r *CartRepository) Lines(q Runner, userID int64, itemIDs []int64) ([]models.CartLine, error) {
	var lines []models.CartLine
	if len(itemIDs) == 0 {
		query := q.Rebind(cartLineQuery + ` ORDER BY ci.id`)
		if err := q.Select(&lines, query, userID); err != nil {
			return nil, err
		}
		return lines, nil
	}
	query, args, err := sqlx.In(cartLineQuery+` AND ci.id IN (?) ORDER BY ci.id`, userID, itemIDs)
	if err != nil {
		return nil, err
	}
	if err := q.Select(&lines, q.Rebind(query), args...); err != nil {
		return nil, err
	}
	return lines, nil
}

// DeleteByIDs removes exactly the given cart items of the user. Runs inside
// the checkout transaction so a concurrent checkout of the same rows cannot
// double-spend them.
func (r *CartRepository) DeleteByIDs(q Runner, userID int64, itemIDs []int64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM cart_items WHERE user_id = ? AND id IN (?)`, userID, itemIDs)
	if err != nil {
		return 0, err
	}
	res, err := q.Exec(q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
