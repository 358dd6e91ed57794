package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// OrderRepository handles data access for orders, order items, addresses and
// reviews.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order row. Totals start at zero and are persisted by
// UpdateTotals once all lines are written; both run inside the checkout
// transaction.
func (r *OrderRepository) Create(q Runner, o *models.Order) error {
	query := q.Rebind(`
        INSERT INTO orders (user_id, address, status, subtotal, tax, delivery_charges, total, payment_method, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	o.CreatedAt = time.Now().UTC()
	return q.QueryRowx(query,
		o.UserID, o.Address, o.Status, o.Subtotal, o.Tax, o.DeliveryCharges, o.Total, o.PaymentMethod, o.CreatedAt,
	).Scan(&o.ID)
}

// InsertItem writes one snapshot line of an order.
func (r *OrderRepository) InsertItem(q Runner, item *models.OrderItem) error {
	query := q.Rebind(`
        INSERT INTO order_items (order_id, material_id, title, sku, unit, qty, price, line_total)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return q.QueryRowx(query,
		item.OrderID, item.MaterialID, item.Title, item.SKU, item.Unit, item.Qty, item.Price, item.LineTotal,
	).Scan(&item.ID)
}

// UpdateTotals persists the computed subtotal, tax and total of an order.
func (r *OrderRepository) UpdateTotals(q Runner, o *models.Order) error {
	query := q.Rebind(`UPDATE orders SET subtotal = ?, tax = ?, total = ? WHERE id = ?`)
	_, err := q.Exec(query, o.Subtotal, o.Tax, o.Total, o.ID)
	return err
}

const orderColumns = `id, user_id, address, status, subtotal, tax, delivery_charges, total, payment_method, created_at`

// GetByID returns an order with its items.
func (r *OrderRepository) GetByID(id int64) (*models.Order, error) {
	var o models.Order
	q := r.db.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE id = ?`)
	if err := r.db.Get(&o, q, id); err != nil {
		return nil, err
	}
	items, err := r.Items(id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Items returns the snapshot lines of an order.
func (r *OrderRepository) Items(orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	q := r.db.Rebind(`
        SELECT id, order_id, material_id, title, sku, unit, qty, price, line_total
        FROM order_items WHERE order_id = ? ORDER BY id`)
	if err := r.db.Select(&items, q, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

const orderListQuery = `
    SELECT o.id, o.user_id, o.address, o.status, o.subtotal, o.tax, o.delivery_charges,
           o.total, o.payment_method, o.created_at,
           (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
    FROM orders o`

// ListAll returns every order, newest first (admin view).
func (r *OrderRepository) ListAll() ([]models.Order, error) {
	var list []models.Order
	q := r.db.Rebind(orderListQuery + ` ORDER BY o.created_at DESC`)
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByUser returns a user's own orders, newest first.
func (r *OrderRepository) ListByUser(userID int64) ([]models.Order, error) {
	var list []models.Order
	q := r.db.Rebind(orderListQuery + ` WHERE o.user_id = ? ORDER BY o.created_at DESC`)
	if err := r.db.Select(&list, q, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatusFrom transitions an order's status with a compare-and-set on
// the old status, so two concurrent writers cannot both observe the same
// transition. Returns whether the write happened.
func (r *OrderRepository) UpdateStatusFrom(id int64, from, to models.OrderStatus) (bool, error) {
	q := r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`)
	res, err := r.db.Exec(q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateAddress saves a delivery address for the user's history.
func (r *OrderRepository) CreateAddress(q Runner, a *models.Address) error {
	query := q.Rebind(`
        INSERT INTO addresses (user_id, line1, city, state, zip, phone, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return q.QueryRowx(query,
		a.UserID, a.Line1, a.City, a.State, a.Zip, a.Phone, time.Now().UTC(),
	).Scan(&a.ID)
}

// CreateReview inserts a review row. One review per order; the service
// pre-checks and the schema backs it with a unique constraint.
func (r *OrderRepository) CreateReview(rev *models.Review) error {
	q := r.db.Rebind(`
        INSERT INTO reviews (order_id, rating, comment, created_at)
        VALUES (?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q, rev.OrderID, rev.Rating, rev.Comment, time.Now().UTC()).Scan(&rev.ID)
}

// ReviewExists reports whether the order already has a review.
func (r *OrderRepository) ReviewExists(orderID int64) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM reviews WHERE order_id = ?`)
	if err := r.db.Get(&n, q, orderID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListReviewsByUser returns the reviews on a user's own orders.
func (r *OrderRepository) ListReviewsByUser(userID int64) ([]models.Review, error) {
	var list []models.Review
	q := r.db.Rebind(`
        SELECT rv.id, rv.order_id, rv.rating, rv.comment, rv.created_at
        FROM reviews rv JOIN orders o ON o.id = rv.order_id
        WHERE o.user_id = ? ORDER BY rv.created_at DESC`)
	if err := r.db.Select(&list, q, userID); err != nil {
		return nil, err
	}
	return list, nil
}

// SalesReport aggregates orders per day between the optional date bounds
// (inclusive, YYYY-MM-DD).
func (r *OrderRepository) SalesReport(from, to string) ([]models.SalesRow, error) {
	query := `SELECT date(created_at) AS day, COUNT(id) AS orders, COALESCE(SUM(total), 0) AS revenue FROM orders`
	var (
		conds []string
		args  []interface{}
	)
	if from != "" {
		conds = append(conds, `date(created_at) >= ?`)
		args = append(args, from)
	}
	if to != "" {
		conds = append(conds, `date(created_at) <= ?`)
		args = append(args, to)
	}
	for i, c := range conds {
		if i == 0 {
			query += ` WHERE ` + c
		} else {
			query += ` AND ` + c
		}
	}
	query += ` GROUP BY date(created_at) ORDER BY day`

	var rows []models.SalesRow
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
