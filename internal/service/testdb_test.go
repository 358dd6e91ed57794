package service_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// memdb opens an in-memory SQLite database with the application schema. The
// repositories write portable SQL, so the same queries run here and on
// PostgreSQL.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:?_time_format=sqlite")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE users(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  username TEXT NOT NULL UNIQUE,
	  email TEXT NOT NULL UNIQUE,
	  password_hash TEXT NOT NULL,
	  role TEXT NOT NULL,
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE categories(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT NOT NULL UNIQUE,
	  slug TEXT NOT NULL UNIQUE,
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE materials(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  sku TEXT NOT NULL UNIQUE,
	  title TEXT NOT NULL,
	  category_id INTEGER NOT NULL,
	  unit TEXT NOT NULL,
	  stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
	  min_stock INTEGER NOT NULL DEFAULT 0,
	  description TEXT NOT NULL DEFAULT '',
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE price_tiers(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  material_id INTEGER NOT NULL,
	  tier TEXT NOT NULL,
	  price NUMERIC NOT NULL,
	  UNIQUE(material_id, tier)
	);
	CREATE TABLE alerts(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  material_id INTEGER NOT NULL,
	  type TEXT NOT NULL DEFAULT 'LOW_STOCK',
	  is_resolved INTEGER NOT NULL DEFAULT 0,
	  note TEXT NOT NULL DEFAULT '',
	  created_at TIMESTAMP NOT NULL
	);
	CREATE UNIQUE INDEX uniq_alerts_open_per_material
	  ON alerts(material_id, type) WHERE is_resolved = 0;
	CREATE TABLE bulk_requests(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  material_id INTEGER NOT NULL,
	  qty INTEGER NOT NULL,
	  deadline TIMESTAMP,
	  status TEXT NOT NULL DEFAULT 'OPEN',
	  accepted_bid_id INTEGER,
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE bids(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  bulk_request_id INTEGER NOT NULL,
	  supplier_id INTEGER NOT NULL,
	  unit_price NUMERIC NOT NULL,
	  note TEXT NOT NULL DEFAULT '',
	  status TEXT NOT NULL DEFAULT 'PENDING',
	  created_at TIMESTAMP NOT NULL,
	  UNIQUE(bulk_request_id, supplier_id)
	);
	CREATE TABLE cart_items(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  material_id INTEGER NOT NULL,
	  qty INTEGER NOT NULL,
	  UNIQUE(user_id, material_id)
	);
	CREATE TABLE addresses(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  line1 TEXT NOT NULL,
	  city TEXT NOT NULL,
	  state TEXT NOT NULL DEFAULT '',
	  zip TEXT NOT NULL DEFAULT '',
	  phone TEXT NOT NULL,
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE orders(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  address TEXT NOT NULL,
	  status TEXT NOT NULL DEFAULT 'PLACED',
	  subtotal NUMERIC NOT NULL DEFAULT 0,
	  tax NUMERIC NOT NULL DEFAULT 0,
	  delivery_charges NUMERIC NOT NULL DEFAULT 0,
	  total NUMERIC NOT NULL DEFAULT 0,
	  payment_method TEXT NOT NULL,
	  created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE order_items(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  order_id INTEGER NOT NULL,
	  material_id INTEGER NOT NULL,
	  title TEXT NOT NULL,
	  sku TEXT NOT NULL,
	  unit TEXT NOT NULL,
	  qty INTEGER NOT NULL,
	  price NUMERIC NOT NULL,
	  line_total NUMERIC NOT NULL
	);
	CREATE TABLE suppliers(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER UNIQUE,
	  name TEXT NOT NULL,
	  phone TEXT NOT NULL DEFAULT '',
	  address TEXT NOT NULL DEFAULT '',
	  rating NUMERIC NOT NULL DEFAULT 0,
	  is_active INTEGER NOT NULL DEFAULT 1,
	  created_at TIMESTAMP NOT NULL,
	  updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE material_suppliers(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  supplier_id INTEGER NOT NULL,
	  material_id INTEGER NOT NULL,
	  wholesale_price NUMERIC,
	  is_primary INTEGER NOT NULL DEFAULT 0,
	  lead_time_days INTEGER NOT NULL DEFAULT 0,
	  created_at TIMESTAMP NOT NULL,
	  UNIQUE(supplier_id, material_id)
	);
	CREATE TABLE reviews(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  order_id INTEGER NOT NULL UNIQUE,
	  rating INTEGER NOT NULL,
	  comment TEXT NOT NULL DEFAULT '',
	  created_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, username string, role models.Role) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		`INSERT INTO users (username, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		username, username+"@example.com", "x", role, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedCategory(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		`INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?) RETURNING id`,
		name, name, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedMaterial(t *testing.T, db *sqlx.DB, categoryID int64, sku string, stock, minStock int) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(
		`INSERT INTO materials (sku, title, category_id, unit, stock_qty, min_stock, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, '', ?) RETURNING id`,
		sku, "material "+sku, categoryID, models.UnitBag, stock, minStock, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedPrice(t *testing.T, db *sqlx.DB, materialID int64, tier models.PriceTier, price string) {
	t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO price_tiers (material_id, tier, price) VALUES (?, ?, ?)`,
		materialID, tier, d,
	); err != nil {
		t.Fatal(err)
	}
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.Get(&n, query, args...); err != nil {
		t.Fatal(err)
	}
	return n
}

func stockOf(t *testing.T, db *sqlx.DB, materialID int64) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT stock_qty FROM materials WHERE id = ?`, materialID); err != nil {
		t.Fatal(err)
	}
	return n
}
