package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
)

// UserRepository handles data access for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user row.
func (r *UserRepository) Create(u *models.User) error {
	q := r.db.Rebind(`
        INSERT INTO users (username, email, password_hash, role, created_at)
        VALUES (?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowx(q, u.Username, u.Email, u.PasswordHash, u.Role, time.Now().UTC()).Scan(&u.ID)
}

const userColumns = `id, username, email, password_hash, role, created_at`

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := r.db.Get(&u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var u models.User
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.Get(&u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with the given username or email already
// exists.
func (r *UserRepository) Exists(username, email string) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`)
	if err := r.db.Get(&n, q, username, email); err != nil {
		return false, err
	}
	return n > 0, nil
}
