package models

import "time"

// Role is the closed set of account roles. Permission checks match on these
// constants only; unknown strings never fall through to a default grant.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleWholesaler Role = "WHOLESALER"
	RoleRetailer   Role = "RETAILER"
	RoleSupplier   Role = "SUPPLIER"
	RoleCustomer   Role = "CUSTOMER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWholesaler, RoleRetailer, RoleSupplier, RoleCustomer:
		return true
	}
	return false
}

// WholesalePricing reports whether the role buys at the wholesale tier.
func (r Role) WholesalePricing() bool {
	return r == RoleWholesaler || r == RoleAdmin
}

// CanRequestBulk reports whether the role may open bulk purchase requests.
func (r Role) CanRequestBulk() bool {
	return r == RoleRetailer || r == RoleWholesaler || r == RoleAdmin
}

// CanBid reports whether the role may place bids on bulk requests.
func (r Role) CanBid() bool {
	return r == RoleSupplier || r == RoleAdmin
}

// User is a registered account. PasswordHash is bcrypt.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
