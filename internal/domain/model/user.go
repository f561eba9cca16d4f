package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role grants access to operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether role is known.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User represents a registered storefront account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	Addresses    AddressBook
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the verified caller of an operation.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether identity may act on a resource owned by ownerID.
func (i Identity) CanAccess(ownerID string) bool {
	return i.IsAdmin() || (i.UserID != "" && i.UserID == ownerID)
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role Role
	// Search matches name or email, case-insensitively.
	Search       string
	CreatedSince *time.Time
}

// CustomerDetails is the back-office view of a single customer.
type CustomerDetails struct {
	Customer     User
	RecentOrders []Order
	TotalOrders  int
	TotalSpent   decimal.Decimal
}

// CustomerStatistics summarises the customer base.
type CustomerStatistics struct {
	TotalCustomers int
	// NewCustomers counts customers registered in the last 30 days.
	NewCustomers int
}
