package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the access level of a user account
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// ParseRole converts a raw string into a UserRole
func ParseRole(s string) (UserRole, bool) {
	r := UserRole(strings.TrimSpace(s))
	return r, r.Valid()
}

// User represents a storefront account. PasswordHash is empty for accounts
// created through an external identity provider.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Image        string    `json:"image,omitempty" db:"image"`
	Role         UserRole  `json:"role" db:"role"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Company      string    `json:"company,omitempty" db:"company"`
	Address      string    `json:"address,omitempty" db:"address"`
	City         string    `json:"city,omitempty" db:"city"`
	Country      string    `json:"country,omitempty" db:"country"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active User instance
func NewUser(name, email, passwordHash string, role UserRole) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword returns true if the account can sign in with credentials
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Account links a user to an external identity provider subject
type Account struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	Provider          string    `json:"provider" db:"provider"`
	ProviderAccountID string    `json:"providerAccountId" db:"provider_account_id"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a provider link for userID
func NewAccount(userID uuid.UUID, provider, providerAccountID string) *Account {
	return &Account{
		ID:                uuid.New(),
		UserID:            userID,
		Provider:          provider,
		ProviderAccountID: providerAccountID,
		CreatedAt:         time.Now().UTC(),
	}
}
