package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Repositories called with the callback's ctx join the transaction.
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserFilter narrows a user listing
type UserFilter struct {
	Search string // matches name, email or company, case-insensitive
	Role   models.UserRole
	Page   models.PageRequest
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by exact email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves a filtered page of users, newest first, and the total match count
	List(ctx context.Context, filter UserFilter) ([]*models.User, int, error)

	// Count returns the number of users created at or after since (zero time counts all)
	Count(ctx context.Context, since time.Time) (int, error)

	// Recent returns the n most recently created users
	Recent(ctx context.Context, n int) ([]*models.User, error)

	// UpdateProfile updates the self-service profile fields
	UpdateProfile(ctx context.Context, user *models.User) error

	// UpdateRole changes the role and returns the updated record
	UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error)

	// UpdatePassword replaces the password hash
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AccountRepository handles external identity provider links
type AccountRepository interface {
	// GetByProvider retrieves a link by provider and provider subject
	GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error)

	// Create links a provider subject to a user
	Create(ctx context.Context, account *models.Account) error
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Search        string // matches order number, customer name, email or company
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Page          models.PageRequest
}

// OrderRepository handles order data operations
type OrderRepository interface {
	// Create creates an order with its items
	Create(ctx context.Context, order *models.Order) error

	// GetByID retrieves an order with customer and items
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// List retrieves a filtered page of orders, newest first, and the total match count
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, int, error)

	// Count returns the total number of orders
	Count(ctx context.Context) (int, error)

	// UpdateStatus changes the fulfilment status
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error

	// UpdatePaymentStatus changes the payment status
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error
}

// InquiryRepository handles contact inquiry data operations
type InquiryRepository interface {
	// Create stores a new inquiry
	Create(ctx context.Context, inquiry *models.Inquiry) error

	// Count returns the number of inquiries created at or after since,
	// optionally restricted to a status
	Count(ctx context.Context, status models.InquiryStatus, since time.Time) (int, error)

	// Recent returns the n most recent inquiries
	Recent(ctx context.Context, n int) ([]*models.Inquiry, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// List retrieves a page of audit logs, newest first, and the total count
	List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users     UserRepository
	Accounts  AccountRepository
	Orders    OrderRepository
	Inquiries InquiryRepository
	AuditLogs AuditRepository
}
