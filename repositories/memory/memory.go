// Package memory provides process-local repository implementations for
// development and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
)

// Store holds every table behind one lock
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*models.User
	accounts  map[string]*models.Account
	orders    map[uuid.UUID]*models.Order
	inquiries []*models.Inquiry
	auditLogs []*models.AuditLog
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*models.User),
		accounts: make(map[string]*models.Account),
		orders:   make(map[uuid.UUID]*models.Order),
	}
}

// NewRepositories returns repositories backed by s
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:     &userRepository{s},
		Accounts:  &accountRepository{s},
		Orders:    &orderRepository{s},
		Inquiries: &inquiryRepository{s},
		AuditLogs: &auditRepository{s},
	}
}

// TransactionManager runs callbacks directly. Writes are not rolled back.
type TransactionManager struct{}

// NewTransactionManager creates a transaction manager for the memory store
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

type transaction struct{ ctx context.Context }

func (t transaction) Commit() error            { return nil }
func (t transaction) Rollback() error          { return nil }
func (t transaction) Context() context.Context { return t.ctx }

// Begin returns a no-op transaction
func (TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return transaction{ctx: ctx}, nil
}

// InTransaction invokes fn with ctx
func (tm TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, transaction{ctx: ctx})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate[T any](items []T, page models.PageRequest) []T {
	page = page.Normalize()
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

// sortedUsers returns all users newest first. Callers hold the lock.
func (r *userRepository) sortedUsers() []*models.User {
	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func (r *userRepository) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.User
	for _, u := range r.sortedUsers() {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !containsFold(u.Name, filter.Search) &&
			!containsFold(u.Email, filter.Search) && !containsFold(u.Company, filter.Search) {
			continue
		}
		matched = append(matched, u)
	}
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *userRepository) Count(ctx context.Context, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Recent(ctx context.Context, n int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.sortedUsers(), models.PageRequest{Page: 1, Limit: n}), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	u.Name, u.Image, u.Phone, u.Company = user.Name, user.Image, user.Phone, user.Company
	u.Address, u.City, u.Country, u.UpdatedAt = user.Address, user.City, user.Country, user.UpdatedAt
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return copyUser(u), nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type accountRepository struct{ s *Store }

func accountKey(provider, providerAccountID string) string {
	return provider + "|" + providerAccountID
}

func (r *accountRepository) GetByProvider(ctx context.Context, provider, providerAccountID string) (*models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[accountKey(provider, providerAccountID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := accountKey(account.Provider, account.ProviderAccountID)
	if _, ok := r.s.accounts[key]; ok {
		return repositories.ErrDuplicate
	}
	c := *account
	r.s.accounts[key] = &c
	return nil
}

type orderRepository struct{ s *Store }

// withCustomer copies o and attaches the customer projection. Callers hold the lock.
func (r *orderRepository) withCustomer(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem{}, o.Items...)
	if u, ok := r.s.users[o.UserID]; ok {
		c.Customer = &models.OrderCustomer{ID: u.ID, Name: u.Name, Email: u.Email, Company: u.Company}
	}
	return &c
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return repositories.ErrDuplicate
		}
	}
	c := *order
	c.Customer = nil
	c.Items = append([]models.OrderItem{}, order.Items...)
	r.s.orders[order.ID] = &c
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.withCustomer(o), nil
}

func (r *orderRepository) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*models.Order
	for _, o := range r.s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		order := r.withCustomer(o)
		if filter.Search != "" {
			hit := containsFold(order.OrderNumber, filter.Search)
			if c := order.Customer; c != nil {
				hit = hit || containsFold(c.Name, filter.Search) ||
					containsFold(c.Email, filter.Search) || containsFold(c.Company, filter.Search)
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page), len(matched), nil
}

func (r *orderRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.orders), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

type inquiryRepository struct{ s *Store }

func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *inquiry
	r.s.inquiries = append(r.s.inquiries, &c)
	return nil
}

func (r *inquiryRepository) Count(ctx context.Context, status models.InquiryStatus, since time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, i := range r.s.inquiries {
		if status != "" && i.Status != status {
			continue
		}
		if !i.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *inquiryRepository) Recent(ctx context.Context, n int) ([]*models.Inquiry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Inquiry, 0, len(r.s.inquiries))
	for _, i := range r.s.inquiries {
		c := *i
		out = append(out, &c)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return paginate(out, models.PageRequest{Page: 1, Limit: n}), nil
}

type auditRepository struct{ s *Store }

func (r *auditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *log
	r.s.auditLogs = append(r.s.auditLogs, &c)
	return nil
}

func (r *auditRepository) List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.AuditLog, 0, len(r.s.auditLogs))
	for i := len(r.s.auditLogs) - 1; i >= 0; i-- {
		c := *r.s.auditLogs[i]
		out = append(out, &c)
	}
	return paginate(out, page), len(out), nil
}
