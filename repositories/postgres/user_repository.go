package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

const userColumns = `id, name, email, COALESCE(password_hash, ''), COALESCE(image, ''), role,
	COALESCE(phone, ''), COALESCE(company, ''), COALESCE(address, ''), COALESCE(city, ''),
	COALESCE(country, ''), is_active, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&user.Role,
		&user.Phone,
		&user.Company,
		&user.Address,
		&user.City,
		&user.Country,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, image, role, phone, company,
			address, city, country, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Image,
		user.Role,
		user.Phone,
		user.Company,
		user.Address,
		user.City,
		user.Country,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "create user")
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, translateError(err, "get user by email")
	}
	return user, nil
}

// List retrieves a filtered page of users
func (r *UserRepository) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int, error) {
	var where whereBuilder
	if filter.Search != "" {
		where.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR company ILIKE $%[1]d)", containsPattern(filter.Search))
	}
	if filter.Role != "" {
		where.add("role = $%[1]d", filter.Role)
	}

	executor := GetExecutor(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + where.sql()
	if err := executor.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count users")
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where.sql(), where.next(), where.next()+1)
	args := append(where.args, page.Limit, page.Offset())

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translateError(err, "list users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// Count returns the number of users created since the given time
func (r *UserRepository) Count(ctx context.Context, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE created_at >= $1`

	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, translateError(err, "count users")
	}
	return count, nil
}

// Recent returns the newest users
func (r *UserRepository) Recent(ctx context.Context, n int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, n)
	if err != nil {
		return nil, translateError(err, "list recent users")
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile updates the profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, image = NULLIF($3, ''), phone = NULLIF($4, ''), company = NULLIF($5, ''),
			address = NULLIF($6, ''), city = NULLIF($7, ''), country = NULLIF($8, ''), updated_at = $9
		WHERE id = $1
	`

	user.UpdatedAt = time.Now().UTC()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Image,
		user.Phone,
		user.Company,
		user.Address,
		user.City,
		user.Country,
		user.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "update user profile")
	}
	if err := requireAffected(result, "update user profile"); err != nil {
		return err
	}

	r.logger.Debug("user profile updated", zap.String("id", user.ID.String()))
	return nil
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	query := `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1 RETURNING ` + userColumns

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, id, role, time.Now().UTC()))
	if err != nil {
		return nil, translateError(err, "update user role")
	}

	r.logger.Debug("user role updated", zap.String("id", id.String()), zap.String("role", string(role)))
	return user, nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, passwordHash, time.Now().UTC())
	if err != nil {
		return translateError(err, "update user password")
	}
	return requireAffected(result, "update user password")
}
