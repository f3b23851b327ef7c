package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

// InquiryRepository implements the repositories.InquiryRepository interface
type InquiryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInquiryRepository creates a new inquiry repository
func NewInquiryRepository(db *DB, logger *zap.Logger) repositories.InquiryRepository {
	return &InquiryRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new inquiry
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	query := `
		INSERT INTO inquiries (id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		inquiry.ID,
		inquiry.Name,
		inquiry.Email,
		inquiry.Message,
		inquiry.Status,
		inquiry.CreatedAt,
	)
	if err != nil {
		return translateError(err, "create inquiry")
	}

	r.logger.Debug("inquiry created", zap.String("id", inquiry.ID.String()))
	return nil
}

// Count returns the number of inquiries created since the given time
func (r *InquiryRepository) Count(ctx context.Context, status models.InquiryStatus, since time.Time) (int, error) {
	var where whereBuilder
	where.add("created_at >= $%[1]d", since)
	if status != "" {
		where.add("status = $%[1]d", status)
	}

	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM inquiries`+where.sql(), where.args...).Scan(&count); err != nil {
		return 0, translateError(err, "count inquiries")
	}
	return count, nil
}

// Recent returns the newest inquiries
func (r *InquiryRepository) Recent(ctx context.Context, n int) ([]*models.Inquiry, error) {
	query := `
		SELECT id, name, email, message, status, created_at
		FROM inquiries
		ORDER BY created_at DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, n)
	if err != nil {
		return nil, translateError(err, "list recent inquiries")
	}
	defer rows.Close()

	var inquiries []*models.Inquiry
	for rows.Next() {
		inquiry := &models.Inquiry{}
		if err := rows.Scan(
			&inquiry.ID,
			&inquiry.Name,
			&inquiry.Email,
			&inquiry.Message,
			&inquiry.Status,
			&inquiry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}
