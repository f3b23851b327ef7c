package postgres

import (
	"context"

	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

const auditColumns = `id, actor_id, action, resource_type, resource_id, details,
	COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(request_id, ''), timestamp`

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	entry := &models.AuditLog{}
	var details []byte
	if err := row.Scan(
		&entry.ID, &entry.ActorID, &entry.Action, &entry.ResourceType, &entry.ResourceID, &details,
		&entry.IPAddress, &entry.UserAgent, &entry.RequestID, &entry.Timestamp,
	); err != nil {
		return nil, err
	}
	entry.Details = details
	return entry, nil
}

// AuditRepository stores admin actions. It may live on its own database,
// in which case writes never join a main-database transaction.
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Insert appends one entry. Empty request metadata is stored as NULL.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	var details interface{}
	if len(entry.Details) > 0 {
		details = []byte(entry.Details)
	}

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id,
			details, ip_address, user_agent, request_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)`,
		entry.ID, entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID,
		details, entry.IPAddress, entry.UserAgent, entry.RequestID, entry.Timestamp,
	)
	if err != nil {
		return translateError(err, "insert audit log")
	}
	r.logger.Debug("audit entry written",
		zap.String("action", string(entry.Action)),
		zap.String("actor_id", entry.ActorID.String()),
	)
	return nil
}

// List returns one page of entries, newest first, with the total count.
func (r *AuditRepository) List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error) {
	exec := GetExecutor(ctx, r.db)
	page = page.Normalize()

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, translateError(err, "count audit logs")
	}

	rows, err := exec.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs ORDER BY timestamp DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset())
	if err != nil {
		return nil, 0, translateError(err, "list audit logs")
	}
	defer rows.Close()

	entries := make([]*models.AuditLog, 0, page.Limit)
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, translateError(err, "scan audit log")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translateError(err, "iterate audit logs")
	}
	return entries, total, nil
}
