package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/internal/observability"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

// Actor identifies the admin performing a back-office action
type Actor struct {
	UserID    uuid.UUID
	RequestID string
	IPAddress string
	UserAgent string
}

// AuditService records admin actions. Entries are written synchronously with
// the caller's context so they commit or roll back with the action they
// describe.
type AuditService struct {
	auditRepo repositories.AuditRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record inserts an audit entry
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) error {
	if err := s.auditRepo.Insert(ctx, log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	observability.RecordAdminAction(string(log.Action))
	s.logger.Info("admin action",
		zap.String("action", string(log.Action)),
		zap.String("actor_id", log.ActorID.String()),
		zap.String("resource_type", log.ResourceType),
		zap.String("request_id", log.RequestID))
	return nil
}

func (s *AuditService) newEntry(actor Actor, action models.AuditAction, resourceType string, resourceID uuid.UUID) *models.AuditLog {
	return models.NewAuditLog(actor.UserID, action, resourceType).
		WithResource(resourceID).
		WithRequest(actor.RequestID, actor.IPAddress, actor.UserAgent)
}

// LogUserRoleChanged records a role change
func (s *AuditService) LogUserRoleChanged(ctx context.Context, actor Actor, userID uuid.UUID, from, to models.UserRole) error {
	log := s.newEntry(actor, models.AuditActionUserRoleChanged, "user", userID).
		WithDetails(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	return s.Record(ctx, log)
}

// LogUserProfileUpdated records an admin edit of a user's profile
func (s *AuditService) LogUserProfileUpdated(ctx context.Context, actor Actor, userID uuid.UUID, changes map[string]interface{}) error {
	log := s.newEntry(actor, models.AuditActionUserProfileUpdated, "user", userID).
		WithDetails(map[string]interface{}{"changes": changes})
	return s.Record(ctx, log)
}

// LogOrderStatusUpdated records a fulfilment status change
func (s *AuditService) LogOrderStatusUpdated(ctx context.Context, actor Actor, orderID uuid.UUID, from, to models.OrderStatus) error {
	log := s.newEntry(actor, models.AuditActionOrderStatusUpdated, "order", orderID).
		WithDetails(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	return s.Record(ctx, log)
}

// LogOrderPaymentUpdated records a payment status change
func (s *AuditService) LogOrderPaymentUpdated(ctx context.Context, actor Actor, orderID uuid.UUID, from, to models.PaymentStatus) error {
	log := s.newEntry(actor, models.AuditActionOrderPaymentUpdated, "order", orderID).
		WithDetails(map[string]interface{}{
			"from": from,
			"to":   to,
		})
	return s.Record(ctx, log)
}

// List returns a page of audit entries, newest first
func (s *AuditService) List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, models.Pagination, error) {
	page = page.Normalize()
	logs, total, err := s.auditRepo.List(ctx, page)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, models.NewPagination(page, total), nil
}
