package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/services/audit"
	"go.uber.org/zap"
)

// OrderService handles back-office order management
type OrderService struct {
	orders repositories.OrderRepository
	audit  *audit.AuditService
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewOrderService creates a new OrderService instance
func NewOrderService(
	orders repositories.OrderRepository,
	auditService *audit.AuditService,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders: orders,
		audit:  auditService,
		txMgr:  txMgr,
		logger: logger,
	}
}

// List returns a filtered page of orders with customer and items
func (s *OrderService) List(ctx context.Context, filter repositories.OrderFilter) ([]*models.Order, models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.Pagination{}, services.Validation("Invalid status filter").
			WithDetail("status", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, models.Pagination{}, services.Validation("Invalid payment status filter").
			WithDetail("paymentStatus", filter.PaymentStatus)
	}
	filter.Page = filter.Page.Normalize()

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, services.WrapInternal("failed to list orders", err)
	}
	return orders, models.NewPagination(filter.Page, total), nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrOrderNotFound
		}
		return nil, services.WrapInternal("failed to get order", err)
	}
	return order, nil
}

// Create stores a new order with its items
func (s *OrderService) Create(ctx context.Context, order *models.Order) error {
	if strings.TrimSpace(order.OrderNumber) == "" {
		return services.Validation("Order number is required")
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return services.ErrDuplicateOrderNumber
		}
		return services.WrapInternal("failed to create order", err)
	}
	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber))
	return nil
}

// UpdateStatus changes an order's fulfilment status
func (s *OrderService) UpdateStatus(ctx context.Context, actor audit.Actor, id uuid.UUID, rawStatus string) (*models.Order, error) {
	status := models.OrderStatus(strings.TrimSpace(rawStatus))
	if status == "" {
		return nil, services.Validation("Status is required")
	}
	if !status.Valid() {
		return nil, services.Validation("Invalid status").WithDetail("status", rawStatus)
	}

	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.Order, error) {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.ErrOrderNotFound
			}
			return nil, services.WrapInternal("failed to update order status", err)
		}
		if err := s.audit.LogOrderStatusUpdated(ctx, actor, id, current.Status, status); err != nil {
			return nil, services.WrapInternal("failed to record status change", err)
		}
		return s.Get(ctx, id)
	})
}

// UpdatePayment changes an order's payment status
func (s *OrderService) UpdatePayment(ctx context.Context, actor audit.Actor, id uuid.UUID, rawStatus string) (*models.Order, error) {
	status := models.PaymentStatus(strings.TrimSpace(rawStatus))
	if status == "" {
		return nil, services.Validation("Payment status is required")
	}
	if !status.Valid() {
		return nil, services.Validation("Invalid payment status").WithDetail("paymentStatus", rawStatus)
	}

	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.Order, error) {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.orders.UpdatePaymentStatus(ctx, id, status); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.ErrOrderNotFound
			}
			return nil, services.WrapInternal("failed to update payment status", err)
		}
		if err := s.audit.LogOrderPaymentUpdated(ctx, actor, id, current.PaymentStatus, status); err != nil {
			return nil, services.WrapInternal("failed to record payment change", err)
		}
		return s.Get(ctx, id)
	})
}
