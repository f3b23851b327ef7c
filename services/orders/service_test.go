package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/repositories/memory"
	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	service  *OrderService
	repos    *repositories.Repositories
	customer *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().NewRepositories()
	logger := zap.NewNop()

	customer := models.NewUser("Ravi Kumar", "ravi@example.com", "", models.RoleCustomer)
	customer.Company = "Kumar Exports"
	require.NoError(t, repos.Users.Create(context.Background(), customer))

	return &fixture{
		service:  NewOrderService(repos.Orders, audit.NewAuditService(repos.AuditLogs, logger), memory.NewTransactionManager(), logger),
		repos:    repos,
		customer: customer,
	}
}

func (f *fixture) addOrder(t *testing.T, number string) *models.Order {
	t.Helper()
	order := models.NewOrder(f.customer.ID, number, "INR", []models.OrderItem{
		{Quantity: 4, UnitPrice: 120, Product: models.OrderProduct{ID: "cumin", Name: "Cumin Seeds", Category: "Spices"}},
	})
	require.NoError(t, f.repos.Orders.Create(context.Background(), order))
	return order
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.addOrder(t, fmt.Sprintf("ORD-%03d", i))
	}

	t.Run("includes customer projection", func(t *testing.T) {
		orders, pagination, err := f.service.List(ctx, repositories.OrderFilter{})
		require.NoError(t, err)

		assert.Len(t, orders, 3)
		assert.Equal(t, 3, pagination.Total)
		assert.Equal(t, 1, pagination.TotalPages)
		require.NotNil(t, orders[0].Customer)
		assert.Equal(t, "Kumar Exports", orders[0].Customer.Company)
	})

	t.Run("search by customer", func(t *testing.T) {
		orders, _, err := f.service.List(ctx, repositories.OrderFilter{Search: "kumar"})
		require.NoError(t, err)
		assert.Len(t, orders, 3)

		orders, _, err = f.service.List(ctx, repositories.OrderFilter{Search: "ORD-001"})
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("invalid filters", func(t *testing.T) {
		_, _, err := f.service.List(ctx, repositories.OrderFilter{Status: "lost"})
		assert.True(t, services.IsValidationError(err))

		_, _, err = f.service.List(ctx, repositories.OrderFilter{PaymentStatus: "maybe"})
		assert.True(t, services.IsValidationError(err))
	})
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order := models.NewOrder(f.customer.ID, "ORD-900", "INR", nil)
	require.NoError(t, f.service.Create(ctx, order))

	dup := models.NewOrder(f.customer.ID, "ORD-900", "INR", nil)
	err := f.service.Create(ctx, dup)
	assert.True(t, services.IsConflictError(err))

	err = f.service.Create(ctx, models.NewOrder(f.customer.ID, " ", "INR", nil))
	assert.True(t, services.IsValidationError(err))
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	actor := audit.Actor{UserID: uuid.New(), RequestID: "req-7"}

	t.Run("updates and records audit", func(t *testing.T) {
		f := newFixture(t)
		order := f.addOrder(t, "ORD-100")

		updated, err := f.service.UpdateStatus(ctx, actor, order.ID, "shipped")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, updated.Status)
		assert.Equal(t, models.PaymentStatusPending, updated.PaymentStatus)

		logs, total, err := f.repos.AuditLogs.List(ctx, models.PageRequest{})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, models.AuditActionOrderStatusUpdated, logs[0].Action)
		assert.JSONEq(t, `{"from":"pending","to":"shipped"}`, string(logs[0].Details))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newFixture(t)
		order := f.addOrder(t, "ORD-101")

		_, err := f.service.UpdateStatus(ctx, actor, order.ID, "teleported")
		assert.True(t, services.IsValidationError(err))

		_, err = f.service.UpdateStatus(ctx, actor, order.ID, "")
		assert.Equal(t, "Status is required", services.GetErrorMessage(err))
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.UpdateStatus(ctx, actor, uuid.New(), "shipped")
		assert.True(t, services.IsNotFoundError(err))
		assert.Equal(t, "Order not found", services.GetErrorMessage(err))
	})
}

func TestOrderService_UpdatePayment(t *testing.T) {
	ctx := context.Background()
	actor := audit.Actor{UserID: uuid.New()}
	f := newFixture(t)
	order := f.addOrder(t, "ORD-200")

	updated, err := f.service.UpdatePayment(ctx, actor, order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)

	_, err = f.service.UpdatePayment(ctx, actor, order.ID, "bartered")
	assert.True(t, services.IsValidationError(err))

	logs, _, err := f.repos.AuditLogs.List(ctx, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionOrderPaymentUpdated, logs[0].Action)
}
