package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/services/dashboard"
	"github.com/lakshyafoods/storefront/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleListUsers(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		env.signUp(t, fmt.Sprintf("Customer %d", i), fmt.Sprintf("c%02d@example.com", i))
	}

	t.Run("second page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users?page=2&limit=10", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body UserListResponse
		decodeBody(t, rec, &body)
		assert.Len(t, body.Users, 5)
		assert.Equal(t, models.Pagination{Page: 2, Limit: 10, Total: 15, TotalPages: 2, HasNext: false, HasPrev: true}, body.Pagination)
	})

	t.Run("defaults and role all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users?role=all&page=abc", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body UserListResponse
		decodeBody(t, rec, &body)
		assert.Len(t, body.Users, 10)
		assert.Equal(t, 1, body.Pagination.Page)
	})

	t.Run("role filter with no matches returns an empty array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users?role=admin", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"users":[]`)
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users?role=owner", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListEndpointsWithHugePage(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "Asha", "asha@example.com")
	const query = "?page=922337203685477582&limit=10"

	tests := []struct {
		name   string
		path   string
		handle http.HandlerFunc
	}{
		{name: "users", path: "/api/admin/users", handle: env.admin.HandleListUsers},
		{name: "orders", path: "/api/admin/orders", handle: env.admin.HandleListOrders},
		{name: "audit", path: "/api/admin/audit", handle: env.admin.HandleListAudit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NotPanics(t, func() {
				tt.handle(rec, httptest.NewRequest(http.MethodGet, tt.path+query, nil))
			})

			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Pagination models.Pagination `json:"pagination"`
			}
			decodeBody(t, rec, &body)
			assert.Equal(t, models.MaxPage, body.Pagination.Page)
			assert.False(t, body.Pagination.HasNext)
			assert.Contains(t, rec.Body.String(), "[]")
		})
	}
}

func TestHandleUpdateUser(t *testing.T) {
	t.Run("changeRole promotes and is audited", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.signUp(t, "Admin", "admin@example.com")
		target := env.signUp(t, "Asha", "asha@example.com")

		req := asPrincipal(jsonRequest(t, http.MethodPut, "/api/admin/users", map[string]interface{}{
			"userId": target.ID.String(),
			"action": ActionChangeRole,
			"data":   map[string]string{"role": "admin"},
		}), admin)
		rec := httptest.NewRecorder()

		env.admin.HandleUpdateUser(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body UserResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "User updated successfully", body.Message)
		assert.Equal(t, models.RoleAdmin, body.User.Role)

		logs, _, err := env.repos.AuditLogs.List(context.Background(), models.PageRequest{})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, admin.ID, logs[0].ActorID)
	})

	t.Run("updateProfile", func(t *testing.T) {
		env := newTestEnv(t)
		target := env.signUp(t, "Asha", "asha@example.com")

		rec := httptest.NewRecorder()
		env.admin.HandleUpdateUser(rec, jsonRequest(t, http.MethodPut, "/api/admin/users", map[string]interface{}{
			"id":     target.ID.String(),
			"action": ActionUpdateProfile,
			"data":   map[string]string{"company": "Rao Spices"},
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		var body UserResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "Rao Spices", body.User.Company)
		assert.Equal(t, "Asha", body.User.Name)
	})

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "missing id",
			body:           map[string]interface{}{"action": ActionChangeRole},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "User ID and action are required",
		},
		{
			name:           "missing action",
			body:           map[string]interface{}{"userId": uuid.NewString()},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "User ID and action are required",
		},
		{
			name:           "malformed id",
			body:           map[string]interface{}{"userId": "42", "action": ActionChangeRole},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid ID format",
		},
		{
			name:           "unknown action",
			body:           map[string]interface{}{"userId": uuid.NewString(), "action": "delete"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid action",
		},
		{
			name:           "missing role",
			body:           map[string]interface{}{"userId": uuid.NewString(), "action": ActionChangeRole, "data": map[string]string{}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Role is required",
		},
		{
			name:           "invalid role",
			body:           map[string]interface{}{"userId": uuid.NewString(), "action": ActionChangeRole, "data": map[string]string{"role": "root"}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid role",
		},
		{
			name:           "unknown user",
			body:           map[string]interface{}{"userId": uuid.NewString(), "action": ActionChangeRole, "data": map[string]string{"role": "admin"}},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "User not found",
		},
		{
			name:           "data of the wrong shape",
			body:           map[string]interface{}{"userId": uuid.NewString(), "action": ActionChangeRole, "data": []int{1}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid action data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := httptest.NewRecorder()

			env.admin.HandleUpdateUser(rec, jsonRequest(t, http.MethodPut, "/api/admin/users", tt.body))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body utils.ErrorResponse
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.expectedMsg, body.Message)
		})
	}
}

func TestHandleOrders(t *testing.T) {
	env := newTestEnv(t)
	customer := env.signUp(t, "Ravi", "ravi@example.com")
	order := models.NewOrder(customer.ID, "ORD-1", "INR", []models.OrderItem{
		{Quantity: 1, UnitPrice: 99, Product: models.OrderProduct{ID: "saffron", Name: "Saffron", Category: "Spices"}},
	})
	require.NoError(t, env.repos.Orders.Create(context.Background(), order))

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=all&search=ravi", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body OrderListResponse
		decodeBody(t, rec, &body)
		require.Len(t, body.Orders, 1)
		assert.Equal(t, "ORD-1", body.Orders[0].OrderNumber)
		require.NotNil(t, body.Orders[0].Customer)
		assert.Equal(t, "Ravi", body.Orders[0].Customer.Name)
		assert.Len(t, body.Orders[0].Items, 1)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleListOrders(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=lost", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("updateStatus", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleUpdateOrder(rec, jsonRequest(t, http.MethodPut, "/api/admin/orders", map[string]interface{}{
			"orderId": order.ID.String(),
			"action":  ActionUpdateStatus,
			"data":    map[string]string{"status": "confirmed"},
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		var body OrderResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "Order updated successfully", body.Message)
		assert.Equal(t, models.OrderStatusConfirmed, body.Order.Status)
	})

	t.Run("updatePayment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleUpdateOrder(rec, jsonRequest(t, http.MethodPut, "/api/admin/orders", map[string]interface{}{
			"orderId": order.ID.String(),
			"action":  ActionUpdatePayment,
			"data":    map[string]string{"paymentStatus": "paid"},
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		var body OrderResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, models.PaymentStatusPaid, body.Order.PaymentStatus)
	})

	t.Run("missing order", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleUpdateOrder(rec, jsonRequest(t, http.MethodPut, "/api/admin/orders", map[string]interface{}{
			"orderId": uuid.NewString(),
			"action":  ActionUpdateStatus,
			"data":    map[string]string{"status": "confirmed"},
		}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing action", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.admin.HandleUpdateOrder(rec, jsonRequest(t, http.MethodPut, "/api/admin/orders", map[string]interface{}{
			"orderId": order.ID.String(),
		}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body utils.ErrorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "Order ID and action are required", body.Message)
	})
}

func TestHandleDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "Asha", "asha@example.com")

	rec := httptest.NewRecorder()
	env.admin.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body dashboard.Summary
	decodeBody(t, rec, &body)
	assert.Equal(t, 1, body.Stats.TotalUsers)
	assert.Equal(t, 1, body.Stats.NewUsersThisMonth)
	assert.Equal(t, 100, body.Stats.UserGrowth)
	assert.Equal(t, 0, body.Stats.InquiryGrowth)
	require.Len(t, body.RecentActivity.Users, 1)
	assert.Equal(t, "Asha", body.RecentActivity.Users[0].Name)
}

func TestHandleListAudit(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.admin.HandleListAudit(rec, httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"logs":[]`)

	var body AuditListResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 0, body.Pagination.Total)
}
