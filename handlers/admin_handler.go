package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/services/audit"
	"github.com/lakshyafoods/storefront/services/dashboard"
	"github.com/lakshyafoods/storefront/services/orders"
	"github.com/lakshyafoods/storefront/services/users"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// Admin actions accepted by the PUT endpoints
const (
	ActionChangeRole    = "changeRole"
	ActionUpdateProfile = "updateProfile"
	ActionUpdateStatus  = "updateStatus"
	ActionUpdatePayment = "updatePayment"
)

// AdminActionRequest is the body of PUT /api/admin/users and /api/admin/orders.
// UserID and OrderID are accepted in place of ID.
type AdminActionRequest struct {
	ID      string          `json:"id"`
	UserID  string          `json:"userId"`
	OrderID string          `json:"orderId"`
	Action  string          `json:"action"`
	Data    json.RawMessage `json:"data"`
}

func (r AdminActionRequest) target() string {
	for _, id := range []string{r.ID, r.UserID, r.OrderID} {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

type changeRoleData struct {
	Role string `json:"role"`
}

type updateProfileData struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

type updateStatusData struct {
	Status string `json:"status"`
}

type updatePaymentData struct {
	PaymentStatus string `json:"paymentStatus"`
}

// UserListResponse is the body of GET /api/admin/users
type UserListResponse struct {
	Users      []*models.User    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

// OrderListResponse is the body of GET /api/admin/orders
type OrderListResponse struct {
	Orders     []*models.Order   `json:"orders"`
	Pagination models.Pagination `json:"pagination"`
}

// OrderResponse wraps a single order with a message
type OrderResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

// AuditListResponse is the body of GET /api/admin/audit
type AuditListResponse struct {
	Logs       []*models.AuditLog `json:"logs"`
	Pagination models.Pagination  `json:"pagination"`
}

// AdminHandler serves the back-office API. Every route is mounted behind
// RequireAdmin.
type AdminHandler struct {
	users     *users.UserService
	orders    *orders.OrderService
	dashboard *dashboard.DashboardService
	audit     *audit.AuditService
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userService *users.UserService,
	orderService *orders.OrderService,
	dashboardService *dashboard.DashboardService,
	auditService *audit.AuditService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:     userService,
		orders:    orderService,
		dashboard: dashboardService,
		audit:     auditService,
		logger:    logger,
	}
}

// HandleListUsers handles GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := q.Get("role")
	if role == "all" {
		role = ""
	}

	list, pagination, err := h.users.ListUsers(r.Context(), repositories.UserFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Role:   models.UserRole(role),
		Page:   pageFromQuery(r),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.User{}
	}

	_ = utils.WriteJSON(w, http.StatusOK, UserListResponse{Users: list, Pagination: pagination})
}

// HandleUpdateUser handles PUT /api/admin/users
func (h *AdminHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeAction(w, r, "User ID and action are required")
	if !ok {
		return
	}

	actor := actorFromRequest(r)
	var (
		user *models.User
		err  error
	)
	switch req.Action {
	case ActionChangeRole:
		var data changeRoleData
		if !h.decodeData(w, req.Data, &data) {
			return
		}
		user, err = h.users.ChangeRole(r.Context(), actor, id, data.Role)

	case ActionUpdateProfile:
		var data updateProfileData
		if !h.decodeData(w, req.Data, &data) {
			return
		}
		user, err = h.users.AdminUpdateProfile(r.Context(), actor, id, users.AdminProfileInput{
			Name:    data.Name,
			Phone:   data.Phone,
			Company: data.Company,
		})

	default:
		HandleServiceError(w, services.ErrInvalidAction, h.logger)
		return
	}

	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, UserResponse{
		Message: "User updated successfully",
		User:    user,
	})
}

// HandleListOrders handles GET /api/admin/orders
func (h *AdminHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, paymentStatus := q.Get("status"), q.Get("paymentStatus")
	if status == "all" {
		status = ""
	}
	if paymentStatus == "all" {
		paymentStatus = ""
	}

	list, pagination, err := h.orders.List(r.Context(), repositories.OrderFilter{
		Search:        strings.TrimSpace(q.Get("search")),
		Status:        models.OrderStatus(status),
		PaymentStatus: models.PaymentStatus(paymentStatus),
		Page:          pageFromQuery(r),
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Order{}
	}

	_ = utils.WriteJSON(w, http.StatusOK, OrderListResponse{Orders: list, Pagination: pagination})
}

// HandleUpdateOrder handles PUT /api/admin/orders
func (h *AdminHandler) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, req, ok := h.decodeAction(w, r, "Order ID and action are required")
	if !ok {
		return
	}

	actor := actorFromRequest(r)
	var (
		order *models.Order
		err   error
	)
	switch req.Action {
	case ActionUpdateStatus:
		var data updateStatusData
		if !h.decodeData(w, req.Data, &data) {
			return
		}
		order, err = h.orders.UpdateStatus(r.Context(), actor, id, data.Status)

	case ActionUpdatePayment:
		var data updatePaymentData
		if !h.decodeData(w, req.Data, &data) {
			return
		}
		order, err = h.orders.UpdatePayment(r.Context(), actor, id, data.PaymentStatus)

	default:
		HandleServiceError(w, services.ErrInvalidAction, h.logger)
		return
	}

	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, OrderResponse{
		Message: "Order updated successfully",
		Order:   order,
	})
}

// HandleDashboard handles GET /api/admin/dashboard
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, summary)
}

// HandleListAudit handles GET /api/admin/audit
func (h *AdminHandler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	logs, pagination, err := h.audit.List(r.Context(), pageFromQuery(r))
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	_ = utils.WriteJSON(w, http.StatusOK, AuditListResponse{Logs: logs, Pagination: pagination})
}

// decodeAction reads an admin PUT body and its target ID. On failure the
// response has been written.
func (h *AdminHandler) decodeAction(w http.ResponseWriter, r *http.Request, missing string) (uuid.UUID, AdminActionRequest, bool) {
	var req AdminActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return uuid.Nil, req, false
	}

	target := req.target()
	if target == "" || strings.TrimSpace(req.Action) == "" {
		_ = utils.WriteBadRequest(w, missing, nil)
		return uuid.Nil, req, false
	}

	id, err := uuid.Parse(target)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid ID format", map[string]interface{}{"id": target})
		return uuid.Nil, req, false
	}
	return id, req, true
}

func (h *AdminHandler) decodeData(w http.ResponseWriter, raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid action data", nil)
		return false
	}
	return true
}
