package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/repositories/memory"
	"github.com/lakshyafoods/storefront/services/audit"
	"github.com/lakshyafoods/storefront/services/dashboard"
	"github.com/lakshyafoods/storefront/services/inquiries"
	"github.com/lakshyafoods/storefront/services/orders"
	"github.com/lakshyafoods/storefront/services/users"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testEnv wires every handler over one in-memory store
type testEnv struct {
	repos   *repositories.Repositories
	users   *users.UserService
	user    *UserHandler
	admin   *AdminHandler
	contact *ContactHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	repos := memory.NewStore().NewRepositories()
	txMgr := memory.NewTransactionManager()

	auditService := audit.NewAuditService(repos.AuditLogs, logger)
	userService := users.NewUserService(repos.Users, repos.Accounts, auditService, txMgr, bcrypt.MinCost, logger)
	orderService := orders.NewOrderService(repos.Orders, auditService, txMgr, logger)
	dashboardService := dashboard.NewDashboardService(repos.Users, repos.Orders, repos.Inquiries, logger)

	return &testEnv{
		repos:   repos,
		users:   userService,
		user:    NewUserHandler(userService, logger),
		admin:   NewAdminHandler(userService, orderService, dashboardService, auditService, logger),
		contact: NewContactHandler(inquiries.NewInquiryService(repos.Inquiries, logger), logger),
	}
}

func (e *testEnv) signUp(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := e.users.SignUp(context.Background(), users.SignUpInput{Name: name, Email: email, Password: "secret123"})
	require.NoError(t, err)
	return user
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asPrincipal(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), auth.Authenticated{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}
