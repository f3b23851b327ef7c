package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSessionReader is a mock implementation of SessionReader
type MockSessionReader struct {
	mock.Mock
}

func (m *MockSessionReader) Read(r *http.Request) (auth.Principal, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Principal), args.Error(1)
}

func customer() auth.Authenticated {
	return auth.Authenticated{ID: uuid.New(), Email: "asha@example.com", Name: "Asha", Role: models.RoleCustomer}
}

func admin() auth.Authenticated {
	return auth.Authenticated{ID: uuid.New(), Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("authenticated principal reaches handler with context", func(t *testing.T) {
		reader := new(MockSessionReader)
		p := customer()
		reader.On("Read", mock.Anything).Return(p, nil)
		m := NewAuthMiddleware(reader, logger)

		handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := auth.PrincipalFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, p, got)
			assert.Equal(t, p.ID, GetUserIDFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/profile", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		reader.AssertExpectations(t)
	})

	t.Run("anonymous returns 401 and handler is not invoked", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("Read", mock.Anything).Return(auth.Anonymous{}, nil)
		m := NewAuthMiddleware(reader, logger)

		handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("reader failure returns 500", func(t *testing.T) {
		reader := new(MockSessionReader)
		reader.On("Read", mock.Anything).Return(nil, auth.ErrSigningKeyUnavailable)
		m := NewAuthMiddleware(reader, logger)

		handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/profile", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("real session manager with tampered cookie is anonymous", func(t *testing.T) {
		sessions := auth.NewSessionManager("test-secret", 0, "session")
		m := NewAuthMiddleware(sessions, logger)

		handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "not-a-token"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		principal  auth.Principal
		readErr    error
		wantStatus int
		wantCalled bool
	}{
		{name: "admin allowed", principal: admin(), wantStatus: http.StatusOK, wantCalled: true},
		{name: "customer forbidden", principal: customer(), wantStatus: http.StatusForbidden},
		{name: "anonymous unauthorized", principal: auth.Anonymous{}, wantStatus: http.StatusUnauthorized},
		{name: "reader failure", readErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(MockSessionReader)
			reader.On("Read", mock.Anything).Return(tt.principal, tt.readErr)
			m := NewAuthMiddleware(reader, logger)

			called := false
			handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				p, ok := auth.PrincipalFromContext(r.Context())
				assert.True(t, ok)
				assert.True(t, p.IsAdmin())
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestGetRequestMetadata(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/admin/users", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	req.Header.Set("User-Agent", "admin-console")
	req = req.WithContext(WithRequestID(req.Context(), "req-1"))

	meta := GetRequestMetadata(req)

	assert.Equal(t, "req-1", meta.RequestID)
	assert.Equal(t, "203.0.113.7", meta.IPAddress)
	assert.Equal(t, "admin-console", meta.UserAgent)
}
