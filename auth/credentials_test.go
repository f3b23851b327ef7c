package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestCredentialVerifier(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("matching password returns identity", func(t *testing.T) {
		user := models.NewUser("Asha Rao", "asha@example.com", hashed(t, "secret123"), models.RoleAdmin)
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "asha@example.com").Return(user, nil)

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "asha@example.com", "secret123")

		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, user.ID, identity.ID)
		assert.Equal(t, models.RoleAdmin, identity.Role)
		assert.Equal(t, "Asha Rao", identity.Name)
	})

	t.Run("wrong password is no match", func(t *testing.T) {
		user := models.NewUser("Asha Rao", "asha@example.com", hashed(t, "secret123"), models.RoleCustomer)
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "asha@example.com").Return(user, nil)

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "asha@example.com", "wrong")

		assert.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("unknown email is no match", func(t *testing.T) {
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, errors.Join(errors.New("get user by email"), repositories.ErrNotFound))

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "ghost@example.com", "secret123")

		assert.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("account without password is no match", func(t *testing.T) {
		user := models.NewUser("Google User", "g@example.com", "", models.RoleCustomer)
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "g@example.com").Return(user, nil)

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "g@example.com", "anything")

		assert.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("inactive account is no match", func(t *testing.T) {
		user := models.NewUser("Asha Rao", "asha@example.com", hashed(t, "secret123"), models.RoleCustomer)
		user.IsActive = false
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "asha@example.com").Return(user, nil)

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "asha@example.com", "secret123")

		assert.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("empty input skips lookup", func(t *testing.T) {
		users := new(mockUserLookup)
		verifier := NewCredentialVerifier(users, logger)

		for _, in := range [][2]string{{"", "secret123"}, {"asha@example.com", ""}, {"", ""}} {
			identity, err := verifier.Verify(ctx, in[0], in[1])
			assert.NoError(t, err)
			assert.Nil(t, identity)
		}
		users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is an error", func(t *testing.T) {
		users := new(mockUserLookup)
		users.On("GetByEmail", mock.Anything, "asha@example.com").Return(nil, errors.New("connection refused"))

		identity, err := NewCredentialVerifier(users, logger).Verify(ctx, "asha@example.com", "secret123")

		assert.Error(t, err)
		assert.Nil(t, identity)
	})
}

func TestHashPassword(t *testing.T) {
	hash := hashed(t, "secret123")

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword("not-a-hash", "secret123"))
}
