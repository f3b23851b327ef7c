package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Identity is a verified user, the input to session issuance
type Identity struct {
	ID    uuid.UUID
	Email string
	Name  string
	Image string
	Role  models.UserRole
}

// IdentityFromUser projects a user record onto an Identity
func IdentityFromUser(u *models.User) Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
		Role:  u.Role,
	}
}

// UserLookup finds users by email
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialVerifier checks email/password pairs against stored bcrypt hashes
type CredentialVerifier struct {
	users  UserLookup
	logger *zap.Logger
}

// NewCredentialVerifier creates a verifier over users
func NewCredentialVerifier(users UserLookup, logger *zap.Logger) *CredentialVerifier {
	return &CredentialVerifier{users: users, logger: logger}
}

// Verify returns the identity for a matching email and password. A nil
// identity with a nil error means no match: empty input, unknown email,
// an account without a password, an inactive account or a wrong password.
// Only lookup failures return an error.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*Identity, error) {
	if email == "" || password == "" {
		return nil, nil
	}

	user, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	if !user.HasPassword() || !user.IsActive {
		v.logger.Debug("credentials rejected for account state",
			zap.String("user_id", user.ID.String()),
			zap.Bool("has_password", user.HasPassword()),
			zap.Bool("active", user.IsActive))
		return nil, nil
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}

	identity := IdentityFromUser(user)
	return &identity, nil
}

// HashPassword hashes a password with bcrypt at the given cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
