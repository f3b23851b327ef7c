package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/auth"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"github.com/lakshyafoods/storefront/services"
	"github.com/lakshyafoods/storefront/services/audit"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// MinPasswordLength is the shortest password accepted on change
const MinPasswordLength = 6

// UserService handles accounts: sign-up, profile self-service, admin user
// management and linking of external identities
type UserService struct {
	users      repositories.UserRepository
	accounts   repositories.AccountRepository
	audit      *audit.AuditService
	txMgr      repositories.TransactionManager
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(
	users repositories.UserRepository,
	accounts repositories.AccountRepository,
	auditService *audit.AuditService,
	txMgr repositories.TransactionManager,
	bcryptCost int,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:      users,
		accounts:   accounts,
		audit:      auditService,
		txMgr:      txMgr,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// SignUpInput is a credentials registration
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Company  string
}

// SignUp registers a customer with a password
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, services.Validation("Missing required fields")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, services.Validation("Invalid email address")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, services.ErrUserExists
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to check existing user", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(name, email, hash, models.RoleCustomer)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Company = strings.TrimSpace(in.Company)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrUserExists
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetProfile returns the user record for id
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}
	return user, nil
}

// ProfileInput holds the self-service profile fields. An empty Name keeps
// the current name; the other fields are replaced as given.
type ProfileInput struct {
	Name    string
	Phone   string
	Company string
	Address string
	City    string
	Country string
}

// UpdateProfile applies a self-service profile edit
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	user.Phone = strings.TrimSpace(in.Phone)
	user.Company = strings.TrimSpace(in.Company)
	user.Address = strings.TrimSpace(in.Address)
	user.City = strings.TrimSpace(in.City)
	user.Country = strings.TrimSpace(in.Country)

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to update profile", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return services.Validation("Current password and new password are required")
	}
	if len(newPassword) < MinPasswordLength {
		return services.Validation("New password must be at least 6 characters long")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return services.WrapInternal("failed to get user", err)
	}
	if user == nil || !user.HasPassword() {
		return services.Validation("User not found or password not set")
	}

	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return services.ErrIncorrectPassword
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return services.WrapInternal("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return services.WrapInternal("failed to update password", err)
	}

	s.logger.Info("password changed", zap.String("user_id", id.String()))
	return nil
}

// ListUsers returns a filtered page of users, newest first
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, models.Pagination, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, models.Pagination{}, services.Validation("Invalid role filter")
	}
	filter.Page = filter.Page.Normalize()

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, services.WrapInternal("failed to list users", err)
	}
	return users, models.NewPagination(filter.Page, total), nil
}

// ChangeRole sets a user's role. The user's existing sessions keep their
// old role until they sign in again.
func (s *UserService) ChangeRole(ctx context.Context, actor audit.Actor, id uuid.UUID, rawRole string) (*models.User, error) {
	if strings.TrimSpace(rawRole) == "" {
		return nil, services.Validation("Role is required")
	}
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, services.Validation("Invalid role").WithDetail("role", rawRole)
	}

	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.User, error) {
		current, err := s.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}

		updated, err := s.users.UpdateRole(ctx, id, role)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.ErrUserNotFound
			}
			return nil, services.WrapInternal("failed to update role", err)
		}

		if err := s.audit.LogUserRoleChanged(ctx, actor, id, current.Role, role); err != nil {
			return nil, services.WrapInternal("failed to record role change", err)
		}
		return updated, nil
	})
}

// AdminProfileInput holds the fields an admin may edit. Nil fields are
// left unchanged.
type AdminProfileInput struct {
	Name    *string
	Phone   *string
	Company *string
}

// AdminUpdateProfile applies an admin edit to a user's profile
func (s *UserService) AdminUpdateProfile(ctx context.Context, actor audit.Actor, id uuid.UUID, in AdminProfileInput) (*models.User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, services.Validation("Name cannot be empty")
	}

	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.User, error) {
		user, err := s.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}

		changes := make(map[string]interface{})
		apply := func(field string, dst *string, src *string) {
			if src == nil {
				return
			}
			v := strings.TrimSpace(*src)
			if v != *dst {
				changes[field] = v
				*dst = v
			}
		}
		apply("name", &user.Name, in.Name)
		apply("phone", &user.Phone, in.Phone)
		apply("company", &user.Company, in.Company)

		if len(changes) == 0 {
			return user, nil
		}

		if err := s.users.UpdateProfile(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.ErrUserNotFound
			}
			return nil, services.WrapInternal("failed to update profile", err)
		}

		if err := s.audit.LogUserProfileUpdated(ctx, actor, id, changes); err != nil {
			return nil, services.WrapInternal("failed to record profile update", err)
		}
		return user, nil
	})
}

// ResolveExternalIdentity returns the local user for a provider identity.
// A known provider subject signs in its linked user. Otherwise the identity
// is linked to the user with the same verified email, or a new customer is
// created.
func (s *UserService) ResolveExternalIdentity(ctx context.Context, ext *auth.ExternalIdentity) (*models.User, error) {
	account, err := s.accounts.GetByProvider(ctx, ext.Provider, ext.Subject)
	switch {
	case err == nil:
		user, err := s.GetProfile(ctx, account.UserID)
		if err != nil {
			return nil, err
		}
		if !user.IsActive {
			return nil, auth.ErrAccountDisabled
		}
		return user, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to look up linked account", err)
	}

	existing, err := s.users.GetByEmail(ctx, ext.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, services.WrapInternal("failed to look up user by email", err)
	}

	if existing != nil {
		if !ext.EmailVerified {
			return nil, auth.ErrUnverifiedEmail
		}
		if !existing.IsActive {
			return nil, auth.ErrAccountDisabled
		}
		if err := s.accounts.Create(ctx, models.NewAccount(existing.ID, ext.Provider, ext.Subject)); err != nil {
			return nil, services.WrapInternal("failed to link account", err)
		}
		s.logger.Info("linked external account",
			zap.String("user_id", existing.ID.String()),
			zap.String("provider", ext.Provider))
		return existing, nil
	}

	name := strings.TrimSpace(ext.Name)
	if name == "" {
		name = ext.Email
	}
	user := models.NewUser(name, ext.Email, "", models.RoleCustomer)
	user.Image = ext.Picture

	err = services.WithTransaction(ctx, s.txMgr, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.accounts.Create(ctx, models.NewAccount(user.ID, ext.Provider, ext.Subject))
	})
	if err != nil {
		return nil, services.WrapInternal("failed to create user from external identity", err)
	}

	s.logger.Info("user signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", ext.Provider))
	return user, nil
}
