package handlers

import (
	"net/http"

	"github.com/lakshyafoods/storefront/middleware"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/services/users"
	"github.com/lakshyafoods/storefront/utils"
	"go.uber.org/zap"
)

// SignUpRequest is the body of POST /api/auth/signup
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
}

// UpdateProfileRequest is the body of PUT /api/user/profile
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// ChangePasswordRequest is the body of PUT /api/user/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserResponse wraps a single user, optionally with a message
type UserResponse struct {
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user"`
}

// UserHandler serves sign-up and profile self-service
type UserHandler struct {
	users  *users.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *users.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  userService,
		logger: logger,
	}
}

// HandleSignUp handles POST /api/auth/signup
func (h *UserHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.SignUp(r.Context(), users.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Company:  req.Company,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusCreated, UserResponse{
		Message: "User created successfully",
		User:    user,
	})
}

// HandleGetProfile handles GET /api/user/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusOK, UserResponse{User: user})
}

// HandleUpdateProfile handles PUT /api/user/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()), users.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, UserResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}

// HandleChangePassword handles PUT /api/user/change-password
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	err := h.users.ChangePassword(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
