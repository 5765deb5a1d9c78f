package payload

import (
	"github.com/citadell/task-manager-api/services/auth-service/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar"   validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Avatar         string     `json:"avatar,omitempty"`
	Role           model.Role `json:"role"`
	EmailConfirmed bool       `json:"isEmailConfirmed"`
}

// NewUserResponse maps a user model onto its public representation.
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID.Hex(),
		Email:          user.Email,
		Name:           user.Name,
		Avatar:         user.AvatarURL,
		Role:           user.Role,
		EmailConfirmed: user.EmailConfirmed,
	}
}
