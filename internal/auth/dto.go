package auth

import (
	"github.com/angelmondragon/pos-backend/internal/users"
	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RegisterRequest is the self-service signup payload. Role is honoured only
// when admin signup is enabled.
type RegisterRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=64,username"`
	Password string          `json:"password" validate:"required,min=8,max=128"`
	Role     *enums.UserRole `json:"role,omitempty"`
}

// CreateUserRequest is the admin-only account creation payload. A blank
// password makes the service generate a temporary one.
type CreateUserRequest struct {
	Username string         `json:"username" validate:"required,min=3,max=64,username"`
	Password string         `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Role     enums.UserRole `json:"role" validate:"required,oneof=admin cashier"`
}

// CreateUserResponse echoes the generated password exactly once.
type CreateUserResponse struct {
	User              *users.UserDTO `json:"user"`
	TemporaryPassword string         `json:"temporary_password,omitempty"`
}
