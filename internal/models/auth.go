package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RegisterRequest creates a new pending account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	IP       string `json:"-"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AssignRoleRequest redeems a one-time onboarding code.
type AssignRoleRequest struct {
	Code string `json:"code" validate:"required"`
}

// AssignRoleResponse carries the granted role. AccessToken is empty for
// admins, who must authenticate again after the grant.
type AssignRoleResponse struct {
	Role        UserRole `json:"role"`
	AccessToken string   `json:"access_token,omitempty"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID     string          `json:"id"`
	Email  string          `json:"email"`
	Role   UserRole        `json:"role"`
	Status LifecycleStatus `json:"status"`
}

// JWTClaims represents the JWT payload for access tokens. The token is
// self-describing: role and lifecycle status travel with it so clients can
// route without an extra round trip.
type JWTClaims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   UserRole        `json:"role"`
	Status LifecycleStatus `json:"status"`
	jwt.RegisteredClaims
}
