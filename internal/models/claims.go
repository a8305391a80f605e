package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed credential payload. Permissions are a snapshot taken at issuance.
type Claims struct {
	UserID      uuid.UUID `json:"user_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	RoleID      uuid.UUID `json:"role_id"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
	jwt.RegisteredClaims
}

// UserContext is the authenticated caller attached to a request
type UserContext struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	RoleID      uuid.UUID
	Role        string
	Email       string
	Permissions []string
}

// LoginRequest carries tenant-scoped credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   int64       `json:"expires_at"`
	User        UserSummary `json:"user"`
}
