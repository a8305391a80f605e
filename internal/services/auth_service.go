package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AuthService authenticates tenant users and issues credentials
type AuthService struct {
	users  *repository.UserRepository
	roles  *repository.RoleRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
	audit  *AuditService
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, audit *AuditService) *AuthService {
	return &AuthService{
		users:  repository.NewUserRepository(db),
		roles:  repository.NewRoleRepository(db),
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
	}
}

// Authenticate verifies email and password against the tenant's users and returns a
// signed credential. Unknown email and wrong password fail identically.
func (s *AuthService) Authenticate(ctx context.Context, tenantID uuid.UUID, email, password string) (*models.TokenResponse, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	resp, userID, err := s.authenticate(ctx, tenantID, email, password)

	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, ErrUserInactive):
		outcome = "inactive"
	default:
		outcome = "error"
	}
	metrics.LoginAttempts.WithLabelValues(outcome).Inc()

	auditCtx := ctx
	if userID != uuid.Nil {
		auditCtx = WithActorUser(ctx, userID)
	}
	s.audit.Record(auditCtx, tenantID, models.AuditActionLogin, "user", email, err)

	if err != nil {
		log.Warn().Err(err).
			Str("tenant_id", tenantID.String()).
			Str("outcome", outcome).
			Msg("Login failed")
		return nil, err
	}
	return resp, nil
}

func (s *AuthService) authenticate(ctx context.Context, tenantID uuid.UUID, email, password string) (*models.TokenResponse, uuid.UUID, error) {
	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hasher.CompareDummy(password)
		return nil, uuid.Nil, &Error{Kind: ErrInvalidCredentials, Message: "invalid credentials", Cause: ErrUserNotFound}
	}
	if err != nil {
		return nil, uuid.Nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, user.ID, &Error{Kind: ErrInvalidCredentials, Message: "invalid credentials", Cause: ErrPasswordMismatch}
		}
		return nil, user.ID, err
	}

	if !user.IsActive {
		return nil, user.ID, newError(ErrUserInactive, "user is inactive")
	}

	codes, err := s.roles.PermissionCodes(ctx, tenantID, user.RoleID)
	if err != nil {
		return nil, user.ID, notFoundOr(err, "role %s not found", user.RoleID)
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	token, expiresAt, err := s.tokens.Issue(user, roleName, codes)
	if err != nil {
		return nil, user.ID, err
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
		User: models.UserSummary{
			ID:    user.ID,
			Email: user.Email,
			Role:  roleName,
		},
	}, user.ID, nil
}

// ParseToken validates a bearer credential
func (s *AuthService) ParseToken(token string) (*models.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, Unauthenticated("invalid or expired token", err)
	}
	return claims, nil
}
