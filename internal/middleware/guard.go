package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/rs/zerolog/log"
)

// Policy is the access requirement declared on a route
type Policy struct {
	Public      bool
	Permissions []string
}

// Public lets anyone through; neither gate runs
func Public() Policy {
	return Policy{Public: true}
}

// Authenticated requires a valid credential for the tenant and nothing else
func Authenticated() Policy {
	return Policy{}
}

// Requires demands a valid credential holding at least one of codes
func Requires(codes ...string) Policy {
	return Policy{Permissions: codes}
}

// TokenParser validates bearer credentials
type TokenParser interface {
	ParseToken(token string) (*models.Claims, error)
}

// Authorizer decides whether a caller satisfies a permission requirement
type Authorizer interface {
	Authorize(ctx context.Context, user *models.UserContext, required []string) error
}

// Guard enforces route policies. Gate A authenticates the caller and binds the credential
// to the resolved tenant; Gate B checks the declared permissions.
type Guard struct {
	tokens TokenParser
	access Authorizer
}

// NewGuard creates a guard
func NewGuard(tokens TokenParser, access Authorizer) *Guard {
	return &Guard{tokens: tokens, access: access}
}

// Protect returns middleware enforcing policy. It must run after Tenant.
func (g *Guard) Protect(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Public {
				next.ServeHTTP(w, r)
				return
			}

			user, err := g.authenticate(r)
			if err != nil {
				metrics.GuardDecisions.WithLabelValues("authenticate", "unauthenticated").Inc()
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Authentication rejected")
				respond.Error(w, r, err)
				return
			}
			metrics.GuardDecisions.WithLabelValues("authenticate", "allowed").Inc()

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = services.WithActorUser(ctx, user.UserID)

			if err := g.access.Authorize(ctx, user, policy.Permissions); err != nil {
				outcome := "error"
				switch {
				case errors.Is(err, services.ErrForbidden):
					outcome = "forbidden"
				case errors.Is(err, services.ErrNotFound):
					outcome = "not_found"
				}
				metrics.GuardDecisions.WithLabelValues("authorize", outcome).Inc()
				log.Warn().Err(err).
					Str("user_id", user.UserID.String()).
					Strs("required", policy.Permissions).
					Msg("Authorization rejected")
				respond.Error(w, r, err)
				return
			}
			metrics.GuardDecisions.WithLabelValues("authorize", "allowed").Inc()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) authenticate(r *http.Request) (*models.UserContext, error) {
	tenantID, ok := GetTenantID(r.Context())
	if !ok {
		return nil, errors.New("guard mounted without tenant resolver")
	}

	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if header == "" {
		return nil, services.Unauthenticated("authorization header is required", nil)
	}
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, services.Unauthenticated("authorization header must be a bearer token", nil)
	}

	claims, err := g.tokens.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if claims.TenantID != tenantID {
		return nil, services.Unauthenticated("token does not match requested tenant", nil)
	}

	return &models.UserContext{
		UserID:      claims.UserID,
		TenantID:    claims.TenantID,
		RoleID:      claims.RoleID,
		Role:        claims.Role,
		Email:       claims.Email,
		Permissions: claims.Permissions,
	}, nil
}
