package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	UserKey     contextKey = "user"
)

// TenantHeader names the tenant a request is addressed to
const TenantHeader = "X-Tenant-Subdomain"

// TenantLookup finds the active tenant behind a subdomain
type TenantLookup interface {
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
}

// Tenant resolves X-Tenant-Subdomain to an active tenant and stores its id in the context.
// Nothing downstream runs when the header is missing or names no active tenant.
func Tenant(tenants TenantLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subdomain := r.Header.Get(TenantHeader)

			tenant, err := tenants.FindActiveBySubdomain(r.Context(), subdomain)
			if err != nil {
				outcome := "error"
				switch {
				case errors.Is(err, services.ErrTenantSelectorMissing):
					outcome = "missing"
				case errors.Is(err, services.ErrTenantNotFound):
					outcome = "not_found"
				}
				metrics.TenantResolutions.WithLabelValues(outcome).Inc()
				log.Warn().Err(err).Str("subdomain", subdomain).Msg("Tenant resolution failed")
				respond.Error(w, r, err)
				return
			}
			metrics.TenantResolutions.WithLabelValues("resolved").Inc()

			ctx := context.WithValue(r.Context(), TenantIDKey, tenant.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantID extracts tenant ID from context
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetUser returns the authenticated caller stored by the guard
func GetUser(ctx context.Context) (*models.UserContext, bool) {
	user, ok := ctx.Value(UserKey).(*models.UserContext)
	return user, ok
}
