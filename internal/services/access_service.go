package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/config"
	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
)

// AccessService resolves the effective permissions of a caller and decides
// whether they satisfy a route's requirement
type AccessService struct {
	roles  *repository.RoleRepository
	cache  cache.Cache
	ttl    time.Duration
	source string
}

// NewAccessService creates an access service. source is config.PermissionSourceStore
// or config.PermissionSourceToken.
func NewAccessService(roles *repository.RoleRepository, c cache.Cache, ttl time.Duration, source string) *AccessService {
	if source != config.PermissionSourceToken {
		source = config.PermissionSourceStore
	}
	return &AccessService{roles: roles, cache: c, ttl: ttl, source: source}
}

// RolePermissions returns the current permission codes of a role of the tenant,
// reading through the cache
func (s *AccessService) RolePermissions(ctx context.Context, tenantID, roleID uuid.UUID) ([]string, error) {
	key := cache.RolePermissionsKey(tenantID, roleID)

	var codes []string
	hit, err := cache.GetJSON(ctx, s.cache, key, &codes)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Permission cache read failed")
	}
	metrics.CacheResult("role_permissions", hit)
	if hit {
		return codes, nil
	}

	codes, err = s.roles.PermissionCodes(ctx, tenantID, roleID)
	if err != nil {
		return nil, notFoundOr(err, "role %s not found", roleID)
	}

	if err := cache.SetJSON(ctx, s.cache, key, codes, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Permission cache write failed")
	}
	return codes, nil
}

// EffectivePermissions returns the codes to check against required. In token mode the
// claim's codes are used while they satisfy required; otherwise the store is consulted.
func (s *AccessService) EffectivePermissions(ctx context.Context, user *models.UserContext, required []string) ([]string, error) {
	// Claims are a snapshot; a miss falls through to the store in case they are stale.
	if s.source == config.PermissionSourceToken && HasAnyPermission(user.Permissions, required) {
		return user.Permissions, nil
	}
	return s.RolePermissions(ctx, user.TenantID, user.RoleID)
}

// Authorize allows the caller when it holds at least one of required.
// An empty requirement always passes.
func (s *AccessService) Authorize(ctx context.Context, user *models.UserContext, required []string) error {
	if len(required) == 0 {
		return nil
	}

	codes, err := s.EffectivePermissions(ctx, user, required)
	if err != nil {
		return err
	}
	if HasAnyPermission(codes, required) {
		return nil
	}
	return Forbidden(fmt.Sprintf("requires one of: %s", strings.Join(required, ", ")))
}

// InvalidateRole drops the cached permissions of one role
func (s *AccessService) InvalidateRole(ctx context.Context, tenantID, roleID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.RolePermissionsKey(tenantID, roleID)); err != nil {
		log.Warn().Err(err).Str("role_id", roleID.String()).Msg("Failed to invalidate role permissions")
	}
}

// InvalidateAll drops every cached role permission set
func (s *AccessService) InvalidateAll(ctx context.Context) {
	if err := s.cache.Clear(ctx, cache.AllPermissionsPattern); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate permission cache")
	}
}

// HasAnyPermission reports whether held and required share at least one code
func HasAnyPermission(held, required []string) bool {
	for _, r := range required {
		if slices.Contains(held, r) {
			return true
		}
	}
	return false
}
