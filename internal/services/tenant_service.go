package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/metrics"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TenantService handles tenant provisioning and lookup
type TenantService struct {
	db          *gorm.DB
	tenants     *repository.TenantRepository
	roles       *repository.RoleRepository
	permissions *repository.PermissionRepository
	users       *repository.UserRepository
	audit       *AuditService
	hasher      *auth.PasswordHasher
	cache       cache.Cache
	cacheTTL    time.Duration
}

// NewTenantService creates a new tenant service
func NewTenantService(
	db *gorm.DB,
	audit *AuditService,
	hasher *auth.PasswordHasher,
	c cache.Cache,
	cacheTTL time.Duration,
) *TenantService {
	return &TenantService{
		db:          db,
		tenants:     repository.NewTenantRepository(db),
		roles:       repository.NewRoleRepository(db),
		permissions: repository.NewPermissionRepository(db),
		users:       repository.NewUserRepository(db),
		audit:       audit,
		hasher:      hasher,
		cache:       c,
		cacheTTL:    cacheTTL,
	}
}

// Create provisions a tenant together with its Admin role, holding the whole catalog,
// and its first admin user. Nothing is persisted unless every step succeeds.
func (s *TenantService) Create(ctx context.Context, req *models.CreateTenantRequest) (*models.TenantBootstrap, error) {
	name, err := requireText("name", req.Name, 150)
	if err != nil {
		return nil, err
	}
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if err := validateSubdomain(subdomain); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.AdminEmail)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.AdminPassword); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return nil, err
	}

	result := &models.TenantBootstrap{}
	err = repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		tenants := s.tenants.WithTx(tx)
		roles := s.roles.WithTx(tx)

		exists, err := tenants.ExistsByNameOrSubdomain(ctx, name, subdomain, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return conflict("a tenant named %q or with subdomain %q already exists", name, subdomain)
		}

		tenant := &models.Tenant{Name: name, Subdomain: subdomain, IsActive: true}
		if err := tenants.Create(ctx, tenant); err != nil {
			return err
		}

		role := &models.Role{Name: models.AdminRoleName, TenantID: tenant.ID}
		if err := roles.Create(ctx, role); err != nil {
			return err
		}

		catalog, err := s.permissions.WithTx(tx).All(ctx)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(catalog))
		for _, p := range catalog {
			ids = append(ids, p.ID)
		}
		if err := roles.AddPermissions(ctx, role.ID, ids); err != nil {
			return err
		}
		role.Permissions = catalog

		user := &models.User{
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			TenantID:     tenant.ID,
			RoleID:       role.ID,
		}
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		result.Tenant = tenant
		result.AdminRole = role
		result.AdminUser = user
		return nil
	})
	if err != nil {
		return nil, conflictOr(err, "a tenant named %q or with subdomain %q already exists", name, subdomain)
	}

	s.audit.Record(ctx, result.Tenant.ID, models.AuditActionTenantCreate, "tenant", result.Tenant.ID.String(), nil)
	log.Info().
		Str("tenant_id", result.Tenant.ID.String()).
		Str("subdomain", subdomain).
		Int("permissions", len(result.AdminRole.Permissions)).
		Msg("Tenant created")

	return result, nil
}

// FindActiveBySubdomain resolves the active tenant behind a subdomain, reading through the cache
func (s *TenantService) FindActiveBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, TenantSelectorMissing("X-Tenant-Subdomain")
	}

	key := cache.TenantKey(subdomain)
	var tenant models.Tenant
	hit, err := cache.GetJSON(ctx, s.cache, key, &tenant)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Tenant cache read failed")
	}
	metrics.CacheResult("tenant", hit)
	if hit && tenant.IsActive {
		return &tenant, nil
	}

	found, err := s.tenants.GetActiveBySubdomain(ctx, subdomain)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrTenantNotFound, "tenant %q not found", subdomain)
	}
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, found, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Tenant cache write failed")
	}
	return found, nil
}

// List returns a page of tenants
func (s *TenantService) List(ctx context.Context, filter models.TenantFilter, p models.PageParams) (*models.Page[models.Tenant], error) {
	tenants, total, err := s.tenants.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(tenants, total, p), nil
}

// GetByID retrieves a tenant, active or not
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "tenant %s not found", id)
	}
	return tenant, nil
}

// GetBySubdomain retrieves a tenant by subdomain, active or not
func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		return nil, notFoundOr(err, "tenant %q not found", subdomain)
	}
	return tenant, nil
}

// Update changes a tenant's name, subdomain or active flag
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateTenantRequest) (*models.Tenant, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	name, subdomain := current.Name, current.Subdomain
	if req.Name != nil {
		if name, err = requireText("name", *req.Name, 150); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Subdomain != nil {
		subdomain = strings.ToLower(strings.TrimSpace(*req.Subdomain))
		if err := validateSubdomain(subdomain); err != nil {
			return nil, err
		}
		updates["subdomain"] = subdomain
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return current, nil
	}

	exists, err := s.tenants.ExistsByNameOrSubdomain(ctx, name, subdomain, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("a tenant named %q or with subdomain %q already exists", name, subdomain)
	}

	if err := s.tenants.Update(ctx, id, updates); err != nil {
		return nil, conflictOr(err, "a tenant named %q or with subdomain %q already exists", name, subdomain)
	}
	s.forget(ctx, current.Subdomain, subdomain)

	return s.GetByID(ctx, id)
}

// Deactivate soft-deletes a tenant; its subdomain stops resolving immediately
func (s *TenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenants.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return err
	}
	s.forget(ctx, current.Subdomain)
	if err := s.cache.Clear(ctx, cache.TenantPermissionsPattern(id)); err != nil {
		log.Warn().Err(err).Str("tenant_id", id.String()).Msg("Failed to invalidate tenant permission cache")
	}
	log.Info().Str("tenant_id", id.String()).Msg("Tenant deactivated")
	return nil
}

func (s *TenantService) forget(ctx context.Context, subdomains ...string) {
	for _, sub := range subdomains {
		if err := s.cache.Delete(ctx, cache.TenantKey(sub)); err != nil {
			log.Warn().Err(err).Str("subdomain", sub).Msg("Failed to invalidate tenant cache")
		}
	}
}
