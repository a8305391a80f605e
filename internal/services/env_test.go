package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/config"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/lexdesk/backoffice/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type env struct {
	db          *gorm.DB
	cache       *cache.MemoryCache
	tokens      *auth.TokenIssuer
	audit       *services.AuditService
	access      *services.AccessService
	tenants     *services.TenantService
	auth        *services.AuthService
	roles       *services.RoleService
	permissions *services.PermissionService
	users       *services.UserService
	currencies  *services.CurrencyService
	rates       *services.ConversionRateService
	units       *services.UnitReferenceService
	tariffs     *services.InsolvencyTariffService
}

func newEnv(t *testing.T) *env {
	return newEnvWithSource(t, config.PermissionSourceStore)
}

func newEnvWithSource(t *testing.T, source string) *env {
	t.Helper()

	db := testutil.NewDB(t)
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenIssuer(testSecret, "backoffice-test", time.Hour)
	audit := services.NewAuditService(repository.NewAuditRepository(db))
	access := services.NewAccessService(repository.NewRoleRepository(db), c, time.Minute, source)

	e := &env{
		db:          db,
		cache:       c,
		tokens:      tokens,
		audit:       audit,
		access:      access,
		tenants:     services.NewTenantService(db, audit, hasher, c, time.Minute),
		auth:        services.NewAuthService(db, hasher, tokens, audit),
		roles:       services.NewRoleService(db, access, audit),
		permissions: services.NewPermissionService(db, access),
		users:       services.NewUserService(db, hasher, access, audit),
		currencies:  services.NewCurrencyService(db),
		rates:       services.NewConversionRateService(db),
		units:       services.NewUnitReferenceService(db),
		tariffs:     services.NewInsolvencyTariffService(db),
	}
	require.NoError(t, e.permissions.EnsureCatalog(context.Background()))
	return e
}

// tenant provisions a tenant named after subdomain with admin@<subdomain>.test / password123
func (e *env) tenant(t *testing.T, subdomain string) *models.TenantBootstrap {
	t.Helper()
	result, err := e.tenants.Create(context.Background(), &models.CreateTenantRequest{
		Name:          subdomain + " legal",
		Subdomain:     subdomain,
		AdminEmail:    "admin@" + subdomain + ".test",
		AdminPassword: "password123",
	})
	require.NoError(t, err)
	return result
}

// permissionIDs looks up catalog ids by code
func (e *env) permissionIDs(t *testing.T, codes ...string) []uuid.UUID {
	t.Helper()
	found, err := repository.NewPermissionRepository(e.db).FindByCodes(context.Background(), codes)
	require.NoError(t, err)
	require.Len(t, found, len(codes))
	ids := make([]uuid.UUID, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
	}
	return ids
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func catalogCodes() []string {
	codes := make([]string, 0, len(models.DefaultPermissionCatalog))
	for _, p := range models.DefaultPermissionCatalog {
		codes = append(codes, p.Code)
	}
	return codes
}
