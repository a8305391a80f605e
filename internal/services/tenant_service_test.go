package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTenantCreateBootstrapsAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	result := e.tenant(t, "acme")

	assert.Equal(t, "acme", result.Tenant.Subdomain)
	assert.True(t, result.Tenant.IsActive)
	assert.Equal(t, models.AdminRoleName, result.AdminRole.Name)
	assert.Equal(t, result.Tenant.ID, result.AdminRole.TenantID)
	assert.Equal(t, "admin@acme.test", result.AdminUser.Email)
	assert.Equal(t, result.AdminRole.ID, result.AdminUser.RoleID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.AdminUser.PasswordHash), []byte("password123")))

	codes, err := e.access.RolePermissions(ctx, result.Tenant.ID, result.AdminRole.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, catalogCodes(), codes)

	logs, err := e.audit.List(ctx, result.Tenant.ID, models.AuditFilter{Action: models.AuditActionTenantCreate}, models.PageParams{}.Normalize())
	require.NoError(t, err)
	assert.EqualValues(t, 1, logs.Total)
}

func TestTenantCreateDuplicateLeavesNoRows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.tenant(t, "acme")

	tenants := e.count(t, &models.Tenant{})
	roles := e.count(t, &models.Role{})
	users := e.count(t, &models.User{})
	grants := e.count(t, &models.RolePermission{})

	tests := []struct {
		name string
		req  models.CreateTenantRequest
	}{
		{"same subdomain", models.CreateTenantRequest{Name: "Other", Subdomain: "acme", AdminEmail: "a@b.test", AdminPassword: "password123"}},
		{"same name", models.CreateTenantRequest{Name: "acme legal", Subdomain: "other", AdminEmail: "a@b.test", AdminPassword: "password123"}},
		{"subdomain case folded", models.CreateTenantRequest{Name: "Third", Subdomain: "ACME", AdminEmail: "a@b.test", AdminPassword: "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tenants.Create(ctx, &tt.req)
			require.ErrorIs(t, err, services.ErrConflict)
		})
	}

	assert.Equal(t, tenants, e.count(t, &models.Tenant{}))
	assert.Equal(t, roles, e.count(t, &models.Role{}))
	assert.Equal(t, users, e.count(t, &models.User{}))
	assert.Equal(t, grants, e.count(t, &models.RolePermission{}))
}

func TestTenantCreateValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		req  models.CreateTenantRequest
	}{
		{"missing name", models.CreateTenantRequest{Subdomain: "acme", AdminEmail: "a@b.test", AdminPassword: "password123"}},
		{"bad subdomain", models.CreateTenantRequest{Name: "Acme", Subdomain: "ac me", AdminEmail: "a@b.test", AdminPassword: "password123"}},
		{"bad email", models.CreateTenantRequest{Name: "Acme", Subdomain: "acme", AdminEmail: "nope", AdminPassword: "password123"}},
		{"short password", models.CreateTenantRequest{Name: "Acme", Subdomain: "acme", AdminEmail: "a@b.test", AdminPassword: "short"}},
		{"password over 72 bytes", models.CreateTenantRequest{Name: "Acme", Subdomain: "acme", AdminEmail: "a@b.test", AdminPassword: strings.Repeat("a", 80)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tenants.Create(context.Background(), &tt.req)
			require.ErrorIs(t, err, services.ErrValidation)
		})
	}
	assert.Zero(t, e.count(t, &models.Tenant{}))

	acme := e.tenant(t, "acme")
	long := strings.Repeat("é", 40)
	_, err := e.users.Update(context.Background(), acme.Tenant.ID, acme.AdminUser.ID, &models.UpdateUserRequest{Password: &long})
	assert.ErrorIs(t, err, services.ErrValidation, "the limit is in bytes, not characters")
}

func TestFindActiveBySubdomain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")

	_, err := e.tenants.FindActiveBySubdomain(ctx, "  ")
	assert.ErrorIs(t, err, services.ErrTenantSelectorMissing)

	_, err = e.tenants.FindActiveBySubdomain(ctx, "ghost")
	assert.ErrorIs(t, err, services.ErrTenantNotFound)

	found, err := e.tenants.FindActiveBySubdomain(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, acme.Tenant.ID, found.ID)

	ok, err := e.cache.Exists(ctx, cache.TenantKey("acme"))
	require.NoError(t, err)
	assert.True(t, ok, "resolved tenant is cached")

	_, err = e.access.RolePermissions(ctx, acme.Tenant.ID, acme.AdminRole.ID)
	require.NoError(t, err)
	permsKey := cache.RolePermissionsKey(acme.Tenant.ID, acme.AdminRole.ID)
	ok, err = e.cache.Exists(ctx, permsKey)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, e.tenants.Deactivate(ctx, acme.Tenant.ID))
	_, err = e.tenants.FindActiveBySubdomain(ctx, "acme")
	assert.ErrorIs(t, err, services.ErrTenantNotFound, "deactivation evicts the cached tenant")

	ok, err = e.cache.Exists(ctx, permsKey)
	require.NoError(t, err)
	assert.False(t, ok, "deactivation drops the tenant's cached role permissions")

	still, err := e.tenants.GetByID(ctx, acme.Tenant.ID)
	require.NoError(t, err)
	assert.False(t, still.IsActive)
}

func TestTenantUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")
	e.tenant(t, "globex")

	_, err := e.tenants.FindActiveBySubdomain(ctx, "acme")
	require.NoError(t, err)

	taken := "globex"
	_, err = e.tenants.Update(ctx, acme.Tenant.ID, &models.UpdateTenantRequest{Subdomain: &taken})
	assert.ErrorIs(t, err, services.ErrConflict)

	renamed := "acme-law"
	updated, err := e.tenants.Update(ctx, acme.Tenant.ID, &models.UpdateTenantRequest{Subdomain: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "acme-law", updated.Subdomain)

	_, err = e.tenants.FindActiveBySubdomain(ctx, "acme")
	assert.ErrorIs(t, err, services.ErrTenantNotFound)
	_, err = e.tenants.FindActiveBySubdomain(ctx, "acme-law")
	assert.NoError(t, err)

	page, err := e.tenants.List(ctx, models.TenantFilter{Search: "acme"}, models.PageParams{}.Normalize())
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}
