package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignPermissionsReplacesExactly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")
	tenantID := acme.Tenant.ID

	role, err := e.roles.Create(ctx, tenantID, &models.CreateRoleRequest{
		Name:          "Clerk",
		PermissionIDs: e.permissionIDs(t, "users:read", "roles:read", "currencies:read"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users:read", "roles:read", "currencies:read"}, role.PermissionCodes())

	// Warm the cache so the replacement must invalidate it.
	_, err = e.access.RolePermissions(ctx, tenantID, role.ID)
	require.NoError(t, err)

	target := e.permissionIDs(t, "users:read", "users:create")
	updated, err := e.roles.AssignPermissions(ctx, tenantID, role.ID, append(target, target[0]))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users:read", "users:create"}, updated.PermissionCodes())

	codes, err := e.access.RolePermissions(ctx, tenantID, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users:create", "users:read"}, codes)

	emptied, err := e.roles.AssignPermissions(ctx, tenantID, role.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, emptied.Permissions)
}

func TestAssignPermissionsUnknownIDLeavesSetUnchanged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")

	role, err := e.roles.Create(ctx, acme.Tenant.ID, &models.CreateRoleRequest{
		Name:          "Clerk",
		PermissionIDs: e.permissionIDs(t, "users:read"),
	})
	require.NoError(t, err)

	ids := append(e.permissionIDs(t, "roles:read"), uuid.New())
	_, err = e.roles.AssignPermissions(ctx, acme.Tenant.ID, role.ID, ids)
	require.ErrorIs(t, err, services.ErrNotFound)

	current, err := e.roles.Get(ctx, acme.Tenant.ID, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"users:read"}, current.PermissionCodes())
}

func TestAssignPermissionsCrossTenantRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")
	globex := e.tenant(t, "globex")

	_, err := e.roles.AssignPermissions(ctx, globex.Tenant.ID, acme.AdminRole.ID, e.permissionIDs(t, "users:read"))
	require.ErrorIs(t, err, services.ErrNotFound)

	codes, err := e.access.RolePermissions(ctx, acme.Tenant.ID, acme.AdminRole.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, catalogCodes(), codes)
}

func TestAssignPermissionCodes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")

	role, err := e.roles.AssignPermissionCodes(ctx, acme.Tenant.ID, acme.AdminRole.ID, []string{"users:read", "audit-logs:read"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users:read", "audit-logs:read"}, role.PermissionCodes())

	_, err = e.roles.AssignPermissionCodes(ctx, acme.Tenant.ID, acme.AdminRole.ID, []string{"users:read", "cases:fly"})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, services.ErrorMessage(err), "cases:fly")
}

func TestRoleCreateAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")
	tenantID := acme.Tenant.ID

	_, err := e.roles.Create(ctx, tenantID, &models.CreateRoleRequest{Name: models.AdminRoleName})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = e.roles.Create(ctx, tenantID, &models.CreateRoleRequest{Name: "  "})
	assert.ErrorIs(t, err, services.ErrValidation)

	clerk, err := e.roles.Create(ctx, tenantID, &models.CreateRoleRequest{Name: "Clerk"})
	require.NoError(t, err)

	// The same name is free in another tenant.
	globex := e.tenant(t, "globex")
	_, err = e.roles.Create(ctx, globex.Tenant.ID, &models.CreateRoleRequest{Name: "Clerk"})
	require.NoError(t, err)

	name := "Paralegal"
	ids := e.permissionIDs(t, "currencies:read")
	updated, err := e.roles.Update(ctx, tenantID, clerk.ID, &models.UpdateRoleRequest{Name: &name, PermissionIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, "Paralegal", updated.Name)
	assert.Equal(t, []string{"currencies:read"}, updated.PermissionCodes())

	admin := "Administrators"
	_, err = e.roles.Update(ctx, tenantID, acme.AdminRole.ID, &models.UpdateRoleRequest{Name: &admin})
	assert.ErrorIs(t, err, services.ErrConflict)

	page, err := e.roles.List(ctx, tenantID, models.RoleFilter{PermissionCode: "currencies:read"}, models.PageParams{}.Normalize())
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
}

func TestRoleDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	acme := e.tenant(t, "acme")
	tenantID := acme.Tenant.ID

	err := e.roles.Delete(ctx, tenantID, acme.AdminRole.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	clerk, err := e.roles.Create(ctx, tenantID, &models.CreateRoleRequest{Name: "Clerk", PermissionIDs: e.permissionIDs(t, "users:read")})
	require.NoError(t, err)
	user, err := e.users.Create(ctx, tenantID, &models.CreateUserRequest{Email: "clerk@acme.test", Password: "password123", RoleID: clerk.ID})
	require.NoError(t, err)

	err = e.roles.Delete(ctx, tenantID, clerk.ID)
	assert.ErrorIs(t, err, services.ErrConflict, "role still assigned")

	_, err = e.users.AssignRole(ctx, tenantID, user.ID, acme.AdminRole.ID)
	require.NoError(t, err)
	require.NoError(t, e.roles.Delete(ctx, tenantID, clerk.ID))

	_, err = e.roles.Get(ctx, tenantID, clerk.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualValues(t, len(catalogCodes()), e.count(t, &models.RolePermission{}))
}
