package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/lexdesk/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()
	ctx := context.Background()
	tenant := &models.Tenant{Name: uuid.NewString(), Subdomain: uuid.NewString()[:8], IsActive: true}
	require.NoError(t, repository.NewTenantRepository(db).Create(ctx, tenant))
	role := &models.Role{Name: name, TenantID: tenant.ID}
	require.NoError(t, repository.NewRoleRepository(db).Create(ctx, role))
	return role
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repository.Transaction(ctx, db, func(tx *gorm.DB) error {
		require.NoError(t, repository.NewPermissionRepository(tx).Create(ctx, &models.Permission{Code: "cases:read"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAttachToRolesNamedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	permissions := repository.NewPermissionRepository(db)
	roles := repository.NewRoleRepository(db)

	adminA := seedRole(t, db, models.AdminRoleName)
	adminB := seedRole(t, db, models.AdminRoleName)
	clerk := seedRole(t, db, "Clerk")

	read := &models.Permission{Code: "cases:read"}
	write := &models.Permission{Code: "cases:update"}
	require.NoError(t, permissions.Create(ctx, read, write))

	require.NoError(t, permissions.AttachToRolesNamed(ctx, models.AdminRoleName, []uuid.UUID{read.ID}))
	require.NoError(t, permissions.AttachToRolesNamed(ctx, models.AdminRoleName, []uuid.UUID{read.ID, write.ID}))

	for _, role := range []*models.Role{adminA, adminB} {
		codes, err := roles.PermissionCodes(ctx, role.TenantID, role.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"cases:read", "cases:update"}, codes)
	}

	codes, err := roles.PermissionCodes(ctx, clerk.TenantID, clerk.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)

	_, err = roles.PermissionCodes(ctx, adminA.TenantID, clerk.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateMissingKeepsExisting(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	permissions := repository.NewPermissionRepository(db)

	require.NoError(t, permissions.Create(ctx, &models.Permission{Code: "users:read", Description: "custom"}))
	require.NoError(t, permissions.CreateMissing(ctx, []models.Permission{
		{Code: "users:read", Description: "View users"},
		{Code: "users:create", Description: "Create users"},
	}))

	all, err := permissions.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "users:create", all[0].Code)
	assert.Equal(t, "custom", all[1].Description)

	existing, err := permissions.ExistingCodes(ctx, []string{"users:read", "users:delete"})
	require.NoError(t, err)
	assert.Equal(t, []string{"users:read"}, existing)
}

func TestRoleListPagination(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	roles := repository.NewRoleRepository(db)

	first := seedRole(t, db, "Alpha")
	for _, name := range []string{"Bravo", "Charlie", "Delta"} {
		require.NoError(t, roles.Create(ctx, &models.Role{Name: name, TenantID: first.TenantID}))
	}
	seedRole(t, db, "Echo")

	p := models.PageParams{Page: 2, Limit: 3}.Normalize()
	page, total, err := roles.List(ctx, first.TenantID, models.RoleFilter{}, p)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Delta", page[0].Name)

	page, total, err = roles.List(ctx, first.TenantID, models.RoleFilter{Name: "ar"}, models.PageParams{}.Normalize())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Charlie", page[0].Name)
}
