package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository handles role and role membership database operations
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RoleRepository) WithTx(tx *gorm.DB) *RoleRepository {
	return &RoleRepository{db: tx}
}

// Create creates a role without touching its permissions
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error; err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// GetByID retrieves a role of a tenant with its permissions
func (r *RoleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).
		Scopes(preloadPermissions).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

// LockByID retrieves a role of a tenant and locks its row until the transaction ends
func (r *RoleRepository) LockByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to lock role: %w", err)
	}
	return &role, nil
}

// ExistsByName reports whether the tenant already has a role named name
func (r *RoleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Role{}).Where("tenant_id = ? AND name = ?", tenantID, name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check role name: %w", err)
	}
	return count > 0, nil
}

// CountByName counts roles with the given name across all tenants
func (r *RoleRepository) CountByName(ctx context.Context, name string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return count, nil
}

// PermissionCodes returns the codes granted to a role of a tenant.
// It fails with gorm.ErrRecordNotFound when the role does not belong to the tenant.
func (r *RoleRepository) PermissionCodes(ctx context.Context, tenantID, roleID uuid.UUID) ([]string, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ? AND tenant_id = ?", roleID, tenantID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("failed to get role: %w", gorm.ErrRecordNotFound)
	}

	codes := []string{}
	if err := r.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.code").
		Pluck("permissions.code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	return codes, nil
}

// ReplacePermissions makes permissionIDs the exact membership set of the role
func (r *RoleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}
	return r.AddPermissions(ctx, roleID, permissionIDs)
}

// AddPermissions attaches permissions to a role, skipping ones it already has
func (r *RoleRepository) AddPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]models.RolePermission, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		rows = append(rows, models.RolePermission{RoleID: roleID, PermissionID: id, CreatedAt: now})
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to add role permissions: %w", err)
	}
	return nil
}

// List returns a page of a tenant's roles with their permissions
func (r *RoleRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.RoleFilter, p models.PageParams) ([]models.Role, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Role{}).Where("roles.tenant_id = ?", tenantID)

	name := filter.Name
	if name == "" {
		name = p.Search
	}
	if name != "" {
		q = q.Where("LOWER(roles.name) LIKE LOWER(?)", like(name))
	}
	if filter.PermissionCode != "" {
		q = q.Where("roles.id IN (?)", r.db.Table("role_permissions").
			Select("role_permissions.role_id").
			Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
			Where("permissions.code = ?", filter.PermissionCode))
	}

	order := p.OrderBy(map[string]string{
		"name":      "roles.name",
		"createdAt": "roles.created_at",
	}, "roles.name")

	roles, total, err := paginate[models.Role](q, p, order, preloadPermissions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, total, nil
}

// Rename changes the name of a role
func (r *RoleRepository) Rename(ctx context.Context, roleID uuid.UUID, name string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Role{}).
		Where("id = ?", roleID).
		Update("name", name).Error; err != nil {
		return fmt.Errorf("failed to rename role: %w", err)
	}
	return nil
}

// CountUsers counts users assigned to a role
func (r *RoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", roleID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count role users: %w", err)
	}
	return count, nil
}

// Delete removes a role and its membership rows
func (r *RoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to delete role permissions: %w", err)
	}
	if err := db.Where("id = ?", roleID).Delete(&models.Role{}).Error; err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

func preloadPermissions(db *gorm.DB) *gorm.DB {
	return db.Preload("Permissions", func(db *gorm.DB) *gorm.DB { return db.Order("code") })
}
