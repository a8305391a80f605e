package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository handles the global permission catalog
type PermissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *PermissionRepository) WithTx(tx *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: tx}
}

// Create creates permissions
func (r *PermissionRepository) Create(ctx context.Context, permissions ...*models.Permission) error {
	if len(permissions) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(permissions).Error; err != nil {
		return fmt.Errorf("failed to create permissions: %w", err)
	}
	return nil
}

// CreateMissing inserts the permissions whose code is not in the catalog yet
func (r *PermissionRepository) CreateMissing(ctx context.Context, permissions []models.Permission) error {
	if len(permissions) == 0 {
		return nil
	}
	rows := append([]models.Permission(nil), permissions...)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	return nil
}

// GetByID retrieves a permission by ID
func (r *PermissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	var permission models.Permission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&permission).Error; err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &permission, nil
}

// FindByIDs retrieves the permissions among ids that exist
func (r *PermissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	permissions := []models.Permission{}
	if len(ids) == 0 {
		return permissions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("failed to find permissions: %w", err)
	}
	return permissions, nil
}

// FindByCodes retrieves the permissions among codes that exist
func (r *PermissionRepository) FindByCodes(ctx context.Context, codes []string) ([]models.Permission, error) {
	permissions := []models.Permission{}
	if len(codes) == 0 {
		return permissions, nil
	}
	if err := r.db.WithContext(ctx).Where("code IN ?", codes).Order("code").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("failed to find permissions: %w", err)
	}
	return permissions, nil
}

// All returns the whole catalog
func (r *PermissionRepository) All(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	if err := r.db.WithContext(ctx).Order("code").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, nil
}

// List returns a page of the catalog
func (r *PermissionRepository) List(ctx context.Context, p models.PageParams) ([]models.Permission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Permission{})
	if p.Search != "" {
		q = q.Where("LOWER(code) LIKE LOWER(?)", like(p.Search))
	}

	order := p.OrderBy(map[string]string{
		"code":      "code",
		"createdAt": "created_at",
	}, "code")

	permissions, total, err := paginate[models.Permission](q, p, order)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list permissions: %w", err)
	}
	return permissions, total, nil
}

// ExistingCodes returns which of codes are already in the catalog
func (r *PermissionRepository) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	existing := []string{}
	if len(codes) == 0 {
		return existing, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Where("code IN ?", codes).
		Order("code").
		Pluck("code", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check permission codes: %w", err)
	}
	return existing, nil
}

// AttachToRolesNamed grants permissions to every role called roleName, across tenants.
// The grant is a single add-if-absent statement, so concurrent grants never overwrite each other.
func (r *PermissionRepository) AttachToRolesNamed(ctx context.Context, roleName string, permissionIDs []uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Exec(
		`INSERT INTO role_permissions (role_id, permission_id, created_at)
		 SELECT roles.id, permissions.id, CURRENT_TIMESTAMP
		 FROM roles CROSS JOIN permissions
		 WHERE roles.name = ? AND permissions.id IN ?
		 ON CONFLICT DO NOTHING`,
		roleName, permissionIDs,
	).Error; err != nil {
		return fmt.Errorf("failed to attach permissions to %s roles: %w", roleName, err)
	}
	return nil
}

// Update saves the given columns of a permission
func (r *PermissionRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update permission: %w", err)
	}
	return nil
}

// Delete removes a permission and every grant of it
func (r *PermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}
	if err := db.Where("id = ?", id).Delete(&models.Permission{}).Error; err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	return nil
}
