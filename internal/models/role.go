package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRoleName is the role every tenant is bootstrapped with
const AdminRoleName = "Admin"

// Role groups permissions inside a tenant
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_roles_name_tenant" json:"name"`
	TenantID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_roles_name_tenant;index" json:"tenant_id"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName overrides the table name
func (Role) TableName() string {
	return "roles"
}

// BeforeCreate hook
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PermissionCodes returns the codes of the loaded permissions
func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

// RolePermission is one membership row of the role/permission join table.
// The composite primary key keeps a permission from being attached twice.
type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt    time.Time
}

// TableName overrides the table name
func (RolePermission) TableName() string {
	return "role_permissions"
}

type CreateRoleRequest struct {
	Name          string      `json:"name"`
	PermissionIDs []uuid.UUID `json:"permission_ids,omitempty"`
}

// UpdateRoleRequest renames a role and optionally replaces its permission set
type UpdateRoleRequest struct {
	Name          *string      `json:"name,omitempty"`
	PermissionIDs *[]uuid.UUID `json:"permission_ids,omitempty"`
}

// AssignPermissionsRequest replaces a role's permissions, by id or by code
type AssignPermissionsRequest struct {
	PermissionIDs   []uuid.UUID `json:"permission_ids,omitempty"`
	PermissionCodes []string    `json:"permission_codes,omitempty"`
}

// RoleFilter narrows role listings within a tenant
type RoleFilter struct {
	Name           string
	PermissionCode string
}
