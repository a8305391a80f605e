package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission is a global "<module>:<action>" capability code
type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"code"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Permission) TableName() string {
	return "permissions"
}

// BeforeCreate hook
func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CRUD actions generated for every module
var ModuleActions = []string{"create", "read", "update", "delete"}

// DefaultPermissionCatalog is seeded at startup and granted to every new Admin role
var DefaultPermissionCatalog = []Permission{
	{Code: "users:create", Description: "Create users"},
	{Code: "users:read", Description: "View users"},
	{Code: "users:update", Description: "Update users"},
	{Code: "users:delete", Description: "Deactivate users"},
	{Code: "users:assign-role", Description: "Change a user's role"},
	{Code: "roles:create", Description: "Create roles"},
	{Code: "roles:read", Description: "View roles"},
	{Code: "roles:update", Description: "Update roles"},
	{Code: "roles:delete", Description: "Delete roles"},
	{Code: "roles:assign-permissions", Description: "Replace a role's permissions"},
	{Code: "currencies:create", Description: "Create currencies"},
	{Code: "currencies:read", Description: "View currencies"},
	{Code: "currencies:update", Description: "Update currencies"},
	{Code: "currencies:delete", Description: "Delete currencies"},
	{Code: "conversion-rates:create", Description: "Create conversion rates"},
	{Code: "conversion-rates:read", Description: "View conversion rates"},
	{Code: "conversion-rates:update", Description: "Update conversion rates"},
	{Code: "conversion-rates:delete", Description: "Delete conversion rates"},
	{Code: "units-reference:create", Description: "Create unit references"},
	{Code: "units-reference:read", Description: "View unit references"},
	{Code: "units-reference:update", Description: "Update unit references"},
	{Code: "units-reference:delete", Description: "Delete unit references"},
	{Code: "insolvency-tariffs:create", Description: "Create insolvency tariffs"},
	{Code: "insolvency-tariffs:read", Description: "View insolvency tariffs"},
	{Code: "insolvency-tariffs:update", Description: "Update insolvency tariffs"},
	{Code: "insolvency-tariffs:delete", Description: "Delete insolvency tariffs"},
	{Code: "audit-logs:read", Description: "View the audit log"},
}

type CreatePermissionRequest struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

type UpdatePermissionRequest struct {
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateModulePermissionsRequest generates the CRUD codes of one module
type CreateModulePermissionsRequest struct {
	Module string `json:"module"`
}
