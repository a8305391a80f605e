package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a legal practice with its own users, roles and reference data
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null;uniqueIndex" json:"name"`
	Subdomain string    `gorm:"type:varchar(63);not null;uniqueIndex" json:"subdomain"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Tenant) TableName() string {
	return "tenants"
}

// BeforeCreate hook
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// CreateTenantRequest bootstraps a tenant with its Admin role and first user
type CreateTenantRequest struct {
	Name          string `json:"name"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// UpdateTenantRequest carries the mutable tenant fields
type UpdateTenantRequest struct {
	Name      *string `json:"name,omitempty"`
	Subdomain *string `json:"subdomain,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// TenantBootstrap is the result of creating a tenant
type TenantBootstrap struct {
	Tenant    *Tenant `json:"tenant"`
	AdminRole *Role   `json:"admin_role"`
	AdminUser *User   `json:"admin_user"`
}

// TenantFilter narrows tenant listings
type TenantFilter struct {
	Search   string
	IsActive *bool
}
