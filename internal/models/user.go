package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a tenant member able to log in
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email_tenant" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_users_email_tenant;index" json:"tenant_id"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type CreateUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	RoleID   uuid.UUID `json:"role_id"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UserFilter narrows user listings within a tenant
type UserFilter struct {
	Email    string
	IsActive *bool
	RoleID   uuid.UUID
}

// UserSummary is the public view of a user returned on login
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// UserProfile is the authenticated user's own view, with effective permissions
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	TenantID    uuid.UUID `json:"tenant_id"`
	RoleID      uuid.UUID `json:"role_id"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
}

// AssignRoleRequest moves a user to another role of the same tenant
type AssignRoleRequest struct {
	RoleID uuid.UUID `json:"role_id"`
}
