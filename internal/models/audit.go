package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit outcomes
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// Audit actions
const (
	AuditActionLogin             = "auth.login"
	AuditActionTenantCreate      = "tenant.create"
	AuditActionRoleCreate        = "role.create"
	AuditActionRoleUpdate        = "role.update"
	AuditActionRoleDelete        = "role.delete"
	AuditActionAssignPermissions = "role.assign_permissions"
	AuditActionUserCreate        = "user.create"
	AuditActionUserUpdate        = "user.update"
	AuditActionUserDeactivate    = "user.deactivate"
	AuditActionUserAssignRole    = "user.assign_role"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action       string     `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType string     `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string     `gorm:"type:varchar(255);index" json:"resource_id,omitempty"`
	IPAddress    string     `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent    string     `gorm:"type:text" json:"user_agent,omitempty"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"` // success, failure
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AuditFilter narrows audit log listings
type AuditFilter struct {
	Action     string
	UserID     uuid.UUID
	ResourceID string
	Status     string
}
