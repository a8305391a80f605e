package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles user database operations. Every lookup is scoped to a tenant.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user of a tenant by email, with its role
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("email = ? AND tenant_id = ?", email, tenantID).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user of a tenant, with its role
func (r *UserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ExistsByEmail reports whether the tenant already has a user with email
func (r *UserRepository) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("tenant_id = ? AND email = ?", tenantID, email)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return count > 0, nil
}

// List returns a page of a tenant's users
func (r *UserRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.UserFilter, p models.PageParams) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("tenant_id = ?", tenantID)

	email := filter.Email
	if email == "" {
		email = p.Search
	}
	if email != "" {
		q = q.Where("LOWER(email) LIKE LOWER(?)", like(email))
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.RoleID != uuid.Nil {
		q = q.Where("role_id = ?", filter.RoleID)
	}

	order := p.OrderBy(map[string]string{
		"email":     "email",
		"createdAt": "created_at",
		"isActive":  "is_active",
	}, "created_at")

	users, total, err := paginate[models.User](q, p, order, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Role")
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update saves the given columns of a user of a tenant
func (r *UserRepository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
