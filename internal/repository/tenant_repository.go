package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantRepository handles tenant database operations
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *TenantRepository) WithTx(tx *gorm.DB) *TenantRepository {
	return &TenantRepository{db: tx}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// GetBySubdomain retrieves a tenant by subdomain, active or not
func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant by subdomain: %w", err)
	}
	return &tenant, nil
}

// GetActiveBySubdomain retrieves an active tenant by subdomain
func (r *TenantRepository) GetActiveBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).
		Where("subdomain = ? AND is_active = ?", subdomain, true).
		First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get active tenant: %w", err)
	}
	return &tenant, nil
}

// ExistsByNameOrSubdomain reports whether another tenant already uses name or subdomain
func (r *TenantRepository) ExistsByNameOrSubdomain(ctx context.Context, name, subdomain string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("(name = ? OR subdomain = ?)", name, subdomain)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check tenant uniqueness: %w", err)
	}
	return count > 0, nil
}

// List returns a page of tenants
func (r *TenantRepository) List(ctx context.Context, filter models.TenantFilter, p models.PageParams) ([]models.Tenant, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Tenant{})
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(subdomain) LIKE LOWER(?)", like(filter.Search), like(filter.Search))
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	order := p.OrderBy(map[string]string{
		"name":      "name",
		"subdomain": "subdomain",
		"createdAt": "created_at",
	}, "created_at")

	tenants, total, err := paginate[models.Tenant](q, p, order)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, total, nil
}

// Update saves the given columns of a tenant
func (r *TenantRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return nil
}

// Lock takes a row lock on the tenant, serializing tenant-wide checks until the transaction ends
func (r *TenantRepository) Lock(ctx context.Context, id uuid.UUID) error {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&tenant).Error; err != nil {
		return fmt.Errorf("failed to lock tenant: %w", err)
	}
	return nil
}
