package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnitReferenceRepository handles tenant unit references
type UnitReferenceRepository struct {
	db *gorm.DB
}

// NewUnitReferenceRepository creates a new unit reference repository
func NewUnitReferenceRepository(db *gorm.DB) *UnitReferenceRepository {
	return &UnitReferenceRepository{db: db}
}

func (r *UnitReferenceRepository) Create(ctx context.Context, unit *models.UnitReference) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(unit).Error; err != nil {
		return fmt.Errorf("failed to create unit reference: %w", err)
	}
	return nil
}

func (r *UnitReferenceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.UnitReference, error) {
	var unit models.UnitReference
	if err := r.db.WithContext(ctx).
		Preload("Currency").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&unit).Error; err != nil {
		return nil, fmt.Errorf("failed to get unit reference: %w", err)
	}
	return &unit, nil
}

func (r *UnitReferenceRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.UnitReference{}).Where("tenant_id = ? AND code = ?", tenantID, code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check unit reference code: %w", err)
	}
	return count > 0, nil
}

func (r *UnitReferenceRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) ([]models.UnitReference, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.UnitReference{}).Where("tenant_id = ?", tenantID)
	if p.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", like(p.Search), like(p.Search))
	}
	if filter.CurrencyID != uuid.Nil {
		q = q.Where("currency_id = ?", filter.CurrencyID)
	}

	order := p.OrderBy(map[string]string{
		"code":      "code",
		"name":      "name",
		"value":     "value",
		"createdAt": "created_at",
	}, "code")

	units, total, err := paginate[models.UnitReference](q, p, order, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Currency")
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list unit references: %w", err)
	}
	return units, total, nil
}

func (r *UnitReferenceRepository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.UnitReference{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update unit reference: %w", err)
	}
	return nil
}

// CountTariffs counts insolvency tariffs referencing a unit
func (r *UnitReferenceRepository) CountTariffs(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InsolvencyTariff{}).Where("unit_reference_id = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unit reference tariffs: %w", err)
	}
	return count, nil
}

func (r *UnitReferenceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.UnitReference{}).Error; err != nil {
		return fmt.Errorf("failed to delete unit reference: %w", err)
	}
	return nil
}
