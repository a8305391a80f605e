package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsolvencyTariffRepository handles tenant insolvency tariff tables
type InsolvencyTariffRepository struct {
	db *gorm.DB
}

// NewInsolvencyTariffRepository creates a new insolvency tariff repository
func NewInsolvencyTariffRepository(db *gorm.DB) *InsolvencyTariffRepository {
	return &InsolvencyTariffRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *InsolvencyTariffRepository) WithTx(tx *gorm.DB) *InsolvencyTariffRepository {
	return &InsolvencyTariffRepository{db: tx}
}

func (r *InsolvencyTariffRepository) Create(ctx context.Context, tariff *models.InsolvencyTariff) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(tariff).Error; err != nil {
		return fmt.Errorf("failed to create insolvency tariff: %w", err)
	}
	return nil
}

func (r *InsolvencyTariffRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InsolvencyTariff, error) {
	var tariff models.InsolvencyTariff
	if err := r.db.WithContext(ctx).
		Preload("UnitReference").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&tariff).Error; err != nil {
		return nil, fmt.Errorf("failed to get insolvency tariff: %w", err)
	}
	return &tariff, nil
}

func (r *InsolvencyTariffRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.InsolvencyTariff{}).Where("tenant_id = ? AND code = ?", tenantID, code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check insolvency tariff code: %w", err)
	}
	return count > 0, nil
}

// FindOverlapping returns a tariff of the tenant whose range intersects [lower, upper), if any
func (r *InsolvencyTariffRepository) FindOverlapping(ctx context.Context, tenantID uuid.UUID, lower, upper decimal.Decimal, exclude uuid.UUID) (*models.InsolvencyTariff, error) {
	// Limits are compared in Go so decimal precision does not depend on the driver's numeric affinity.
	var candidates []models.InsolvencyTariff
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Order("lower_limit").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to check tariff ranges: %w", err)
	}

	for i := range candidates {
		if candidates[i].Overlaps(lower, upper) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *InsolvencyTariffRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) ([]models.InsolvencyTariff, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.InsolvencyTariff{}).Where("tenant_id = ?", tenantID)
	if p.Search != "" {
		q = q.Where("LOWER(code) LIKE LOWER(?)", like(p.Search))
	}
	if filter.UnitReferenceID != uuid.Nil {
		q = q.Where("unit_reference_id = ?", filter.UnitReferenceID)
	}

	order := p.OrderBy(map[string]string{
		"code":       "code",
		"lowerLimit": "lower_limit",
		"upperLimit": "upper_limit",
		"value":      "value",
	}, "lower_limit")

	tariffs, total, err := paginate[models.InsolvencyTariff](q, p, order, func(db *gorm.DB) *gorm.DB {
		return db.Preload("UnitReference")
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list insolvency tariffs: %w", err)
	}
	return tariffs, total, nil
}

func (r *InsolvencyTariffRepository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.InsolvencyTariff{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update insolvency tariff: %w", err)
	}
	return nil
}

func (r *InsolvencyTariffRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.InsolvencyTariff{}).Error; err != nil {
		return fmt.Errorf("failed to delete insolvency tariff: %w", err)
	}
	return nil
}
