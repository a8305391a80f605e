package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
)

// CurrencyRepository handles tenant currencies
type CurrencyRepository struct {
	db *gorm.DB
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(db *gorm.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *CurrencyRepository) WithTx(tx *gorm.DB) *CurrencyRepository {
	return &CurrencyRepository{db: tx}
}

func (r *CurrencyRepository) Create(ctx context.Context, currency *models.Currency) error {
	if err := r.db.WithContext(ctx).Create(currency).Error; err != nil {
		return fmt.Errorf("failed to create currency: %w", err)
	}
	return nil
}

func (r *CurrencyRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Currency, error) {
	var currency models.Currency
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&currency).Error; err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &currency, nil
}

// GetBase retrieves the tenant's base currency
func (r *CurrencyRepository) GetBase(ctx context.Context, tenantID uuid.UUID) (*models.Currency, error) {
	var currency models.Currency
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND is_base = ?", tenantID, true).First(&currency).Error; err != nil {
		return nil, fmt.Errorf("failed to get base currency: %w", err)
	}
	return &currency, nil
}

func (r *CurrencyRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Currency{}).Where("tenant_id = ? AND code = ?", tenantID, code)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check currency code: %w", err)
	}
	return count > 0, nil
}

func (r *CurrencyRepository) List(ctx context.Context, tenantID uuid.UUID, p models.PageParams) ([]models.Currency, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Currency{}).Where("tenant_id = ?", tenantID)
	if p.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", like(p.Search), like(p.Search))
	}

	order := p.OrderBy(map[string]string{
		"code":      "code",
		"name":      "name",
		"createdAt": "created_at",
	}, "code")

	currencies, total, err := paginate[models.Currency](q, p, order)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, total, nil
}

func (r *CurrencyRepository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Currency{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update currency: %w", err)
	}
	return nil
}

// SetBase makes id the only base currency of the tenant. Callers run it in a transaction.
func (r *CurrencyRepository) SetBase(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Currency{}).
		Where("tenant_id = ? AND is_base = ?", tenantID, true).
		Update("is_base", false).Error; err != nil {
		return fmt.Errorf("failed to unset base currency: %w", err)
	}
	if err := db.Model(&models.Currency{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("is_base", true).Error; err != nil {
		return fmt.Errorf("failed to set base currency: %w", err)
	}
	return nil
}

// CountReferences counts unit references and conversion rates using a currency
func (r *CurrencyRepository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var units, rates int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.UnitReference{}).Where("currency_id = ?", id).Count(&units).Error; err != nil {
		return 0, fmt.Errorf("failed to count currency references: %w", err)
	}
	if err := db.Model(&models.ConversionRate{}).
		Where("origin_currency_id = ? OR destination_currency_id = ?", id, id).
		Count(&rates).Error; err != nil {
		return 0, fmt.Errorf("failed to count currency references: %w", err)
	}
	return units + rates, nil
}

func (r *CurrencyRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Currency{}).Error; err != nil {
		return fmt.Errorf("failed to delete currency: %w", err)
	}
	return nil
}
