package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversionRateRepository handles tenant conversion rates
type ConversionRateRepository struct {
	db *gorm.DB
}

// NewConversionRateRepository creates a new conversion rate repository
func NewConversionRateRepository(db *gorm.DB) *ConversionRateRepository {
	return &ConversionRateRepository{db: db}
}

func (r *ConversionRateRepository) Create(ctx context.Context, rate *models.ConversionRate) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rate).Error; err != nil {
		return fmt.Errorf("failed to create conversion rate: %w", err)
	}
	return nil
}

// GetByID retrieves a conversion rate of a tenant with both currencies
func (r *ConversionRateRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ConversionRate, error) {
	var rate models.ConversionRate
	if err := r.db.WithContext(ctx).
		Scopes(preloadRateCurrencies).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&rate).Error; err != nil {
		return nil, fmt.Errorf("failed to get conversion rate: %w", err)
	}
	return &rate, nil
}

// ExistsForPair reports whether the tenant already has a rate from origin to destination
func (r *ConversionRateRepository) ExistsForPair(ctx context.Context, tenantID, origin, destination, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.ConversionRate{}).
		Where("tenant_id = ? AND origin_currency_id = ? AND destination_currency_id = ?", tenantID, origin, destination)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check conversion rate pair: %w", err)
	}
	return count > 0, nil
}

func (r *ConversionRateRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) ([]models.ConversionRate, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ConversionRate{}).Where("tenant_id = ?", tenantID)
	if filter.CurrencyID != uuid.Nil {
		q = q.Where("origin_currency_id = ? OR destination_currency_id = ?", filter.CurrencyID, filter.CurrencyID)
	}

	order := p.OrderBy(map[string]string{
		"value":     "value",
		"updatedAt": "updated_at",
		"createdAt": "created_at",
	}, "updated_at")

	rates, total, err := paginate[models.ConversionRate](q, p, order, preloadRateCurrencies)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversion rates: %w", err)
	}
	return rates, total, nil
}

func (r *ConversionRateRepository) Update(ctx context.Context, tenantID, id uuid.UUID, updates map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.ConversionRate{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update conversion rate: %w", err)
	}
	return nil
}

func (r *ConversionRateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.ConversionRate{}).Error; err != nil {
		return fmt.Errorf("failed to delete conversion rate: %w", err)
	}
	return nil
}

func preloadRateCurrencies(db *gorm.DB) *gorm.DB {
	return db.Preload("OriginCurrency").Preload("DestinationCurrency")
}
