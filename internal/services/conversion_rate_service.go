package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConversionRateService manages exchange rates between a tenant's currencies
type ConversionRateService struct {
	rates      *repository.ConversionRateRepository
	currencies *repository.CurrencyRepository
}

// NewConversionRateService creates a new conversion rate service
func NewConversionRateService(db *gorm.DB) *ConversionRateService {
	return &ConversionRateService{
		rates:      repository.NewConversionRateRepository(db),
		currencies: repository.NewCurrencyRepository(db),
	}
}

// Create adds the rate converting origin into destination. Each ordered pair has one rate.
func (s *ConversionRateService) Create(ctx context.Context, tenantID uuid.UUID, req *models.ConversionRateRequest) (*models.ConversionRate, error) {
	if err := s.check(ctx, tenantID, uuid.Nil, req.Value, req.OriginCurrencyID, req.DestinationCurrencyID); err != nil {
		return nil, err
	}

	rate := &models.ConversionRate{
		Value:                 req.Value,
		OriginCurrencyID:      req.OriginCurrencyID,
		DestinationCurrencyID: req.DestinationCurrencyID,
		TenantID:              tenantID,
	}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, conflictOr(err, "a conversion rate for this currency pair already exists")
	}
	return s.Get(ctx, tenantID, rate.ID)
}

// List returns a page of the tenant's conversion rates
func (s *ConversionRateService) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) (*models.Page[models.ConversionRate], error) {
	rates, total, err := s.rates.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(rates, total, p), nil
}

// Get retrieves a conversion rate of the tenant
func (s *ConversionRateService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.ConversionRate, error) {
	rate, err := s.rates.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "conversion rate %s not found", id)
	}
	return rate, nil
}

// Update changes a rate's value or currencies
func (s *ConversionRateService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateConversionRateRequest) (*models.ConversionRate, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	value, origin, destination := current.Value, current.OriginCurrencyID, current.DestinationCurrencyID
	if req.Value != nil {
		value = *req.Value
	}
	if req.OriginCurrencyID != nil {
		origin = *req.OriginCurrencyID
	}
	if req.DestinationCurrencyID != nil {
		destination = *req.DestinationCurrencyID
	}
	if err := s.check(ctx, tenantID, id, value, origin, destination); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"value":                   value,
		"origin_currency_id":      origin,
		"destination_currency_id": destination,
	}
	if err := s.rates.Update(ctx, tenantID, id, updates); err != nil {
		return nil, conflictOr(err, "a conversion rate for this currency pair already exists")
	}
	return s.Get(ctx, tenantID, id)
}

// Delete removes a conversion rate
func (s *ConversionRateService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return s.rates.Delete(ctx, tenantID, id)
}

func (s *ConversionRateService) check(ctx context.Context, tenantID, id uuid.UUID, value decimal.Decimal, origin, destination uuid.UUID) error {
	if !value.IsPositive() {
		return invalid("value must be greater than zero")
	}
	if origin == uuid.Nil || destination == uuid.Nil {
		return invalid("origin_currency_id and destination_currency_id are required")
	}
	if origin == destination {
		return invalid("origin and destination currencies must differ")
	}
	for _, currencyID := range []uuid.UUID{origin, destination} {
		if _, err := s.currencies.GetByID(ctx, tenantID, currencyID); err != nil {
			return notFoundOr(err, "currency %s not found", currencyID)
		}
	}

	exists, err := s.rates.ExistsForPair(ctx, tenantID, origin, destination, id)
	if err != nil {
		return err
	}
	if exists {
		return conflict("a conversion rate for this currency pair already exists")
	}
	return nil
}
