package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"gorm.io/gorm"
)

// CurrencyService manages the currencies of a tenant
type CurrencyService struct {
	db         *gorm.DB
	currencies *repository.CurrencyRepository
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(db *gorm.DB) *CurrencyService {
	return &CurrencyService{db: db, currencies: repository.NewCurrencyRepository(db)}
}

// Create adds a currency. The first currency of a tenant becomes its base currency.
func (s *CurrencyService) Create(ctx context.Context, tenantID uuid.UUID, req *models.CurrencyRequest) (*models.Currency, error) {
	code, err := requireText("code", strings.ToUpper(req.Code), 10)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", req.Name, 100)
	if err != nil {
		return nil, err
	}

	currency := &models.Currency{
		Code:     code,
		Name:     name,
		Symbol:   strings.TrimSpace(req.Symbol),
		TenantID: tenantID,
	}
	err = repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		currencies := s.currencies.WithTx(tx)

		exists, err := currencies.ExistsByCode(ctx, tenantID, code, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return conflict("currency %q already exists", code)
		}

		_, err = currencies.GetBase(ctx, tenantID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			currency.IsBase = true
		case err != nil:
			return err
		}
		return currencies.Create(ctx, currency)
	})
	if err != nil {
		return nil, conflictOr(err, "currency %q already exists", code)
	}
	return currency, nil
}

// List returns a page of the tenant's currencies
func (s *CurrencyService) List(ctx context.Context, tenantID uuid.UUID, p models.PageParams) (*models.Page[models.Currency], error) {
	currencies, total, err := s.currencies.List(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(currencies, total, p), nil
}

// Get retrieves a currency of the tenant
func (s *CurrencyService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Currency, error) {
	currency, err := s.currencies.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "currency %s not found", id)
	}
	return currency, nil
}

// Update changes a currency's code, name or symbol
func (s *CurrencyService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateCurrencyRequest) (*models.Currency, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Code != nil {
		code, err := requireText("code", strings.ToUpper(*req.Code), 10)
		if err != nil {
			return nil, err
		}
		if code != current.Code {
			exists, err := s.currencies.ExistsByCode(ctx, tenantID, code, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, conflict("currency %q already exists", code)
			}
			updates["code"] = code
		}
	}
	if req.Name != nil {
		name, err := requireText("name", *req.Name, 100)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Symbol != nil {
		updates["symbol"] = strings.TrimSpace(*req.Symbol)
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := s.currencies.Update(ctx, tenantID, id, updates); err != nil {
		return nil, conflictOr(err, "currency code already exists")
	}
	return s.Get(ctx, tenantID, id)
}

// SetBase makes id the tenant's only base currency
func (s *CurrencyService) SetBase(ctx context.Context, tenantID, id uuid.UUID) (*models.Currency, error) {
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		currencies := s.currencies.WithTx(tx)
		if _, err := currencies.GetByID(ctx, tenantID, id); err != nil {
			return notFoundOr(err, "currency %s not found", id)
		}
		return currencies.SetBase(ctx, tenantID, id)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Delete removes a currency that is neither the base currency nor referenced
func (s *CurrencyService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if current.IsBase {
		return conflict("currency %q is the base currency", current.Code)
	}

	refs, err := s.currencies.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return conflict("currency %q is used by %d unit references or conversion rates", current.Code, refs)
	}
	return s.currencies.Delete(ctx, tenantID, id)
}
