package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"gorm.io/gorm"
)

// UnitReferenceService manages the legal reference units of a tenant
type UnitReferenceService struct {
	units      *repository.UnitReferenceRepository
	currencies *repository.CurrencyRepository
}

// NewUnitReferenceService creates a new unit reference service
func NewUnitReferenceService(db *gorm.DB) *UnitReferenceService {
	return &UnitReferenceService{
		units:      repository.NewUnitReferenceRepository(db),
		currencies: repository.NewCurrencyRepository(db),
	}
}

// Create adds a unit reference valued in one of the tenant's currencies
func (s *UnitReferenceService) Create(ctx context.Context, tenantID uuid.UUID, req *models.UnitReferenceRequest) (*models.UnitReference, error) {
	code, err := requireText("code", strings.ToUpper(req.Code), 50)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", req.Name, 150)
	if err != nil {
		return nil, err
	}
	if !req.Value.IsPositive() {
		return nil, invalid("value must be greater than zero")
	}
	if err := s.requireCurrency(ctx, tenantID, req.CurrencyID); err != nil {
		return nil, err
	}

	exists, err := s.units.ExistsByCode(ctx, tenantID, code, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("unit reference %q already exists", code)
	}

	unit := &models.UnitReference{
		Code:       code,
		Name:       name,
		Value:      req.Value,
		CurrencyID: req.CurrencyID,
		TenantID:   tenantID,
	}
	if err := s.units.Create(ctx, unit); err != nil {
		return nil, conflictOr(err, "unit reference %q already exists", code)
	}
	return s.Get(ctx, tenantID, unit.ID)
}

// List returns a page of the tenant's unit references
func (s *UnitReferenceService) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) (*models.Page[models.UnitReference], error) {
	units, total, err := s.units.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(units, total, p), nil
}

// Get retrieves a unit reference of the tenant
func (s *UnitReferenceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.UnitReference, error) {
	unit, err := s.units.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "unit reference %s not found", id)
	}
	return unit, nil
}

func (s *UnitReferenceService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateUnitReferenceRequest) (*models.UnitReference, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Code != nil {
		code, err := requireText("code", strings.ToUpper(*req.Code), 50)
		if err != nil {
			return nil, err
		}
		if code != current.Code {
			exists, err := s.units.ExistsByCode(ctx, tenantID, code, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, conflict("unit reference %q already exists", code)
			}
			updates["code"] = code
		}
	}
	if req.Name != nil {
		name, err := requireText("name", *req.Name, 150)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if req.Value != nil {
		if !req.Value.IsPositive() {
			return nil, invalid("value must be greater than zero")
		}
		updates["value"] = *req.Value
	}
	if req.CurrencyID != nil {
		if err := s.requireCurrency(ctx, tenantID, *req.CurrencyID); err != nil {
			return nil, err
		}
		updates["currency_id"] = *req.CurrencyID
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := s.units.Update(ctx, tenantID, id, updates); err != nil {
		return nil, conflictOr(err, "unit reference code already exists")
	}
	return s.Get(ctx, tenantID, id)
}

// Delete removes a unit reference no tariff is expressed in
func (s *UnitReferenceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	tariffs, err := s.units.CountTariffs(ctx, id)
	if err != nil {
		return err
	}
	if tariffs > 0 {
		return conflict("unit reference %q is used by %d insolvency tariffs", current.Code, tariffs)
	}
	return s.units.Delete(ctx, tenantID, id)
}

func (s *UnitReferenceService) requireCurrency(ctx context.Context, tenantID, currencyID uuid.UUID) error {
	if currencyID == uuid.Nil {
		return invalid("currency_id is required")
	}
	if _, err := s.currencies.GetByID(ctx, tenantID, currencyID); err != nil {
		return notFoundOr(err, "currency %s not found", currencyID)
	}
	return nil
}
