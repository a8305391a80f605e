package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"gorm.io/gorm"
)

// InsolvencyTariffService manages a tenant's insolvency tariff table.
// Ranges are half-open [lower, upper) and never overlap within a tenant.
type InsolvencyTariffService struct {
	db      *gorm.DB
	tariffs *repository.InsolvencyTariffRepository
	tenants *repository.TenantRepository
	units   *repository.UnitReferenceRepository
}

// NewInsolvencyTariffService creates a new insolvency tariff service
func NewInsolvencyTariffService(db *gorm.DB) *InsolvencyTariffService {
	return &InsolvencyTariffService{
		db:      db,
		tariffs: repository.NewInsolvencyTariffRepository(db),
		tenants: repository.NewTenantRepository(db),
		units:   repository.NewUnitReferenceRepository(db),
	}
}

// Create adds a tariff whose range overlaps no existing tariff of the tenant
func (s *InsolvencyTariffService) Create(ctx context.Context, tenantID uuid.UUID, req *models.InsolvencyTariffRequest) (*models.InsolvencyTariff, error) {
	tariff := &models.InsolvencyTariff{
		UnitReferenceID: req.UnitReferenceID,
		LowerLimit:      req.LowerLimit,
		UpperLimit:      req.UpperLimit,
		Value:           req.Value,
		ValueMaxLaw:     req.ValueMaxLaw,
		TenantID:        tenantID,
	}
	code, err := requireText("code", strings.ToUpper(req.Code), 50)
	if err != nil {
		return nil, err
	}
	tariff.Code = code
	if err := validateTariff(tariff); err != nil {
		return nil, err
	}
	if err := s.requireUnit(ctx, tenantID, tariff.UnitReferenceID); err != nil {
		return nil, err
	}

	err = s.guarded(ctx, tenantID, uuid.Nil, tariff, func(tariffs *repository.InsolvencyTariffRepository) error {
		return tariffs.Create(ctx, tariff)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, tariff.ID)
}

// List returns a page of the tenant's tariffs
func (s *InsolvencyTariffService) List(ctx context.Context, tenantID uuid.UUID, filter models.ReferenceFilter, p models.PageParams) (*models.Page[models.InsolvencyTariff], error) {
	tariffs, total, err := s.tariffs.List(ctx, tenantID, filter, p)
	if err != nil {
		return nil, err
	}
	return models.NewPage(tariffs, total, p), nil
}

// Get retrieves a tariff of the tenant
func (s *InsolvencyTariffService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InsolvencyTariff, error) {
	tariff, err := s.tariffs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundOr(err, "insolvency tariff %s not found", id)
	}
	return tariff, nil
}

// Update changes a tariff; the resulting range must still overlap no other tariff
func (s *InsolvencyTariffService) Update(ctx context.Context, tenantID, id uuid.UUID, req *models.UpdateInsolvencyTariffRequest) (*models.InsolvencyTariff, error) {
	next, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	next.UnitReference = nil

	if req.Code != nil {
		if next.Code, err = requireText("code", strings.ToUpper(*req.Code), 50); err != nil {
			return nil, err
		}
	}
	if req.UnitReferenceID != nil {
		next.UnitReferenceID = req.UnitReferenceID
		if *req.UnitReferenceID == uuid.Nil {
			next.UnitReferenceID = nil
		}
	}
	if req.LowerLimit != nil {
		next.LowerLimit = *req.LowerLimit
	}
	if req.UpperLimit != nil {
		next.UpperLimit = *req.UpperLimit
	}
	if req.Value != nil {
		next.Value = *req.Value
	}
	if req.ValueMaxLaw != nil {
		next.ValueMaxLaw = *req.ValueMaxLaw
	}
	if err := validateTariff(next); err != nil {
		return nil, err
	}
	if err := s.requireUnit(ctx, tenantID, next.UnitReferenceID); err != nil {
		return nil, err
	}

	err = s.guarded(ctx, tenantID, id, next, func(tariffs *repository.InsolvencyTariffRepository) error {
		return tariffs.Update(ctx, tenantID, id, map[string]any{
			"code":              next.Code,
			"unit_reference_id": next.UnitReferenceID,
			"lower_limit":       next.LowerLimit,
			"upper_limit":       next.UpperLimit,
			"value":             next.Value,
			"value_max_law":     next.ValueMaxLaw,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

// Delete removes a tariff
func (s *InsolvencyTariffService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return s.tariffs.Delete(ctx, tenantID, id)
}

// guarded runs write after checking code uniqueness and range overlap, holding the
// tenant row lock so concurrent writers cannot both pass the checks
func (s *InsolvencyTariffService) guarded(ctx context.Context, tenantID, exclude uuid.UUID, t *models.InsolvencyTariff, write func(*repository.InsolvencyTariffRepository) error) error {
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.tenants.WithTx(tx).Lock(ctx, tenantID); err != nil {
			return notFoundOr(err, "tenant %s not found", tenantID)
		}
		tariffs := s.tariffs.WithTx(tx)

		exists, err := tariffs.ExistsByCode(ctx, tenantID, t.Code, exclude)
		if err != nil {
			return err
		}
		if exists {
			return conflict("insolvency tariff %q already exists", t.Code)
		}

		overlapping, err := tariffs.FindOverlapping(ctx, tenantID, t.LowerLimit, t.UpperLimit, exclude)
		if err != nil {
			return err
		}
		if overlapping != nil {
			return conflict("range [%s, %s) overlaps tariff %q [%s, %s)",
				t.LowerLimit, t.UpperLimit, overlapping.Code, overlapping.LowerLimit, overlapping.UpperLimit)
		}
		return write(tariffs)
	})
	return conflictOr(err, "insolvency tariff %q already exists", t.Code)
}

func (s *InsolvencyTariffService) requireUnit(ctx context.Context, tenantID uuid.UUID, unitID *uuid.UUID) error {
	if unitID == nil {
		return nil
	}
	if _, err := s.units.GetByID(ctx, tenantID, *unitID); err != nil {
		return notFoundOr(err, "unit reference %s not found", *unitID)
	}
	return nil
}

func validateTariff(t *models.InsolvencyTariff) error {
	switch {
	case t.LowerLimit.IsNegative():
		return invalid("lower_limit must not be negative")
	case !t.UpperLimit.GreaterThan(t.LowerLimit):
		return invalid("upper_limit must be greater than lower_limit")
	case !t.Value.IsPositive():
		return invalid("value must be greater than zero")
	case t.ValueMaxLaw.LessThan(t.Value):
		return invalid("value_max_law must not be less than value")
	}
	return nil
}
