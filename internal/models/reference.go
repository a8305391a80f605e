package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Currency is a tenant-scoped currency. At most one per tenant is the base currency.
type Currency struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_currencies_code_tenant" json:"code"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Symbol    string    `gorm:"type:varchar(10)" json:"symbol,omitempty"`
	IsBase    bool      `gorm:"not null" json:"is_base"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_currencies_code_tenant;index" json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Currency) TableName() string {
	return "currencies"
}

func (c *Currency) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ConversionRate converts one unit of the origin currency into the destination currency
type ConversionRate struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Value                 decimal.Decimal `gorm:"type:decimal(16,6);not null" json:"value"`
	OriginCurrencyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_conversion_rates_pair" json:"origin_currency_id"`
	DestinationCurrencyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_conversion_rates_pair" json:"destination_currency_id"`
	OriginCurrency        *Currency       `gorm:"foreignKey:OriginCurrencyID" json:"origin_currency,omitempty"`
	DestinationCurrency   *Currency       `gorm:"foreignKey:DestinationCurrencyID" json:"destination_currency,omitempty"`
	TenantID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_conversion_rates_pair;index" json:"tenant_id"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (ConversionRate) TableName() string {
	return "conversion_rates"
}

func (c *ConversionRate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UnitReference is a legal reference unit valued in a currency
type UnitReference struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_unit_references_code_tenant" json:"code"`
	Name       string          `gorm:"type:varchar(150);not null" json:"name"`
	Value      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"value"`
	CurrencyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"currency_id"`
	Currency   *Currency       `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_unit_references_code_tenant;index" json:"tenant_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (UnitReference) TableName() string {
	return "unit_references"
}

func (u *UnitReference) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// InsolvencyTariff is the fee applicable to claims in [LowerLimit, UpperLimit)
type InsolvencyTariff struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_insolvency_tariffs_code_tenant" json:"code"`
	UnitReferenceID *uuid.UUID      `gorm:"type:uuid;index" json:"unit_reference_id,omitempty"`
	UnitReference   *UnitReference  `gorm:"foreignKey:UnitReferenceID" json:"unit_reference,omitempty"`
	LowerLimit      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"lower_limit"`
	UpperLimit      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"upper_limit"`
	Value           decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"value"`
	ValueMaxLaw     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"value_max_law"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_insolvency_tariffs_code_tenant;index" json:"tenant_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (InsolvencyTariff) TableName() string {
	return "insolvency_tariffs"
}

func (t *InsolvencyTariff) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Overlaps reports whether the range of t intersects [lower, upper)
func (t *InsolvencyTariff) Overlaps(lower, upper decimal.Decimal) bool {
	return t.LowerLimit.LessThan(upper) && lower.LessThan(t.UpperLimit)
}

type CurrencyRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

type UpdateCurrencyRequest struct {
	Code   *string `json:"code,omitempty"`
	Name   *string `json:"name,omitempty"`
	Symbol *string `json:"symbol,omitempty"`
}

type ConversionRateRequest struct {
	Value                 decimal.Decimal `json:"value"`
	OriginCurrencyID      uuid.UUID       `json:"origin_currency_id"`
	DestinationCurrencyID uuid.UUID       `json:"destination_currency_id"`
}

type UpdateConversionRateRequest struct {
	Value                 *decimal.Decimal `json:"value,omitempty"`
	OriginCurrencyID      *uuid.UUID       `json:"origin_currency_id,omitempty"`
	DestinationCurrencyID *uuid.UUID       `json:"destination_currency_id,omitempty"`
}

type UnitReferenceRequest struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	CurrencyID uuid.UUID       `json:"currency_id"`
}

type UpdateUnitReferenceRequest struct {
	Code       *string          `json:"code,omitempty"`
	Name       *string          `json:"name,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	CurrencyID *uuid.UUID       `json:"currency_id,omitempty"`
}

type InsolvencyTariffRequest struct {
	Code            string          `json:"code"`
	UnitReferenceID *uuid.UUID      `json:"unit_reference_id,omitempty"`
	LowerLimit      decimal.Decimal `json:"lower_limit"`
	UpperLimit      decimal.Decimal `json:"upper_limit"`
	Value           decimal.Decimal `json:"value"`
	ValueMaxLaw     decimal.Decimal `json:"value_max_law"`
}

type UpdateInsolvencyTariffRequest struct {
	Code            *string          `json:"code,omitempty"`
	UnitReferenceID *uuid.UUID       `json:"unit_reference_id,omitempty"`
	LowerLimit      *decimal.Decimal `json:"lower_limit,omitempty"`
	UpperLimit      *decimal.Decimal `json:"upper_limit,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`
	ValueMaxLaw     *decimal.Decimal `json:"value_max_law,omitempty"`
}

// ReferenceFilter narrows reference-data listings
type ReferenceFilter struct {
	CurrencyID      uuid.UUID
	UnitReferenceID uuid.UUID
}
