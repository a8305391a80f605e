package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// scoped reads the tenant and the {id} path parameter, answering the request itself on failure
func scoped(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return uuid.Nil, uuid.Nil, false
	}
	return tenant, id, true
}

// referenceFilter reads the currencyId and unitReferenceId query filters
func referenceFilter(r *http.Request) (models.ReferenceFilter, error) {
	currencyID, err := queryID(r, "currencyId")
	if err != nil {
		return models.ReferenceFilter{}, err
	}
	unitID, err := queryID(r, "unitReferenceId")
	if err != nil {
		return models.ReferenceFilter{}, err
	}
	return models.ReferenceFilter{CurrencyID: currencyID, UnitReferenceID: unitID}, nil
}

// CurrencyHandler serves /currencies
type CurrencyHandler struct {
	currencies *services.CurrencyService
}

func NewCurrencyHandler(currencies *services.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies}
}

func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req models.CurrencyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	currency, err := h.currencies.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, currency)
}

func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.currencies.List(r.Context(), tenant, models.PageParamsFromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	currency, err := h.currencies.Get(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, currency)
}

func (h *CurrencyHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}
	var req models.UpdateCurrencyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	currency, err := h.currencies.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, currency)
}

// SetBase makes the currency the tenant's base currency
func (h *CurrencyHandler) SetBase(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	currency, err := h.currencies.SetBase(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, currency)
}

func (h *CurrencyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	if err := h.currencies.Delete(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

// ConversionRateHandler serves /conversion-rates
type ConversionRateHandler struct {
	rates *services.ConversionRateService
}

func NewConversionRateHandler(rates *services.ConversionRateService) *ConversionRateHandler {
	return &ConversionRateHandler{rates: rates}
}

func (h *ConversionRateHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req models.ConversionRateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	rate, err := h.rates.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, rate)
}

func (h *ConversionRateHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	filter, err := referenceFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.rates.List(r.Context(), tenant, filter, models.PageParamsFromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *ConversionRateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	rate, err := h.rates.Get(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, rate)
}

func (h *ConversionRateHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}
	var req models.UpdateConversionRateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	rate, err := h.rates.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, rate)
}

func (h *ConversionRateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	if err := h.rates.Delete(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

// UnitReferenceHandler serves /units-reference
type UnitReferenceHandler struct {
	units *services.UnitReferenceService
}

func NewUnitReferenceHandler(units *services.UnitReferenceService) *UnitReferenceHandler {
	return &UnitReferenceHandler{units: units}
}

func (h *UnitReferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req models.UnitReferenceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	unit, err := h.units.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, unit)
}

func (h *UnitReferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	filter, err := referenceFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.units.List(r.Context(), tenant, filter, models.PageParamsFromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *UnitReferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	unit, err := h.units.Get(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, unit)
}

func (h *UnitReferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}
	var req models.UpdateUnitReferenceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	unit, err := h.units.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, unit)
}

func (h *UnitReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	if err := h.units.Delete(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

// InsolvencyTariffHandler serves /insolvency-tariffs
type InsolvencyTariffHandler struct {
	tariffs *services.InsolvencyTariffService
}

func NewInsolvencyTariffHandler(tariffs *services.InsolvencyTariffService) *InsolvencyTariffHandler {
	return &InsolvencyTariffHandler{tariffs: tariffs}
}

func (h *InsolvencyTariffHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var req models.InsolvencyTariffRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tariff, err := h.tariffs.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, tariff)
}

func (h *InsolvencyTariffHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	filter, err := referenceFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	page, err := h.tariffs.List(r.Context(), tenant, filter, models.PageParamsFromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *InsolvencyTariffHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	tariff, err := h.tariffs.Get(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tariff)
}

func (h *InsolvencyTariffHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}
	var req models.UpdateInsolvencyTariffRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tariff, err := h.tariffs.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tariff)
}

func (h *InsolvencyTariffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, id, ok := scoped(w, r)
	if !ok {
		return
	}

	if err := h.tariffs.Delete(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
