package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// TenantHandler serves the platform-level tenant administration routes
type TenantHandler struct {
	tenants *services.TenantService
}

func NewTenantHandler(tenants *services.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create provisions a tenant with its Admin role and first user
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTenantRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.tenants.Create(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, result)
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	active, err := queryBool(r, "isActive")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	p := models.PageParamsFromQuery(r.URL.Query())

	page, err := h.tenants.List(r.Context(), models.TenantFilter{Search: p.Search, IsActive: active}, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tenant, err := h.tenants.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) GetBySubdomain(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.GetBySubdomain(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.UpdateTenantRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tenant, err := h.tenants.Update(r.Context(), id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tenant)
}

// Delete deactivates the tenant; rows are kept
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.tenants.Deactivate(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
