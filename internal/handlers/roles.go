package handlers

import (
	"net/http"

	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// RoleHandler serves the tenant's roles and their permission sets
type RoleHandler struct {
	roles *services.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.CreateRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := h.roles.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, role)
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.RoleFilter{Name: q.Get("name"), PermissionCode: q.Get("permission")}

	page, err := h.roles.List(r.Context(), tenant, filter, models.PageParamsFromQuery(q))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := h.roles.Get(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.UpdateRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	role, err := h.roles.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, role)
}

// AssignPermissions replaces the role's permission set by ids or by codes, never both
func (h *RoleHandler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.AssignPermissionsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(req.PermissionCodes) > 0 && len(req.PermissionIDs) > 0 {
		respond.Error(w, r, &services.Error{Kind: services.ErrValidation, Message: "send either permission_ids or permission_codes, not both"})
		return
	}

	var role *models.Role
	if len(req.PermissionCodes) > 0 {
		role, err = h.roles.AssignPermissionCodes(r.Context(), tenant, id, req.PermissionCodes)
	} else {
		role, err = h.roles.AssignPermissions(r.Context(), tenant, id, req.PermissionIDs)
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, role)
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.roles.Delete(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
