package handlers

import (
	"net/http"

	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// PermissionHandler serves the platform-level permission catalog routes
type PermissionHandler struct {
	permissions *services.PermissionService
}

func NewPermissionHandler(permissions *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

func (h *PermissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePermissionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	permission, err := h.permissions.Create(r.Context(), &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, permission)
}

// CreateByModule creates the four CRUD permissions of a module
func (h *PermissionHandler) CreateByModule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateModulePermissionsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	permissions, err := h.permissions.CreateByModule(r.Context(), req.Module)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, permissions)
}

func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.permissions.List(r.Context(), models.PageParamsFromQuery(r.URL.Query()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *PermissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	permission, err := h.permissions.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, permission)
}

func (h *PermissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.UpdatePermissionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	permission, err := h.permissions.Update(r.Context(), id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, permission)
}

func (h *PermissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.permissions.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
