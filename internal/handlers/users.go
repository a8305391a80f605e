package handlers

import (
	"net/http"

	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// UserHandler serves the tenant's users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.CreateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), tenant, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	active, err := queryBool(r, "isActive")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	roleID, err := queryID(r, "roleId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.UserFilter{Email: q.Get("email"), IsActive: active, RoleID: roleID}

	page, err := h.users.List(r.Context(), tenant, filter, models.PageParamsFromQuery(q))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	user, err := h.users.GetByID(r.Context(), tenant, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req models.UpdateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.Update(r.Context(), tenant, id, &req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
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

	var req models.AssignRoleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.users.AssignRole(r.Context(), tenant, id, req.RoleID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// Delete deactivates the user
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.users.Deactivate(r.Context(), tenant, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}
