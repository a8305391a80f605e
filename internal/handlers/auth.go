package handlers

import (
	"net/http"

	"github.com/lexdesk/backoffice/internal/middleware"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// AuthHandler serves login and the caller's own profile
type AuthHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Login exchanges tenant credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req models.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, err := h.auth.Authenticate(r.Context(), tenant, req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, token)
}

// Me returns the caller's profile with the permissions its role currently holds
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, r, services.Unauthenticated("authentication required", nil))
		return
	}

	profile, err := h.users.Profile(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}
