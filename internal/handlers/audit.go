package handlers

import (
	"net/http"

	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
)

// AuditHandler serves the tenant's audit log
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the tenant's audit log, newest first
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	userID, err := queryID(r, "userId")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.AuditFilter{
		Action:     q.Get("action"),
		UserID:     userID,
		ResourceID: q.Get("resourceId"),
		Status:     q.Get("status"),
	}

	page, err := h.audit.List(r.Context(), tenant, filter, models.PageParamsFromQuery(q))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}
