package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/middleware"
	"github.com/lexdesk/backoffice/internal/services"
)

var errNoTenant = errors.New("tenant ID not found in request context")

// tenantID returns the tenant resolved for the request
func tenantID(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.GetTenantID(r.Context())
	if !ok {
		return uuid.Nil, errNoTenant
	}
	return id, nil
}

// pathID parses the named URL parameter as a uuid
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &services.Error{Kind: services.ErrValidation, Message: "invalid " + name + " " + strconv.Quote(raw), Cause: err}
	}
	return id, nil
}

// queryID parses an optional uuid query parameter; absent yields uuid.Nil
func queryID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &services.Error{Kind: services.ErrValidation, Message: "invalid " + name + " " + strconv.Quote(raw), Cause: err}
	}
	return id, nil
}

// queryBool parses an optional boolean query parameter
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &services.Error{Kind: services.ErrValidation, Message: "invalid " + name + " " + strconv.Quote(raw), Cause: err}
	}
	return &v, nil
}
