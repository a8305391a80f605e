package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTenants map[string]uuid.UUID

func (f fakeTenants) FindActiveBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	if subdomain == "" {
		return nil, services.TenantSelectorMissing(TenantHeader)
	}
	id, ok := f[subdomain]
	if !ok {
		return nil, &services.Error{Kind: services.ErrTenantNotFound, Message: "tenant not found"}
	}
	return &models.Tenant{ID: id, Subdomain: subdomain, IsActive: true}, nil
}

type fakeTokens map[string]*models.Claims

func (f fakeTokens) ParseToken(token string) (*models.Claims, error) {
	claims, ok := f[token]
	if !ok {
		return nil, services.Unauthenticated("invalid or expired token", nil)
	}
	return claims, nil
}

// fakeAccess grants each role the listed codes
type fakeAccess map[uuid.UUID][]string

func (f fakeAccess) Authorize(_ context.Context, user *models.UserContext, required []string) error {
	if len(required) == 0 || services.HasAnyPermission(f[user.RoleID], required) {
		return nil
	}
	return services.Forbidden("forbidden")
}

type guardFixture struct {
	acme, globex uuid.UUID
	handler      func(Policy) http.Handler
}

func newGuardFixture() *guardFixture {
	f := &guardFixture{acme: uuid.New(), globex: uuid.New()}
	viewerRole := uuid.New()

	tenants := fakeTenants{"acme": f.acme, "globex": f.globex}
	tokens := fakeTokens{
		"acme-viewer": {UserID: uuid.New(), TenantID: f.acme, RoleID: viewerRole, Permissions: []string{"cases:read"}},
	}
	access := fakeAccess{viewerRole: {"cases:read"}}
	guard := NewGuard(tokens, access)

	f.handler = func(policy Policy) http.Handler {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := map[string]string{}
			if id, found := GetTenantID(r.Context()); found {
				body["tenant"] = id.String()
			}
			if user, found := GetUser(r.Context()); found {
				body["user"] = user.UserID.String()
				if services.ActorFrom(r.Context()).UserID != user.UserID {
					body["actor"] = "missing"
				}
			}
			respond.JSON(w, http.StatusOK, body)
		})
		return Tenant(tenants)(guard.Protect(policy)(ok))
	}
	return f
}

func serve(h http.Handler, tenant, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	if tenant != "" {
		req.Header.Set(TenantHeader, tenant)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTenantResolution(t *testing.T) {
	f := newGuardFixture()
	h := f.handler(Public())

	rec := serve(h, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "X-Tenant-Subdomain header is required", errorBody(t, rec).Message)

	rec = serve(h, "ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, "acme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.acme.String())
}

func TestGuardAuthentication(t *testing.T) {
	f := newGuardFixture()
	h := f.handler(Authenticated())

	tests := []struct {
		name          string
		tenant        string
		authorization string
		status        int
		message       string
	}{
		{"missing header", "acme", "", http.StatusUnauthorized, "authorization header is required"},
		{"wrong scheme", "acme", "Basic YWRtaW46cGFzcw==", http.StatusUnauthorized, "authorization header must be a bearer token"},
		{"empty bearer", "acme", "Bearer ", http.StatusUnauthorized, "authorization header must be a bearer token"},
		{"unknown token", "acme", "Bearer forged", http.StatusUnauthorized, "invalid or expired token"},
		{"cross-tenant token", "globex", "Bearer acme-viewer", http.StatusUnauthorized, "token does not match requested tenant"},
		{"unknown tenant wins over token", "ghost", "Bearer acme-viewer", http.StatusNotFound, "tenant not found"},
		{"lowercase scheme", "acme", "bearer acme-viewer", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.tenant, tt.authorization)
			require.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorBody(t, rec).Message)
			}
		})
	}
}

func TestGuardAuthorization(t *testing.T) {
	f := newGuardFixture()

	rec := serve(f.handler(Requires("cases:create")), "acme", "Bearer acme-viewer")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(f.handler(Requires("cases:read")), "acme", "Bearer acme-viewer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "missing", "the actor carries the authenticated user")

	rec = serve(f.handler(Requires("cases:create", "cases:read")), "acme", "Bearer acme-viewer")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(f.handler(Public()), "acme", "Bearer forged")
	assert.Equal(t, http.StatusOK, rec.Code, "public routes ignore the credential")
}

func TestGuardWithoutTenantResolver(t *testing.T) {
	guard := NewGuard(fakeTokens{}, fakeAccess{})
	h := guard.Protect(Authenticated())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := serve(h, "acme", "Bearer anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
