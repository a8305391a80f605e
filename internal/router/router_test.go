package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/config"
	"github.com/lexdesk/backoffice/internal/middleware"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/lexdesk/backoffice/internal/router"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/lexdesk/backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const platformKey = "platform-key"

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db := testutil.NewDB(t)
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })

	cfg := &config.Config{
		Metrics:  config.MetricsConfig{Enabled: true},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
		Platform: config.PlatformConfig{APIKey: platformKey},
	}

	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", "backoffice-test", time.Hour)
	audit := services.NewAuditService(repository.NewAuditRepository(db))
	access := services.NewAccessService(repository.NewRoleRepository(db), c, time.Minute, config.PermissionSourceStore)
	permissions := services.NewPermissionService(db, access)
	require.NoError(t, permissions.EnsureCatalog(context.Background()))

	handler := router.New(cfg, router.Deps{
		DB:           db,
		Tenants:      services.NewTenantService(db, audit, hasher, c, time.Minute),
		Auth:         services.NewAuthService(db, hasher, tokens, audit),
		Access:       access,
		Roles:        services.NewRoleService(db, access, audit),
		Permissions:  permissions,
		Users:        services.NewUserService(db, hasher, access, audit),
		Currencies:   services.NewCurrencyService(db),
		Rates:        services.NewConversionRateService(db),
		Units:        services.NewUnitReferenceService(db),
		Tariffs:      services.NewInsolvencyTariffService(db),
		Audit:        audit,
		LoginLimiter: middleware.NewLoginLimiter(100, 100, time.Minute),
	})
	return &api{t: t, handler: handler}
}

type call struct {
	method, path string
	tenant       string
	token        string
	platformKey  string
	body         any
}

func (a *api) do(c call) *httptest.ResponseRecorder {
	a.t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		require.NoError(a.t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.tenant != "" {
		req.Header.Set(middleware.TenantHeader, c.tenant)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.platformKey != "" {
		req.Header.Set(middleware.PlatformKeyHeader, c.platformKey)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) decode(rec *httptest.ResponseRecorder, v any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (a *api) createTenant(subdomain string) models.TenantBootstrap {
	a.t.Helper()
	rec := a.do(call{
		method:      http.MethodPost,
		path:        "/api/v1/tenants",
		platformKey: platformKey,
		body: models.CreateTenantRequest{
			Name:          subdomain + " legal",
			Subdomain:     subdomain,
			AdminEmail:    "admin@" + subdomain + ".test",
			AdminPassword: "password123",
		},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out models.TenantBootstrap
	a.decode(rec, &out)
	return out
}

func (a *api) login(subdomain, email, password string) string {
	a.t.Helper()
	rec := a.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		tenant: subdomain,
		body:   models.LoginRequest{Email: email, Password: password},
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out models.TokenResponse
	a.decode(rec, &out)
	return out.AccessToken
}

func TestHealthAndFallbacks(t *testing.T) {
	a := newAPI(t)

	assert.Equal(t, http.StatusOK, a.do(call{method: http.MethodGet, path: "/health"}).Code)
	assert.Equal(t, http.StatusOK, a.do(call{method: http.MethodGet, path: "/metrics"}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(call{method: http.MethodGet, path: "/nowhere"}).Code)
}

func TestPlatformRoutesRequireKey(t *testing.T) {
	a := newAPI(t)

	rec := a.do(call{method: http.MethodGet, path: "/api/v1/tenants"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(call{method: http.MethodGet, path: "/api/v1/tenants", platformKey: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.createTenant("acme")
	rec = a.do(call{method: http.MethodGet, path: "/api/v1/tenants/subdomain/acme", platformKey: platformKey})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(call{
		method:      http.MethodPost,
		path:        "/api/v1/tenants",
		platformKey: platformKey,
		body:        map[string]string{"name": "x", "subdomain": "x", "unknown": "field"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestTenantBoundaries(t *testing.T) {
	a := newAPI(t)
	a.createTenant("acme")
	a.createTenant("globex")
	token := a.login("acme", "admin@acme.test", "password123")

	tests := []struct {
		name   string
		tenant string
		token  string
		status int
	}{
		{"own tenant", "acme", token, http.StatusOK},
		{"no tenant header", "", token, http.StatusBadRequest},
		{"unknown tenant", "ghost", token, http.StatusNotFound},
		{"token from another tenant", "globex", token, http.StatusUnauthorized},
		{"no token", "acme", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(call{method: http.MethodGet, path: "/api/v1/users", tenant: tt.tenant, token: tt.token})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := a.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		tenant: "globex",
		body:   models.LoginRequest{Email: "admin@acme.test", Password: "password123"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "credentials do not cross tenants")
}

func TestViewerScenario(t *testing.T) {
	a := newAPI(t)
	acme := a.createTenant("acme")
	admin := a.login("acme", "admin@acme.test", "password123")

	rec := a.do(call{
		method:      http.MethodPost,
		path:        "/api/v1/permissions/create-by-module",
		platformKey: platformKey,
		body:        models.CreateModulePermissionsRequest{Module: "cases"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(call{
		method:      http.MethodPost,
		path:        "/api/v1/permissions/create-by-module",
		platformKey: platformKey,
		body:        models.CreateModulePermissionsRequest{Module: "cases"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(call{method: http.MethodPost, path: "/api/v1/roles", tenant: "acme", token: admin, body: models.CreateRoleRequest{Name: "Viewer"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var role models.Role
	a.decode(rec, &role)

	rec = a.do(call{
		method: http.MethodPut,
		path:   "/api/v1/roles/" + role.ID.String() + "/permissions",
		tenant: "acme",
		token:  admin,
		body:   models.AssignPermissionsRequest{PermissionCodes: []string{"cases:read"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(call{
		method: http.MethodPost,
		path:   "/api/v1/users",
		tenant: "acme",
		token:  admin,
		body:   models.CreateUserRequest{Email: "viewer@acme.test", Password: "password123", RoleID: role.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	viewer := a.login("acme", "viewer@acme.test", "password123")

	rec = a.do(call{method: http.MethodGet, path: "/api/v1/users", tenant: "acme", token: viewer})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(call{method: http.MethodGet, path: "/api/v1/auth/me", tenant: "acme", token: viewer})
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.UserProfile
	a.decode(rec, &profile)
	assert.Equal(t, []string{"cases:read"}, profile.Permissions)
	assert.Equal(t, "Viewer", profile.Role)

	// The admin role received the module's codes as well.
	rec = a.do(call{method: http.MethodGet, path: "/api/v1/roles/" + acme.AdminRole.ID.String(), tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	var adminRole models.Role
	a.decode(rec, &adminRole)
	assert.Contains(t, adminRole.PermissionCodes(), "cases:create")

	rec = a.do(call{method: http.MethodGet, path: "/api/v1/audit-logs?action=" + string(models.AuditActionLogin), tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	var logs models.Page[models.AuditLog]
	a.decode(rec, &logs)
	assert.EqualValues(t, 2, logs.Total)
}

func TestAssignPermissionsTakesOneForm(t *testing.T) {
	a := newAPI(t)
	acme := a.createTenant("acme")
	admin := a.login("acme", "admin@acme.test", "password123")
	path := "/api/v1/roles/" + acme.AdminRole.ID.String() + "/permissions"

	var users models.Permission
	for _, p := range acme.AdminRole.Permissions {
		if p.Code == "users:read" {
			users = p
		}
	}
	require.NotEqual(t, uuid.Nil, users.ID)

	rec := a.do(call{
		method: http.MethodPut,
		path:   path,
		tenant: "acme",
		token:  admin,
		body: models.AssignPermissionsRequest{
			PermissionIDs:   []uuid.UUID{users.ID},
			PermissionCodes: []string{"roles:read"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = a.do(call{method: http.MethodGet, path: "/api/v1/roles/" + acme.AdminRole.ID.String(), tenant: "acme", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	var role models.Role
	a.decode(rec, &role)
	assert.ElementsMatch(t, acme.AdminRole.PermissionCodes(), role.PermissionCodes(), "a rejected request changes nothing")

	rec = a.do(call{
		method: http.MethodPut,
		path:   path,
		tenant: "acme",
		token:  admin,
		body:   models.AssignPermissionsRequest{PermissionIDs: []uuid.UUID{users.ID}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a.decode(rec, &role)
	assert.Equal(t, []string{"users:read"}, role.PermissionCodes())
}
