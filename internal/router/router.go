// Package router assembles the HTTP surface of the back office.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lexdesk/backoffice/internal/config"
	"github.com/lexdesk/backoffice/internal/handlers"
	"github.com/lexdesk/backoffice/internal/middleware"
	"github.com/lexdesk/backoffice/internal/respond"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	DB           *gorm.DB
	Cache        handlers.Pinger
	Tenants      *services.TenantService
	Auth         *services.AuthService
	Access       *services.AccessService
	Roles        *services.RoleService
	Permissions  *services.PermissionService
	Users        *services.UserService
	Currencies   *services.CurrencyService
	Rates        *services.ConversionRateService
	Units        *services.UnitReferenceService
	Tariffs      *services.InsolvencyTariffService
	Audit        *services.AuditService
	LoginLimiter *middleware.LoginLimiter
}

// New builds the router. Platform routes sit behind the platform key; every other
// /api/v1 route runs the tenant resolver and then the route's guard policy.
func New(cfg *config.Config, d Deps) http.Handler {
	health := handlers.NewHealthHandler(d.DB, d.Cache)
	authH := handlers.NewAuthHandler(d.Auth, d.Users)
	tenantH := handlers.NewTenantHandler(d.Tenants)
	permissionH := handlers.NewPermissionHandler(d.Permissions)
	roleH := handlers.NewRoleHandler(d.Roles)
	userH := handlers.NewUserHandler(d.Users)
	currencyH := handlers.NewCurrencyHandler(d.Currencies)
	rateH := handlers.NewConversionRateHandler(d.Rates)
	unitH := handlers.NewUnitReferenceHandler(d.Units)
	tariffH := handlers.NewInsolvencyTariffHandler(d.Tariffs)
	auditH := handlers.NewAuditHandler(d.Audit)

	guard := middleware.NewGuard(d.Auth, d.Access)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Actor)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, "")
	})

	// Health endpoints (no tenant, no authentication)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Platform administration, outside any tenant
		r.Group(func(r chi.Router) {
			r.Use(middleware.PlatformKey(cfg.Platform.APIKey))

			r.Route("/tenants", func(r chi.Router) {
				r.Post("/", tenantH.Create)
				r.Get("/", tenantH.List)
				r.Get("/subdomain/{subdomain}", tenantH.GetBySubdomain)
				r.Get("/{id}", tenantH.Get)
				r.Patch("/{id}", tenantH.Update)
				r.Delete("/{id}", tenantH.Delete)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.Post("/", permissionH.Create)
				r.Post("/create-by-module", permissionH.CreateByModule)
				r.Get("/", permissionH.List)
				r.Get("/{id}", permissionH.Get)
				r.Patch("/{id}", permissionH.Update)
				r.Delete("/{id}", permissionH.Delete)
			})
		})

		// Tenant routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Tenant(d.Tenants))

			r.Route("/auth", func(r chi.Router) {
				login := r.With(guard.Protect(middleware.Public()))
				if d.LoginLimiter != nil {
					login = login.With(d.LoginLimiter.Middleware)
				}
				login.Post("/login", authH.Login)
				r.With(guard.Protect(middleware.Authenticated())).Get("/me", authH.Me)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("users:create"))).Post("/", userH.Create)
				r.With(guard.Protect(middleware.Requires("users:read"))).Get("/", userH.List)
				r.With(guard.Protect(middleware.Requires("users:read"))).Get("/{id}", userH.Get)
				r.With(guard.Protect(middleware.Requires("users:update"))).Patch("/{id}", userH.Update)
				r.With(guard.Protect(middleware.Requires("users:assign-role", "users:update"))).Patch("/{id}/role", userH.AssignRole)
				r.With(guard.Protect(middleware.Requires("users:delete"))).Delete("/{id}", userH.Delete)
			})

			r.Route("/roles", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("roles:create"))).Post("/", roleH.Create)
				r.With(guard.Protect(middleware.Requires("roles:read"))).Get("/", roleH.List)
				r.With(guard.Protect(middleware.Requires("roles:read"))).Get("/{id}", roleH.Get)
				r.With(guard.Protect(middleware.Requires("roles:update"))).Patch("/{id}", roleH.Update)
				r.With(guard.Protect(middleware.Requires("roles:assign-permissions"))).Put("/{id}/permissions", roleH.AssignPermissions)
				r.With(guard.Protect(middleware.Requires("roles:delete"))).Delete("/{id}", roleH.Delete)
			})

			r.Route("/currencies", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("currencies:create"))).Post("/", currencyH.Create)
				r.With(guard.Protect(middleware.Requires("currencies:read"))).Get("/", currencyH.List)
				r.With(guard.Protect(middleware.Requires("currencies:read"))).Get("/{id}", currencyH.Get)
				r.With(guard.Protect(middleware.Requires("currencies:update"))).Patch("/{id}", currencyH.Update)
				r.With(guard.Protect(middleware.Requires("currencies:update"))).Patch("/{id}/base", currencyH.SetBase)
				r.With(guard.Protect(middleware.Requires("currencies:delete"))).Delete("/{id}", currencyH.Delete)
			})

			r.Route("/conversion-rates", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("conversion-rates:create"))).Post("/", rateH.Create)
				r.With(guard.Protect(middleware.Requires("conversion-rates:read"))).Get("/", rateH.List)
				r.With(guard.Protect(middleware.Requires("conversion-rates:read"))).Get("/{id}", rateH.Get)
				r.With(guard.Protect(middleware.Requires("conversion-rates:update"))).Patch("/{id}", rateH.Update)
				r.With(guard.Protect(middleware.Requires("conversion-rates:delete"))).Delete("/{id}", rateH.Delete)
			})

			r.Route("/units-reference", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("units-reference:create"))).Post("/", unitH.Create)
				r.With(guard.Protect(middleware.Requires("units-reference:read"))).Get("/", unitH.List)
				r.With(guard.Protect(middleware.Requires("units-reference:read"))).Get("/{id}", unitH.Get)
				r.With(guard.Protect(middleware.Requires("units-reference:update"))).Patch("/{id}", unitH.Update)
				r.With(guard.Protect(middleware.Requires("units-reference:delete"))).Delete("/{id}", unitH.Delete)
			})

			r.Route("/insolvency-tariffs", func(r chi.Router) {
				r.With(guard.Protect(middleware.Requires("insolvency-tariffs:create"))).Post("/", tariffH.Create)
				r.With(guard.Protect(middleware.Requires("insolvency-tariffs:read"))).Get("/", tariffH.List)
				r.With(guard.Protect(middleware.Requires("insolvency-tariffs:read"))).Get("/{id}", tariffH.Get)
				r.With(guard.Protect(middleware.Requires("insolvency-tariffs:update"))).Patch("/{id}", tariffH.Update)
				r.With(guard.Protect(middleware.Requires("insolvency-tariffs:delete"))).Delete("/{id}", tariffH.Delete)
			})

			r.With(guard.Protect(middleware.Requires("audit-logs:read"))).Get("/audit-logs", auditH.List)
		})
	})

	return r
}
