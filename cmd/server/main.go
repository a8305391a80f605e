package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexdesk/backoffice/internal/auth"
	"github.com/lexdesk/backoffice/internal/cache"
	"github.com/lexdesk/backoffice/internal/config"
	"github.com/lexdesk/backoffice/internal/database"
	"github.com/lexdesk/backoffice/internal/handlers"
	"github.com/lexdesk/backoffice/internal/middleware"
	"github.com/lexdesk/backoffice/internal/repository"
	"github.com/lexdesk/backoffice/internal/router"
	"github.com/lexdesk/backoffice/internal/services"
	"github.com/lexdesk/backoffice/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("permission_source", cfg.Auth.PermissionSource).Msg("Starting legal back office")

	// Connect to database
	db, err := database.Connect(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		LogLevel:        cfg.Database.LogLevel,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Initialize cache
	var (
		cacheImpl cache.Cache
		pinger    handlers.Pinger
	)
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   "backoffice:",
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		cacheImpl, pinger = redisCache, redisCache
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("Redis cache initialized")
	} else {
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()
		cacheImpl = memoryCache
		if cfg.Cache.Enabled {
			log.Info().Msg("Memory cache initialized")
		} else {
			// Entries still expire quickly, and every mutation invalidates them.
			log.Info().Msg("Cache disabled, using memory cache as fallback")
		}
	}

	// Initialize services
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	auditService := services.NewAuditService(repository.NewAuditRepository(db))
	accessService := services.NewAccessService(repository.NewRoleRepository(db), cacheImpl, cfg.Cache.PermissionsTTL, cfg.Auth.PermissionSource)
	permissionService := services.NewPermissionService(db, accessService)
	userService := services.NewUserService(db, hasher, accessService, auditService)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := permissionService.EnsureCatalog(seedCtx); err != nil {
		cancelSeed()
		log.Fatal().Err(err).Msg("Failed to seed permission catalog")
	}
	cancelSeed()

	if cfg.Platform.APIKey == "" {
		log.Warn().Msg("PLATFORM_API_KEY is not set; tenant and permission administration is open")
	}

	limiter := middleware.NewLoginLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst, 10*time.Minute)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepLimiter(sweepCtx, limiter)

	// Setup router
	handler := router.New(cfg, router.Deps{
		DB:           db,
		Cache:        pinger,
		Tenants:      services.NewTenantService(db, auditService, hasher, cacheImpl, cfg.Cache.TenantTTL),
		Auth:         services.NewAuthService(db, hasher, tokens, auditService),
		Access:       accessService,
		Roles:        services.NewRoleService(db, accessService, auditService),
		Permissions:  permissionService,
		Users:        userService,
		Currencies:   services.NewCurrencyService(db),
		Rates:        services.NewConversionRateService(db),
		Units:        services.NewUnitReferenceService(db),
		Tariffs:      services.NewInsolvencyTariffService(db),
		Audit:        auditService,
		LoginLimiter: limiter,
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func sweepLimiter(ctx context.Context, limiter *middleware.LoginLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("Login limiters swept")
			}
		}
	}
}
