package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"deripulse/config"
	"deripulse/internal/api"
	"deripulse/internal/cache"
	"deripulse/internal/logger"
	"deripulse/internal/service"
	"deripulse/internal/storage"
)

// cacheOpener is an indirection used by InitializeApp; overridden in tests to avoid a real Redis.
var cacheOpener = cache.NewRedisCache

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Connects to the optional Redis latest-price cache (REDIS_ADDR set).
//   - Initializes the repository layer (PricesRepository).
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (DB and cache connections).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewPricesRepository(db)

	// Optional latest-price cache; the service falls back to Postgres when absent.
	var latestCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		latestCache, err = cacheOpener(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		logger.L().Info().Str("addr", cfg.Redis.Addr).Msg("latest-price cache enabled")
	}

	// Initialize service layer (business logic)
	var svc service.PriceService
	if latestCache != nil {
		svc = service.NewPriceService(repo, latestCache)
	} else {
		svc = service.NewPriceService(repo, nil)
	}

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, cfg.Deribit.Tickers)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		if latestCache != nil {
			_ = latestCache.Close()
		}
		_ = db.Close()
	}

	return router, cleanup, nil
}
