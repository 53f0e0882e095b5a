package main

//
//  @title           deripulse API
//  @version         1.0
//  @description     Deribit index-price polling & query service.
//  @termsOfService  https://github.com/guttosm/deripulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/deripulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        prices
//  @tag.description Endpoints for querying stored index prices
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deripulse/config"
	_ "deripulse/docs" // swagger docs
	"deripulse/internal/app"
	"deripulse/internal/cache"
	"deripulse/internal/deribit"
	"deripulse/internal/ingest"
	"deripulse/internal/logger"
	"deripulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runPoller builds the collection pipeline and drives it until the context is
// cancelled (or, with once=true, for a single cycle).
func runPoller(ctx context.Context, once bool) error {
	cfg := config.AppConfig

	db, err := app.InitPostgres(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repo := storage.NewPricesRepository(db)
	client := deribit.NewClient(cfg.Deribit.BaseURL, cfg.Deribit.HTTPTimeout)

	var latestCache ingest.LatestCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		latestCache = rc
		logger.L().Info().Str("addr", cfg.Redis.Addr).Msg("latest-price cache enabled")
	}

	collector := ingest.NewCollector(client, repo, latestCache, cfg.Deribit.Tickers)
	if once {
		return collector.CollectAll(ctx)
	}

	poller := ingest.NewPoller(collector, cfg.Deribit.PollInterval)
	return poller.Run(ctx)
}

// main is the entry point of the deripulse application.
//
// Modes (selected via --mode flag):
//   - poll: Periodically fetches index prices from Deribit and persists them.
//   - api:  Starts the REST API to expose the stored prices.
//
// Flags:
//   - --mode: Execution mode ("poll" or "api"). Default: "poll".
//   - --once: In poll mode, run a single collection cycle and exit.
//   - --port: Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "poll", "Mode: poll or api")
	once := flag.Bool("once", false, "Run a single collection cycle and exit (poll mode)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "poll":
		// Polling mode: fetch index prices on an interval and persist them
		logger.L().Info().
			Strs("tickers", config.AppConfig.Deribit.Tickers).
			Dur("interval", config.AppConfig.Deribit.PollInterval).
			Msg("running price poller")

		pollCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runPoller(pollCtx, *once); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Fatal().Err(err).Msg("poller failed")
		}
		logger.L().Info().Msg("poller stopped")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
