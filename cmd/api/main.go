// Command api runs the public vote submission gateway.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"votegate/internal/config"
	hhttp "votegate/internal/handler/http"
	"votegate/internal/handler/http/middleware"
	"votegate/internal/handler/http/requestid"
	hvote "votegate/internal/handler/http/vote"
	"votegate/internal/infra/adapter/persistence/postgres"
	"votegate/internal/infra/cache"
	"votegate/internal/infra/db"
	"votegate/internal/observability/logging"
	"votegate/internal/observability/tracing"
	"votegate/internal/repository"
	"votegate/internal/resilience/circuitbreaker"
	voteUC "votegate/internal/usecase/vote"
	"votegate/pkg/clock"
)

func main() {
	// Missing .env is fine in containerized deployments.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	categories, err := config.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		logger.Error("failed to load category allow-list",
			slog.String("path", cfg.CategoriesFile),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("category allow-list loaded",
		slog.String("path", cfg.CategoriesFile),
		slog.Int("categories", len(categories)))

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	local := cache.NewLocalStore(clock.SystemClock{})
	store, breaker := buildCacheStore(logger, cfg, local)

	svc := voteUC.NewService(voteUC.Deps{
		Validator:      voteUC.NewValidator(categories),
		Throttle:       voteUC.NewThrottleGate(store, cfg.ThrottleInterval, logger),
		Dedup:          voteUC.NewDedupGate(store, cfg.DedupWindow, logger),
		Writer:         voteUC.NewLedgerWriter(postgres.NewVoteLedger(database), cfg.MarkerDedup(), cfg.DedupWindow, logger),
		Logger:         logger,
		SuccessMessage: cfg.SuccessMessage,
	})

	extractor := buildIPExtractor(logger)
	flood := middleware.NewFloodLimiter(cfg.FloodRPS, cfg.FloodBurst, extractor)

	handler := buildHandler(logger, cfg, database, svc, extractor, flood, breaker, local)

	janitor := startJanitor(logger, local, flood)
	defer janitor.Stop()

	runServers(logger, cfg, handler)
}

// initDatabase opens the ledger database and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// buildCacheStore assembles the dedup cache. With Redis configured the
// durable tier sits behind a circuit breaker and falls back to the local
// tier; without it the local tier serves alone and restarts lose gate state.
func buildCacheStore(logger *slog.Logger, cfg config.Config, local *cache.LocalStore) (repository.CacheStore, *cache.BreakerStore) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, dedup state is process-local only")
		return local, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	breaker := cache.NewBreakerStore(
		cache.NewRedisStore(rdb),
		circuitbreaker.New(circuitbreaker.RedisCacheConfig()),
	)
	logger.Info("durable cache tier enabled", slog.String("addr", cfg.RedisAddr))
	return cache.NewFallback(breaker, local, logger), breaker
}

// buildIPExtractor selects the identity source. Proxy headers are honored
// only when TRUST_PROXY is explicitly configured.
func buildIPExtractor(logger *slog.Logger) middleware.IPExtractor {
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if proxyConfig.Enabled {
		logger.Info("identity extraction: trusted proxy mode",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
		return middleware.NewTrustedProxyExtractor(*proxyConfig)
	}
	logger.Info("identity extraction: using RemoteAddr, proxy headers ignored")
	return &middleware.RemoteAddrExtractor{}
}

// buildHandler registers routes and wraps them in the middleware chain.
func buildHandler(
	logger *slog.Logger,
	cfg config.Config,
	database *sql.DB,
	svc *voteUC.Service,
	extractor middleware.IPExtractor,
	flood *middleware.FloodLimiter,
	breaker *cache.BreakerStore,
	local *cache.LocalStore,
) http.Handler {
	mux := http.NewServeMux()
	hvote.Register(mux, svc, extractor, logger)

	health := &hhttp.HealthHandler{
		DB:           database,
		Version:      getVersion(),
		LocalCache:   local,
		FloodLimiter: flood,
	}
	if breaker != nil {
		health.CacheBreaker = breaker
	}
	mux.Handle("/health", health)
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})

	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.Validator.GetAllowedOrigins()),
		slog.Any("allowed_methods", corsConfig.AllowedMethods))

	// Applied in reverse order: CORS answers preflight before anything else,
	// the flood limiter rejects before the request body is read.
	chain := http.Handler(mux)
	chain = hhttp.Timeout(cfg.RequestTimeout)(chain)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = flood.Middleware(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(*corsConfig)(chain)
	return chain
}

// startJanitor schedules periodic pruning of the in-memory stores so
// expired gate keys and idle flood buckets do not accumulate.
func startJanitor(logger *slog.Logger, local *cache.LocalStore, flood *middleware.FloodLimiter) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@every 10m", func() {
		pruned := local.Prune()
		idle := flood.Prune(10 * time.Minute)
		logger.Debug("janitor pass complete",
			slog.Int("cache_entries_pruned", pruned),
			slog.Int("flood_buckets_pruned", idle))
	})
	if err != nil {
		logger.Error("failed to schedule janitor", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	return c
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// runServers runs the public API server and the internal metrics server
// until a termination signal arrives, then shuts both down gracefully.
func runServers(logger *slog.Logger, cfg config.Config, handler http.Handler) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", hhttp.MetricsHandler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting",
			slog.String("addr", cfg.ListenAddr),
			slog.String("version", getVersion()))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server starting", slog.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var shutdownErr error
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("api server shutdown failed", slog.Any("error", err))
			shutdownErr = err
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
			shutdownErr = err
		}
		return shutdownErr
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
