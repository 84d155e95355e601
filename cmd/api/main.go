// Package main is the entry point for the AfriChain API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zubeidhendricks/africhain/internal/api"
	"github.com/zubeidhendricks/africhain/internal/archive"
	"github.com/zubeidhendricks/africhain/internal/audit"
	"github.com/zubeidhendricks/africhain/internal/auth"
	"github.com/zubeidhendricks/africhain/internal/command"
	"github.com/zubeidhendricks/africhain/internal/config"
	"github.com/zubeidhendricks/africhain/internal/db"
	"github.com/zubeidhendricks/africhain/internal/health"
	"github.com/zubeidhendricks/africhain/internal/ledger"
	ledgerhedera "github.com/zubeidhendricks/africhain/internal/ledger/hedera"
	"github.com/zubeidhendricks/africhain/internal/middleware"
	"github.com/zubeidhendricks/africhain/internal/product"
	"github.com/zubeidhendricks/africhain/internal/status"
	"github.com/zubeidhendricks/africhain/internal/tracing"
)

// serviceFeatures is the capability list advertised by GET /status.
var serviceFeatures = []string{
	"natural_language_commands",
	"product_analysis",
	"audit_trail",
	"nft_certificates",
	"balance_queries",
}

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("AfriChain API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Distributed tracing (no-op provider when disabled)
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "africhain-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: 1.0,
		InsecureMode: cfg.Env == "development",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	startupCtx := context.Background()

	// PostgreSQL product registry. DATABASE_URL is optional: unset means the
	// in-memory registry, and an unreachable database also falls back so
	// development does not require Postgres.
	var productRepo product.Repository
	var dbChecker api.HealthChecker
	if cfg.DatabaseURL == "" {
		logger.Info("no DATABASE_URL configured, using in-memory product registry")
		productRepo = product.NewInMemoryRepository()
	} else if pool, err := db.Connect(startupCtx, cfg.DatabaseURL); err != nil {
		logger.Warn("database unavailable, using in-memory product registry", "error", err)
		productRepo = product.NewInMemoryRepository()
	} else {
		defer pool.Close()
		if err := db.EnsureSchema(startupCtx, pool); err != nil {
			logger.Error("failed to ensure database schema", "error", err)
			os.Exit(1)
		}
		productRepo = product.NewPostgresRepository(pool)
		dbChecker = health.NewDBChecker(pool)
	}

	// Redis backs the shared channel cache and distributed rate limiting.
	var redisClient *redis.Client
	var redisChecker api.HealthChecker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		redisChecker = health.NewRedisChecker(redisClient)
	}

	// Prometheus registry with per-layer metric sets.
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	ledgerMetrics := ledger.NewMetrics()
	commandMetrics := command.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	if err := ledgerMetrics.Register(registry); err != nil {
		logger.Error("failed to register ledger metrics", "error", err)
		os.Exit(1)
	}
	if err := commandMetrics.Register(registry); err != nil {
		logger.Error("failed to register command metrics", "error", err)
		os.Exit(1)
	}

	// Ledger client selection.
	var ledgerClient ledger.Client
	switch cfg.LedgerMode {
	case config.LedgerModeHedera:
		client, err := ledgerhedera.NewClient(ledgerhedera.Config{
			Network:    cfg.HederaNetwork,
			AccountID:  cfg.HederaAccountID,
			PrivateKey: cfg.HederaPrivateKey,
			TokenID:    cfg.HederaTokenID,
		})
		if err != nil {
			logger.Error("failed to connect Hedera client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		ledgerClient = client
		logger.Info("ledger client connected", "mode", cfg.LedgerMode, "network", cfg.HederaNetwork)
	case config.LedgerModeMemory:
		ledgerClient = ledger.NewInMemoryClient()
		logger.Warn("using in-memory ledger, transactions are not durable")
	default:
		logger.Error("unknown ledger mode", "mode", cfg.LedgerMode)
		os.Exit(1)
	}

	// The channel cache is shared through Redis when available so only one
	// replica creates the log channel.
	var channelStore ledger.ChannelStore
	if redisClient != nil {
		store := ledger.NewRedisChannelStore(redisClient)
		if cfg.HederaTopicID != "" {
			if err := store.Set(startupCtx, cfg.HederaTopicID); err != nil {
				logger.Warn("failed to seed channel cache", "error", err)
			}
		}
		channelStore = store
	} else {
		channelStore = ledger.NewInMemoryChannelStore(cfg.HederaTopicID)
	}

	// Certificate metadata archive is optional.
	var archiver ledger.Archiver
	if cfg.R2BucketName != "" {
		svc, err := archive.NewService(archive.ServiceConfig{
			BucketName:      cfg.R2BucketName,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize metadata archive", "error", err)
			os.Exit(1)
		}
		archiver = svc
		logger.Info("certificate metadata archive enabled", "bucket", cfg.R2BucketName)
	}

	actorAccount := cfg.HederaAccountID
	if actorAccount == "" {
		actorAccount = "0.0.0"
	}
	builder := audit.NewBuilder(actorAccount, cfg.HederaNetwork)
	mirror := audit.NewInMemoryRepository()

	gateway, err := ledger.NewGateway(ledger.GatewayConfig{
		Client:   ledgerClient,
		Channels: channelStore,
		Archive:  archiver,
		Builder:  builder,
		Mirror:   mirror,
		Network:  cfg.HederaNetwork,
		Metrics:  ledgerMetrics,
	})
	if err != nil {
		logger.Error("failed to create ledger gateway", "error", err)
		os.Exit(1)
	}

	reporter := status.NewReporter(gateway, serviceFeatures)
	dispatcher := command.NewDispatcher(gateway, builder, reporter, commandMetrics)

	currentSecret, previousSecret := cfg.GetJWTSecrets()
	var jwtService *auth.JWTService
	if previousSecret != "" {
		jwtService = auth.NewJWTServiceWithRotation(currentSecret, previousSecret)
		logger.Info("jwt secret rotation window active")
	} else {
		jwtService = auth.NewJWTService(currentSecret)
	}

	commandHandlers := api.NewCommandHandlers(dispatcher)
	analyzeHandlers := api.NewAnalyzeHandlers(gateway, builder, cfg.MintThreshold).WithRegistry(productRepo)
	auditHandlers := api.NewAuditHandlers(mirror)
	productHandlers := api.NewProductHandlers(productRepo)
	statusHandlers := api.NewStatusHandlers(reporter)
	balanceHandlers := api.NewBalanceHandlers(gateway)
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		LedgerChecker: health.NewLedgerChecker(gateway),
		DBChecker:     dbChecker,
		RedisChecker:  redisChecker,
	})

	// Rate limit stores: Redis for multi-replica deployments, in-memory
	// otherwise.
	var limitStore middleware.RateLimitStore
	if redisClient != nil {
		limitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(httpMetrics)
	} else {
		memStore := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				memStore.Cleanup()
			}
		}()
		limitStore = memStore
	}

	globalLimit := middleware.RateLimiter(limitStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc())
	ledgerLimit := middleware.RateLimiter(limitStore, middleware.DefaultLedgerLimit(), middleware.UserKeyFunc())
	requireAuth := middleware.RequireAuth(jwtService)

	// Ledger-writing routes sit behind auth and the stricter write limit.
	protect := func(h http.HandlerFunc) http.Handler {
		return requireAuth(ledgerLimit(h))
	}

	mux := http.NewServeMux()
	mux.Handle("/command", protect(commandHandlers.Dispatch))
	mux.Handle("/analyze", protect(analyzeHandlers.Analyze))
	mux.HandleFunc("/status", statusHandlers.Status)
	mux.HandleFunc("/balance", balanceHandlers.Balance)
	mux.Handle("/products", requireAuth(http.HandlerFunc(productHandlers.Collection)))
	mux.HandleFunc("/products/", productHandlers.GetByID)
	mux.HandleFunc("/audit/records", auditHandlers.Records)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		api.WriteJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": "africhain-api",
			"version": "0.0.1",
		})
	})

	cors := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	// Middleware chain, outermost first:
	// RequestID -> Tracing -> Logging -> HTTPMetrics -> CORS -> global rate limit
	var handler http.Handler = mux
	handler = globalLimit(handler)
	handler = cors(handler)
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing("africhain-api")(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env, "ledger_mode", cfg.LedgerMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to flush tracer", "error", err)
	}

	logger.Info("server stopped")
}
