package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freebsdly/ops-console/pkg/api"
	"github.com/freebsdly/ops-console/pkg/async"
	"github.com/freebsdly/ops-console/pkg/audit"
	"github.com/freebsdly/ops-console/pkg/config"
	"github.com/freebsdly/ops-console/pkg/guard"
	"github.com/freebsdly/ops-console/pkg/middleware"
	"github.com/freebsdly/ops-console/pkg/naming"
	"github.com/freebsdly/ops-console/pkg/observability"
	"github.com/freebsdly/ops-console/pkg/permsource"
	"github.com/freebsdly/ops-console/pkg/principal"
	"github.com/freebsdly/ops-console/pkg/session"
	"github.com/freebsdly/ops-console/pkg/tabs"
	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithFields(map[string]any{
		"addr":        cfg.Server.Host + ":" + cfg.Server.Port,
		"health_addr": cfg.Server.Host + ":" + cfg.Server.HealthPort,
		"source":      cfg.PermissionSource.Type,
		"tab_store":   cfg.Tabs.StoreType,
	}).Info("Starting ops console")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		otelProviders *observability.OTelProviders
		otelMetrics   *observability.OTelMetrics
	)
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(ctx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		otelMetrics, err = observability.NewOTelMetrics()
		if err != nil {
			return fmt.Errorf("failed to create OTel metrics: %w", err)
		}
	}

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	// Permission source: remote HTTP service or a SQL database.
	var (
		source permsource.Source
		db     *sql.DB
	)
	switch cfg.PermissionSource.Type {
	case "http":
		source = permsource.NewHTTPSource(cfg.PermissionSource.BaseURL,
			permsource.WithHTTPClient(&http.Client{
				Timeout:   cfg.PermissionSource.Timeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}))
	case "sql":
		db, err = sql.Open("postgres", cfg.PermissionSource.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to open permission database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to reach permission database: %w", err)
		}
		if err := permsource.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate permission database: %w", err)
		}
		source = permsource.NewSQLStore(db)
	default:
		return fmt.Errorf("unknown permission source type %q", cfg.PermissionSource.Type)
	}
	if metrics != nil {
		source = permsource.NewInstrumentedSource(source, func(_ context.Context, operation string, duration time.Duration, err error) {
			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.SourceRequestsTotal.WithLabelValues(operation, status).Inc()
			metrics.SourceRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
		})
	}

	principals := principal.NewCachingProvider(source, cfg.Principal.CacheSize, cfg.Principal.CacheTTL)
	if metrics != nil || otelMetrics != nil {
		principals.SetObserver(func(ctx context.Context, hit bool, size int) {
			if metrics != nil {
				if hit {
					metrics.CacheHitsTotal.WithLabelValues("principal").Inc()
				} else {
					metrics.CacheMissesTotal.WithLabelValues("principal").Inc()
				}
				metrics.PrincipalsCached.Set(float64(size))
			}
			if otelMetrics != nil {
				if hit {
					otelMetrics.RecordCacheHit(ctx, "principal")
				} else {
					otelMetrics.RecordCacheMiss(ctx, "principal")
				}
			}
		})
	}

	var refresher *principal.Refresher
	if cfg.Principal.RefreshSchedule != "" {
		refresher, err = principal.NewRefresher(principals, logger,
			cfg.Principal.RefreshSchedule, cfg.Principal.RefreshTimeout)
		if err != nil {
			return fmt.Errorf("failed to create principal refresher: %w", err)
		}
		refresher.Start()
		logger.WithField("schedule", cfg.Principal.RefreshSchedule).Info("Principal refresher started")
	}

	// Route taxonomy: YAML catalogs from disk, or the built-in catalog.
	var provider *taxonomy.StaticProvider
	if cfg.Taxonomy.CatalogDir != "" {
		provider, err = taxonomy.LoadDir(cfg.Taxonomy.CatalogDir)
		if err != nil {
			return fmt.Errorf("failed to load catalog from %s: %w", cfg.Taxonomy.CatalogDir, err)
		}
		if cfg.Taxonomy.Watch {
			watcher, err := taxonomy.NewWatcher(cfg.Taxonomy.CatalogDir, func(path string) {
				logger.WithField("file", path).Warn("Catalog file changed on disk, restart to pick it up")
			})
			if err != nil {
				return fmt.Errorf("failed to watch catalog directory: %w", err)
			}
			async.SafeGo(ctx, 0, "catalog watcher", logger, func(ctx context.Context) error {
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}
	} else {
		provider, err = taxonomy.NewStaticProvider(taxonomy.BuiltInModules())
		if err != nil {
			return fmt.Errorf("failed to build built-in catalog: %w", err)
		}
	}

	// Static route annotations, when the deployment ships a rules file.
	var ruleTable *guard.RuleTable
	if cfg.Guard.RulesFile != "" {
		ruleTable, err = guard.LoadRulesFile(cfg.Guard.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to load guard rules: %w", err)
		}
		logger.WithField("file", cfg.Guard.RulesFile).Info("Static guard rules loaded")
	}

	var guardMetrics *guard.Metrics
	if registry != nil {
		guardMetrics = guard.NewMetrics(registry)
	}
	routeGuard := guard.New(ruleTable, provider, source, logger, guardMetrics, guard.Options{
		RemoteTimeout: cfg.Guard.RemoteCheckTimeout,
		CacheSize:     cfg.Guard.DecisionCacheSize,
		CacheTTL:      cfg.Guard.DecisionCacheTTL,
	})

	// Tab snapshot store.
	var (
		tabStore    tabs.Store
		redisClient *redis.Client
	)
	switch cfg.Tabs.StoreType {
	case "file":
		tabStore, err = tabs.NewFileStore(cfg.Tabs.FileRoot)
		if err != nil {
			return fmt.Errorf("failed to initialize tab file store: %w", err)
		}
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Tabs.RedisAddr,
			Password: cfg.Tabs.RedisPassword,
			DB:       cfg.Tabs.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", cfg.Tabs.RedisAddr, err)
		}
		tabStore = tabs.NewRedisStore(redisClient, cfg.Tabs.RedisTTL)
	case "s3":
		tabStore, err = tabs.NewS3Store(ctx, tabs.S3Config{
			Bucket:       cfg.Tabs.S3Bucket,
			Region:       cfg.Tabs.S3Region,
			Endpoint:     cfg.Tabs.S3Endpoint,
			AccessKey:    cfg.Tabs.S3AccessKey,
			SecretKey:    cfg.Tabs.S3SecretKey,
			UsePathStyle: cfg.Tabs.S3UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize tab S3 store: %w", err)
		}
	default:
		return fmt.Errorf("unknown tab store type %q", cfg.Tabs.StoreType)
	}
	if metrics != nil || otelMetrics != nil {
		backend := cfg.Tabs.StoreType
		tabStore = tabs.NewInstrumentedStore(tabStore, func(ctx context.Context, operation string, duration time.Duration, err error) {
			if metrics != nil && err != nil {
				metrics.TabStoreErrors.WithLabelValues(operation).Inc()
			}
			if otelMetrics != nil {
				otelMetrics.RecordSnapshotStoreOperation(ctx, operation, backend, duration, err)
			}
		})
	}

	sessions := session.NewManager(principals, tabStore, logger, session.Options{
		TTL: cfg.Session.TTL,
	})

	var oidcVerifier *session.OIDCVerifier
	if cfg.Session.OIDCEnabled {
		oidcVerifier, err = session.NewOIDCVerifier(ctx, session.OIDCConfig{
			IssuerURL:    cfg.Session.OIDCIssuerURL,
			ClientID:     cfg.Session.OIDCClientID,
			ClientSecret: cfg.Session.OIDCClientSecret,
			RedirectURL:  cfg.Session.OIDCRedirectURL,
		})
		if err != nil {
			return fmt.Errorf("failed to configure OIDC: %w", err)
		}
		logger.WithField("issuer", cfg.Session.OIDCIssuerURL).Info("OIDC login enabled")
	}

	var recorder audit.Recorder
	if cfg.Audit.LogFile != "" {
		fileRecorder, err := audit.NewFileRecorder(cfg.Audit.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer fileRecorder.Close()
		recorder = fileRecorder
		logger.WithField("file", cfg.Audit.LogFile).Info("Audit logging enabled")
	}

	tabSets := api.NewTabSetRegistry(tabStore, naming.NewTaxonomyResolver(provider, nil), logger, tabs.Options{
		LoginPath: taxonomy.LoginPath,
		RootPath:  taxonomy.RootPath,
	})

	// Rate limiting: shared redis window when a redis client is already
	// around for tabs, in-process token buckets otherwise.
	var rateLimit func(http.Handler) http.Handler
	if redisClient != nil {
		rateLimit = middleware.NewDistributedRateLimitMiddleware(redisClient).Handler
	} else {
		limiter := middleware.NewRateLimitMiddleware()
		limiter.StartCleanup(ctx)
		rateLimit = limiter.Handler
	}

	server := api.NewServer(api.Dependencies{
		Provider:    provider,
		Guard:       routeGuard,
		Sessions:    sessions,
		Principals:  principals,
		TabSets:     tabSets,
		OIDC:        oidcVerifier,
		Logger:      logger,
		Metrics:     metrics,
		Audit:       recorder,
		RateLimit:   rateLimit,
		VisibleTabs: cfg.Tabs.VisibleLimit,
		AdminRoles:  cfg.Server.AdminRoles,
	})

	// Health and metrics on a separate port so probes bypass the session
	// middleware.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	if registry != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	if refresher != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			refresher.Stop()
			return nil
		})
	}
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		cancel()
		return nil
	})
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	return shutdown.WaitForShutdown()
}
