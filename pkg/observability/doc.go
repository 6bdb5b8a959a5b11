// Package observability provides structured logging, Prometheus metrics,
// health checks, graceful shutdown and OpenTelemetry tracing.
//
// # Structured Logging
//
// Create a logger and attach fields:
//
//	logger := observability.NewLogger(observability.InfoLevel, nil)
//	logger.WithField("port", 8080).Info("Server started")
//	logger.WithError(err).Error("Request failed")
//
// Output is one JSON object per line via log/slog.
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/menus", "200").Inc()
//	metrics.SessionsActive.Set(float64(active))
//
// # Health Checks
//
// The checker probes the permission database and the tab-state Redis:
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(mux, checker)
//
// A failed database marks the console unhealthy; a failed tab store only
// degrades it, since tab sets fall back to fresh defaults.
//
// # Shutdown and Panics
//
// ShutdownManager runs registered hooks concurrently on SIGINT/SIGTERM.
// RecoverPanic and MustRecover convert panics into log entries or errors;
// they back the HTTP recovery middleware and background task supervision.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(&observability.OTelConfig{
//		ServiceName:    "ops-console",
//		ServiceVersion: observability.Version,
//		OTLPEndpoint:   "otel-collector:4317",
//	})
//	defer observability.ShutdownOTel(ctx, providers)
package observability
