// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	CONSOLE_HOST="0.0.0.0"
//	CONSOLE_PORT="8080"
//	CONSOLE_HEALTH_PORT="9090"
//	CONSOLE_READ_TIMEOUT="15s"
//	CONSOLE_WRITE_TIMEOUT="15s"
//
// Permission source settings:
//
//	CONSOLE_PERMISSION_SOURCE="http"  # http, sql
//	CONSOLE_PERMISSION_API_URL="http://iam.internal:8081"
//	CONSOLE_POSTGRES_URL="postgres://localhost/console"
//	CONSOLE_REMOTE_CHECK_TIMEOUT="5s"
//
// Tab persistence settings:
//
//	CONSOLE_TAB_STORE="file"  # file, redis, s3
//	CONSOLE_TAB_FILE_ROOT="./data/tabs"
//	CONSOLE_REDIS_ADDR="localhost:6379"
//	CONSOLE_TAB_S3_BUCKET="console-tabs"
//
// Observability settings:
//
//	CONSOLE_LOG_LEVEL="info"  # debug, info, warn, error
//	CONSOLE_METRICS_ENABLED="true"
//	CONSOLE_OTEL_ENABLED="true"
//	CONSOLE_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Tab store: %s\n", cfg.Tabs.StoreType)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/observability: Uses observability configuration
//   - pkg/guard: Uses guard configuration
//   - pkg/tabs: Uses tab persistence configuration
package config
