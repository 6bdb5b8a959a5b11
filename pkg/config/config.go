package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/freebsdly/ops-console/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Permission source configuration
	PermissionSource PermissionSourceConfig

	// Principal cache configuration
	Principal PrincipalConfig

	// Route guard configuration
	Guard GuardConfig

	// Tab persistence configuration
	Tabs TabsConfig

	// Menu taxonomy configuration
	Taxonomy TaxonomyConfig

	// Session configuration
	Session SessionConfig

	// Audit trail configuration
	Audit AuditConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	// AdminRoles may invalidate cached principals through the admin endpoints
	AdminRoles []string
}

// PermissionSourceConfig selects and configures the permission authority
type PermissionSourceConfig struct {
	// Type is "http" or "sql"
	Type string

	// HTTP source
	BaseURL string
	Timeout time.Duration

	// SQL source
	PostgresURL string
}

// PrincipalConfig holds principal snapshot cache settings
type PrincipalConfig struct {
	CacheSize       int
	CacheTTL        time.Duration
	RefreshSchedule string
	RefreshTimeout  time.Duration
}

// GuardConfig holds route guard settings
type GuardConfig struct {
	// RulesFile holds static route annotations in YAML; empty means no
	// static rules and every check goes through the taxonomy and authority
	RulesFile string

	RemoteCheckTimeout time.Duration
	DecisionCacheSize  int
	DecisionCacheTTL   time.Duration
}

// TabsConfig holds tab snapshot persistence settings
type TabsConfig struct {
	// StoreType is "file", "redis" or "s3"
	StoreType    string
	VisibleLimit int

	FileRoot string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// TaxonomyConfig holds menu catalog settings
type TaxonomyConfig struct {
	// CatalogDir holds YAML module catalogs; empty uses the built-in catalog
	CatalogDir string
	Watch      bool
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	TTL time.Duration

	// OIDC restore (optional)
	OIDCEnabled      bool
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	// LogFile is the audit log path; empty disables auditing
	LogFile string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:           loadServerConfig(),
		PermissionSource: loadPermissionSourceConfig(),
		Principal:        loadPrincipalConfig(),
		Guard:            loadGuardConfig(),
		Tabs:             loadTabsConfig(),
		Taxonomy:         loadTaxonomyConfig(),
		Session:          loadSessionConfig(),
		Audit:            loadAuditConfig(),
		Observability:    loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CONSOLE_HOST", "0.0.0.0"),
		Port:            getEnv("CONSOLE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CONSOLE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CONSOLE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CONSOLE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CONSOLE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("CONSOLE_HEALTH_PORT", "9090"),
		AdminRoles:      getEnvList("CONSOLE_ADMIN_ROLES", []string{"ops:admin"}),
	}
}

func loadPermissionSourceConfig() PermissionSourceConfig {
	return PermissionSourceConfig{
		Type:        getEnv("CONSOLE_PERMISSION_SOURCE", "http"),
		BaseURL:     getEnv("CONSOLE_PERMISSION_API_URL", "http://localhost:8081"),
		Timeout:     getEnvDuration("CONSOLE_PERMISSION_API_TIMEOUT", 10*time.Second),
		PostgresURL: getEnv("CONSOLE_POSTGRES_URL", ""),
	}
}

func loadPrincipalConfig() PrincipalConfig {
	return PrincipalConfig{
		CacheSize:       getEnvInt("CONSOLE_PRINCIPAL_CACHE_SIZE", 1024),
		CacheTTL:        getEnvDuration("CONSOLE_PRINCIPAL_CACHE_TTL", 5*time.Minute),
		RefreshSchedule: getEnv("CONSOLE_PRINCIPAL_REFRESH_SCHEDULE", ""),
		RefreshTimeout:  getEnvDuration("CONSOLE_PRINCIPAL_REFRESH_TIMEOUT", 30*time.Second),
	}
}

func loadGuardConfig() GuardConfig {
	return GuardConfig{
		RulesFile:          getEnv("CONSOLE_GUARD_RULES", ""),
		RemoteCheckTimeout: getEnvDuration("CONSOLE_REMOTE_CHECK_TIMEOUT", 5*time.Second),
		DecisionCacheSize:  getEnvInt("CONSOLE_GUARD_CACHE_SIZE", 4096),
		DecisionCacheTTL:   getEnvDuration("CONSOLE_GUARD_CACHE_TTL", 30*time.Second),
	}
}

func loadTabsConfig() TabsConfig {
	return TabsConfig{
		StoreType:      getEnv("CONSOLE_TAB_STORE", "file"),
		VisibleLimit:   getEnvInt("CONSOLE_TAB_VISIBLE_LIMIT", 8),
		FileRoot:       getEnv("CONSOLE_TAB_FILE_ROOT", "./data/tabs"),
		RedisAddr:      getEnv("CONSOLE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("CONSOLE_REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("CONSOLE_REDIS_DB", 0),
		RedisTTL:       getEnvDuration("CONSOLE_TAB_REDIS_TTL", 0),
		S3Bucket:       getEnv("CONSOLE_TAB_S3_BUCKET", ""),
		S3Region:       getEnv("CONSOLE_TAB_S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("CONSOLE_TAB_S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("CONSOLE_TAB_S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("CONSOLE_TAB_S3_SECRET_KEY", ""),
		S3UsePathStyle: getEnvBool("CONSOLE_TAB_S3_USE_PATH_STYLE", false),
	}
}

func loadTaxonomyConfig() TaxonomyConfig {
	return TaxonomyConfig{
		CatalogDir: getEnv("CONSOLE_CATALOG_DIR", ""),
		Watch:      getEnvBool("CONSOLE_CATALOG_WATCH", false),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:              getEnvDuration("CONSOLE_SESSION_TTL", 12*time.Hour),
		OIDCEnabled:      getEnvBool("CONSOLE_OIDC_ENABLED", false),
		OIDCIssuerURL:    getEnv("CONSOLE_OIDC_ISSUER_URL", ""),
		OIDCClientID:     getEnv("CONSOLE_OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("CONSOLE_OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("CONSOLE_OIDC_REDIRECT_URL", ""),
	}
}

// loadAuditConfig loads audit configuration from environment
func loadAuditConfig() AuditConfig {
	return AuditConfig{
		LogFile: getEnv("CONSOLE_AUDIT_LOG", ""),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("CONSOLE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("CONSOLE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("CONSOLE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("CONSOLE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("CONSOLE_OTEL_SERVICE_NAME", "ops-console"),
		OTelServiceVersion: getEnv("CONSOLE_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("CONSOLE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate permission source config
	switch c.PermissionSource.Type {
	case "http":
		if c.PermissionSource.BaseURL == "" {
			return fmt.Errorf("permission API URL is required for http source")
		}
	case "sql":
		if c.PermissionSource.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for sql source")
		}
	default:
		return fmt.Errorf("invalid permission source type: %s (must be http or sql)", c.PermissionSource.Type)
	}

	// Validate tab store config
	switch c.Tabs.StoreType {
	case "file":
		if c.Tabs.FileRoot == "" {
			return fmt.Errorf("tab file root is required for file store")
		}
	case "redis":
		if c.Tabs.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis store")
		}
	case "s3":
		if c.Tabs.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 store")
		}
	default:
		return fmt.Errorf("invalid tab store type: %s (must be file, redis, or s3)", c.Tabs.StoreType)
	}

	if c.Guard.RemoteCheckTimeout <= 0 {
		return fmt.Errorf("remote check timeout must be positive")
	}

	// Validate OIDC config
	if c.Session.OIDCEnabled {
		if c.Session.OIDCIssuerURL == "" {
			return fmt.Errorf("OIDC issuer URL is required when OIDC is enabled")
		}
		if c.Session.OIDCClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
