// Package config loads the EOL advisor's environment-variable
// configuration, following the reference gateway's Load()/getEnv
// pattern: every setting has a sane default, and an optional .env
// file (via godotenv) is read before the process environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the orchestrator, provider registry,
// cache, and HTTP/CLI surfaces need at startup.
type Config struct {
	// Server
	Addr            string
	Env             string
	GracefulTimeout time.Duration

	// Redis (optional persistent cache.Backend)
	RedisURL string

	// Telemetry backend (InventoryCollector's outbound contract)
	TelemetryBackendURL string

	// Authentication — APIKeys maps a caller-supplied key to the
	// caller name attributed in telemetry and rate limiting. Empty
	// means every request is accepted as an anonymous caller.
	APIKeyHeader string
	APIKeys      map[string]string

	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPM     int
	RateLimitBurst   int

	// Timeouts: 60s request default, 15s per-provider default, clamped
	// to the remaining request deadline.
	DefaultRequestTimeout  time.Duration
	DefaultProviderTimeout time.Duration
	ProviderTimeouts       map[string]time.Duration
	GracefulShutdownWindow time.Duration

	// Body limits
	MaxBodyBytes int64

	// Orchestrator worker pool (default = 8)
	WorkerPoolSize int

	// Cache TTLs (24h positive, shorter negative)
	CacheTTL         time.Duration
	CacheNegativeTTL time.Duration

	// Telemetry ring buffer capacity (default = 10000)
	TelemetryRingSize int

	// Telemetry sink endpoints — empty disables the sink.
	DatadogAPIKey      string
	DatadogSite        string
	SplunkHECURL       string
	SplunkHECToken     string
	PagerDutyRoutingKey string

	// Web search fallback backend
	WebSearchAPIURL string
	WebSearchAPIKey string

	// Background task cadence
	HealthPollInterval   time.Duration
	CatalogSyncInterval  time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables and an optional
// .env file, falling back to the same defaults the reference gateway
// documents for its own settings.
func Load() *Config {
	_ = godotenv.Load()

	gracefulSec := getEnvInt("EOLADVISOR_GRACEFUL_TIMEOUT_SEC", 15)
	requestTimeoutSec := getEnvInt("EOLADVISOR_DEFAULT_TIMEOUT_SEC", 60)
	providerTimeoutSec := getEnvInt("EOLADVISOR_PROVIDER_TIMEOUT_SEC", 15)

	cfg := &Config{
		Addr:                getEnv("EOLADVISOR_ADDR", ":8080"),
		Env:                 getEnv("ENV", "development"),
		GracefulTimeout:     time.Duration(gracefulSec) * time.Second,
		RedisURL:            getEnv("REDIS_URL", ""),
		TelemetryBackendURL: getEnv("TELEMETRY_BACKEND_URL", "http://localhost:9000"),
		APIKeyHeader:        getEnv("API_KEY_HEADER", "Authorization"),
		APIKeys:             parseAPIKeys(getEnv("EOLADVISOR_API_KEYS", "")),
		RateLimitEnabled:    getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPM:        getEnvInt("RATE_LIMIT_RPM", 60),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 10),

		DefaultRequestTimeout:  time.Duration(requestTimeoutSec) * time.Second,
		DefaultProviderTimeout: time.Duration(providerTimeoutSec) * time.Second,
		GracefulShutdownWindow: time.Duration(gracefulSec) * time.Second,
		ProviderTimeouts: map[string]time.Duration{
			"microsoft":      time.Duration(getEnvInt("PROVIDER_TIMEOUT_MICROSOFT_SEC", providerTimeoutSec)) * time.Second,
			"ubuntu":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_UBUNTU_SEC", providerTimeoutSec)) * time.Second,
			"redhat":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_REDHAT_SEC", providerTimeoutSec)) * time.Second,
			"oracle":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_ORACLE_SEC", providerTimeoutSec)) * time.Second,
			"apache":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_APACHE_SEC", providerTimeoutSec)) * time.Second,
			"postgresql":     time.Duration(getEnvInt("PROVIDER_TIMEOUT_POSTGRESQL_SEC", providerTimeoutSec)) * time.Second,
			"nodejs":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_NODEJS_SEC", providerTimeoutSec)) * time.Second,
			"php":            time.Duration(getEnvInt("PROVIDER_TIMEOUT_PHP_SEC", providerTimeoutSec)) * time.Second,
			"python":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_PYTHON_SEC", providerTimeoutSec)) * time.Second,
			"vmware":         time.Duration(getEnvInt("PROVIDER_TIMEOUT_VMWARE_SEC", providerTimeoutSec)) * time.Second,
			"endoflife.date": time.Duration(getEnvInt("PROVIDER_TIMEOUT_ENDOFLIFEDATE_SEC", providerTimeoutSec)) * time.Second,
			"eolstatus.com":  time.Duration(getEnvInt("PROVIDER_TIMEOUT_EOLSTATUS_SEC", providerTimeoutSec)) * time.Second,
			"web-search":     time.Duration(getEnvInt("PROVIDER_TIMEOUT_WEBSEARCH_SEC", providerTimeoutSec)) * time.Second,
		},

		MaxBodyBytes: int64(getEnvInt("EOLADVISOR_MAX_BODY_BYTES", 1*1024*1024)),

		WorkerPoolSize: getEnvInt("EOLADVISOR_WORKER_POOL_SIZE", 8),

		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_HOURS", 24)) * time.Hour,
		CacheNegativeTTL: time.Duration(getEnvInt("CACHE_NEGATIVE_TTL_MINUTES", 60)) * time.Minute,

		TelemetryRingSize: getEnvInt("TELEMETRY_RING_SIZE", 10000),

		DatadogAPIKey:       getEnv("DATADOG_API_KEY", ""),
		DatadogSite:         getEnv("DATADOG_SITE", "datadoghq.com"),
		SplunkHECURL:        getEnv("SPLUNK_HEC_URL", ""),
		SplunkHECToken:      getEnv("SPLUNK_HEC_TOKEN", ""),
		PagerDutyRoutingKey: getEnv("PAGERDUTY_ROUTING_KEY", ""),

		WebSearchAPIURL: getEnv("WEBSEARCH_API_URL", ""),
		WebSearchAPIKey: getEnv("WEBSEARCH_API_KEY", ""),

		HealthPollInterval:  time.Duration(getEnvInt("HEALTH_POLL_INTERVAL_SEC", 30)) * time.Second,
		CatalogSyncInterval: time.Duration(getEnvInt("CATALOG_SYNC_INTERVAL_HOURS", 6)) * time.Hour,

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProviderTimeout returns the configured timeout for a given
// provider, or DefaultProviderTimeout when none is set for it.
func (c *Config) ProviderTimeout(provider string) time.Duration {
	if t, ok := c.ProviderTimeouts[provider]; ok {
		return t
	}
	return c.DefaultProviderTimeout
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// parseAPIKeys parses "key:caller,key:caller" pairs from
// EOLADVISOR_API_KEYS. A key with no ":caller" suffix is attributed to
// a caller name equal to the key itself.
func parseAPIKeys(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if idx := strings.Index(pair, ":"); idx >= 0 {
			keys[pair[:idx]] = pair[idx+1:]
		} else {
			keys[pair] = pair
		}
	}
	return keys
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
