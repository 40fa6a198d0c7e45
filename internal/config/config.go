// Package config provides configuration loading and management for the application.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server port
	Port string

	// Base URLs for the gas oracles
	BlocknativeURL string
	EtherscanURL   string

	// OpenTelemetry endpoint for observability
	OtelEndpoint string

	// API keys keyed by oracle name ("blocknative", "etherscan")
	APIKeys map[string]string

	// Outbound request handling
	RequestTimeout time.Duration

	// Retry policy for per-network fetches (fixed delay between tries)
	RetryAttempts int
	RetryDelay    time.Duration

	// Minimum spacing between consecutive explorer calls
	ExplorerThrottle time.Duration

	// Cache TTL for per-network snapshots
	CacheTTL time.Duration

	// Sanity breaker thresholds
	MaxGwei         float64
	MaxGweiSwing    float64
	MinOracleCount  int
	BreakerCooldown time.Duration

	// Live sampling loop; zero disables background polling
	PollInterval time.Duration

	// Whether testnets participate in multi-chain snapshots
	IncludeTestnets bool

	// Database settings
	DBDriver string // "postgres" or "sqlite"
	DBDSN    string

	// Optional webhook that receives snapshot batches
	WebhookURL    string
	WebhookAPIKey string

	// Whether snapshot responses are signed for the dashboard
	SignSnapshots bool

	// Inbound rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load creates a new Config from environment variables
func Load() Config {
	apiKeys := map[string]string{}
	if raw := os.Getenv("API_KEYS"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &apiKeys)
	}
	if k := os.Getenv("BLOCKNATIVE_API_KEY"); k != "" {
		apiKeys["blocknative"] = k
	}
	if k := os.Getenv("ETHERSCAN_API_KEY"); k != "" {
		apiKeys["etherscan"] = k
	}

	return Config{
		Port:             GetEnvOrDefault("PORT", "8080"),
		BlocknativeURL:   GetEnvOrDefault("BLOCKNATIVE_URL", "https://api.blocknative.com"),
		EtherscanURL:     GetEnvOrDefault("ETHERSCAN_URL", "https://api.etherscan.io/v2"),
		OtelEndpoint:     GetEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		APIKeys:          apiKeys,
		RequestTimeout:   GetEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		RetryAttempts:    GetEnvAsInt("RETRY_ATTEMPTS", 3),
		RetryDelay:       GetEnvAsDuration("RETRY_DELAY", 500*time.Millisecond),
		ExplorerThrottle: GetEnvAsDuration("EXPLORER_THROTTLE", 250*time.Millisecond),
		CacheTTL:         GetEnvAsDuration("CACHE_TTL", time.Minute),
		MaxGwei:          GetEnvAsFloat("MAX_GWEI", 10000),
		MaxGweiSwing:     GetEnvAsFloat("MAX_GWEI_SWING", 5.0),
		MinOracleCount:   GetEnvAsInt("MIN_ORACLE_COUNT", 1),
		BreakerCooldown:  GetEnvAsDuration("BREAKER_COOLDOWN", 5*time.Minute),
		PollInterval:     GetEnvAsDuration("POLL_INTERVAL", 0),
		IncludeTestnets:  GetEnvAsBool("INCLUDE_TESTNETS", false),
		DBDriver:         strings.ToLower(GetEnvOrDefault("DB_DRIVER", "sqlite")),
		DBDSN:            GetEnvOrDefault("DB_DSN", "gasbench.db"),
		WebhookURL:       GetEnvOrDefault("WEBHOOK_URL", ""),
		WebhookAPIKey:    GetEnvOrDefault("WEBHOOK_API_KEY", ""),
		SignSnapshots:    GetEnvAsBool("SIGN_SNAPSHOTS", false),
		RateLimitRPS:     GetEnvAsFloat("RATE_LIMIT_RPS", 10.0),
		RateLimitBurst:   GetEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// GetEnv retrieves an environment variable and whether it exists
func GetEnv(key string) (string, bool) {
	value, exists := os.LookupEnv(key)
	return value, exists
}

// GetEnvOrDefault retrieves an environment variable or returns the default value if not set
func GetEnvOrDefault(key, defaultValue string) string {
	if value, exists := GetEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt retrieves an environment variable as an integer with a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := GetEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsFloat retrieves an environment variable as a float with a default value
func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := GetEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvAsBool retrieves an environment variable as a boolean with a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := GetEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// GetEnvAsDuration retrieves an environment variable as a duration with a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := GetEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
