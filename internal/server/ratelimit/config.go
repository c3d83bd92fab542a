package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/resuai/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !config.GetEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    config.GetEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   config.GetEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.GetEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         config.GetEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(config.GetEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(config.GetEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(config.GetEnvInt("RATE_LIMIT_MODEL_PER_HOUR", 20)),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. modelPerHour is the
// hourly budget for a full resume analysis; other model-backed routes scale
// from it.
func DefaultEndpointConfigs(modelPerHour int) []EndpointConfig {
	if modelPerHour <= 0 {
		modelPerHour = 20
	}
	return []EndpointConfig{
		// Model-backed operations
		{Path: "/v1/portfolio/build", Method: "POST", Limit: modelPerHour, Window: time.Hour, Burst: 3},
		{Path: "/v1/drafts/current/portfolio", Method: "POST", Limit: modelPerHour, Window: time.Hour, Burst: 3},
		{Path: "/v1/drafts", Method: "POST", Limit: modelPerHour, Window: time.Hour, Burst: 3},
		{Path: "/v1/drafts/current/messages", Method: "POST", Limit: 3 * modelPerHour, Window: time.Hour, Burst: 10},

		// Headless browser
		{Path: "/v1/drafts/current/preview.pdf", Method: "GET", Limit: 60, Window: time.Hour, Burst: 5},

		// Credentials
		{Path: "/v1/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/v1/auth/register", Method: "POST", Limit: 5, Window: time.Minute, Burst: 3},
		{Path: "/v1/auth/password", Method: "PUT", Limit: 5, Window: time.Minute, Burst: 3},

		// Writes
		{Path: "/v1/portfolio", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/v1/portfolio/picture", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/v1/portfolio/edit", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
